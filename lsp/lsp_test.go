// Copyright 2024 The Tombi Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lsp_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-quicktest/qt"

	"github.com/tombi-toml/tombi/lsp"
	"github.com/tombi-toml/tombi/schema"
	"github.com/tombi-toml/tombi/syntax/token"
)

func newSession(t *testing.T) *lsp.Session {
	t.Helper()
	store := schema.NewStore(t.TempDir(), time.Minute)
	return lsp.NewSession(store, nil)
}

func TestDidOpenAndDocumentRoundTrip(t *testing.T) {
	s := newSession(t)
	doc := s.DidOpen("file:///a.toml", "name = \"tombi\"\n", 1)
	qt.Assert(t, qt.Equals(doc.Version, 1))

	got, ok := s.Document("file:///a.toml")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got.Text, "name = \"tombi\"\n"))
}

func TestDidChangeDropsStaleVersion(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a = 1\n", 2)

	doc, applied := s.DidChange("file:///a.toml", "a = 2\n", 1)
	qt.Assert(t, qt.IsFalse(applied))
	qt.Assert(t, qt.Equals(doc.Text, "a = 1\n"))

	doc, applied = s.DidChange("file:///a.toml", "a = 2\n", 3)
	qt.Assert(t, qt.IsTrue(applied))
	qt.Assert(t, qt.Equals(doc.Text, "a = 2\n"))
}

func TestDidCloseRemovesDocument(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a = 1\n", 1)
	s.DidClose("file:///a.toml")

	_, ok := s.Document("file:///a.toml")
	qt.Assert(t, qt.IsFalse(ok))
}

func TestDiagnosticsReportsParseErrors(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a 1\n", 1)

	diags, err := s.Diagnostics(context.Background(), "file:///a.toml")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(diags.HasError()))
}

func TestDiagnosticsUnknownDocumentErrors(t *testing.T) {
	s := newSession(t)
	_, err := s.Diagnostics(context.Background(), "file:///missing.toml")
	qt.Assert(t, qt.IsTrue(err != nil))
}

func TestHoverReturnsPathForValue(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "name = \"tombi\"\n", 1)

	h, err := s.Hover(context.Background(), "file:///a.toml", token.Position{Line: 1, Column: 10})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(h != nil))
	qt.Assert(t, qt.Equals(h.Contents, "name"))
}

func TestDocumentLinksFindsSchemaDirective(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "#:schema ./foo.schema.json\na = 1\n", 1)

	links, err := s.DocumentLinks("file:///a.toml")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(links, 1))
	qt.Assert(t, qt.Equals(links[0].Target, "./foo.schema.json"))
}

func TestDocumentLinksNoneWithoutDirective(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a = 1\n", 1)

	links, err := s.DocumentLinks("file:///a.toml")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(links, 0))
}

func TestSemanticTokensFullClassifiesLeaves(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "name = \"tombi\"\n", 1)

	toks, err := s.SemanticTokensFull("file:///a.toml")
	qt.Assert(t, qt.IsNil(err))

	var sawProperty, sawString bool
	for _, tk := range toks {
		switch tk.Type {
		case "property":
			sawProperty = true
		case "string":
			sawString = true
		}
	}
	qt.Assert(t, qt.IsTrue(sawProperty))
	qt.Assert(t, qt.IsTrue(sawString))
}

func TestCodeActionsOffersDisableDirective(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a = 1\n", 1)

	actions, err := s.CodeActions("file:///a.toml", "min-length")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(actions, 1))
	qt.Assert(t, qt.HasLen(actions[0].Changes, 1))
}

func TestFormattingUnimplementedReturnsNil(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a = 1\n", 1)

	changes, err := s.Formatting("file:///a.toml")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(changes == nil))
}

func TestGetStatusReportsOpenDocuments(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a = 1\n", 1)
	s.DidOpen("file:///b.toml", "b = 2\n", 1)

	status := s.GetStatus()
	qt.Assert(t, qt.Equals(status.OpenDocuments, 2))
}

func TestAssociateSchemaThenListSchemas(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a = 1\n", 1)

	err := s.AssociateSchema("file:///a.toml", t.TempDir()+"/does-not-exist.json")
	qt.Assert(t, qt.IsNil(err))

	candidates, err := s.ListSchemas("file:///a.toml")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(candidates, 1))
	qt.Assert(t, qt.Equals(candidates[0].Tier, lsp.SchemaSelectionAssociation))
}

func TestGetTomlVersionDefaultsToConfig(t *testing.T) {
	s := newSession(t)
	s.DidOpen("file:///a.toml", "a = 1\n", 1)

	result, err := s.GetTomlVersion(context.Background(), "file:///a.toml", "1.0.0")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(result.Version, schema.TomlVersion("1.0.0")))
	qt.Assert(t, qt.Equals(result.Source, schema.VersionSourceConfig))
}

func TestRefreshCacheNoopWithoutCacheDir(t *testing.T) {
	s := lsp.NewSession(schema.NewStore("", time.Minute), nil)
	qt.Assert(t, qt.IsNil(s.RefreshCache()))
}
