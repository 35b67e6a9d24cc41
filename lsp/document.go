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

// Package lsp exposes the pure functions an LSP shell marshals into
// textDocument/* and tombi/* responses (spec.md §6.6): "The core exposes
// pure functions producing the values these methods return; the LSP
// shell only marshals." Nothing here speaks JSON-RPC; a Session is built
// and driven entirely with Go values.
package lsp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tombi-toml/tombi/directive"
	"github.com/tombi-toml/tombi/document"
	"github.com/tombi-toml/tombi/schema"
	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/parser"
	"github.com/tombi-toml/tombi/syntax/token"
	"github.com/tombi-toml/tombi/validator"
)

// Document is the cached, fully-parsed state of one open text document
// (spec.md §5 "Document sources in the LSP cache are per-URI").
type Document struct {
	URI     string
	Text    string
	Version int

	Root  *ast.Root
	Table *document.Table

	ParseDiagnostics errors.List

	// AssociatedSchema is set by an explicit `tombi/associateSchema`
	// request; it outranks catalog/config lookup but not an inline
	// `#:schema` directive (spec.md §4.5 "Precedence of schema
	// selection").
	AssociatedSchema schema.SchemaUri
}

// Session holds every open document plus the process-wide schema store,
// and is the receiver for every method in this package (spec.md §5 "The
// schema store is process-wide"). A Session's ID keys any cancellation
// token a caller threads through ctx to Diagnostics/Hover/Completion,
// since those are the calls with a suspension point (spec.md §5
// "Cancellation").
type Session struct {
	ID    uuid.UUID
	Store *schema.Store
	Log   *slog.Logger

	docs map[string]*Document
}

// NewSession builds an empty session backed by store. log defaults to
// slog.Default() if nil.
func NewSession(store *schema.Store, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{ID: uuid.New(), Store: store, Log: log, docs: make(map[string]*Document)}
}

// DidOpen parses text and stores it as uri's current document
// (textDocument/didOpen).
func (s *Session) DidOpen(uri, text string, version int) *Document {
	doc := s.parse(uri, text, version)
	s.docs[uri] = doc
	s.Log.Debug("opened document", "uri", uri, "version", version)
	return doc
}

// DidChange replaces uri's document with a re-parse of text, provided
// version is newer than whatever is cached (spec.md §5 "a document's
// version number is a monotonic counter, and stale versions' results are
// dropped"). A stale version is a no-op returning the still-current
// document and false.
func (s *Session) DidChange(uri, text string, version int) (*Document, bool) {
	if cur, ok := s.docs[uri]; ok && version <= cur.Version {
		s.Log.Debug("dropped stale version", "uri", uri, "version", version, "current", cur.Version)
		return cur, false
	}
	doc := s.parse(uri, text, version)
	if cur, ok := s.docs[uri]; ok {
		doc.AssociatedSchema = cur.AssociatedSchema
	}
	s.docs[uri] = doc
	return doc, true
}

// DidSave is a no-op beyond being a place a shell can hook file-mtime
// tracking for schema re-fetch (spec.md §4.5 "Cache invalidation":
// "file-mtime tracking decides whether to re-read on LSP save events").
// It returns the document unchanged.
func (s *Session) DidSave(uri string) (*Document, bool) {
	doc, ok := s.docs[uri]
	return doc, ok
}

// DidClose drops uri from the session.
func (s *Session) DidClose(uri string) {
	delete(s.docs, uri)
}

// Document returns the cached document for uri, if open.
func (s *Session) Document(uri string) (*Document, bool) {
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *Session) parse(uri, text string, version int) *Document {
	root, idx, diags := parser.Parse([]byte(text))
	tbl, lowerDiags := document.Lower(root, idx)
	diags.Extend(lowerDiags)
	return &Document{URI: uri, Text: text, Version: version, Root: root, Table: tbl, ParseDiagnostics: diags}
}

// resolveSchema applies spec.md §4.5's precedence for doc: inline
// `#:schema` directive, explicit association, catalog match, then none.
// `tombi.toml`'s `[schemas]` tier (out of scope per spec.md §1) is
// skipped, leaving the three tiers this package can actually resolve.
func (s *Session) resolveSchema(ctx context.Context, doc *Document) (*schema.DocumentSchema, error) {
	if sd, ok := directive.FindSchema(doc.Root); ok {
		u, err := schema.ParseUri(sd.URIOrPath)
		if err != nil {
			return nil, fmt.Errorf("resolving #:schema directive: %w", err)
		}
		return s.Store.TryGetDocumentSchema(ctx, u)
	}
	if !doc.AssociatedSchema.IsZero() {
		return s.Store.TryGetDocumentSchema(ctx, doc.AssociatedSchema)
	}
	if entry, ok := s.Store.Catalog.Match(doc.URI); ok {
		return s.Store.TryGetDocumentSchema(ctx, entry.Url)
	}
	return nil, nil
}

// Diagnostics runs parse, lowering, and (if a schema resolves) validation
// diagnostics for uri, merged and sorted in document order
// (textDocument/diagnostic; spec.md §5 "diagnostics are emitted in
// document order from the validator's walk").
func (s *Session) Diagnostics(ctx context.Context, uri string) (errors.List, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}

	var diags errors.List
	diags.Extend(doc.ParseDiagnostics)

	docSchema, err := s.resolveSchema(ctx, doc)
	if err != nil {
		diags.Add(errors.Warnf(token.Range{}, validator.CodeSchemaError, "resolving schema: %v", err))
		diags.Sort()
		return diags, nil
	}
	if docSchema == nil {
		diags.Sort()
		return diags, nil
	}

	strict := false
	if docDirective, directiveDiags := directive.FindDocument(doc.Root); docDirective != nil {
		diags.Extend(directiveDiags)
		if docDirective.SchemaStrict != nil {
			strict = *docDirective.SchemaStrict
		}
	}

	v := validator.New(ctx, s.Store, validator.Options{Strict: strict})
	diags.Extend(v.Validate(doc.Table, docSchema, doc.Root))
	diags.Sort()
	return diags, nil
}
