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

package lsp

import (
	"context"
	"fmt"

	"github.com/tombi-toml/tombi/directive"
	"github.com/tombi-toml/tombi/schema"
)

// TomlVersionResult is the value behind `tombi/getTomlVersion`: both the
// resolved version and which precedence tier produced it, since the
// original LSP command surfaces the source of the decision, not just the
// version (SUPPLEMENTED FEATURES item 5).
type TomlVersionResult struct {
	Version schema.TomlVersion
	Source  schema.VersionSource
}

// GetTomlVersion resolves uri's active TOML version per spec.md §6.2's
// precedence: directive, schema, config, default. configVersion is
// whatever `tombi.toml`'s `toml-version` says, supplied by the shell
// since config loading is out of scope here (spec.md §1).
func (s *Session) GetTomlVersion(ctx context.Context, uri string, configVersion string) (TomlVersionResult, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return TomlVersionResult{}, fmt.Errorf("no open document for %s", uri)
	}

	var directiveVersion string
	if docDirective, _ := directive.FindDocument(doc.Root); docDirective != nil {
		directiveVersion = docDirective.TomlVersion
	}

	docSchema, err := s.resolveSchema(ctx, doc)
	if err != nil {
		docSchema = nil
	}

	version, source := schema.ResolveTomlVersion(directiveVersion, docSchema, configVersion)
	return TomlVersionResult{Version: version, Source: source}, nil
}

// Status is the value behind `tombi/getStatus`.
type Status struct {
	SessionID      string
	OpenDocuments  int
	CatalogEntries int
}

// GetStatus reports the session's current size, used by editors to show
// a status-bar summary.
func (s *Session) GetStatus() Status {
	entries := 0
	if s.Store != nil && s.Store.Catalog != nil {
		entries = len(s.Store.Catalog.Entries)
	}
	return Status{SessionID: s.ID.String(), OpenDocuments: len(s.docs), CatalogEntries: entries}
}

// UpdateSchema pre-warms the store for schemaURI, fetching and parsing it
// if the store does not hold it yet, so the next resolution doesn't pay
// the fetch latency inline (`tombi/updateSchema`). A schema the store
// already holds is kept as is, and no document's association is changed.
func (s *Session) UpdateSchema(ctx context.Context, schemaURI string) error {
	u, err := schema.ParseUri(schemaURI)
	if err != nil {
		return fmt.Errorf("parsing schema uri: %w", err)
	}
	_, err = s.Store.TryGetDocumentSchema(ctx, u)
	return err
}

// AssociateSchema records an explicit document-to-schema association,
// the second-highest precedence tier in spec.md §4.5 ("explicit
// association via `associate_schema` LSP request").
func (s *Session) AssociateSchema(uri, schemaURI string) error {
	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("no open document for %s", uri)
	}
	u, err := schema.ParseUri(schemaURI)
	if err != nil {
		return fmt.Errorf("parsing schema uri: %w", err)
	}
	doc.AssociatedSchema = u
	return nil
}

// RefreshCache drops the store's fetched-content cache while preserving
// already-resolved schemas, per spec.md §4.5's cache-invalidation rule
// (`tombi/refreshCache`).
func (s *Session) RefreshCache() error {
	return s.Store.RefreshCache()
}

// SchemaSelectionTier names which of spec.md §4.5's precedence tiers
// produced a [SchemaCandidate].
type SchemaSelectionTier int

const (
	SchemaSelectionDirective SchemaSelectionTier = iota
	SchemaSelectionAssociation
	SchemaSelectionCatalog
)

func (t SchemaSelectionTier) String() string {
	switch t {
	case SchemaSelectionAssociation:
		return "association"
	case SchemaSelectionCatalog:
		return "catalog"
	default:
		return "directive"
	}
}

// SchemaCandidate is one entry of `tombi/listSchemas`'s result: a schema
// that could apply to a document, and why.
type SchemaCandidate struct {
	Uri  schema.SchemaUri
	Tier SchemaSelectionTier
}

// ListSchemas returns every schema that could apply to uri: the inline
// directive (if any), the explicit association (if any), and the
// catalog match (if any) — in the same precedence order
// `resolveSchema` would pick from (`tombi/listSchemas`).
func (s *Session) ListSchemas(uri string) ([]SchemaCandidate, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}

	var out []SchemaCandidate
	if sd, ok := directive.FindSchema(doc.Root); ok {
		if u, err := schema.ParseUri(sd.URIOrPath); err == nil {
			out = append(out, SchemaCandidate{Uri: u, Tier: SchemaSelectionDirective})
		}
	}
	if !doc.AssociatedSchema.IsZero() {
		out = append(out, SchemaCandidate{Uri: doc.AssociatedSchema, Tier: SchemaSelectionAssociation})
	}
	if s.Store.Catalog != nil {
		if entry, ok := s.Store.Catalog.Match(doc.URI); ok {
			out = append(out, SchemaCandidate{Uri: entry.Url, Tier: SchemaSelectionCatalog})
		}
	}
	return out, nil
}
