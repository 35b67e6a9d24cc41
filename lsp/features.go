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
	"sort"

	"github.com/tombi-toml/tombi/directive"
	"github.com/tombi-toml/tombi/document"
	"github.com/tombi-toml/tombi/editor"
	"github.com/tombi-toml/tombi/schema"
	"github.com/tombi-toml/tombi/syntax/token"
	"github.com/tombi-toml/tombi/syntax/tree"
)

// Hover is the value behind textDocument/hover.
type Hover struct {
	Contents string
	Range    token.Range
}

// Hover describes the value at (line, column): its structural path, its
// schema's title/description if one resolves, and a token-accurate
// range for the editor to highlight.
func (s *Session) Hover(ctx context.Context, uri string, pos token.Position) (*Hover, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}
	if doc.Table == nil {
		return nil, nil
	}

	path, val := locateValue(doc.Table, pos)
	if val == nil {
		return nil, nil
	}

	contents := path.String()
	if contents == "" {
		contents = "(root)"
	}

	docSchema, err := s.resolveSchema(ctx, doc)
	if err == nil && docSchema != nil {
		if sch, err := s.schemaAt(ctx, docSchema, path); err == nil && sch != nil {
			common := sch.Common()
			if common.Title != "" {
				contents += "\n\n" + common.Title
			}
			if common.Description != "" {
				contents += "\n" + common.Description
			}
			if common.Deprecated {
				contents += "\n\n(deprecated)"
			}
		}
	}

	rng := val.Range()
	if offset, ok := doc.Root.LineIndex().Offset(pos); ok {
		if tok := doc.Root.Red().TokenAt(offset); tok != nil {
			rng = tok.Range(doc.Root.LineIndex())
		}
	}
	return &Hover{Contents: contents, Range: rng}, nil
}

// CompletionItem is one suggestion behind textDocument/completion.
type CompletionItem struct {
	Label  string
	Detail string
}

// Completion lists schema-driven suggestions for the value at
// (line, column): unset property names if it is a table, or the enum
// members if it is a string/number/boolean with one.
func (s *Session) Completion(ctx context.Context, uri string, pos token.Position) ([]CompletionItem, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}
	if doc.Table == nil {
		return nil, nil
	}

	docSchema, err := s.resolveSchema(ctx, doc)
	if err != nil || docSchema == nil {
		return nil, nil
	}

	path, val := locateValue(doc.Table, pos)
	sch, err := s.schemaAt(ctx, docSchema, path)
	if err != nil || sch == nil {
		return nil, nil
	}

	var items []CompletionItem
	switch v := sch.(type) {
	case *schema.TableSchema:
		tbl, _ := val.(*document.Table)
		for name, ref := range v.Properties {
			if tbl != nil {
				if _, present := tbl.Get(name); present {
					continue
				}
			}
			detail := ""
			if ref.IsResolved() {
				if resolved, err := ref.Resolve(nil); err == nil && resolved != nil {
					detail = resolved.Common().Title
				}
			}
			items = append(items, CompletionItem{Label: name, Detail: detail})
		}
	case *schema.StringSchema:
		for _, e := range v.Enum {
			items = append(items, CompletionItem{Label: fmt.Sprintf("%q", e)})
		}
	case *schema.NumberSchema:
		for _, e := range v.Enum {
			items = append(items, CompletionItem{Label: fmt.Sprint(e)})
		}
	case *schema.BooleanSchema:
		for _, e := range v.Enum {
			items = append(items, CompletionItem{Label: fmt.Sprint(e)})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items, nil
}

// Link is the value behind one entry of textDocument/documentLink.
type Link struct {
	Target string
	Range  token.Range
}

// DocumentLinks returns a link for the document's `#:schema` directive,
// if any — the only place spec.md's scope puts a followable URI inside
// document source.
func (s *Session) DocumentLinks(uri string) ([]Link, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}
	sd, ok := directive.FindSchema(doc.Root)
	if !ok {
		return nil, nil
	}
	return []Link{{Target: sd.URIOrPath, Range: sd.Range}}, nil
}

// Location is the value behind textDocument/definition and
// textDocument/typeDefinition: a schema document and, when the schema
// tree retains one, a range inside it. ValueSchema nodes are decoded
// from JSON without preserving source positions (spec.md §4.5's
// "Parse" step classifies keyword shape, not source spans), so Range is
// always zero here — a known simplification; the document-level jump is
// still useful (it is what a schema file's own editor would open to).
type Location struct {
	SchemaUri schema.SchemaUri
	Range     token.Range
}

// Definition resolves the schema governing the value at (line, column).
func (s *Session) Definition(ctx context.Context, uri string, pos token.Position) (*Location, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}
	docSchema, err := s.resolveSchema(ctx, doc)
	if err != nil || docSchema == nil {
		return nil, err
	}
	path, _ := locateValue(doc.Table, pos)
	if _, err := s.schemaAt(ctx, docSchema, path); err != nil {
		return nil, err
	}
	return &Location{SchemaUri: docSchema.SchemaUri}, nil
}

// TypeDefinition is the same resolution as Definition; Tombi has no
// separate notion of a value's declared type site versus its schema.
func (s *Session) TypeDefinition(ctx context.Context, uri string, pos token.Position) (*Location, error) {
	return s.Definition(ctx, uri, pos)
}

// SemanticToken is one entry of textDocument/semanticTokens/full:
// a token's range plus an LSP-standard semantic token type name.
type SemanticToken struct {
	Range token.Range
	Type  string
}

// SemanticTokensFull classifies every non-trivia (plus comment) leaf
// token in uri's syntax tree, in source order.
func (s *Session) SemanticTokensFull(uri string) ([]SemanticToken, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}
	var out []SemanticToken
	var walk func(n *tree.RedNode)
	walk = func(n *tree.RedNode) {
		for _, c := range n.Children() {
			switch v := c.(type) {
			case *tree.RedNode:
				walk(v)
			case *tree.RedToken:
				if t, ok := semanticTokenType(v.Kind()); ok {
					out = append(out, SemanticToken{Range: v.Range(doc.Root.LineIndex()), Type: t})
				}
			}
		}
	}
	walk(doc.Root.Red())
	return out, nil
}

func semanticTokenType(k token.Kind) (string, bool) {
	switch {
	case k.IsStringToken():
		return "string", true
	case k.IsIntegerToken(), k == token.FLOAT:
		return "number", true
	case k.IsDateTimeToken():
		return "string", true
	case k == token.BOOLEAN:
		return "keyword", true
	case k == token.COMMENT:
		return "comment", true
	case k == token.BARE_KEY:
		return "property", true
	default:
		return "", false
	}
}

// CodeAction is one suggested edit behind textDocument/codeAction.
type CodeAction struct {
	Title   string
	Changes []editor.Change
}

// CodeActions offers a "disable this rule" action for diagCode, appended
// as a document-level `# tombi:` directive rather than a per-line one —
// precise per-line placement would need to locate the exact KeyValue/
// Table AST node the diagnostic's range falls under and splice a
// trailing comment onto it, which this pass keeps out of scope; silencing
// at the document level is still a real, useful action.
func (s *Session) CodeActions(uri string, diagCode string) ([]CodeAction, error) {
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}
	comment := tree.NewGreenToken(token.COMMENT, fmt.Sprintf("# tombi: lint.rules.%s.disabled = true", diagCode))
	change := editor.Append(doc.Root.Red(), comment)
	return []CodeAction{{
		Title:   fmt.Sprintf("Disable %q for this document", diagCode),
		Changes: []editor.Change{change},
	}}, nil
}

// Formatting is deliberately unimplemented: the formatter's concrete
// print logic is out of scope (spec.md "Non-goals"). The signature is
// kept here so the LSP surface's shape matches spec.md §6.6's method
// list; a real formatter would populate Changes from editor.Change
// values describing its normalized whitespace/ordering decisions.
func (s *Session) Formatting(uri string) ([]editor.Change, error) {
	if _, ok := s.docs[uri]; !ok {
		return nil, fmt.Errorf("no open document for %s", uri)
	}
	return nil, nil
}
