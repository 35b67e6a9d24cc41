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

// Package directive parses the three comment-directive surface syntaxes
// (spec.md §4.7): `#:schema`, `#:tombi`, and value-scoped `# tombi:`. The
// parser treats directive bytes as ordinary comment text; this package is
// what interprets them lazily, on demand, rather than during the main
// parse.
package directive

import (
	"strings"

	"github.com/tombi-toml/tombi/document"
	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/parser"
	"github.com/tombi-toml/tombi/syntax/token"
	"github.com/tombi-toml/tombi/syntax/tree"
)

const (
	schemaKeyword = ":schema"
	tombiKeyword  = ":tombi"
	valuePrefix   = "tombi:"
)

// Schema is a parsed `#:schema <uri-or-path>` directive: a single
// document-level directive selecting a schema at the highest priority
// (spec.md §4.5 "Precedence of schema selection").
type Schema struct {
	URIOrPath string
	Range     token.Range
}

// Document is a parsed `#:tombi <toml-fragment>` directive. Unset fields
// are nil/zero, letting a caller distinguish "not specified" from
// "explicitly set to the zero value".
type Document struct {
	TomlVersion   string
	FormatDisable *bool
	LintDisable   *bool
	SchemaStrict  *bool
	Range         token.Range
}

// Value is a parsed value-scoped `# tombi: <toml-fragment>` directive,
// attached as a leading or trailing comment of a KeyValue, Table, Array,
// or similar (spec.md §4.7 point 3).
type Value struct {
	LintRuleDisabled     map[string]bool
	FormatTableKeysOrder string
	SeverityOverrides    map[string]errors.Severity
	Range                token.Range
}

// FindSchema scans the dangling comment groups directly under root, in
// source order, for a `#:schema` directive, returning the first one found
// (spec.md §4.7: "single document-level directive, found in the head").
func FindSchema(root *ast.Root) (*Schema, bool) {
	for _, group := range root.DanglingGroups() {
		for _, c := range group.Comments() {
			if body, ok := cutDirective(c.Text(), schemaKeyword); ok {
				return &Schema{URIOrPath: strings.TrimSpace(body), Range: c.Range(root.LineIndex())}, true
			}
		}
	}
	return nil, false
}

// FindDocument scans the dangling comment groups directly under root for
// `#:tombi` directives and parses each TOML-fragment body into one
// [Document]: a field set by a later directive replaces the same field from
// an earlier one, and Range is that of the first directive.
func FindDocument(root *ast.Root) (*Document, errors.List) {
	var doc *Document
	var diags errors.List
	for _, group := range root.DanglingGroups() {
		for _, c := range group.Comments() {
			if body, ok := cutDirective(c.Text(), tombiKeyword); ok {
				var ds errors.List
				doc, ds = parseDocumentFragment(body, c, root.LineIndex(), doc)
				diags.Extend(ds)
			}
		}
	}
	return doc, diags
}

// FindValue inspects n's leading and trailing comments for a
// `# tombi:` directive and parses its TOML-fragment body.
func FindValue(n ast.Node) (*Value, errors.List) {
	for _, c := range n.LeadingComments() {
		if v, diags, ok := tryValueComment(c, n.LineIndex()); ok {
			return v, diags
		}
	}
	if c := n.TrailingComment(); c != nil {
		if v, diags, ok := tryValueComment(c, n.LineIndex()); ok {
			return v, diags
		}
	}
	return nil, nil
}

func tryValueComment(c *tree.RedToken, idx *token.LineIndex) (*Value, errors.List, bool) {
	body := strings.TrimSpace(strings.TrimPrefix(c.Text(), "#"))
	rest, ok := strings.CutPrefix(body, valuePrefix)
	if !ok {
		return nil, nil, false
	}
	v, diags := parseValueFragment(rest, c, idx)
	return v, diags, true
}

// cutDirective strips a leading "#", then keyword, from a raw comment
// token's text, returning the remainder and whether keyword was present.
func cutDirective(raw, keyword string) (string, bool) {
	body := strings.TrimPrefix(raw, "#")
	return strings.CutPrefix(body, keyword)
}

// parseDocumentFragment parses fragment as a TOML key-value expression
// "with a fixed internal TOML version (1.0.0) to stabilize the directive
// grammar irrespective of the outer document" (spec.md §4.7), recognizing
// `toml-version`, `format.disable`, `lint.disable`, `schema.strict`. The
// fields found are set on doc, or on a new Document when doc is nil.
func parseDocumentFragment(fragment string, comment *tree.RedToken, outerIdx *token.LineIndex, doc *Document) (*Document, errors.List) {
	tbl, diags := lowerFragment(fragment, comment, outerIdx)
	if tbl == nil {
		return doc, diags
	}
	if doc == nil {
		doc = &Document{Range: comment.Range(outerIdx)}
	}
	if v, ok := tbl.Get("toml-version"); ok {
		if s, ok := v.(*document.String); ok {
			doc.TomlVersion = s.Value
		}
	}
	if b, ok := dottedBool(tbl, "format", "disable"); ok {
		doc.FormatDisable = &b
	}
	if b, ok := dottedBool(tbl, "lint", "disable"); ok {
		doc.LintDisable = &b
	}
	if b, ok := dottedBool(tbl, "schema", "strict"); ok {
		doc.SchemaStrict = &b
	}
	return doc, diags
}

// parseValueFragment recognizes `lint.rules.<rule-name>.disabled`,
// `format.table-keys-order`, and per-rule severity overrides
// (`lint.rules.<rule-name>.severity`).
func parseValueFragment(fragment string, comment *tree.RedToken, outerIdx *token.LineIndex) (*Value, errors.List) {
	tbl, diags := lowerFragment(fragment, comment, outerIdx)
	if tbl == nil {
		return nil, diags
	}
	v := &Value{Range: comment.Range(outerIdx)}

	if lint, ok := tbl.Get("lint"); ok {
		if lintTbl, ok := lint.(*document.Table); ok {
			if rules, ok := lintTbl.Get("rules"); ok {
				if rulesTbl, ok := rules.(*document.Table); ok {
					for _, entry := range rulesTbl.Entries {
						ruleTbl, ok := entry.Value.(*document.Table)
						if !ok {
							continue
						}
						if disabled, ok := ruleTbl.Get("disabled"); ok {
							if b, ok := disabled.(*document.Boolean); ok && b.Value {
								if v.LintRuleDisabled == nil {
									v.LintRuleDisabled = make(map[string]bool)
								}
								v.LintRuleDisabled[entry.Key] = true
							}
						}
						if sev, ok := ruleTbl.Get("severity"); ok {
							if s, ok := sev.(*document.String); ok {
								if severity, ok := parseSeverity(s.Value); ok {
									if v.SeverityOverrides == nil {
										v.SeverityOverrides = make(map[string]errors.Severity)
									}
									v.SeverityOverrides[entry.Key] = severity
								}
							}
						}
					}
				}
			}
		}
	}

	if order, ok := dottedString(tbl, "format", "table-keys-order"); ok {
		v.FormatTableKeysOrder = order
	}

	return v, diags
}

func parseSeverity(s string) (errors.Severity, bool) {
	switch s {
	case "error":
		return errors.SeverityError, true
	case "warning", "warn":
		return errors.SeverityWarning, true
	case "off":
		return errors.SeverityOff, true
	default:
		return 0, false
	}
}

func dottedBool(tbl *document.Table, key, sub string) (bool, bool) {
	parent, ok := tbl.Get(key)
	if !ok {
		return false, false
	}
	parentTbl, ok := parent.(*document.Table)
	if !ok {
		return false, false
	}
	v, ok := parentTbl.Get(sub)
	if !ok {
		return false, false
	}
	b, ok := v.(*document.Boolean)
	if !ok {
		return false, false
	}
	return b.Value, true
}

func dottedString(tbl *document.Table, key, sub string) (string, bool) {
	parent, ok := tbl.Get(key)
	if !ok {
		return "", false
	}
	parentTbl, ok := parent.(*document.Table)
	if !ok {
		return "", false
	}
	v, ok := parentTbl.Get(sub)
	if !ok {
		return "", false
	}
	s, ok := v.(*document.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}

// lowerFragment parses and lowers fragment as a standalone TOML document,
// then re-bases every resulting diagnostic's range onto comment's
// position in the outer document (spec.md §4.7: "Directive diagnostics
// are annotated with the directive's offset so they surface inside the
// comment"). Since a directive's fragment always occupies a single
// comment line, rebasing is a column shift rather than a general
// coordinate transform.
func lowerFragment(fragment string, comment *tree.RedToken, outerIdx *token.LineIndex) (*document.Table, errors.List) {
	root, idx, parseErrs := parser.Parse([]byte(fragment))
	tbl, lowerErrs := document.Lower(root, idx)

	var diags errors.List
	diags.Extend(parseErrs)
	diags.Extend(lowerErrs)

	base := comment.Range(outerIdx).Start
	prefixCols := len(comment.Text()) - len(fragment)
	if prefixCols < 0 {
		prefixCols = 0
	}
	for _, d := range diags {
		d.Range = rebase(base, prefixCols, d.Range)
	}
	return tbl, diags
}

func rebase(base token.Position, prefixCols int, r token.Range) token.Range {
	adjust := func(p token.Position) token.Position {
		if p.Line != 1 {
			return p
		}
		return token.Position{Line: base.Line, Column: base.Column + prefixCols + p.Column - 1}
	}
	return token.Range{Start: adjust(r.Start), End: adjust(r.End)}
}
