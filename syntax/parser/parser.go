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

// Package parser implements the Tombi parser (spec.md §4.2): a
// hand-written, position-agnostic recursive-descent parser over the
// scanner's token stream, producing a green tree plus a list of syntax
// errors. Parsing never aborts: an unexpected token becomes an ERROR node
// and parsing resumes at the next plausible boundary.
package parser

import (
	"fmt"

	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/scanner"
	"github.com/tombi-toml/tombi/syntax/token"
	"github.com/tombi-toml/tombi/syntax/tree"
)

// parser holds the state for a single parse: the token stream, the
// in-progress green-tree builder, and accumulated syntax errors.
type parser struct {
	toks []scanner.Token
	pos  int
	b    tree.Builder
	errs []scanner.LexError

	// prevSignificant records whether the token most recently pushed into
	// the builder was non-trivia, used to tag the next significant token
	// with spec.md §4.2's jointness bit.
	prevSignificant bool
}

// Parse tokenizes and parses src, returning the typed AST root, the line
// index used to convert byte spans to line/column ranges, and every
// lexical and syntax diagnostic encountered. Parse never returns a nil
// root and never fails outright (spec.md §4.1, §4.2, §7).
func Parse(src []byte) (*ast.Root, *token.LineIndex, errors.List) {
	lex := scanner.New(src)
	toks, lexErrs := lex.Tokens()

	p := &parser{toks: toks, errs: lexErrs}
	p.parseRoot()
	green := p.b.Finish(token.ROOT)

	idx := token.NewLineIndex(src, token.ColumnGrapheme)
	var diags errors.List
	for _, le := range p.errs {
		diags.Add(&errors.Error{
			Severity: errors.SeverityError,
			Code:     errors.Code(le.Code),
			Message:  le.Message,
			Range:    token.Range{Start: idx.Position(le.Span.Start), End: idx.Position(le.Span.End)},
		})
	}
	diags.Sort()

	red := tree.NewRoot(green)
	return ast.NewRoot(red, idx), idx, diags
}

func (p *parser) addErrf(span token.Span, code errors.Code, format string, args ...any) {
	p.errs = append(p.errs, scanner.LexError{Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

func (p *parser) cur() scanner.Token { return p.toks[p.pos] }

// bump appends the current token (trivia or significant) to the builder
// and advances, clamping at the final EOF token. A significant token is
// tagged with whether it directly follows another significant token with
// no trivia between (spec.md §4.2's jointness bitmap); trivia tokens carry
// no jointness and reset the bit for whatever comes next.
func (p *parser) bump() {
	t := p.cur()
	if t.Kind.IsTrivia() {
		p.b.Token(t.Kind, t.Text)
		p.prevSignificant = false
	} else {
		p.b.TokenJoint(t.Kind, t.Text, p.prevSignificant)
		p.prevSignificant = true
	}
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

// skipTrivia flushes every contiguous WHITESPACE/LINE_BREAK/COMMENT token
// into the tree as plain siblings of whatever node is currently open; this
// is the "filtered view" mechanism from spec.md §4.2.
func (p *parser) skipTrivia() {
	for p.cur().Kind.IsTrivia() {
		p.bump()
	}
}

// peekKind flushes trivia and returns the next significant token's kind
// without consuming it.
func (p *parser) peekKind() token.Kind {
	p.skipTrivia()
	return p.cur().Kind
}

func (p *parser) atEOF() bool { return p.peekKind() == token.EOF }

// bumpSignificant flushes trivia, then consumes exactly the next
// significant token.
func (p *parser) bumpSignificant() {
	p.skipTrivia()
	p.bump()
}

// expect flushes trivia; if the next significant token has kind, consumes
// it and reports success. Otherwise it records a syntax error and leaves
// the token stream untouched so the caller can attempt recovery.
func (p *parser) expect(kind token.Kind) bool {
	if p.peekKind() == kind {
		p.bump()
		return true
	}
	p.addErrf(p.cur().Span, "expected-token", "expected %s, found %s", kind, p.cur().Kind)
	return false
}

// isKeyStart reports whether kind can begin a Key production. Bare keys
// made up entirely of digits lex as number/date tokens (spec.md §4.1's
// number/date-time recognition runs before key-position is known), so the
// parser accepts every literal-shaped token as a candidate key here and
// lets [ast.Key.ToRawText] reinterpret its text.
func isKeyStart(k token.Kind) bool {
	if k == token.BARE_KEY || k.IsStringToken() || k.IsIntegerToken() || k.IsDateTimeToken() {
		return true
	}
	return k == token.FLOAT || k == token.BOOLEAN
}

func isValueStart(k token.Kind) bool {
	if isKeyStart(k) {
		return true
	}
	return k == token.L_BRACKET || k == token.L_BRACE
}
