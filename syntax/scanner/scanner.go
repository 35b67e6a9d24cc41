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

// Package scanner implements the Tombi lexer (spec.md §4.1): a streaming,
// byte-oriented tokenizer that turns TOML source into a flat sequence of
// [Token] values, preserving trivia and never failing globally — an
// unrecognized byte sequence becomes a single INVALID_TOKEN and scanning
// resumes at the next byte.
package scanner

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/token"
)

// Token is one lexical token: a kind, its exact source text, and its
// absolute byte span.
type Token struct {
	Kind token.Kind
	Text string
	Span token.Span
}

const eof = -1

// LexError is a lexical diagnostic anchored to a byte span rather than a
// line/column [token.Range]: the lexer runs before any [token.LineIndex]
// exists for the document, so range conversion is deferred to the parser,
// which builds the index once from the complete source and then converts
// every LexError into a [errors.Error] (see parser.Parse).
type LexError struct {
	Code    errors.Code
	Message string
	Span    token.Span
}

// Lexer holds the scanning state for a single source buffer. It is not
// reusable across sources; construct a new one with [New] per document.
type Lexer struct {
	src []byte

	ch       rune
	offset   int // start offset of ch
	rdOffset int // offset of the byte after ch

	errs []LexError
}

// New creates a Lexer over src and primes the first rune.
func New(src []byte) *Lexer {
	l := &Lexer{src: src}
	l.next()
	return l
}

func (l *Lexer) next() {
	if l.rdOffset >= len(l.src) {
		l.offset = len(l.src)
		l.ch = eof
		return
	}
	l.offset = l.rdOffset
	r, w := rune(l.src[l.rdOffset]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(l.src[l.rdOffset:])
	}
	l.rdOffset += w
	l.ch = r
}

// lexerMark is a saved lexer position, used to back out of a tentative scan
// (e.g. a date/time shape that turns out not to match) without losing track
// of what was already consumed.
type lexerMark struct {
	ch       rune
	offset   int
	rdOffset int
}

func (l *Lexer) mark() lexerMark {
	return lexerMark{ch: l.ch, offset: l.offset, rdOffset: l.rdOffset}
}

func (l *Lexer) reset(m lexerMark) {
	l.ch, l.offset, l.rdOffset = m.ch, m.offset, m.rdOffset
}

func (l *Lexer) peekByte() byte {
	if l.rdOffset >= len(l.src) {
		return 0
	}
	return l.src[l.rdOffset]
}

func (l *Lexer) errorf(span token.Span, code errors.Code, format string, args ...any) {
	l.errs = append(l.errs, LexError{Code: code, Message: fmt.Sprintf(format, args...), Span: span})
}

// Tokens scans the entire source and returns every token, including a
// trailing EOF token, plus any lexical diagnostics accumulated along the
// way. Concatenating every returned token's Text reproduces src exactly
// (spec.md §8 round-trip property).
func (l *Lexer) Tokens() ([]Token, []LexError) {
	var toks []Token
	for {
		t := l.scan()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks, l.errs
}

func (l *Lexer) scan() Token {
	start := l.offset
	switch {
	case l.ch == eof:
		return l.tok(token.EOF, start)
	case l.ch == ' ' || l.ch == '\t':
		l.scanWhitespace()
		return l.tok(token.WHITESPACE, start)
	case l.ch == '\n':
		l.next()
		return l.tok(token.LINE_BREAK, start)
	case l.ch == '\r' && l.peekByte() == '\n':
		l.next()
		l.next()
		return l.tok(token.LINE_BREAK, start)
	case l.ch == '#':
		l.scanComment()
		return l.tok(token.COMMENT, start)
	case l.ch == '.':
		l.next()
		return l.tok(token.DOT, start)
	case l.ch == '=':
		l.next()
		return l.tok(token.EQUAL, start)
	case l.ch == ',':
		l.next()
		return l.tok(token.COMMA, start)
	case l.ch == '{':
		l.next()
		return l.tok(token.L_BRACE, start)
	case l.ch == '}':
		l.next()
		return l.tok(token.R_BRACE, start)
	case l.ch == '[':
		l.next()
		if l.ch == '[' {
			l.next()
			return l.tok(token.DOUBLE_L_BRACKET, start)
		}
		return l.tok(token.L_BRACKET, start)
	case l.ch == ']':
		l.next()
		if l.ch == ']' {
			l.next()
			return l.tok(token.DOUBLE_R_BRACKET, start)
		}
		return l.tok(token.R_BRACKET, start)
	case l.ch == '"':
		return l.scanBasicString(start)
	case l.ch == '\'':
		return l.scanLiteralString(start)
	case isDigit(l.ch), (l.ch == '+' || l.ch == '-') && isDigit(l.peekRune()),
		(l.ch == '+' || l.ch == '-') && (bytes.HasPrefix(l.src[l.rdOffset:], []byte("inf")) || bytes.HasPrefix(l.src[l.rdOffset:], []byte("nan"))):
		return l.scanNumberOrDateTime(start)
	case isBareKeyRune(l.ch):
		return l.scanBareKeyOrKeyword(start)
	default:
		// Unrecognized byte: emit the shortest illegal run (one rune)
		// and resume; the lexer never fails globally (spec.md §4.1).
		l.next()
		return l.tok(token.INVALID_TOKEN, start)
	}
}

func (l *Lexer) peekRune() rune {
	if l.rdOffset >= len(l.src) {
		return eof
	}
	r, _ := utf8.DecodeRune(l.src[l.rdOffset:])
	return r
}

func (l *Lexer) tok(kind token.Kind, start int) Token {
	return Token{Kind: kind, Text: string(l.src[start:l.offset]), Span: token.Span{Start: token.Offset(start), End: token.Offset(l.offset)}}
}

func (l *Lexer) scanWhitespace() {
	for l.ch == ' ' || l.ch == '\t' {
		l.next()
	}
}

func (l *Lexer) scanComment() {
	for l.ch != '\n' && l.ch != eof {
		if l.ch == '\r' && l.peekByte() == '\n' {
			break
		}
		l.next()
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isBareKeyRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || isDigit(r)
}
