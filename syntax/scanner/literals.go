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

package scanner

import (
	"github.com/tombi-toml/tombi/syntax/token"
)

// scanBasicString scans `"..."` or `"""..."""`, per spec.md §4.1: escapes
// \b \t \n \f \r \" \\ \uXXXX \UXXXXXXXX, plus line-continuation inside
// multi-line strings.
func (l *Lexer) scanBasicString(start int) Token {
	l.next() // consume opening '"'
	multiline := false
	if l.ch == '"' && l.peekByte() == '"' {
		multiline = true
		l.next()
		l.next()
		// a newline immediately following the opening delimiter is trimmed
		// per TOML's multi-line basic string rule; the lexer still emits
		// it as part of the token text (trimming is a document-tree/AST
		// concern, not a lexical one, so round-trip stays exact).
	}
	for {
		switch l.ch {
		case eof:
			l.errorf(token.Span{Start: token.Offset(start), End: token.Offset(l.offset)}, "unterminated-string", "unterminated basic string")
			return l.tok(token.BASIC_STRING, start)
		case '\\':
			l.next()
			l.scanEscape()
			continue
		case '"':
			if !multiline {
				l.next()
				return l.tok(token.BASIC_STRING, start)
			}
			if l.peekByte() == '"' {
				save := l.offset
				l.next()
				if l.ch == '"' {
					l.next()
					return l.tok(token.MULTI_LINE_BASIC_STRING, start)
				}
				_ = save
				continue
			}
			l.next()
		case '\n':
			if !multiline {
				l.errorf(token.Span{Start: token.Offset(start), End: token.Offset(l.offset)}, "unterminated-string", "basic string is not terminated before end of line")
				return l.tok(token.BASIC_STRING, start)
			}
			l.next()
		default:
			l.next()
		}
	}
}

func (l *Lexer) scanEscape() {
	switch l.ch {
	case 'b', 't', 'n', 'f', 'r', '"', '\\':
		l.next()
	case 'u':
		l.next()
		l.scanHexDigits(4)
	case 'U':
		l.next()
		l.scanHexDigits(8)
	case '\n', '\r', ' ', '\t':
		// line-continuation: backslash followed by whitespace and a
		// newline, allowed inside multi-line basic strings; consume the
		// rest of the whitespace run that follows the newline too.
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.next()
		}
	default:
		start := l.offset
		l.errorf(token.Span{Start: token.Offset(start), End: token.Offset(start + 1)}, "invalid-escape", "invalid escape sequence")
		if l.ch != eof {
			l.next()
		}
	}
}

func (l *Lexer) scanHexDigits(n int) {
	for i := 0; i < n; i++ {
		if !isHexDigit(l.ch) {
			l.errorf(token.Span{Start: token.Offset(l.offset), End: token.Offset(l.offset + 1)}, "invalid-escape", "invalid unicode escape")
			return
		}
		l.next()
	}
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanLiteralString scans `'...'` or `'''...'''`; literal strings have no
// escapes at all (spec.md §4.1).
func (l *Lexer) scanLiteralString(start int) Token {
	l.next() // consume opening quote
	multiline := false
	if l.ch == '\'' && l.peekByte() == '\'' {
		multiline = true
		l.next()
		l.next()
	}
	for {
		switch l.ch {
		case eof:
			l.errorf(token.Span{Start: token.Offset(start), End: token.Offset(l.offset)}, "unterminated-string", "unterminated literal string")
			return l.tok(token.LITERAL_STRING, start)
		case '\'':
			if !multiline {
				l.next()
				return l.tok(token.LITERAL_STRING, start)
			}
			if l.peekByte() == '\'' {
				l.next()
				if l.ch == '\'' {
					l.next()
					return l.tok(token.MULTI_LINE_LITERAL_STRING, start)
				}
				continue
			}
			l.next()
		case '\n':
			if !multiline {
				l.errorf(token.Span{Start: token.Offset(start), End: token.Offset(l.offset)}, "unterminated-string", "literal string is not terminated before end of line")
				return l.tok(token.LITERAL_STRING, start)
			}
			l.next()
		default:
			l.next()
		}
	}
}

// scanBareKeyOrKeyword scans an identifier-shaped run of bytes, which may
// turn out to be a bare key, the `true`/`false` keywords, or a special
// float spelling (`inf`, `nan`).
func (l *Lexer) scanBareKeyOrKeyword(start int) Token {
	for isBareKeyRune(l.ch) {
		l.next()
	}
	text := string(l.src[start:l.offset])
	switch text {
	case "true", "false":
		return l.tok(token.BOOLEAN, start)
	case "inf", "nan":
		return l.tok(token.FLOAT, start)
	default:
		return l.tok(token.BARE_KEY, start)
	}
}

// scanNumberOrDateTime scans a leading digit (or signed digit) run and
// disambiguates between integers (dec/hex/oct/bin), floats, and the four
// date-time kinds, all of which can start with a decimal digit.
func (l *Lexer) scanNumberOrDateTime(start int) Token {
	if l.ch == '+' || l.ch == '-' {
		l.next()
		if l.ch == 'i' {
			l.scanBareKeyOrKeyword(l.offset)
			return l.tok(token.FLOAT, start)
		}
		if l.ch == 'n' {
			l.scanBareKeyOrKeyword(l.offset)
			return l.tok(token.FLOAT, start)
		}
	}
	if l.ch == '0' {
		switch l.peekByte() {
		case 'x':
			l.next()
			l.next()
			l.scanDigitsWithUnderscore(isHexDigit)
			return l.tok(token.HEX_INTEGER, start)
		case 'o':
			l.next()
			l.next()
			l.scanDigitsWithUnderscore(isOctDigit)
			return l.tok(token.OCT_INTEGER, start)
		case 'b':
			l.next()
			l.next()
			l.scanDigitsWithUnderscore(isBinDigit)
			return l.tok(token.BIN_INTEGER, start)
		}
	}

	// Consume the first run of digits; a date-time always has exactly 4
	// digits before a '-' at this position (a year), so peek ahead for
	// the TOML date/time shape before committing to a plain integer.
	l.scanDigitsWithUnderscore(isDigit)
	digitsConsumed := l.offset - start

	isFloat := false
	if l.ch == '.' && isDigit(l.peekRune()) {
		isFloat = true
		l.next()
		l.scanDigitsWithUnderscore(isDigit)
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.offset
		l.next()
		if l.ch == '+' || l.ch == '-' {
			l.next()
		}
		if isDigit(l.ch) {
			isFloat = true
			l.scanDigitsWithUnderscore(isDigit)
		} else {
			// Not actually an exponent (e.g. a bare key like "1e"
			// would be illegal TOML anyway); treat 'e' as consumed
			// only if it formed a valid exponent.
			l.offset = save
			l.rdOffset = save + 1
			l.ch = 'e'
		}
	}

	if !isFloat && digitsConsumed == 4 && l.ch == '-' {
		mark := l.mark()
		if tok, ok := l.tryScanDate(start); ok {
			return tok
		}
		l.reset(mark)
	}
	if !isFloat && digitsConsumed == 2 && l.ch == ':' {
		mark := l.mark()
		if tok, ok := l.tryScanTime(start); ok {
			return tok
		}
		l.reset(mark)
	}

	if isFloat {
		return l.tok(token.FLOAT, start)
	}
	return l.tok(token.DEC_INTEGER, start)
}

func (l *Lexer) scanDigitsWithUnderscore(pred func(rune) bool) {
	for pred(l.ch) || l.ch == '_' {
		l.next()
	}
}

func isOctDigit(r rune) bool { return r >= '0' && r <= '7' }
func isBinDigit(r rune) bool { return r == '0' || r == '1' }

// tryScanDate consumes "-MM-DD" after a 4-digit year has already been
// scanned, then optionally a time-of-day and offset to produce a
// LOCAL_DATE, LOCAL_DATE_TIME, or OFFSET_DATE_TIME token.
func (l *Lexer) tryScanDate(start int) (Token, bool) {
	l.next() // '-'
	if !l.consumeNDigits(2) {
		return Token{}, false
	}
	if l.ch != '-' {
		return Token{}, false
	}
	l.next()
	if !l.consumeNDigits(2) {
		return Token{}, false
	}
	if l.ch != 'T' && l.ch != 't' && l.ch != ' ' {
		return l.tok(token.LOCAL_DATE, start), true
	}
	// Lookahead: a space separator must be followed by a time, else this
	// was just a bare date followed by unrelated trivia.
	if (l.ch == ' ') && !isDigit(l.peekRune()) {
		return l.tok(token.LOCAL_DATE, start), true
	}
	l.next() // 'T'/'t'/' '
	if !l.consumeNDigits(2) || l.ch != ':' {
		return Token{}, false
	}
	l.next()
	if !l.consumeNDigits(2) {
		return Token{}, false
	}
	if l.ch == ':' {
		l.next()
		if !l.consumeNDigits(2) {
			return Token{}, false
		}
		if l.ch == '.' && isDigit(l.peekRune()) {
			l.next()
			l.scanDigitsWithUnderscore(isDigit)
		}
	}
	if l.ch == 'Z' || l.ch == 'z' {
		l.next()
		return l.tok(token.OFFSET_DATE_TIME, start), true
	}
	if l.ch == '+' || l.ch == '-' {
		l.next()
		if l.consumeNDigits(2) && l.ch == ':' {
			l.next()
			l.consumeNDigits(2)
		}
		return l.tok(token.OFFSET_DATE_TIME, start), true
	}
	return l.tok(token.LOCAL_DATE_TIME, start), true
}

// tryScanTime consumes ":SS[.ffffff]" after "HH" has already been scanned,
// producing a LOCAL_TIME token.
func (l *Lexer) tryScanTime(start int) (Token, bool) {
	l.next() // ':'
	if !l.consumeNDigits(2) {
		return Token{}, false
	}
	if l.ch == ':' {
		l.next()
		if !l.consumeNDigits(2) {
			return Token{}, false
		}
	}
	if l.ch == '.' && isDigit(l.peekRune()) {
		l.next()
		l.scanDigitsWithUnderscore(isDigit)
	}
	return l.tok(token.LOCAL_TIME, start), true
}

func (l *Lexer) consumeNDigits(n int) bool {
	for i := 0; i < n; i++ {
		if !isDigit(l.ch) {
			return false
		}
		l.next()
	}
	return true
}
