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

package ast

import (
	"strconv"
	"strings"

	"github.com/tombi-toml/tombi/syntax/token"
)

// ToRawText decodes a key segment to its semantic string value: bare keys
// and literal-shaped keys (numbers, booleans, date-times accepted in key
// position, spec.md §4.1's "numeric bare key" ambiguity) are returned
// verbatim; quoted keys are unescaped exactly like a basic or literal
// string value. tomlVersion is currently unused (reserved for a future
// TOML revision that changes bare-key character classes) but kept in the
// signature so callers need no breaking change when one lands.
func (k *Key) ToRawText(tomlVersion string) string {
	tok := k.Token()
	if tok == nil {
		return ""
	}
	text := tok.Text()
	switch tok.Kind() {
	case token.BASIC_STRING:
		return unescapeBasic(strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`))
	case token.MULTI_LINE_BASIC_STRING:
		inner := strings.TrimSuffix(strings.TrimPrefix(text, `"""`), `"""`)
		inner = strings.TrimPrefix(inner, "\n")
		return unescapeBasic(inner)
	case token.LITERAL_STRING:
		return strings.TrimSuffix(strings.TrimPrefix(text, `'`), `'`)
	case token.MULTI_LINE_LITERAL_STRING:
		inner := strings.TrimSuffix(strings.TrimPrefix(text, `'''`), `'''`)
		return strings.TrimPrefix(inner, "\n")
	default:
		return text
	}
}

// unescapeBasic decodes the escape sequences legal inside a basic string:
// \b \t \n \f \r \" \\ \uXXXX \UXXXXXXXX, plus line-continuation
// (backslash-newline-whitespace, collapsed to nothing).
func unescapeBasic(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'b':
			b.WriteByte('\b')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'u':
			if i+4 < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 4
					continue
				}
			}
		case 'U':
			if i+8 < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+9], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 8
					continue
				}
			}
		case '\n', '\r', ' ', '\t':
			j := i
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			i = j - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
