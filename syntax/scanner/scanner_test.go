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
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/token"
)

func kinds(toks []Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestTokensRoundTripText(t *testing.T) {
	src := "a = 1 # comment\n"
	toks, errs := New([]byte(src)).Tokens()
	qt.Assert(t, qt.HasLen(errs, 0))

	var got string
	for _, tok := range toks {
		got += tok.Text
	}
	qt.Assert(t, qt.Equals(got, src))
	qt.Assert(t, qt.Equals(toks[len(toks)-1].Kind, token.EOF))
}

func TestTokensBasicKeyValue(t *testing.T) {
	toks, errs := New([]byte("key = 1")).Tokens()
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.DeepEquals(kinds(toks), []token.Kind{
		token.BARE_KEY, token.WHITESPACE, token.EQUAL, token.WHITESPACE, token.DEC_INTEGER, token.EOF,
	}))
}

func TestTokensBooleanAndSpecialFloats(t *testing.T) {
	for _, tc := range []struct {
		src  string
		kind token.Kind
	}{
		{"true", token.BOOLEAN},
		{"false", token.BOOLEAN},
		{"inf", token.FLOAT},
		{"nan", token.FLOAT},
		{"+inf", token.FLOAT},
		{"-nan", token.FLOAT},
	} {
		toks, errs := New([]byte(tc.src)).Tokens()
		qt.Assert(t, qt.HasLen(errs, 0), qt.Commentf("src=%q", tc.src))
		qt.Assert(t, qt.Equals(toks[0].Kind, tc.kind), qt.Commentf("src=%q", tc.src))
		qt.Assert(t, qt.Equals(toks[0].Text, tc.src))
	}
}

func TestTokensIntegerBases(t *testing.T) {
	for _, tc := range []struct {
		src  string
		kind token.Kind
	}{
		{"0x1A", token.HEX_INTEGER},
		{"0o17", token.OCT_INTEGER},
		{"0b101", token.BIN_INTEGER},
		{"42", token.DEC_INTEGER},
		{"1_000", token.DEC_INTEGER},
	} {
		toks, errs := New([]byte(tc.src)).Tokens()
		qt.Assert(t, qt.HasLen(errs, 0), qt.Commentf("src=%q", tc.src))
		qt.Assert(t, qt.Equals(toks[0].Kind, tc.kind), qt.Commentf("src=%q", tc.src))
	}
}

func TestTokensFloat(t *testing.T) {
	toks, errs := New([]byte("3.14")).Tokens()
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(toks[0].Kind, token.FLOAT))
	qt.Assert(t, qt.Equals(toks[0].Text, "3.14"))
}

func TestTokensDateAndTime(t *testing.T) {
	for _, tc := range []struct {
		src  string
		kind token.Kind
	}{
		{"1979-05-27", token.LOCAL_DATE},
		{"07:32:00", token.LOCAL_TIME},
		{"1979-05-27T07:32:00", token.LOCAL_DATE_TIME},
		{"1979-05-27T07:32:00Z", token.OFFSET_DATE_TIME},
		{"1979-05-27T07:32:00+01:00", token.OFFSET_DATE_TIME},
	} {
		toks, errs := New([]byte(tc.src)).Tokens()
		qt.Assert(t, qt.HasLen(errs, 0), qt.Commentf("src=%q", tc.src))
		qt.Assert(t, qt.Equals(toks[0].Kind, tc.kind), qt.Commentf("src=%q", tc.src))
		qt.Assert(t, qt.Equals(toks[0].Text, tc.src))
	}
}

func TestTokensBasicStringEscapes(t *testing.T) {
	toks, errs := New([]byte(`"a\n\tb"`)).Tokens()
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(toks[0].Kind, token.BASIC_STRING))
}

func TestTokensUnterminatedBasicStringErrors(t *testing.T) {
	_, errs := New([]byte(`"unterminated`)).Tokens()
	qt.Assert(t, qt.HasLen(errs, 1))
	qt.Assert(t, qt.Equals(errs[0].Code, errors.Code("unterminated-string")))
}

func TestTokensMultiLineLiteralString(t *testing.T) {
	toks, errs := New([]byte("'''raw\ntext'''")).Tokens()
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(toks[0].Kind, token.MULTI_LINE_LITERAL_STRING))
}

func TestTokensInvalidByteResumes(t *testing.T) {
	toks, _ := New([]byte("a = \x00 1")).Tokens()
	qt.Assert(t, qt.IsTrue(containsKind(toks, token.INVALID_TOKEN)))
	qt.Assert(t, qt.IsTrue(containsKind(toks, token.DEC_INTEGER)))
}

func TestTokensMalformedDateRollsBackToSeparateTokens(t *testing.T) {
	// "1234-56" has a 4-digit year shape followed by '-' and a 2-digit
	// month, but no "-DD" day follows, so the lexer must back out of the
	// date attempt rather than swallow the hyphen into the leading integer's
	// text.
	toks, errs := New([]byte("1234-56")).Tokens()
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.Equals(toks[0].Kind, token.DEC_INTEGER))
	qt.Assert(t, qt.Equals(toks[0].Text, "1234"))
	qt.Assert(t, qt.Equals(toks[1].Kind, token.DEC_INTEGER))
	qt.Assert(t, qt.Equals(toks[1].Text, "-56"))

	var got string
	for _, tok := range toks {
		got += tok.Text
	}
	qt.Assert(t, qt.Equals(got, "1234-56"))
}

func containsKind(toks []Token, k token.Kind) bool {
	for _, t := range toks {
		if t.Kind == k {
			return true
		}
	}
	return false
}
