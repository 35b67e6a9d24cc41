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

package parser

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/token"
)

func TestParseRoundTripsSource(t *testing.T) {
	src := "a = 1\nb = \"two\"\n\n[table]\nc = true\n"
	root, _, diags := Parse([]byte(src))
	qt.Assert(t, qt.HasLen(diags, 0))
	qt.Assert(t, qt.Equals(root.Text(), src))
}

func TestParseKeyValueGroup(t *testing.T) {
	root, _, diags := Parse([]byte("a = 1\nb = 2\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	items := root.Items()
	qt.Assert(t, qt.HasLen(items, 1))
	qt.Assert(t, qt.Equals(items[0].ItemKind, ast.RootItemKeyValueGroup))

	kvs := items[0].KeyValueGroup().KeyValues()
	qt.Assert(t, qt.HasLen(kvs, 2))

	seg := kvs[0].Keys().Segments()
	qt.Assert(t, qt.HasLen(seg, 1))
	qt.Assert(t, qt.Equals(seg[0].Token().Text(), "a"))
	qt.Assert(t, qt.Equals(kvs[0].Value().Literal().Text(), "1"))
}

func TestParseTableHeader(t *testing.T) {
	root, _, diags := Parse([]byte("[foo.bar]\nx = 1\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	items := root.Items()
	qt.Assert(t, qt.HasLen(items, 1))
	qt.Assert(t, qt.Equals(items[0].ItemKind, ast.RootItemTable))

	seg := items[0].Table().Keys().Segments()
	qt.Assert(t, qt.HasLen(seg, 2))
	qt.Assert(t, qt.Equals(seg[0].Token().Text(), "foo"))
	qt.Assert(t, qt.Equals(seg[1].Token().Text(), "bar"))
}

func TestParseArrayOfTable(t *testing.T) {
	root, _, diags := Parse([]byte("[[items]]\nname = \"x\"\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	items := root.Items()
	qt.Assert(t, qt.HasLen(items, 1))
	qt.Assert(t, qt.Equals(items[0].ItemKind, ast.RootItemArrayOfTable))
}

func TestParseArrayValue(t *testing.T) {
	root, _, diags := Parse([]byte("a = [1, 2, 3]\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	kvs := root.Items()[0].KeyValueGroup().KeyValues()
	arr := kvs[0].Value().Array()
	qt.Assert(t, qt.IsTrue(arr != nil))
	qt.Assert(t, qt.HasLen(arr.Values(), 3))
}

func TestParseInlineTable(t *testing.T) {
	root, _, diags := Parse([]byte("a = { x = 1, y = 2 }\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	kvs := root.Items()[0].KeyValueGroup().KeyValues()
	it := kvs[0].Value().InlineTable()
	qt.Assert(t, qt.IsTrue(it != nil))
	qt.Assert(t, qt.HasLen(it.KeyValues(), 2))
}

func TestParseMissingEqualsReportsErrorAndRecovers(t *testing.T) {
	root, _, diags := Parse([]byte("a 1\nb = 2\n"))
	qt.Assert(t, qt.IsTrue(diags.HasError()))
	// The parser never aborts: the well-formed second line still parses.
	qt.Assert(t, qt.IsTrue(len(root.Items()) > 0))
}

func TestParseLeadingCommentBecomesDanglingGroup(t *testing.T) {
	root, _, diags := Parse([]byte("#:schema ./foo.json\na = 1\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	groups := root.DanglingGroups()
	qt.Assert(t, qt.HasLen(groups, 1))
	qt.Assert(t, qt.Equals(groups[0].Text(), ":schema ./foo.json"))

	items := root.Items()
	qt.Assert(t, qt.HasLen(items, 1))
}

func TestParseDottedKeyTokensAreJoint(t *testing.T) {
	root, _, diags := Parse([]byte("a.b = 1\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	keys := root.Items()[0].KeyValueGroup().KeyValues()[0].Keys()
	segs := keys.Segments()
	qt.Assert(t, qt.HasLen(segs, 2))

	dot := keys.Red().ChildTokens()[0]
	// a . b: "a" is the first token in the document so it is never joint;
	// the dot and "b" are both textually glued to what precedes them.
	qt.Assert(t, qt.IsFalse(segs[0].Token().Joint()))
	qt.Assert(t, qt.IsTrue(dot.Joint()))
	qt.Assert(t, qt.IsTrue(segs[1].Token().Joint()))
}

func TestParseSpacedEqualsIsNotJoint(t *testing.T) {
	root, _, diags := Parse([]byte("a = 1\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	kv := root.Items()[0].KeyValueGroup().KeyValues()[0]
	valueTok := kv.Value().Literal()
	qt.Assert(t, qt.IsFalse(valueTok.Joint()))
}

func TestParseErrorRangeUsesLineIndex(t *testing.T) {
	_, _, diags := Parse([]byte("a\nb = 1\n"))
	qt.Assert(t, qt.IsTrue(diags.HasError()))
	// Every diagnostic's range is resolved through the line index rather
	// than left as a raw byte span.
	qt.Assert(t, qt.IsTrue(diags[0].Range.Start.Line >= 1))
	_ = token.Range{}
}
