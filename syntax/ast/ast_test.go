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

package ast_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/tombi-toml/tombi/syntax/parser"
)

func TestKeyToRawTextBareAndQuoted(t *testing.T) {
	root, _, diags := parser.Parse([]byte("a = 1\n\"b c\" = 2\n'd e' = 3\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	kvs := root.Items()[0].KeyValueGroup().KeyValues()
	qt.Assert(t, qt.HasLen(kvs, 3))

	qt.Assert(t, qt.Equals(kvs[0].Keys().Segments()[0].ToRawText(""), "a"))
	qt.Assert(t, qt.Equals(kvs[1].Keys().Segments()[0].ToRawText(""), "b c"))
	qt.Assert(t, qt.Equals(kvs[2].Keys().Segments()[0].ToRawText(""), "d e"))
}

func TestKeyToRawTextUnescapesBasicString(t *testing.T) {
	root, _, diags := parser.Parse([]byte(`"a\tb" = 1` + "\n"))
	qt.Assert(t, qt.HasLen(diags, 0))
	seg := root.Items()[0].KeyValueGroup().KeyValues()[0].Keys().Segments()[0]
	qt.Assert(t, qt.Equals(seg.ToRawText(""), "a\tb"))
}

func TestLeadingAndTrailingComments(t *testing.T) {
	src := "# leading one\n# leading two\na = 1 # trailing\nb = 2\n"
	root, _, diags := parser.Parse([]byte(src))
	qt.Assert(t, qt.HasLen(diags, 0))

	kvs := root.Items()[0].KeyValueGroup().KeyValues()
	leading := kvs[0].LeadingComments()
	qt.Assert(t, qt.HasLen(leading, 2))
	qt.Assert(t, qt.Equals(leading[0].Text(), "# leading one"))
	qt.Assert(t, qt.Equals(leading[1].Text(), "# leading two"))

	trailing := kvs[0].TrailingComment()
	qt.Assert(t, qt.IsTrue(trailing != nil))
	qt.Assert(t, qt.Equals(trailing.Text(), "# trailing"))

	qt.Assert(t, qt.IsTrue(kvs[1].TrailingComment() == nil))
}

func TestLeadingCommentsStopsAtBlankLine(t *testing.T) {
	src := "# detached\n\na = 1\n"
	root, _, diags := parser.Parse([]byte(src))
	qt.Assert(t, qt.HasLen(diags, 0))

	kvs := root.Items()[0].KeyValueGroup().KeyValues()
	qt.Assert(t, qt.HasLen(kvs[0].LeadingComments(), 0))
}

func TestDanglingCommentGroupText(t *testing.T) {
	src := "a = 1\n\n# one\n# two\n"
	root, _, diags := parser.Parse([]byte(src))
	qt.Assert(t, qt.HasLen(diags, 0))

	groups := root.DanglingGroups()
	qt.Assert(t, qt.HasLen(groups, 1))
	qt.Assert(t, qt.Equals(groups[0].Text(), "one\ntwo"))
}

func TestValueLiteralAndArray(t *testing.T) {
	root, _, diags := parser.Parse([]byte("a = [1, 2]\nb = \"s\"\n"))
	qt.Assert(t, qt.HasLen(diags, 0))

	kvs := root.Items()[0].KeyValueGroup().KeyValues()
	qt.Assert(t, qt.IsTrue(kvs[0].Value().Array() != nil))
	qt.Assert(t, qt.IsTrue(kvs[0].Value().Literal() == nil))
	qt.Assert(t, qt.Equals(kvs[1].Value().Literal().Text(), `"s"`))
}
