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

package document_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/tombi-toml/tombi/document"
	"github.com/tombi-toml/tombi/syntax/parser"
)

func lowerSrc(t *testing.T, src string) (*document.Table, int) {
	t.Helper()
	root, idx, parseDiags := parser.Parse([]byte(src))
	qt.Assert(t, qt.HasLen(parseDiags, 0))
	tbl, diags := document.Lower(root, idx)
	return tbl, len(diags)
}

func TestLowerFlatKeyValues(t *testing.T) {
	tbl, n := lowerSrc(t, "a = 1\nb = \"x\"\nc = true\n")
	qt.Assert(t, qt.Equals(n, 0))
	qt.Assert(t, qt.HasLen(tbl.Entries, 3))

	a, ok := tbl.Get("a")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(a.(*document.Integer).Value, int64(1)))

	b, ok := tbl.Get("b")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(b.(*document.String).Value, "x"))
}

func TestLowerDottedKeyCreatesIntermediateTable(t *testing.T) {
	tbl, n := lowerSrc(t, "a.b.c = 1\n")
	qt.Assert(t, qt.Equals(n, 0))

	a, ok := tbl.Get("a")
	qt.Assert(t, qt.IsTrue(ok))
	aTbl := a.(*document.Table)
	qt.Assert(t, qt.Equals(aTbl.Kind, document.TableDotted))

	path := document.AccessorPath{document.Key("a"), document.Key("b"), document.Key("c")}
	got := path.Get(tbl)
	qt.Assert(t, qt.IsTrue(got != nil))
	qt.Assert(t, qt.Equals(got.(*document.Integer).Value, int64(1)))
}

func TestLowerTableHeaderNesting(t *testing.T) {
	tbl, n := lowerSrc(t, "[a]\nx = 1\n\n[a.b]\ny = 2\n")
	qt.Assert(t, qt.Equals(n, 0))

	got := document.AccessorPath{document.Key("a"), document.Key("b"), document.Key("y")}.Get(tbl)
	qt.Assert(t, qt.Equals(got.(*document.Integer).Value, int64(2)))
}

func TestLowerDuplicateKeyReportsDiagnostic(t *testing.T) {
	_, n := lowerSrc(t, "a = 1\na = 2\n")
	qt.Assert(t, qt.Equals(n, 1))
}

func TestLowerReopeningHeaderReportsDiagnostic(t *testing.T) {
	_, n := lowerSrc(t, "[a]\nx = 1\n\n[a]\ny = 2\n")
	qt.Assert(t, qt.Equals(n, 1))
}

func TestLowerArrayOfTables(t *testing.T) {
	tbl, n := lowerSrc(t, "[[items]]\nname = \"x\"\n\n[[items]]\nname = \"y\"\n")
	qt.Assert(t, qt.Equals(n, 0))

	v, ok := tbl.Get("items")
	qt.Assert(t, qt.IsTrue(ok))
	arr := v.(*document.Array)
	qt.Assert(t, qt.Equals(arr.Kind, document.ArrayOfTables))
	qt.Assert(t, qt.HasLen(arr.Items, 2))

	first := document.AccessorPath{document.Index(0), document.Key("name")}.Get(arr)
	qt.Assert(t, qt.Equals(first.(*document.String).Value, "x"))
}

func TestLowerInlineTable(t *testing.T) {
	tbl, n := lowerSrc(t, "a = { x = 1, y = 2 }\n")
	qt.Assert(t, qt.Equals(n, 0))

	v, _ := tbl.Get("a")
	inline := v.(*document.Table)
	qt.Assert(t, qt.Equals(inline.Kind, document.TableInline))
	qt.Assert(t, qt.HasLen(inline.Entries, 2))
}

func TestAccessorPathString(t *testing.T) {
	p := document.AccessorPath{document.Key("a"), document.Key("b"), document.Index(2), document.Key("c")}
	qt.Assert(t, qt.Equals(p.String(), "a.b[2].c"))
}

func TestAccessorPathGetMissingReturnsNil(t *testing.T) {
	tbl, _ := lowerSrc(t, "a = 1\n")
	got := document.AccessorPath{document.Key("missing")}.Get(tbl)
	qt.Assert(t, qt.IsTrue(got == nil))
}

func TestLowerIntegerRadixAndFloat(t *testing.T) {
	tbl, n := lowerSrc(t, "hex = 0xFF\noct = 0o17\nbin = 0b101\nf = 3.5\n")
	qt.Assert(t, qt.Equals(n, 0))

	hex, _ := tbl.Get("hex")
	qt.Assert(t, qt.Equals(hex.(*document.Integer).Value, int64(255)))
	qt.Assert(t, qt.Equals(hex.(*document.Integer).Kind, document.IntegerHex))

	f, _ := tbl.Get("f")
	qt.Assert(t, qt.Equals(f.(*document.Float).Value, 3.5))
}
