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

package errors

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/tombi-toml/tombi/syntax/token"
)

func rangeAt(line int) token.Range {
	return token.Range{Start: token.Position{Line: line, Column: 1}, End: token.Position{Line: line, Column: 2}}
}

func TestListAddIgnoresNil(t *testing.T) {
	var l List
	l.Add(nil)
	qt.Assert(t, qt.HasLen(l, 0))
	l.Add(Newf(rangeAt(1), "x", "boom"))
	qt.Assert(t, qt.HasLen(l, 1))
}

func TestListHasError(t *testing.T) {
	var l List
	l.Add(Warnf(rangeAt(1), "x", "just a warning"))
	qt.Assert(t, qt.IsFalse(l.HasError()))
	l.Add(Newf(rangeAt(2), "y", "a real error"))
	qt.Assert(t, qt.IsTrue(l.HasError()))
}

func TestListSortsByRange(t *testing.T) {
	var l List
	l.Add(Newf(rangeAt(3), "c", "third"))
	l.Add(Newf(rangeAt(1), "a", "first"))
	l.Add(Newf(rangeAt(2), "b", "second"))
	l.Sort()

	qt.Assert(t, qt.Equals(l[0].Code, Code("a")))
	qt.Assert(t, qt.Equals(l[1].Code, Code("b")))
	qt.Assert(t, qt.Equals(l[2].Code, Code("c")))
}

func TestListExtend(t *testing.T) {
	var a, b List
	a.Add(Newf(rangeAt(1), "a", "one"))
	b.Add(Newf(rangeAt(2), "b", "two"))
	a.Extend(b)
	qt.Assert(t, qt.HasLen(a, 2))
}

func TestSeverityString(t *testing.T) {
	qt.Assert(t, qt.Equals(SeverityError.String(), "error"))
	qt.Assert(t, qt.Equals(SeverityWarning.String(), "warning"))
	qt.Assert(t, qt.Equals(SeverityOff.String(), "off"))
}
