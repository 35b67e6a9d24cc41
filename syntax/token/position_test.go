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

package token

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestLineIndexRoundTrip(t *testing.T) {
	src := []byte("a = 1\nb = 2\n")
	idx := NewLineIndex(src, ColumnGrapheme)

	pos := idx.Position(Offset(6)) // start of "b"
	qt.Assert(t, qt.Equals(pos.Line, 2))
	qt.Assert(t, qt.Equals(pos.Column, 1))

	off, ok := idx.Offset(pos)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(off, Offset(6)))
}

func TestLineIndexGraphemeColumn(t *testing.T) {
	// "é" below is a single grapheme cluster encoded as two UTF-8 bytes;
	// the column after it must advance by one, not two.
	src := []byte("é = 1\n")
	idx := NewLineIndex(src, ColumnGrapheme)
	pos := idx.Position(Offset(len("é")))
	qt.Assert(t, qt.Equals(pos.Column, 2))
}

func TestLineIndexUTF8Column(t *testing.T) {
	src := []byte("é = 1\n")
	idx := NewLineIndex(src, ColumnUTF8)
	pos := idx.Position(Offset(len("é")))
	qt.Assert(t, qt.Equals(pos.Column, 3)) // two UTF-8 bytes counted individually
}

func TestRangeContains(t *testing.T) {
	outer := Range{Start: Position{Line: 1, Column: 1}, End: Position{Line: 1, Column: 10}}
	inner := Range{Start: Position{Line: 1, Column: 3}, End: Position{Line: 1, Column: 5}}
	qt.Assert(t, qt.IsTrue(outer.Contains(inner)))
	qt.Assert(t, qt.IsFalse(inner.Contains(outer)))
}

func TestPositionCompare(t *testing.T) {
	a := Position{Line: 1, Column: 5}
	b := Position{Line: 2, Column: 1}
	qt.Assert(t, qt.IsTrue(a.Compare(b) < 0))
	qt.Assert(t, qt.IsTrue(b.Compare(a) > 0))
	qt.Assert(t, qt.Equals(a.Compare(a), 0))
}
