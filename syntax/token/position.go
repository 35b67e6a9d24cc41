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
	"fmt"

	"github.com/rivo/uniseg"
)

// Offset is an absolute byte offset into a source document. 32 bits bounds
// input size to 4 GiB (spec.md §6.1).
type Offset uint32

// Span is a half-open [Start, End) range of byte offsets.
type Span struct {
	Start Offset
	End   Offset
}

// Len returns the number of bytes the span covers.
func (s Span) Len() Offset { return s.End - s.Start }

// IsEmpty reports whether the span covers zero bytes.
func (s Span) IsEmpty() bool { return s.Start == s.End }

// Contains reports whether s fully contains other.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// ColumnEncoding selects how [Position.Column] counts partial-character
// units on a line; editors disagree on this, so the line index supports all
// four the LSP protocol and common TOML tooling care about.
type ColumnEncoding int

const (
	// ColumnGrapheme counts extended grapheme clusters (spec.md §3's
	// default: "column counts grapheme clusters for editor-visible
	// positions").
	ColumnGrapheme ColumnEncoding = iota
	ColumnUTF8
	ColumnUTF16
	ColumnUTF32
)

// Position is a human-facing (line, column) location, both 1-based.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether the position refers to a real line.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Compare orders positions by line then column.
func (p Position) Compare(q Position) int {
	if p.Line != q.Line {
		if p.Line < q.Line {
			return -1
		}
		return 1
	}
	switch {
	case p.Column < q.Column:
		return -1
	case p.Column > q.Column:
		return 1
	default:
		return 0
	}
}

// Range is a half-open [Start, End) range of Positions.
type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Contains reports whether r fully contains other, used by the validator
// locality property (spec.md §8: "for all diagnostics produced by
// validating V, diag.range ⊆ V.range").
func (r Range) Contains(other Range) bool {
	return r.Start.Compare(other.Start) <= 0 && other.End.Compare(r.End) <= 0
}

// LineIndex precomputes a line -> byte-span mapping so that offset<->position
// conversion is O(log n) instead of re-scanning the source on every call.
// One LineIndex is built per source file and shared by every token and red
// node derived from it.
type LineIndex struct {
	src        []byte
	lineStarts []Offset // lineStarts[i] is the byte offset where line i+1 begins
	encoding   ColumnEncoding
}

// NewLineIndex scans src once for line breaks and builds the index. Both
// "\n" and "\r\n" are recognized; the recorded line start is always the byte
// immediately after the break, so a trailing "\r" before "\n" never starts a
// phantom line.
func NewLineIndex(src []byte, encoding ColumnEncoding) *LineIndex {
	li := &LineIndex{src: src, encoding: encoding, lineStarts: []Offset{0}}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			li.lineStarts = append(li.lineStarts, Offset(i+1))
		}
	}
	return li
}

// LineCount reports the number of lines in the source, counting a trailing
// unterminated line.
func (li *LineIndex) LineCount() int { return len(li.lineStarts) }

// LineSpan returns the byte span of the given 1-based line, excluding its
// terminating line break.
func (li *LineIndex) LineSpan(line int) (Span, bool) {
	if line < 1 || line > len(li.lineStarts) {
		return Span{}, false
	}
	start := li.lineStarts[line-1]
	var end Offset
	if line == len(li.lineStarts) {
		end = Offset(len(li.src))
	} else {
		end = li.lineStarts[line] - 1
		if end > start && li.src[end-1] == '\r' {
			end--
		}
	}
	return Span{Start: start, End: end}, true
}

// lineForOffset returns the 1-based line containing offset via binary
// search over lineStarts.
func (li *LineIndex) lineForOffset(offset Offset) int {
	lo, hi := 0, len(li.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// Position converts an absolute byte offset into a (line, column) pair
// using the index's configured [ColumnEncoding].
func (li *LineIndex) Position(offset Offset) Position {
	if int(offset) > len(li.src) {
		offset = Offset(len(li.src))
	}
	line := li.lineForOffset(offset)
	lineStart := li.lineStarts[line-1]
	col := li.column(li.src[lineStart:offset])
	return Position{Line: line, Column: col + 1}
}

// column counts the number of units of the index's encoding within text,
// which must be a prefix of a single line.
func (li *LineIndex) column(text []byte) int {
	switch li.encoding {
	case ColumnUTF8:
		return len(text)
	case ColumnUTF16:
		n := 0
		for _, r := range string(text) {
			if r > 0xFFFF {
				n += 2
			} else {
				n++
			}
		}
		return n
	case ColumnUTF32:
		n := 0
		for range string(text) {
			n++
		}
		return n
	default: // ColumnGrapheme
		n := 0
		rest := text
		for len(rest) > 0 {
			_, r, _, _ := uniseg.FirstGraphemeCluster(rest, -1)
			rest = r
			n++
		}
		return n
	}
}

// Offset converts a (line, column) position back into an absolute byte
// offset. ok is false if the line is out of range; a column beyond the end
// of the line clamps to the line's end offset.
func (li *LineIndex) Offset(pos Position) (Offset, bool) {
	span, ok := li.LineSpan(pos.Line)
	if !ok {
		return 0, false
	}
	if pos.Column <= 1 {
		return span.Start, true
	}
	text := li.src[span.Start:span.End]
	remaining := pos.Column - 1
	switch li.encoding {
	case ColumnUTF8:
		off := span.Start + Offset(remaining)
		if off > span.End {
			off = span.End
		}
		return off, true
	case ColumnGrapheme:
		rest := text
		consumed, advanced := 0, 0
		for len(rest) > 0 && consumed < remaining {
			cluster, r, _, _ := uniseg.FirstGraphemeCluster(rest, -1)
			rest = r
			advanced += len(cluster)
			consumed++
		}
		return span.Start + Offset(advanced), true
	default:
		// UTF-16/UTF-32: walk runes, counting units per the encoding.
		n := 0
		for i, r := range string(text) {
			width := 1
			if li.encoding == ColumnUTF16 && r > 0xFFFF {
				width = 2
			}
			if n+width > remaining {
				return span.Start + Offset(i), true
			}
			n += width
		}
		return span.End, true
	}
}
