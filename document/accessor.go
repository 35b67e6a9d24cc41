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

package document

import "strconv"

// Accessor is one step of a structural path through a document or a
// schema tree: either a table key or an array index. Paths are built from
// a sequence of Accessors rather than a dotted string so a key containing
// a literal "." is never ambiguous with a path separator.
type Accessor struct {
	key      string
	index    int
	isIndex  bool
}

// Key returns an Accessor selecting a table entry by key.
func Key(key string) Accessor { return Accessor{key: key} }

// Index returns an Accessor selecting an array element by position.
func Index(i int) Accessor { return Accessor{index: i, isIndex: true} }

// IsIndex reports whether the accessor selects an array element.
func (a Accessor) IsIndex() bool { return a.isIndex }

// KeyName returns the table key this accessor selects; meaningless if
// IsIndex is true.
func (a Accessor) KeyName() string { return a.key }

// IndexValue returns the array position this accessor selects;
// meaningless if IsIndex is false.
func (a Accessor) IndexValue() int { return a.index }

func (a Accessor) String() string {
	if a.isIndex {
		return "[" + strconv.Itoa(a.index) + "]"
	}
	return a.key
}

// AccessorPath is an ordered sequence of [Accessor] values identifying a
// location in a document tree or a schema tree, independent of any
// source [token.Range] — used to correlate a value with its schema
// without re-deriving positions (spec.md original_source supplement: the
// `tombi-accessor` crate's Accessor/AccessorPath, the mechanism document
// and schema share for keying diagnostics and completion candidates).
type AccessorPath []Accessor

// Join returns a new path with accessor appended.
func (p AccessorPath) Join(a Accessor) AccessorPath {
	out := make(AccessorPath, len(p)+1)
	copy(out, p)
	out[len(p)] = a
	return out
}

func (p AccessorPath) String() string {
	s := ""
	for i, a := range p {
		if i > 0 && !a.isIndex {
			s += "."
		}
		s += a.String()
	}
	return s
}

// Get navigates value along the path, returning nil if any step fails to
// resolve (a Key accessor into a non-Table, an Index accessor into a
// non-Array, or an out-of-range index).
func (p AccessorPath) Get(v Value) Value {
	cur := v
	for _, a := range p {
		switch {
		case a.isIndex:
			arr, ok := cur.(*Array)
			if !ok || a.index < 0 || a.index >= len(arr.Items) {
				return nil
			}
			cur = arr.Items[a.index]
		default:
			tbl, ok := cur.(*Table)
			if !ok {
				return nil
			}
			val, found := tbl.Get(a.key)
			if !found {
				return nil
			}
			cur = val
		}
	}
	return cur
}
