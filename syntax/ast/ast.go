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

// Package ast declares the typed façade layered over the red tree
// (spec.md §4.3): Root, Table, KeyValue, Value, Array, InlineTable, and
// friends, with ergonomic navigation and comment-grouping helpers.
package ast

import (
	"github.com/tombi-toml/tombi/syntax/token"
	"github.com/tombi-toml/tombi/syntax/tree"
)

// Node is the common embedding for every typed façade type: a red node plus
// the line index needed to answer Range() queries.
type Node struct {
	red *tree.RedNode
	idx *token.LineIndex
}

func wrap(red *tree.RedNode, idx *token.LineIndex) Node { return Node{red: red, idx: idx} }

// Red returns the underlying red node.
func (n Node) Red() *tree.RedNode { return n.red }

// Kind returns the node's syntax kind.
func (n Node) Kind() token.Kind { return n.red.Kind() }

// Range returns the node's line/column range.
func (n Node) Range() token.Range { return n.red.Range(n.idx) }

// Text returns the node's exact source text.
func (n Node) Text() string { return n.red.Text() }

// LineIndex returns the line index backing this façade, for callers that
// need to build further Node values from raw red nodes (e.g. the
// directive engine re-parsing a comment's content).
func (n Node) LineIndex() *token.LineIndex { return n.idx }

// childNodesOfKind returns n's immediate child nodes with the given kind.
func (n Node) childNodesOfKind(kind token.Kind) []*tree.RedNode {
	var out []*tree.RedNode
	for _, c := range n.red.ChildNodes() {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

func (n Node) firstChildOfKind(kind token.Kind) *tree.RedNode {
	return n.red.FirstChildOfKind(kind)
}

// Root is the façade over a ROOT node: the top of a parsed TOML document.
type Root struct{ Node }

// NewRoot wraps a parsed red root plus its line index into a [Root] façade.
func NewRoot(red *tree.RedNode, idx *token.LineIndex) *Root {
	return &Root{wrap(red, idx)}
}

// RootItemKind distinguishes the three kinds of top-level construct a
// document is built from (spec.md §4.2's "RootItem" in the document-tree
// lowering rules).
type RootItemKind int

const (
	RootItemKeyValueGroup RootItemKind = iota
	RootItemTable
	RootItemArrayOfTable
)

// RootItem is one element of [Root.Items]: either a run of key-values, a
// `[table]` header, or a `[[array.of.tables]]` header. Dangling comment
// groups and ERROR recovery nodes are skipped; they carry no document-tree
// semantics.
type RootItem struct {
	Node
	ItemKind RootItemKind
}

// Items returns the document's top-level constructs in source order, the
// flat sequence that [document] lowering walks (spec.md §4.4 step 1).
func (r *Root) Items() []RootItem {
	var out []RootItem
	for _, c := range r.red.ChildNodes() {
		switch c.Kind() {
		case token.KEY_VALUE_GROUP:
			out = append(out, RootItem{wrap(c, r.idx), RootItemKeyValueGroup})
		case token.TABLE:
			out = append(out, RootItem{wrap(c, r.idx), RootItemTable})
		case token.ARRAY_OF_TABLE:
			out = append(out, RootItem{wrap(c, r.idx), RootItemArrayOfTable})
		}
	}
	return out
}

// DanglingGroups returns every dangling comment group directly under the
// root, in source order — this is where the directive engine looks for
// the document-level `#:schema`/`#:tombi` directives (spec.md §4.7: "found
// in the head (dangling-comments) of the root").
func (r *Root) DanglingGroups() []*DanglingCommentGroup {
	var out []*DanglingCommentGroup
	for _, c := range r.childNodesOfKind(token.DANGLING_COMMENT_GROUP) {
		out = append(out, &DanglingCommentGroup{wrap(c, r.idx)})
	}
	return out
}

// KeyValueGroup returns the item as a [KeyValueGroup] façade; the caller
// must have checked ItemKind first.
func (it RootItem) KeyValueGroup() *KeyValueGroup { return &KeyValueGroup{it.Node} }

// Table returns the item as a [Table] façade.
func (it RootItem) Table() *Table { return &Table{it.Node} }

// ArrayOfTable returns the item as an [ArrayOfTable] façade.
func (it RootItem) ArrayOfTable() *ArrayOfTable { return &ArrayOfTable{it.Node} }

// KeyValueGroup is a maximal run of consecutive KEY_VALUE lines.
type KeyValueGroup struct{ Node }

// KeyValues returns the group's key-value entries in source order.
func (g *KeyValueGroup) KeyValues() []*KeyValue {
	var out []*KeyValue
	for _, c := range g.childNodesOfKind(token.KEY_VALUE) {
		out = append(out, &KeyValue{wrap(c, g.idx)})
	}
	return out
}

// Table is a `[a.b.c]` header.
type Table struct{ Node }

// Keys returns the header's dotted key path.
func (t *Table) Keys() *Keys {
	if kn := t.firstChildOfKind(token.KEYS); kn != nil {
		return &Keys{wrap(kn, t.idx)}
	}
	return nil
}

// ArrayOfTable is a `[[a.b]]` header.
type ArrayOfTable struct{ Node }

// Keys returns the header's dotted key path.
func (a *ArrayOfTable) Keys() *Keys {
	if kn := a.firstChildOfKind(token.KEYS); kn != nil {
		return &Keys{wrap(kn, a.idx)}
	}
	return nil
}

// KeyValue is a single `keys = value` declaration.
type KeyValue struct{ Node }

// Keys returns the declaration's (possibly dotted) key path.
func (kv *KeyValue) Keys() *Keys {
	if kn := kv.firstChildOfKind(token.KEYS); kn != nil {
		return &Keys{wrap(kn, kv.idx)}
	}
	return nil
}

// Value returns the declaration's value.
func (kv *KeyValue) Value() *Value {
	if vn := kv.firstChildOfKind(token.VALUE); vn != nil {
		return &Value{wrap(vn, kv.idx)}
	}
	return nil
}

// Keys is a dotted key path: `Key ('.' Key)*`.
type Keys struct{ Node }

// Segments returns the path's individual [Key] segments in order.
func (k *Keys) Segments() []*Key {
	var out []*Key
	for _, c := range k.childNodesOfKind(token.KEY) {
		out = append(out, &Key{wrap(c, k.idx)})
	}
	return out
}

// Key is a single key segment: a bare key or one of the four string forms.
type Key struct{ Node }

// Token returns the single leaf token spanning the key.
func (k *Key) Token() *tree.RedToken {
	toks := k.red.ChildTokens()
	for _, t := range toks {
		if !t.Kind().IsTrivia() {
			return t
		}
	}
	return nil
}

// Value is a literal, an [Array], or an [InlineTable].
type Value struct{ Node }

// Literal returns the value's leaf token when it is a scalar literal (not
// an array or inline table), or nil otherwise.
func (v *Value) Literal() *tree.RedToken {
	for _, t := range v.red.ChildTokens() {
		if !t.Kind().IsTrivia() {
			return t
		}
	}
	return nil
}

// Array returns the value as an [Array] façade if it is one.
func (v *Value) Array() *Array {
	if n := v.firstChildOfKind(token.ARRAY); n != nil {
		return &Array{wrap(n, v.idx)}
	}
	return nil
}

// InlineTable returns the value as an [InlineTable] façade if it is one.
func (v *Value) InlineTable() *InlineTable {
	if n := v.firstChildOfKind(token.INLINE_TABLE); n != nil {
		return &InlineTable{wrap(n, v.idx)}
	}
	return nil
}

// Array is a standard `[ ... ]` array value.
type Array struct{ Node }

// Values returns the array's elements in order, unwrapping any
// VALUE_WITH_COMMA_GROUP wrapper the parser inserted around an element
// followed by a comma.
func (a *Array) Values() []*Value {
	var out []*Value
	for _, c := range a.red.ChildNodes() {
		switch c.Kind() {
		case token.VALUE:
			out = append(out, &Value{wrap(c, a.idx)})
		case token.VALUE_WITH_COMMA_GROUP:
			if vn := c.FirstChildOfKind(token.VALUE); vn != nil {
				out = append(out, &Value{wrap(vn, a.idx)})
			}
		}
	}
	return out
}

// InlineTable is a `{ k = v, ... }` value.
type InlineTable struct{ Node }

// KeyValues returns the inline table's entries in order, unwrapping any
// KEY_VALUE_WITH_COMMA_GROUP wrapper.
func (it *InlineTable) KeyValues() []*KeyValue {
	var out []*KeyValue
	for _, c := range it.red.ChildNodes() {
		switch c.Kind() {
		case token.KEY_VALUE:
			out = append(out, &KeyValue{wrap(c, it.idx)})
		case token.KEY_VALUE_WITH_COMMA_GROUP:
			if kv := c.FirstChildOfKind(token.KEY_VALUE); kv != nil {
				out = append(out, &KeyValue{wrap(kv, it.idx)})
			}
		}
	}
	return out
}

// DanglingCommentGroup wraps a run of trivia containing comments that sits
// between declarations, or at the start or end of the document. The parser
// forms a group whether or not a blank line separates it from the code
// around it; comments at the end of a group directly above a declaration are
// also reported by that declaration's [Node.LeadingComments].
type DanglingCommentGroup struct{ Node }

// Comments returns every COMMENT token directly inside the group.
func (g *DanglingCommentGroup) Comments() []*tree.RedToken {
	var out []*tree.RedToken
	for _, t := range g.red.ChildTokens() {
		if t.Kind() == token.COMMENT {
			out = append(out, t)
		}
	}
	return out
}
