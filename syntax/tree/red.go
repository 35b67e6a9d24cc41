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

package tree

import (
	"sync"

	"github.com/tombi-toml/tombi/syntax/token"
)

// RedElement is implemented by both [RedNode] and [RedToken].
type RedElement interface {
	Kind() token.Kind
	Span() token.Span
	Parent() *RedNode
}

// RedNode overlays a [GreenNode] with a parent back-pointer and an absolute
// byte offset. Red nodes are created lazily: calling [RedNode.Children]
// the first time materializes this node's immediate children from its
// green node, caching the result; nothing below an unvisited child is ever
// allocated. Parent pointers point only upward (toward the root), so the
// overlay never creates a reference cycle even though Go's collector would
// tolerate one.
//
// Two red nodes compare equal (see [RedNode.Equal]) iff they wrap the same
// green value at the same absolute offset.
type RedNode struct {
	green  *GreenNode
	parent *RedNode
	offset token.Offset

	once     sync.Once
	children []RedElement
}

// NewRoot creates the red root overlaying green, with no parent and offset 0.
func NewRoot(green *GreenNode) *RedNode {
	return &RedNode{green: green, offset: 0}
}

func (n *RedNode) Kind() token.Kind   { return n.green.Kind() }
func (n *RedNode) Green() *GreenNode  { return n.green }
func (n *RedNode) Parent() *RedNode   { return n.parent }
func (n *RedNode) Offset() token.Offset { return n.offset }

// Span returns n's absolute [start, end) byte span.
func (n *RedNode) Span() token.Span {
	return token.Span{Start: n.offset, End: n.offset + n.green.TextLen()}
}

// Range converts n's span into a line/column [token.Range] using idx.
func (n *RedNode) Range(idx *token.LineIndex) token.Range {
	sp := n.Span()
	return token.Range{Start: idx.Position(sp.Start), End: idx.Position(sp.End)}
}

// Text returns the exact source text covered by n.
func (n *RedNode) Text() string { return n.green.Text() }

// Equal reports whether n and other wrap the same green value at the same
// offset (spec.md §3: "Two red nodes compare equal iff they wrap the same
// green value at the same offset").
func (n *RedNode) Equal(other *RedNode) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.green == other.green && n.offset == other.offset
}

// Children lazily materializes and caches n's immediate red children.
func (n *RedNode) Children() []RedElement {
	n.once.Do(func() {
		greenChildren := n.green.Children()
		children := make([]RedElement, 0, len(greenChildren))
		offset := n.offset
		for _, c := range greenChildren {
			switch g := c.(type) {
			case *GreenNode:
				children = append(children, &RedNode{green: g, parent: n, offset: offset})
			case *GreenToken:
				children = append(children, &RedToken{green: g, parent: n, offset: offset})
			}
			offset += c.TextLen()
		}
		n.children = children
	})
	return n.children
}

// ChildNodes returns only the node-typed children, in order.
func (n *RedNode) ChildNodes() []*RedNode {
	var out []*RedNode
	for _, c := range n.Children() {
		if rn, ok := c.(*RedNode); ok {
			out = append(out, rn)
		}
	}
	return out
}

// ChildTokens returns only the token-typed children, in order.
func (n *RedNode) ChildTokens() []*RedToken {
	var out []*RedToken
	for _, c := range n.Children() {
		if rt, ok := c.(*RedToken); ok {
			out = append(out, rt)
		}
	}
	return out
}

// FirstChildOfKind returns the first child node with the given kind.
func (n *RedNode) FirstChildOfKind(kind token.Kind) *RedNode {
	for _, c := range n.ChildNodes() {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// TokenAt returns the leaf token whose span contains offset, descending
// through whichever child's span covers it at each level. Used by
// position-based queries (hover, completion, definition) that start from
// a byte offset rather than a syntax-aware path.
func (n *RedNode) TokenAt(offset token.Offset) *RedToken {
	for _, c := range n.Children() {
		sp := c.Span()
		if offset < sp.Start || offset >= sp.End {
			continue
		}
		switch v := c.(type) {
		case *RedNode:
			if t := v.TokenAt(offset); t != nil {
				return t
			}
		case *RedToken:
			return v
		}
	}
	return nil
}

// RedToken overlays a [GreenToken] with a parent back-pointer and absolute
// offset.
type RedToken struct {
	green  *GreenToken
	parent *RedNode
	offset token.Offset
}

func (t *RedToken) Kind() token.Kind   { return t.green.Kind() }
func (t *RedToken) Parent() *RedNode   { return t.parent }
func (t *RedToken) Text() string       { return t.green.Text() }
func (t *RedToken) Offset() token.Offset { return t.offset }

// Joint reports whether t was textually contiguous with the token
// immediately preceding it in the original source, with no intervening
// trivia (spec.md §4.2's jointness bitmap). A formatter consults this
// before re-inserting a space around t: re-flowing `a.b` should not
// introduce whitespace a non-joint `a . b` never had either.
func (t *RedToken) Joint() bool { return t.green.joint }

// Span returns t's absolute [start, end) byte span.
func (t *RedToken) Span() token.Span {
	return token.Span{Start: t.offset, End: t.offset + t.green.TextLen()}
}

// Range converts t's span into a line/column [token.Range] using idx.
func (t *RedToken) Range(idx *token.LineIndex) token.Range {
	sp := t.Span()
	return token.Range{Start: idx.Position(sp.Start), End: idx.Position(sp.End)}
}
