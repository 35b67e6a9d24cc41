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

// Package tree implements the red-green concrete syntax tree (spec.md §3).
//
// The green tree ([GreenNode], [GreenToken]) stores only kinds, child
// lists, and text lengths; it is immutable and, because Go values of
// pointer type are reference-counted by the garbage collector rather than
// by hand, cheap to share across multiple red overlays without any copying.
// The red tree ([RedNode], [RedToken], in red.go) is a lazy overlay that
// adds parent pointers and absolute offsets on top of a green tree.
package tree

import (
	"strings"

	"github.com/tombi-toml/tombi/syntax/token"
)

// GreenElement is implemented by both [GreenNode] and [GreenToken]: anything
// that can appear as a child in the green tree.
type GreenElement interface {
	Kind() token.Kind
	TextLen() token.Offset
	text(b *strings.Builder)
}

// GreenToken is a leaf: a single lexer token together with its exact source
// text (including, for trivia, the whitespace/comment bytes themselves).
type GreenToken struct {
	kind  token.Kind
	text  string
	joint bool
}

// NewGreenToken builds a leaf green token with no jointness information
// recorded (joint defaults to false); used by callers that build trees
// outside the parser's token stream, where jointness has no source of
// truth (e.g. tests, or editor.Apply's rebuilt nodes).
func NewGreenToken(kind token.Kind, text string) *GreenToken {
	return &GreenToken{kind: kind, text: text}
}

// NewJointGreenToken builds a leaf green token tagged with whether it was
// textually contiguous with the token immediately preceding it in the
// original source, with no intervening trivia (spec.md §4.2's jointness
// bitmap: "tracks which adjacent non-trivia tokens were textually
// contiguous, used by formatters deciding whether to re-insert spaces").
func NewJointGreenToken(kind token.Kind, text string, joint bool) *GreenToken {
	return &GreenToken{kind: kind, text: text, joint: joint}
}

func (t *GreenToken) Kind() token.Kind      { return t.kind }
func (t *GreenToken) TextLen() token.Offset { return token.Offset(len(t.text)) }
func (t *GreenToken) Text() string          { return t.text }
func (t *GreenToken) Joint() bool           { return t.joint }
func (t *GreenToken) text(b *strings.Builder) { b.WriteString(t.text) }

// GreenNode is a composite: a kind plus an ordered list of children, which
// may themselves be nodes or tokens. Its TextLen is cached at construction
// time as the sum of its children's lengths.
type GreenNode struct {
	kind     token.Kind
	children []GreenElement
	textLen  token.Offset
}

// NewGreenNode builds a composite green node, computing and caching its
// total text length from its children.
func NewGreenNode(kind token.Kind, children []GreenElement) *GreenNode {
	var n token.Offset
	for _, c := range children {
		n += c.TextLen()
	}
	return &GreenNode{kind: kind, children: children, textLen: n}
}

func (n *GreenNode) Kind() token.Kind          { return n.kind }
func (n *GreenNode) TextLen() token.Offset      { return n.textLen }
func (n *GreenNode) Children() []GreenElement   { return n.children }
func (n *GreenNode) text(b *strings.Builder) {
	for _, c := range n.children {
		c.text(b)
	}
}

// Text reconstructs the exact source text covered by n by concatenating the
// text of every leaf token in document order. This is the round-trip
// invariant of spec.md §8: for a ROOT node, Text() must equal the original
// input byte for byte, including any INVALID_TOKEN / ERROR regions.
func (n *GreenNode) Text() string {
	var b strings.Builder
	b.Grow(int(n.textLen))
	n.text(&b)
	return b.String()
}

// ChildAt returns the i'th child, or nil if i is out of range.
func (n *GreenNode) ChildAt(i int) GreenElement {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}
