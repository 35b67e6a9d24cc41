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

import "github.com/tombi-toml/tombi/syntax/token"

// Builder assembles a green tree from a flat stream of tokens using the
// marker protocol described in spec.md §4.2: [Builder.Open] records "start a
// node here" and returns a [Marker]; after parsing the node's contents,
// [Builder.Close] wraps every sibling pushed since that marker into a node
// of the given kind. Markers may nest arbitrarily; an abandoned marker
// ([Builder.Abandon]) leaves its children as plain siblings of the
// enclosing scope, which is a no-op against the flat buffer below.
type Builder struct {
	// pending holds every GreenElement produced so far in the *currently
	// open* scope, flattened: completing an inner marker replaces its
	// slice of the buffer with a single wrapping GreenNode in place.
	pending []GreenElement
}

// Marker is an opaque checkpoint into the builder's pending buffer.
type Marker struct {
	pos int
}

// Open starts a new node at the builder's current position.
func (b *Builder) Open() Marker {
	return Marker{pos: len(b.pending)}
}

// Token appends a leaf token to the builder's current scope, with no
// jointness recorded. Used for trivia, whose adjacency to a neighboring
// significant token is never a formatting question in its own right.
func (b *Builder) Token(kind token.Kind, text string) {
	b.pending = append(b.pending, NewGreenToken(kind, text))
}

// TokenJoint appends a leaf token tagged with whether it was textually
// contiguous with the previous token in the source stream (no intervening
// trivia) — spec.md §4.2's jointness bitmap. Used for significant tokens,
// where a formatter's decision to re-insert a space depends on it.
func (b *Builder) TokenJoint(kind token.Kind, text string, joint bool) {
	b.pending = append(b.pending, NewJointGreenToken(kind, text, joint))
}

// PushNode appends an already-built node verbatim, used when a sub-tree was
// constructed by a helper (e.g. comment grouping) outside the marker
// protocol.
func (b *Builder) PushNode(n *GreenNode) {
	b.pending = append(b.pending, n)
}

// Close wraps every element pushed since m (tokens, and nodes completed by
// nested markers) into a new node of the given kind, and returns it. m must
// not have been closed or abandoned already.
func (b *Builder) Close(m Marker, kind token.Kind) *GreenNode {
	children := make([]GreenElement, len(b.pending)-m.pos)
	copy(children, b.pending[m.pos:])
	node := NewGreenNode(kind, children)
	b.pending = append(b.pending[:m.pos], node)
	return node
}

// Abandon discards m without wrapping: elements pushed since m remain as
// direct siblings of whatever scope encloses m.
func (b *Builder) Abandon(m Marker) {
	// The flat buffer already holds the elements as plain siblings; there
	// is nothing to undo.
	_ = m
}

// Finish closes the outermost scope into a node of the given kind (normally
// [token.ROOT]) and returns it. The builder must not be reused afterward.
func (b *Builder) Finish(kind token.Kind) *GreenNode {
	children := make([]GreenElement, len(b.pending))
	copy(children, b.pending)
	return NewGreenNode(kind, children)
}

// Len reports how many elements are pending in the current scope; used by
// callers that need to detect an empty completed node (e.g. to suppress a
// DANGLING_COMMENT_GROUP with no comments in it).
func (b *Builder) Len() int { return len(b.pending) }
