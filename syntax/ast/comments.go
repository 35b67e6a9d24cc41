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

package ast

import (
	"strings"

	"github.com/tombi-toml/tombi/syntax/token"
	"github.com/tombi-toml/tombi/syntax/tree"
)

// LeadingComments returns the run of whole-line comments immediately above
// n, in source order, stopping at the first blank line or non-comment
// sibling (spec.md §4.2's comment-grouping pass: a comment belongs to the
// declaration it is directly attached to, with no intervening blank line).
// The parser wraps comment runs into a DANGLING_COMMENT_GROUP, so the run
// is read from such a group when it directly precedes n (or precedes the
// KEY_VALUE_GROUP whose first key-value is n). A comment that follows
// other code on its own line is a trailing comment and ends the run.
func (n Node) LeadingComments() []*tree.RedToken {
	parent := n.red.Parent()
	if parent == nil {
		return nil
	}
	siblings := parent.Children()
	idx := indexOfChild(siblings, n.red)
	if idx == 0 && parent.Kind() == token.KEY_VALUE_GROUP && parent.Parent() != nil {
		siblings = parent.Parent().Children()
		idx = indexOfChild(siblings, parent)
	}
	if idx < 0 {
		return nil
	}
	if idx > 0 {
		if g, ok := siblings[idx-1].(*tree.RedNode); ok && g.Kind() == token.DANGLING_COMMENT_GROUP {
			siblings, idx = g.Children(), len(g.Children())
		}
	}

	var out []*tree.RedToken
	lineBreaks := 0
	for i := idx - 1; i >= 0; i-- {
		tok, ok := siblings[i].(*tree.RedToken)
		if !ok {
			break
		}
		switch tok.Kind() {
		case token.COMMENT:
			j := i - 1
			for j >= 0 && siblings[j].Kind() == token.WHITESPACE {
				j--
			}
			if j >= 0 && siblings[j].Kind() != token.LINE_BREAK {
				return out
			}
			out = append([]*tree.RedToken{tok}, out...)
			lineBreaks = 0
		case token.LINE_BREAK:
			lineBreaks++
			if lineBreaks >= 2 {
				return out
			}
		case token.WHITESPACE:
			// ignore
		default:
			return out
		}
	}
	return out
}

// TrailingComment returns the single comment sharing n's line, if any —
// the comment reachable from n by crossing only whitespace, never a line
// break (spec.md §4.2).
func (n Node) TrailingComment() *tree.RedToken {
	parent := n.red.Parent()
	if parent == nil {
		return nil
	}
	siblings := parent.Children()
	idx := indexOfChild(siblings, n.red)
	if idx < 0 {
		return nil
	}
	for i := idx + 1; i < len(siblings); i++ {
		tok, ok := siblings[i].(*tree.RedToken)
		if !ok {
			return nil
		}
		switch tok.Kind() {
		case token.WHITESPACE:
			continue
		case token.COMMENT:
			return tok
		default:
			return nil
		}
	}
	return nil
}

func indexOfChild(siblings []tree.RedElement, target *tree.RedNode) int {
	for i, s := range siblings {
		if rn, ok := s.(*tree.RedNode); ok && rn == target {
			return i
		}
	}
	return -1
}

// Text reassembles a dangling comment group's contents as one string, one
// line per comment, with the leading "#" stripped and surrounding
// whitespace trimmed — the form the directive engine scans for `#:schema`
// and `#:tombi` markers.
func (g *DanglingCommentGroup) Text() string {
	var lines []string
	for _, c := range g.Comments() {
		lines = append(lines, strings.TrimSpace(strings.TrimPrefix(c.Text(), "#")))
	}
	return strings.Join(lines, "\n")
}
