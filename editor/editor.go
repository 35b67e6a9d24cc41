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

// Package editor is the AST editor the formatter (and any other
// tree-rewriting pass) targets: it never mutates source text directly,
// only emits a list of structural Change values that Apply turns into a
// fresh green tree (spec.md §4.8, interface only — no formatting policy
// lives here).
package editor

import (
	"sort"

	"github.com/tombi-toml/tombi/syntax/tree"
)

// ChangeKind distinguishes the three structural edits a rewrite pass can
// describe.
type ChangeKind int

const (
	ChangeAppend ChangeKind = iota
	ChangeRemove
	ChangeReplaceRange
)

// Change is one structural edit, expressed against the red tree so a
// caller can build it while walking the façade it already has in hand
// (spec.md §4.8: "Append { parent, new }", "Remove { target }",
// "ReplaceRange { old, new }").
type Change struct {
	Kind ChangeKind

	Parent *tree.RedNode    // Append: the node gaining a child
	Target tree.RedElement  // Remove: the element removed

	// ReplaceRange: the inclusive run of siblings being replaced, both
	// direct children of the same parent.
	OldStart tree.RedElement
	OldEnd   tree.RedElement

	New tree.GreenElement // Append/ReplaceRange: the replacement content
}

// Append describes inserting new as the last child of parent.
func Append(parent *tree.RedNode, new tree.GreenElement) Change {
	return Change{Kind: ChangeAppend, Parent: parent, New: new}
}

// Remove describes deleting target from its parent.
func Remove(target tree.RedElement) Change {
	return Change{Kind: ChangeRemove, Target: target}
}

// ReplaceRange describes replacing the inclusive run of siblings from
// oldStart through oldEnd (both children of the same parent) with new.
func ReplaceRange(oldStart, oldEnd tree.RedElement, new tree.GreenElement) Change {
	return Change{Kind: ChangeReplaceRange, OldStart: oldStart, OldEnd: oldEnd, New: new}
}

// Apply rewrites root's green tree according to changes and returns the
// new tree; root and every red node derived from it are left untouched,
// since green nodes are immutable and a red overlay holds no mutable
// state of its own (spec.md §4.8, §9 "Parent pointers": this is exactly
// why the red/green split makes a non-destructive rewrite possible).
// Changes anchored on a node this function cannot find among its
// recorded parent's current children (stale from a prior edit) are
// silently skipped rather than panicking, consistent with the rest of
// the pipeline's accumulate-don't-abort policy.
func Apply(root *tree.RedNode, changes []Change) *tree.GreenNode {
	rw := &rewriter{
		appends: make(map[*tree.RedNode][]Change),
		ranges:  make(map[*tree.RedNode][]Change),
		marked:  make(map[*tree.RedNode]bool),
	}
	for _, ch := range changes {
		rw.record(ch)
	}
	return rw.rebuild(root)
}

type rewriter struct {
	appends map[*tree.RedNode][]Change
	ranges  map[*tree.RedNode][]Change
	marked  map[*tree.RedNode]bool
}

func (rw *rewriter) record(ch Change) {
	switch ch.Kind {
	case ChangeAppend:
		if ch.Parent == nil {
			return
		}
		rw.appends[ch.Parent] = append(rw.appends[ch.Parent], ch)
		rw.markPath(ch.Parent)
	case ChangeRemove:
		if ch.Target == nil {
			return
		}
		parent := ch.Target.Parent()
		rw.ranges[parent] = append(rw.ranges[parent], ch)
		rw.markPath(parent)
	case ChangeReplaceRange:
		if ch.OldStart == nil {
			return
		}
		parent := ch.OldStart.Parent()
		rw.ranges[parent] = append(rw.ranges[parent], ch)
		rw.markPath(parent)
	}
}

func (rw *rewriter) markPath(n *tree.RedNode) {
	for cur := n; cur != nil; cur = cur.Parent() {
		if rw.marked[cur] {
			return
		}
		rw.marked[cur] = true
	}
}

type span struct {
	startIdx, endIdx int
	replacement      tree.GreenElement
}

// rebuild returns n's green representation, unchanged and shared if no
// change touches n or any of its descendants, or newly constructed with
// every recorded edit applied otherwise.
func (rw *rewriter) rebuild(n *tree.RedNode) *tree.GreenNode {
	if !rw.marked[n] {
		return n.Green()
	}

	children := n.Children()
	var spans []span
	for _, ch := range rw.ranges[n] {
		switch ch.Kind {
		case ChangeRemove:
			if idx := indexOf(children, ch.Target); idx >= 0 {
				spans = append(spans, span{idx, idx, nil})
			}
		case ChangeReplaceRange:
			start := indexOf(children, ch.OldStart)
			end := indexOf(children, ch.OldEnd)
			if start >= 0 && end >= start {
				spans = append(spans, span{start, end, ch.New})
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].startIdx < spans[j].startIdx })

	var out []tree.GreenElement
	i, si := 0, 0
	for i < len(children) {
		if si < len(spans) && spans[si].startIdx == i {
			if spans[si].replacement != nil {
				out = append(out, spans[si].replacement)
			}
			i = spans[si].endIdx + 1
			si++
			continue
		}
		out = append(out, rw.rebuildElement(children[i]))
		i++
	}
	for _, ch := range rw.appends[n] {
		out = append(out, ch.New)
	}
	return tree.NewGreenNode(n.Kind(), out)
}

func (rw *rewriter) rebuildElement(e tree.RedElement) tree.GreenElement {
	switch v := e.(type) {
	case *tree.RedNode:
		return rw.rebuild(v)
	case *tree.RedToken:
		return tree.NewGreenToken(v.Kind(), v.Text())
	default:
		return nil
	}
}

func indexOf(children []tree.RedElement, target tree.RedElement) int {
	for i, c := range children {
		if c == target {
			return i
		}
	}
	return -1
}
