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

package schema

import "sync"

// CycleGuard threads through a `$ref` resolution walk, tracking which
// Referable nodes are currently being resolved so a recursive schema
// (`oneOf` referring back to `#/definitions/self`) terminates rather than
// recursing forever (spec.md §4.5 "Cycle prevention"). Nodes are keyed by
// pointer identity, not by value, since two textually identical schemas
// may legitimately both be in flight.
type CycleGuard struct {
	mu      sync.Mutex
	visited map[any]bool
}

// NewCycleGuard returns an empty guard, one per top-level validation walk.
func NewCycleGuard() *CycleGuard {
	return &CycleGuard{visited: make(map[any]bool)}
}

// Enter reports whether key is already being visited. If not, it marks
// key as in-flight and returns a leave function the caller must invoke
// (typically via defer) when it exits the scope that visits key — this
// is what lets a later, unrelated resolution of the same schema proceed
// once the earlier one has finished.
func (g *CycleGuard) Enter(key any) (alreadyVisiting bool, leave func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.visited[key] {
		return true, func() {}
	}
	g.visited[key] = true
	return false, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.visited, key)
	}
}
