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

import (
	"path/filepath"
	"sort"

	"github.com/mpvl/unique"
)

// CatalogEntry is one `{ url, fileMatch, toml-version }` entry of a
// catalog document (spec.md §6.4).
type CatalogEntry struct {
	Url         SchemaUri
	FileMatch   []string
	TomlVersion string
}

// Catalog is an ordered list of entries; first-registered wins ties,
// matching spec.md §4.5's "first match wins within each catalog".
type Catalog struct {
	Entries []CatalogEntry
}

// Match returns the first entry whose FileMatch glob matches path, and
// whether one was found.
func (c *Catalog) Match(path string) (CatalogEntry, bool) {
	base := filepath.Base(path)
	for _, e := range c.Entries {
		for _, pattern := range e.FileMatch {
			if ok, _ := filepath.Match(pattern, base); ok {
				return e, true
			}
			if ok, _ := filepath.Match(pattern, path); ok {
				return e, true
			}
		}
	}
	return CatalogEntry{}, false
}

// Merge appends other's entries to c, sorts them by Url, then keeps one
// entry per Url (repeats can arise from merging the bundled catalog with a
// user-supplied one); entries with the same Url but different FileMatch
// globs are not kept apart — grounded on the same dedup idiom
// cue-lang-cue uses for import-path lists via mpvl/unique.
func (c *Catalog) Merge(other *Catalog) {
	merged := append(append([]CatalogEntry{}, c.Entries...), other.Entries...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Url.String() < merged[j].Url.String()
	})
	s := catalogEntrySort(merged)
	unique.Sort(&s)
	c.Entries = []CatalogEntry(s)
}

// catalogEntrySort adapts []CatalogEntry to mpvl/unique's Interface:
// sort.Interface plus Truncate, used to drop entries with a duplicate
// SchemaUri after the stable sort above has grouped them together.
type catalogEntrySort []CatalogEntry

func (s catalogEntrySort) Len() int      { return len(s) }
func (s catalogEntrySort) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s catalogEntrySort) Less(i, j int) bool {
	return s[i].Url.String() < s[j].Url.String()
}
func (s *catalogEntrySort) Truncate(n int) { *s = (*s)[:n] }
