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
	"fmt"
	"strconv"
	"strings"
)

// NavigatePointer resolves a JSON-pointer fragment (spec.md §6.3: "local,
// same-document, or absolute URIs; fragments are JSON-pointer syntax plus
// the shorthand #/definitions/<name> and #/$defs/<name>") against doc.
// Unlike a generic JSON-pointer walk over raw maps, this follows the
// typed ValueSchema shape classify already produced — properties, items,
// prefixItems, the two definitions containers, and a numeric index into
// a combinator's branches are the only navigable edges a ValueSchema
// exposes once parsed.
func NavigatePointer(doc *DocumentSchema, pointer string) (*Referable[ValueSchema], error) {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" || pointer == "/" {
		return doc.Root, nil
	}
	segs := strings.Split(strings.Trim(pointer, "/"), "/")
	if len(segs) >= 2 && (segs[0] == "definitions" || segs[0] == "$defs") {
		name := unescapePointerSegment(segs[1])
		def, ok := doc.Definitions[name]
		if !ok {
			return nil, fmt.Errorf("no such definition: %s", name)
		}
		return navigateInto(def, segs[2:])
	}
	return navigateInto(doc.Root, segs)
}

func navigateInto(r *Referable[ValueSchema], segs []string) (*Referable[ValueSchema], error) {
	if len(segs) == 0 {
		return r, nil
	}
	if !r.IsResolved() {
		return nil, fmt.Errorf("cannot navigate through an unresolved $ref")
	}
	v, _ := r.Resolve(nil)
	seg := unescapePointerSegment(segs[0])
	rest := segs[1:]

	switch s := v.(type) {
	case *TableSchema:
		if seg == "properties" && len(rest) > 0 {
			prop, ok := s.Properties[unescapePointerSegment(rest[0])]
			if !ok {
				return nil, fmt.Errorf("no such property: %s", rest[0])
			}
			return navigateInto(prop, rest[1:])
		}
	case *ArraySchema:
		if seg == "items" && s.Items != nil {
			return navigateInto(s.Items, rest)
		}
		if seg == "prefixItems" && len(rest) > 0 {
			idx, err := strconv.Atoi(rest[0])
			if err != nil || idx < 0 || idx >= len(s.PrefixItems) {
				return nil, fmt.Errorf("invalid prefixItems index: %s", rest[0])
			}
			return navigateInto(s.PrefixItems[idx], rest[1:])
		}
	case *CombinatorSchema:
		if idx, err := strconv.Atoi(seg); err == nil && idx >= 0 && idx < len(s.Deref) {
			return navigateInto(s.Deref[idx], rest)
		}
	}
	return nil, fmt.Errorf("cannot navigate pointer segment %q", seg)
}

func unescapePointerSegment(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}
