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

package lsp

import (
	"context"
	"regexp"

	"github.com/tombi-toml/tombi/document"
	"github.com/tombi-toml/tombi/schema"
	"github.com/tombi-toml/tombi/syntax/token"
)

// locateValue finds the deepest document.Value (and the structural path
// to reach it) whose range contains pos, walking down from root. A miss
// returns (nil, nil); the caller falls back to whole-document behavior.
func locateValue(root document.Value, pos token.Position) (document.AccessorPath, document.Value) {
	point := token.Range{Start: pos, End: pos}
	if !root.Range().Contains(point) {
		return nil, nil
	}
	return locateIn(root, pos, nil)
}

func locateIn(val document.Value, pos token.Position, path document.AccessorPath) (document.AccessorPath, document.Value) {
	point := token.Range{Start: pos, End: pos}
	switch v := val.(type) {
	case *document.Table:
		for _, entry := range v.Entries {
			if entry.Value.Range().Contains(point) {
				return locateIn(entry.Value, pos, path.Join(document.Key(entry.Key)))
			}
		}
	case *document.Array:
		for i, item := range v.Items {
			if item.Range().Contains(point) {
				return locateIn(item, pos, path.Join(document.Index(i)))
			}
		}
	}
	return path, val
}

// resolveSchemaRef resolves ref to a concrete schema, short-circuiting a
// recursive `$ref` chain via guard exactly as the validator's own
// resolver does (spec.md §4.5 "Cycle prevention"); duplicated in
// miniature here because this package's traversal is a single-path
// descent driven by cursor position, not the validator's whole-tree
// walk, so the two don't share a call shape.
func (s *Session) resolveSchemaRef(ctx context.Context, guard *schema.CycleGuard, uri schema.SchemaUri, ref *schema.Referable[schema.ValueSchema]) (schema.ValueSchema, error) {
	if ref == nil {
		return nil, nil
	}
	if ref.IsResolved() {
		return ref.Resolve(nil)
	}
	already, leave := guard.Enter(ref)
	if already {
		return nil, nil
	}
	defer leave()
	return ref.Resolve(func(r schema.Ref) (schema.ValueSchema, error) {
		target := r.BaseUri
		if target.IsZero() {
			target = uri
		}
		doc, err := s.Store.TryGetDocumentSchema(ctx, target)
		if err != nil {
			return nil, err
		}
		next, err := schema.NavigatePointer(doc, r.Pointer)
		if err != nil {
			return nil, err
		}
		return s.resolveSchemaRef(ctx, guard, target, next)
	})
}

// schemaAt descends docSchema from its root along path, resolving one
// accessor step at a time, and returns whatever schema governs that
// location (or nil if nothing does). Combinator branches are tried in
// order and the first that accepts the next step wins; this does not
// merge allOf constraints or attempt oneOf disambiguation the way the
// validator does, since hover/completion want *a* plausible schema to
// describe, not a correctness verdict — documented as a simplification.
func (s *Session) schemaAt(ctx context.Context, docSchema *schema.DocumentSchema, path document.AccessorPath) (schema.ValueSchema, error) {
	if docSchema == nil || docSchema.Root == nil {
		return nil, nil
	}
	guard := schema.NewCycleGuard()
	cur, err := s.resolveSchemaRef(ctx, guard, docSchema.SchemaUri, docSchema.Root)
	if err != nil || cur == nil {
		return cur, err
	}
	for _, acc := range path {
		next, err := s.descendSchema(ctx, guard, docSchema.SchemaUri, cur, acc)
		if err != nil || next == nil {
			return next, err
		}
		cur = next
	}
	return cur, nil
}

func (s *Session) descendSchema(ctx context.Context, guard *schema.CycleGuard, uri schema.SchemaUri, sch schema.ValueSchema, acc document.Accessor) (schema.ValueSchema, error) {
	switch v := sch.(type) {
	case *schema.CombinatorSchema:
		for _, d := range v.Deref {
			branch, err := s.resolveSchemaRef(ctx, guard, uri, d)
			if err != nil || branch == nil {
				continue
			}
			if found, err := s.descendSchema(ctx, guard, uri, branch, acc); found != nil && err == nil {
				return found, nil
			}
		}
		return nil, nil
	case *schema.TableSchema:
		if acc.IsIndex() {
			return nil, nil
		}
		if ref, ok := v.Properties[acc.KeyName()]; ok {
			return s.resolveSchemaRef(ctx, guard, uri, ref)
		}
		for pattern, ref := range v.PatternProperties {
			if re, err := regexp.Compile(pattern); err == nil && re.MatchString(acc.KeyName()) {
				return s.resolveSchemaRef(ctx, guard, uri, ref)
			}
		}
		if v.AdditionalProperties != nil && v.AdditionalProperties.Schema != nil {
			return s.resolveSchemaRef(ctx, guard, uri, v.AdditionalProperties.Schema)
		}
		return nil, nil
	case *schema.ArraySchema:
		if !acc.IsIndex() {
			return nil, nil
		}
		if acc.IndexValue() < len(v.PrefixItems) {
			return s.resolveSchemaRef(ctx, guard, uri, v.PrefixItems[acc.IndexValue()])
		}
		if v.Items != nil {
			return s.resolveSchemaRef(ctx, guard, uri, v.Items)
		}
		return nil, nil
	default:
		return nil, nil
	}
}
