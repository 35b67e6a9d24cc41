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

// Package validator walks a document tree in lockstep with a schema tree
// (spec.md §4.6), accumulating diagnostics rather than aborting on the
// first mismatch (spec.md §7 "every layer accumulates diagnostics").
package validator

import (
	"context"

	"github.com/tombi-toml/tombi/document"
	"github.com/tombi-toml/tombi/schema"
	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/errors"
)

// Options tunes a single validation run. Strict is per-document rather
// than process-wide because it is overridable via a `#:tombi
// schema.strict = false` directive (spec.md §4.6 "Additional properties
// strictness").
type Options struct {
	Strict bool
}

// Validator holds the state of one validation pass: the schema store it
// resolves `$ref`s through and the cycle guard that keeps a recursive
// schema graph from recursing forever (spec.md §4.5 "Cycle prevention").
// A Validator is single-use; build a new one per Validate call so the
// cycle guard starts empty.
type Validator struct {
	ctx   context.Context
	store *schema.Store
	cycle *schema.CycleGuard
	opts  Options
}

// New builds a Validator backed by store.
func New(ctx context.Context, store *schema.Store, opts Options) *Validator {
	return &Validator{ctx: ctx, store: store, cycle: schema.NewCycleGuard(), opts: opts}
}

// Validate walks root against docSchema and returns every diagnostic
// found, in document order (spec.md §5 "diagnostics are emitted in
// document order from the validator's walk"). astRoot, if non-nil, is
// consulted for value-scoped `# tombi:` directives (spec.md §4.7 point 3)
// that suppress or re-sever the matching diagnostics before they are
// returned; pass nil to skip directive resolution entirely.
func (v *Validator) Validate(root *document.Table, docSchema *schema.DocumentSchema, astRoot *ast.Root) errors.List {
	var diags errors.List
	if docSchema == nil || docSchema.Root == nil {
		return diags
	}
	diags.Extend(v.validateRef(root, docSchema.Root, docSchema.SchemaUri, nil))
	diags = applyValueDirectives(diags, astRoot)
	diags.Sort()
	return diags
}

// resolve resolves ref to a ValueSchema, threading the cycle guard
// (spec.md §4.5: "Re-entering the same list short-circuits to 'already
// visiting'"). A short-circuited cycle returns (nil, nil): no schema to
// validate against and no diagnostic, which is what keeps a recursive
// schema from producing duplicate diagnostics (spec.md §8 "`$ref`
// termination").
func (v *Validator) resolve(uri schema.SchemaUri, ref *schema.Referable[schema.ValueSchema]) (schema.ValueSchema, error) {
	if ref.IsResolved() {
		return ref.Resolve(nil)
	}
	already, leave := v.cycle.Enter(ref)
	if already {
		return nil, nil
	}
	defer leave()
	return ref.Resolve(func(r schema.Ref) (schema.ValueSchema, error) {
		target := r.BaseUri
		if target.IsZero() {
			target = uri
		}
		doc, err := v.store.TryGetDocumentSchema(v.ctx, target)
		if err != nil {
			return nil, err
		}
		next, err := schema.NavigatePointer(doc, r.Pointer)
		if err != nil {
			return nil, err
		}
		return v.resolve(target, next)
	})
}

// validateRef resolves ref and validates val against whatever it
// resolves to.
func (v *Validator) validateRef(val document.Value, ref *schema.Referable[schema.ValueSchema], uri schema.SchemaUri, path document.AccessorPath) errors.List {
	if ref == nil {
		return nil
	}
	sch, err := v.resolve(uri, ref)
	if err != nil {
		var diags errors.List
		diags.Add(errors.Newf(val.Range(), CodeSchemaError, "resolving schema: %v", err))
		return diags
	}
	if sch == nil {
		return nil
	}
	return v.validateAgainst(val, sch, uri, path)
}

// validateAgainst dispatches combinators and `not` (spec.md §4.6 point 1)
// before falling through to the per-kind keyword table (point 2).
func (v *Validator) validateAgainst(val document.Value, sch schema.ValueSchema, uri schema.SchemaUri, path document.AccessorPath) errors.List {
	switch s := sch.(type) {
	case *schema.CombinatorSchema:
		return v.validateCombinator(val, s, uri, path)
	case *schema.NotSchema:
		return v.validateNot(val, s, uri, path)
	default:
		diags := v.validateKeywords(val, sch, uri, path)
		if sch.Common().Deprecated {
			diags.Add(errors.Warnf(val.Range(), CodeDeprecated, "value is deprecated"))
		}
		return diags
	}
}

type branchResult struct {
	diags errors.List
	score int
	ok    bool
}

func (v *Validator) validateCombinator(val document.Value, s *schema.CombinatorSchema, uri schema.SchemaUri, path document.AccessorPath) errors.List {
	branches := make([]branchResult, len(s.Deref))
	for i, ref := range s.Deref {
		sub, err := v.resolve(uri, ref)
		var diags errors.List
		if err != nil {
			diags.Add(errors.Newf(val.Range(), CodeSchemaError, "resolving schema: %v", err))
		} else if sub != nil {
			diags = v.validateAgainst(val, sub, uri, path)
		}
		branches[i] = branchResult{diags: diags, score: scoreOf(val, sub), ok: !diags.HasError()}
	}

	switch s.Kind {
	case schema.CombinatorAllOf:
		var out errors.List
		for _, b := range branches {
			out.Extend(b.diags)
		}
		return out

	case schema.CombinatorAnyOf:
		for _, b := range branches {
			if b.ok {
				return nil
			}
		}
		if len(branches) == 0 {
			return nil
		}
		return bestBranch(branches).diags

	case schema.CombinatorOneOf:
		var matched []int
		for i, b := range branches {
			if b.ok {
				matched = append(matched, i)
			}
		}
		switch len(matched) {
		case 1:
			return branches[matched[0]].diags
		case 0:
			var out errors.List
			if len(branches) > 0 {
				out.Extend(bestBranch(branches).diags)
			}
			out.Add(errors.Newf(val.Range(), CodeOneOfNoMatch, "value matches no branch of oneOf"))
			return out
		default:
			var out errors.List
			out.Add(errors.Newf(val.Range(), CodeOneOfMultipleMatch, "value matches %d branches of oneOf", len(matched)))
			return out
		}
	}
	return nil
}

func (v *Validator) validateNot(val document.Value, s *schema.NotSchema, uri schema.SchemaUri, path document.AccessorPath) errors.List {
	sub, err := v.resolve(uri, s.Inner)
	var out errors.List
	if err != nil {
		out.Add(errors.Newf(val.Range(), CodeSchemaError, "resolving schema: %v", err))
		return out
	}
	if sub == nil {
		return out
	}
	diags := v.validateAgainst(val, sub, uri, path)
	if !diags.HasError() {
		out.Add(errors.Newf(val.Range(), CodeNotSchemaMatch, "value must not match schema"))
	}
	return out
}

// scoreOf implements spec.md §4.6's scoring rule: "each successful match
// increments a score (one per matched required key, one per matched
// type)". It drives anyOf/oneOf branch disambiguation.
func scoreOf(val document.Value, sch schema.ValueSchema) int {
	if sch == nil {
		return 0
	}
	score := 0
	if typeMatches(val, sch) {
		score++
	}
	if ts, ok := sch.(*schema.TableSchema); ok {
		if tbl, ok2 := val.(*document.Table); ok2 {
			for _, req := range ts.Required {
				if _, found := tbl.Get(req); found {
					score++
				}
			}
		}
	}
	return score
}

// bestBranch picks the branch with the highest score, ties broken by the
// fewest diagnostics (spec.md §4.6 "Scoring").
func bestBranch(branches []branchResult) branchResult {
	best := branches[0]
	for _, b := range branches[1:] {
		if b.score > best.score || (b.score == best.score && len(b.diags) < len(best.diags)) {
			best = b
		}
	}
	return best
}

func typeMatches(val document.Value, sch schema.ValueSchema) bool {
	switch sch.(type) {
	case *schema.BooleanSchema:
		_, ok := val.(*document.Boolean)
		return ok
	case *schema.NumberSchema:
		switch val.(type) {
		case *document.Integer, *document.Float:
			return true
		}
		return false
	case *schema.StringSchema:
		_, ok := val.(*document.String)
		return ok
	case *schema.DateTimeSchema:
		_, ok := dateTimeText(val)
		return ok
	case *schema.ArraySchema:
		_, ok := val.(*document.Array)
		return ok
	case *schema.TableSchema:
		_, ok := val.(*document.Table)
		return ok
	case *schema.NullSchema:
		return false // TOML has no null literal
	default:
		return true
	}
}
