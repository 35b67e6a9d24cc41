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

// TableKeysOrder is the tombi-specific `x-tombi-table-keys-order` keyword
// (spec.md §6.3): a hint the formatter uses to reorder a table's keys.
type TableKeysOrder string

const (
	TableKeysOrderNone       TableKeysOrder = ""
	TableKeysOrderAscending  TableKeysOrder = "ascending"
	TableKeysOrderDescending TableKeysOrder = "descending"
	TableKeysOrderSchema     TableKeysOrder = "schema"
)

// ArrayValuesOrder is the tombi-specific `x-tombi-array-values-order`
// keyword (original_source supplement: `tombi-validator`'s array-ordering
// rule, absent from Draft 7 proper).
type ArrayValuesOrder string

const (
	ArrayValuesOrderNone       ArrayValuesOrder = ""
	ArrayValuesOrderAscending  ArrayValuesOrder = "ascending"
	ArrayValuesOrderDescending ArrayValuesOrder = "descending"
)

// Common holds the keywords valid on every schema kind (spec.md §4.6's
// "any" row): type hints, combinators, and documentation.
type Common struct {
	Title         string
	Description   string
	Default       any
	Deprecated    bool
	TomlVersion   string // x-tombi-toml-version
	StringFormats []string
}

// ValueSchema is the sum type of everything a JSON-Schema node can mean
// once classified by kind (spec.md §3 "Schema entities"). Each concrete
// type also implements schemaNode() to close the set to this package,
// mirroring the unexported-marker-method convention the lexer/parser/AST
// layer inherited from cue/internal/core/adt.Node.
type ValueSchema interface {
	Common() *Common
	schemaNode()
}

type BooleanSchema struct {
	common Common
	Const  *bool
	Enum   []bool
}

func (s *BooleanSchema) schemaNode()     {}
func (s *BooleanSchema) Common() *Common { return &s.common }

type NumberSchema struct {
	common           Common
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64
	Const            *float64
	Enum             []float64
	IsInteger        bool
}

func (s *NumberSchema) schemaNode()     {}
func (s *NumberSchema) Common() *Common { return &s.common }

type StringSchema struct {
	common    Common
	MinLength *int
	MaxLength *int
	Pattern   string
	Format    string
	Const     *string
	Enum      []string
}

func (s *StringSchema) schemaNode()     {}
func (s *StringSchema) Common() *Common { return &s.common }

// DateTimeSchema covers the four date-time kinds, which share the same
// keyword set (spec.md §4.6: "date-time variants | enum, const").
type DateTimeSchema struct {
	common Common
	Const  *string
	Enum   []string
}

func (s *DateTimeSchema) schemaNode()     {}
func (s *DateTimeSchema) Common() *Common { return &s.common }

type ArraySchema struct {
	common      Common
	MinItems    *int
	MaxItems    *int
	UniqueItems bool
	Items       *Referable[ValueSchema]
	PrefixItems []*Referable[ValueSchema]
	ValuesOrder ArrayValuesOrder
}

func (s *ArraySchema) schemaNode()     {}
func (s *ArraySchema) Common() *Common { return &s.common }

type TableSchema struct {
	common               Common
	Properties           map[string]*Referable[ValueSchema]
	PatternProperties    map[string]*Referable[ValueSchema]
	AdditionalProperties *AdditionalProperties
	PropertyNames        *Referable[ValueSchema]
	Required             []string
	MinProperties        *int
	MaxProperties        *int
	KeysOrder            TableKeysOrder
}

func (s *TableSchema) schemaNode()     {}
func (s *TableSchema) Common() *Common { return &s.common }

// AdditionalProperties is either a bool (allow/forbid) or a schema every
// unlisted property must satisfy (spec.md §4.6).
type AdditionalProperties struct {
	Allowed *bool
	Schema  *Referable[ValueSchema]
}

type CombinatorKind int

const (
	CombinatorAllOf CombinatorKind = iota
	CombinatorAnyOf
	CombinatorOneOf
)

type CombinatorSchema struct {
	common Common
	Kind   CombinatorKind
	Deref  []*Referable[ValueSchema]
}

func (s *CombinatorSchema) schemaNode()     {}
func (s *CombinatorSchema) Common() *Common { return &s.common }

type NotSchema struct {
	common Common
	Inner  *Referable[ValueSchema]
}

func (s *NotSchema) schemaNode()     {}
func (s *NotSchema) Common() *Common { return &s.common }

type NullSchema struct {
	common Common
}

func (s *NullSchema) schemaNode()     {}
func (s *NullSchema) Common() *Common { return &s.common }

// Ref is an unresolved `$ref`: a base-uri override (empty for a
// same-document pointer) plus a JSON-pointer path.
type Ref struct {
	BaseUri SchemaUri
	Pointer string
}

// Referable is either a resolved schema or an unresolved `$ref`
// (spec.md §3 "Referable<T>"). Resolution is lazy and serialized by mu so
// concurrent validators resolving the same node block on the first
// resolver rather than racing (spec.md §4.5 "Concurrent resolves of the
// same node are serialized by the node's lock").
type Referable[T any] struct {
	mu       sync.RWMutex
	resolved bool
	value    T
	ref      *Ref
}

// NewResolved wraps an already-known value.
func NewResolved[T any](v T) *Referable[T] {
	return &Referable[T]{resolved: true, value: v}
}

// NewRef wraps an unresolved `$ref`.
func NewRef[T any](ref Ref) *Referable[T] {
	return &Referable[T]{ref: &ref}
}

// IsResolved reports whether the value has already been resolved, without
// triggering resolution.
func (r *Referable[T]) IsResolved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved
}

// Ref returns the pending reference, if any.
func (r *Referable[T]) Ref() (Ref, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.resolved {
		return Ref{}, false
	}
	return *r.ref, true
}

// Resolve returns the resolved value, calling resolve to compute and
// cache it on the first call. Subsequent calls (concurrent or not) return
// the cached value without re-invoking resolve (spec.md §4.5 step (d):
// "stores the resolved CurrentSchema in place").
func (r *Referable[T]) Resolve(resolve func(Ref) (T, error)) (T, error) {
	r.mu.RLock()
	if r.resolved {
		v := r.value
		r.mu.RUnlock()
		return v, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return r.value, nil
	}
	v, err := resolve(*r.ref)
	if err != nil {
		var zero T
		return zero, err
	}
	r.value = v
	r.resolved = true
	r.ref = nil
	return v, nil
}
