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

// Package errors defines the shared diagnostic type used by every layer of
// the Tombi pipeline (lexer, parser, document-tree lowering, schema store,
// validator, comment directives). Every layer accumulates diagnostics rather
// than aborting (spec.md §7); this package is what lets them be merged,
// sorted, and printed uniformly.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tombi-toml/tombi/syntax/token"
)

// Severity is the materialized severity of a diagnostic. "off" suppresses
// emission entirely (spec.md §6.5).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityOff:
		return "off"
	default:
		return "unknown"
	}
}

// Code is a stable diagnostic code string, e.g. "type-mismatch",
// "key-already-defined", "dotted-keys-out-of-order" (spec.md §6.5).
type Code string

// Error is the common diagnostic type produced anywhere in the pipeline.
type Error struct {
	Severity Severity
	Code     Code
	Message  string
	Range    token.Range
	Source   string // optional source file path
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Source != "" {
		fmt.Fprintf(&b, "%s: ", e.Source)
	}
	fmt.Fprintf(&b, "%s: %s [%s]", e.Range, e.Message, e.Code)
	return b.String()
}

// Newf builds an error-severity diagnostic.
func Newf(rng token.Range, code Code, format string, args ...any) *Error {
	return &Error{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...), Range: rng}
}

// Warnf builds a warning-severity diagnostic.
func Warnf(rng token.Range, code Code, format string, args ...any) *Error {
	return &Error{Severity: SeverityWarning, Code: code, Message: fmt.Sprintf(format, args...), Range: rng}
}

// List is an accumulated, sortable collection of diagnostics. Every layer
// described in spec.md §7 returns a List alongside its primary result
// instead of failing outright.
type List []*Error

// Add appends a diagnostic, ignoring nil (so call sites can conditionally
// build one and append unconditionally).
func (l *List) Add(err *Error) {
	if err == nil {
		return
	}
	*l = append(*l, err)
}

// Extend appends every diagnostic in other.
func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

// HasError reports whether any diagnostic in the list has error severity;
// this is how a caller answers "is this document clean?" (spec.md §7).
func (l List) HasError() bool {
	for _, e := range l {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sort orders diagnostics in document order (by range start, then end), the
// order the validator's sequential walk naturally produces (spec.md §5).
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if c := l[i].Range.Start.Compare(l[j].Range.Start); c != 0 {
			return c < 0
		}
		return l[i].Range.End.Compare(l[j].Range.End) < 0
	})
}

func (l List) Error() string {
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}
