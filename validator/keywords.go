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

package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/tombi-toml/tombi/document"
	"github.com/tombi-toml/tombi/schema"
	"github.com/tombi-toml/tombi/syntax/errors"
)

// apdCtx mirrors the precision the teacher repo's adt package configures
// for arbitrary-precision decimal comparisons (cue/internal/core/adt's
// apdCtx), since JSON-Schema numeric keywords must compare TOML integers
// and floats without introducing float64 rounding of their own.
var apdCtx apd.Context

func init() {
	apdCtx = apd.BaseContext
	apdCtx.Precision = 40
}

// validateKeywords enforces spec.md §4.6 point 2's per-kind keyword
// table, once combinators and `not` have already been peeled off by
// validateAgainst.
func (v *Validator) validateKeywords(val document.Value, sch schema.ValueSchema, uri schema.SchemaUri, path document.AccessorPath) errors.List {
	switch s := sch.(type) {
	case *schema.BooleanSchema:
		return v.validateBoolean(val, s)
	case *schema.NumberSchema:
		return v.validateNumber(val, s)
	case *schema.StringSchema:
		return v.validateString(val, s)
	case *schema.DateTimeSchema:
		return v.validateDateTime(val, s)
	case *schema.ArraySchema:
		return v.validateArray(val, s, uri, path)
	case *schema.TableSchema:
		return v.validateTable(val, s, uri, path)
	case *schema.NullSchema:
		var diags errors.List
		diags.Add(typeMismatch(val, "null"))
		return diags
	default:
		return nil
	}
}

func (v *Validator) validateBoolean(val document.Value, s *schema.BooleanSchema) errors.List {
	var diags errors.List
	b, ok := val.(*document.Boolean)
	if !ok {
		diags.Add(typeMismatch(val, "boolean"))
		return diags
	}
	if s.Const != nil && b.Value != *s.Const {
		diags.Add(errors.Newf(b.Range(), CodeConstMismatch, "expected %v, got %v", *s.Const, b.Value))
	}
	if len(s.Enum) > 0 && !boolIn(b.Value, s.Enum) {
		diags.Add(errors.Newf(b.Range(), CodeEnumMismatch, "%v is not one of the allowed values", b.Value))
	}
	return diags
}

func boolIn(v bool, set []bool) bool {
	for _, e := range set {
		if e == v {
			return true
		}
	}
	return false
}

func (v *Validator) validateNumber(val document.Value, s *schema.NumberSchema) errors.List {
	var diags errors.List
	var dec apd.Decimal
	isInt := false
	switch n := val.(type) {
	case *document.Integer:
		dec.SetInt64(n.Value)
		isInt = true
	case *document.Float:
		if _, err := dec.SetFloat64(n.Value); err != nil {
			diags.Add(errors.Newf(val.Range(), CodeTypeMismatch, "invalid number literal"))
			return diags
		}
	default:
		diags.Add(typeMismatch(val, "number"))
		return diags
	}
	if s.IsInteger && !isInt {
		diags.Add(errors.Newf(val.Range(), CodeTypeMismatch, "expected integer, got float"))
	}

	text := numericText(val)
	bound := func(f *float64) (apd.Decimal, bool) {
		if f == nil {
			return apd.Decimal{}, false
		}
		var d apd.Decimal
		if _, err := d.SetFloat64(*f); err != nil {
			return apd.Decimal{}, false
		}
		return d, true
	}

	if d, ok := bound(s.Minimum); ok && dec.Cmp(&d) < 0 {
		diags.Add(errors.Newf(val.Range(), CodeMinimum, "%s is below minimum %v", text, *s.Minimum))
	}
	if d, ok := bound(s.Maximum); ok && dec.Cmp(&d) > 0 {
		diags.Add(errors.Newf(val.Range(), CodeMaximum, "%s is above maximum %v", text, *s.Maximum))
	}
	if d, ok := bound(s.ExclusiveMinimum); ok && dec.Cmp(&d) <= 0 {
		diags.Add(errors.Newf(val.Range(), CodeExclusiveMinimum, "%s is not strictly above exclusive minimum %v", text, *s.ExclusiveMinimum))
	}
	if d, ok := bound(s.ExclusiveMaximum); ok && dec.Cmp(&d) >= 0 {
		diags.Add(errors.Newf(val.Range(), CodeExclusiveMaximum, "%s is not strictly below exclusive maximum %v", text, *s.ExclusiveMaximum))
	}

	if s.MultipleOf != nil && *s.MultipleOf != 0 {
		if mult, ok := bound(s.MultipleOf); ok {
			var rem apd.Decimal
			if _, err := apdCtx.Rem(&rem, &dec, &mult); err == nil && !rem.IsZero() {
				diags.Add(errors.Newf(val.Range(), CodeMultipleOf, "%s is not a multiple of %v", text, *s.MultipleOf))
			}
		}
	}

	if d, ok := bound(s.Const); ok && dec.Cmp(&d) != 0 {
		diags.Add(errors.Newf(val.Range(), CodeConstMismatch, "expected %v, got %s", *s.Const, text))
	}
	if len(s.Enum) > 0 {
		found := false
		for _, e := range s.Enum {
			if d, ok := bound(&e); ok && dec.Cmp(&d) == 0 {
				found = true
				break
			}
		}
		if !found {
			diags.Add(errors.Newf(val.Range(), CodeEnumMismatch, "%s is not one of the allowed values", text))
		}
	}
	return diags
}

func numericText(val document.Value) string {
	switch n := val.(type) {
	case *document.Integer:
		return strconv.FormatInt(n.Value, 10)
	case *document.Float:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	default:
		return ""
	}
}

func (v *Validator) validateString(val document.Value, s *schema.StringSchema) errors.List {
	var diags errors.List
	str, ok := val.(*document.String)
	if !ok {
		diags.Add(typeMismatch(val, "string"))
		return diags
	}
	length := utf8.RuneCountInString(str.Value)
	if s.MinLength != nil && length < *s.MinLength {
		diags.Add(errors.Newf(str.Range(), CodeMinLength, "string has %d characters, fewer than minimum %d", length, *s.MinLength))
	}
	if s.MaxLength != nil && length > *s.MaxLength {
		diags.Add(errors.Newf(str.Range(), CodeMaxLength, "string has %d characters, more than maximum %d", length, *s.MaxLength))
	}
	if s.Pattern != "" {
		if re, err := regexp.Compile(s.Pattern); err == nil && !re.MatchString(str.Value) {
			diags.Add(errors.Newf(str.Range(), CodePattern, "value does not match pattern %q", s.Pattern))
		}
	}
	if s.Format != "" {
		if msg, bad := formatViolation(s.Format, str.Value); bad {
			diags.Add(errors.Newf(str.Range(), CodeFormat, "%s", msg))
		}
	}
	if s.Const != nil && str.Value != *s.Const {
		diags.Add(errors.Newf(str.Range(), CodeConstMismatch, "expected %q, got %q", *s.Const, str.Value))
	}
	if len(s.Enum) > 0 && !stringIn(str.Value, s.Enum) {
		diags.Add(errors.Newf(str.Range(), CodeEnumMismatch, "%q is not one of the allowed values", str.Value))
	}
	return diags
}

func stringIn(v string, set []string) bool {
	for _, e := range set {
		if e == v {
			return true
		}
	}
	return false
}

// formatViolation checks the `x-tombi-string-formats`-eligible built-in
// formats tombi understands out of the box; an unrecognized format name
// is accepted without complaint, matching JSON-Schema's "unknown formats
// are not validated" convention.
func formatViolation(format, value string) (string, bool) {
	switch format {
	case "email":
		if _, err := mail.ParseAddress(value); err != nil {
			return fmt.Sprintf("%q is not a valid email address", value), true
		}
	case "uri":
		if u, err := url.Parse(value); err != nil || !u.IsAbs() {
			return fmt.Sprintf("%q is not a valid absolute URI", value), true
		}
	case "uuid":
		if _, err := uuid.Parse(value); err != nil {
			return fmt.Sprintf("%q is not a valid UUID", value), true
		}
	}
	return "", false
}

func (v *Validator) validateDateTime(val document.Value, s *schema.DateTimeSchema) errors.List {
	var diags errors.List
	text, ok := dateTimeText(val)
	if !ok {
		diags.Add(typeMismatch(val, "date-time"))
		return diags
	}
	if s.Const != nil && text != *s.Const {
		diags.Add(errors.Newf(val.Range(), CodeConstMismatch, "expected %q, got %q", *s.Const, text))
	}
	if len(s.Enum) > 0 && !stringIn(text, s.Enum) {
		diags.Add(errors.Newf(val.Range(), CodeEnumMismatch, "%q is not one of the allowed values", text))
	}
	return diags
}

func dateTimeText(val document.Value) (string, bool) {
	switch d := val.(type) {
	case *document.OffsetDateTime:
		return d.Text, true
	case *document.LocalDateTime:
		return d.Text, true
	case *document.LocalDate:
		return d.Text, true
	case *document.LocalTime:
		return d.Text, true
	default:
		return "", false
	}
}

func (v *Validator) validateArray(val document.Value, s *schema.ArraySchema, uri schema.SchemaUri, path document.AccessorPath) errors.List {
	var diags errors.List
	arr, ok := val.(*document.Array)
	if !ok {
		diags.Add(typeMismatch(val, "array"))
		return diags
	}
	if s.MinItems != nil && len(arr.Items) < *s.MinItems {
		diags.Add(errors.Newf(arr.Range(), CodeMinItems, "array has %d items, fewer than minimum %d", len(arr.Items), *s.MinItems))
	}
	if s.MaxItems != nil && len(arr.Items) > *s.MaxItems {
		diags.Add(errors.Newf(arr.Range(), CodeMaxItems, "array has %d items, more than maximum %d", len(arr.Items), *s.MaxItems))
	}
	if s.UniqueItems {
		seen := make(map[string]bool, len(arr.Items))
		for _, item := range arr.Items {
			key := fingerprint(item)
			if seen[key] {
				diags.Add(errors.Newf(item.Range(), CodeUniqueItems, "array items must be unique"))
				continue
			}
			seen[key] = true
		}
	}
	if s.ValuesOrder != schema.ArrayValuesOrderNone {
		diags.Extend(checkArrayValuesOrder(arr, s.ValuesOrder))
	}
	for i, item := range arr.Items {
		childPath := path.Join(document.Index(i))
		if i < len(s.PrefixItems) {
			diags.Extend(v.validateRef(item, s.PrefixItems[i], uri, childPath))
			continue
		}
		if s.Items != nil {
			diags.Extend(v.validateRef(item, s.Items, uri, childPath))
		}
	}
	return diags
}

// checkArrayValuesOrder reports a warning for each adjacent pair of
// orderable items (string, integer, or float; spec.md §4.6's array row
// "values-order") that violates order. Items whose types aren't mutually
// orderable (differing kinds, or tables/arrays/booleans/date-times) are
// skipped rather than flagged, since "order" has no defined meaning for
// them.
func checkArrayValuesOrder(arr *document.Array, order schema.ArrayValuesOrder) errors.List {
	var diags errors.List
	for i := 1; i < len(arr.Items); i++ {
		cmp, ok := compareOrderable(arr.Items[i-1], arr.Items[i])
		if !ok {
			continue
		}
		violated := (order == schema.ArrayValuesOrderAscending && cmp > 0) ||
			(order == schema.ArrayValuesOrderDescending && cmp < 0)
		if violated {
			diags.Add(errors.Warnf(arr.Items[i].Range(), CodeValuesOrder, "array values are not in %s order", order))
		}
	}
	return diags
}

// checkTableKeysOrder reports a warning if tbl's entries, in their
// as-written document order, violate order (spec.md §4.6's table row
// "table-keys-order"). TableKeysOrderSchema is not checked here: Draft-7
// properties are parsed into a map (schema/parse.go), which does not
// retain the original JSON key order, so there is nothing to compare
// against.
func checkTableKeysOrder(tbl *document.Table, order schema.TableKeysOrder) errors.List {
	var diags errors.List
	if order != schema.TableKeysOrderAscending && order != schema.TableKeysOrderDescending {
		return diags
	}
	for i := 1; i < len(tbl.Entries); i++ {
		prev, cur := tbl.Entries[i-1].Key, tbl.Entries[i].Key
		violated := (order == schema.TableKeysOrderAscending && prev > cur) ||
			(order == schema.TableKeysOrderDescending && prev < cur)
		if violated {
			diags.Add(errors.Warnf(tbl.Entries[i].Value.Range(), CodeKeysOrder, "table keys are not in %s order", order))
		}
	}
	return diags
}

// compareOrderable returns (-1/0/1, true) if a and b are both strings,
// both integers, or both floats (an int/float pair is also comparable,
// widening the integer), or (0, false) if they aren't mutually orderable.
func compareOrderable(a, b document.Value) (int, bool) {
	switch av := a.(type) {
	case *document.String:
		bv, ok := b.(*document.String)
		if !ok {
			return 0, false
		}
		return strings.Compare(av.Value, bv.Value), true
	case *document.Integer:
		switch bv := b.(type) {
		case *document.Integer:
			return compareFloat(float64(av.Value), float64(bv.Value)), true
		case *document.Float:
			return compareFloat(float64(av.Value), bv.Value), true
		default:
			return 0, false
		}
	case *document.Float:
		switch bv := b.(type) {
		case *document.Integer:
			return compareFloat(av.Value, float64(bv.Value)), true
		case *document.Float:
			return compareFloat(av.Value, bv.Value), true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func fingerprint(val document.Value) string {
	switch x := val.(type) {
	case *document.Boolean:
		return fmt.Sprintf("b:%v", x.Value)
	case *document.Integer:
		return fmt.Sprintf("i:%d", x.Value)
	case *document.Float:
		return fmt.Sprintf("f:%v", x.Value)
	case *document.String:
		return "s:" + x.Value
	case *document.OffsetDateTime:
		return "odt:" + x.Text
	case *document.LocalDateTime:
		return "ldt:" + x.Text
	case *document.LocalDate:
		return "ld:" + x.Text
	case *document.LocalTime:
		return "lt:" + x.Text
	case *document.Array:
		parts := make([]string, len(x.Items))
		for i, it := range x.Items {
			parts[i] = fingerprint(it)
		}
		return "a:[" + strings.Join(parts, ",") + "]"
	case *document.Table:
		parts := make([]string, len(x.Entries))
		for i, e := range x.Entries {
			parts[i] = e.Key + "=" + fingerprint(e.Value)
		}
		return "t:{" + strings.Join(parts, ",") + "}"
	default:
		return fmt.Sprintf("%T", val)
	}
}

func (v *Validator) validateTable(val document.Value, s *schema.TableSchema, uri schema.SchemaUri, path document.AccessorPath) errors.List {
	var diags errors.List
	tbl, ok := val.(*document.Table)
	if !ok {
		diags.Add(typeMismatch(val, "table"))
		return diags
	}

	for _, req := range s.Required {
		if _, found := tbl.Get(req); !found {
			diags.Add(errors.Newf(tbl.Range(), CodeRequired, "missing required key %q", req))
		}
	}
	if s.MinProperties != nil && len(tbl.Entries) < *s.MinProperties {
		diags.Add(errors.Newf(tbl.Range(), CodeMinProperties, "table has %d keys, fewer than minimum %d", len(tbl.Entries), *s.MinProperties))
	}
	if s.MaxProperties != nil && len(tbl.Entries) > *s.MaxProperties {
		diags.Add(errors.Newf(tbl.Range(), CodeMaxProperties, "table has %d keys, more than maximum %d", len(tbl.Entries), *s.MaxProperties))
	}
	if s.KeysOrder != schema.TableKeysOrderNone {
		diags.Extend(checkTableKeysOrder(tbl, s.KeysOrder))
	}

	for _, entry := range tbl.Entries {
		childPath := path.Join(document.Key(entry.Key))

		if s.PropertyNames != nil {
			keyVal := &document.String{Value: entry.Key, ValueRange: entry.KeyRange}
			diags.Extend(v.validateRef(keyVal, s.PropertyNames, uri, childPath))
		}

		if prop, ok := s.Properties[entry.Key]; ok {
			diags.Extend(v.validateRef(entry.Value, prop, uri, childPath))
			continue
		}

		matched := false
		for pattern, propRef := range s.PatternProperties {
			re, err := regexp.Compile(pattern)
			if err != nil {
				continue
			}
			if re.MatchString(entry.Key) {
				matched = true
				diags.Extend(v.validateRef(entry.Value, propRef, uri, childPath))
			}
		}
		if matched {
			continue
		}

		switch {
		case s.AdditionalProperties == nil:
			diag := errors.Warnf(entry.Value.Range(), CodeStrictAdditionalProperties, "unknown key %q", entry.Key)
			if v.opts.Strict {
				diag.Severity = errors.SeverityError
			}
			diags.Add(diag)
		case s.AdditionalProperties.Allowed != nil && !*s.AdditionalProperties.Allowed:
			diags.Add(errors.Newf(entry.Value.Range(), CodeAdditionalProperties, "key %q is not allowed", entry.Key))
		case s.AdditionalProperties.Schema != nil:
			diags.Extend(v.validateRef(entry.Value, s.AdditionalProperties.Schema, uri, childPath))
		}
	}
	return diags
}

func typeMismatch(val document.Value, expected string) *errors.Error {
	return errors.Newf(val.Range(), CodeTypeMismatch, "expected %s, got %s", expected, kindName(val))
}

func kindName(val document.Value) string {
	switch val.(type) {
	case *document.Boolean:
		return "boolean"
	case *document.Integer, *document.Float:
		return "number"
	case *document.String:
		return "string"
	case *document.OffsetDateTime, *document.LocalDateTime, *document.LocalDate, *document.LocalTime:
		return "date-time"
	case *document.Array:
		return "array"
	case *document.Table:
		return "table"
	case *document.Incomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}
