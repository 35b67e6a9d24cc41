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

package validator_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-quicktest/qt"

	"github.com/tombi-toml/tombi/document"
	"github.com/tombi-toml/tombi/schema"
	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/parser"
	"github.com/tombi-toml/tombi/validator"
)

func lower(t *testing.T, src string) (*document.Table, *ast.Root) {
	t.Helper()
	root, idx, diags := parser.Parse([]byte(src))
	qt.Assert(t, qt.HasLen(diags, 0))
	tbl, lowerDiags := document.Lower(root, idx)
	qt.Assert(t, qt.HasLen(lowerDiags, 0))
	return tbl, root
}

func schemaFrom(t *testing.T, raw string) *schema.DocumentSchema {
	t.Helper()
	doc, err := schema.ParseDocumentSchema(schema.Uri{}, []byte(raw), false)
	qt.Assert(t, qt.IsNil(err))
	return doc
}

func newValidator(t *testing.T) *validator.Validator {
	t.Helper()
	store := schema.NewStore(t.TempDir(), time.Minute)
	return validator.New(context.Background(), store, validator.Options{Strict: true})
}

func TestValidateAcceptsMatchingDocument(t *testing.T) {
	tbl, root := lower(t, "name = \"tombi\"\nversion = 1\n")
	doc := schemaFrom(t, `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"version": {"type": "integer"}
		},
		"required": ["name"]
	}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.HasLen(diags, 0))
}

func TestValidateReportsTypeMismatch(t *testing.T) {
	tbl, root := lower(t, "name = 1\n")
	doc := schemaFrom(t, `{"type": "object", "properties": {"name": {"type": "string"}}}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.IsTrue(diags.HasError()))
	qt.Assert(t, qt.Equals(diags[0].Code, validator.CodeTypeMismatch))
}

func TestValidateReportsMissingRequiredKey(t *testing.T) {
	tbl, root := lower(t, "version = 1\n")
	doc := schemaFrom(t, `{"type": "object", "properties": {"name": {"type": "string"}}, "required": ["name"]}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.IsTrue(diags.HasError()))
	found := false
	for _, d := range diags {
		if d.Code == validator.CodeRequired {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}

func TestValidateNumberBounds(t *testing.T) {
	tbl, root := lower(t, "age = -1\n")
	doc := schemaFrom(t, `{"type": "object", "properties": {"age": {"type": "integer", "minimum": 0}}}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.IsTrue(diags.HasError()))
	qt.Assert(t, qt.Equals(diags[0].Code, validator.CodeMinimum))
}

func TestValidateAnyOfAcceptsOneMatchingBranch(t *testing.T) {
	tbl, root := lower(t, "v = true\n")
	doc := schemaFrom(t, `{
		"type": "object",
		"properties": {
			"v": {"anyOf": [{"type": "string"}, {"type": "boolean"}]}
		}
	}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.HasLen(diags, 0))
}

func TestValidateOneOfRejectsMultipleMatches(t *testing.T) {
	tbl, root := lower(t, "v = 1\n")
	doc := schemaFrom(t, `{
		"type": "object",
		"properties": {
			"v": {"oneOf": [{"type": "integer"}, {"type": "number"}]}
		}
	}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.IsTrue(diags.HasError()))
	qt.Assert(t, qt.Equals(diags[0].Code, validator.CodeOneOfMultipleMatch))
}

func TestValidateStrictAdditionalPropertiesRejected(t *testing.T) {
	tbl, root := lower(t, "extra = 1\n")
	doc := schemaFrom(t, `{"type": "object", "properties": {}, "additionalProperties": false}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.IsTrue(diags.HasError()))
}

func TestValidateDeprecatedEmitsWarning(t *testing.T) {
	tbl, root := lower(t, "old = 1\n")
	doc := schemaFrom(t, `{"type": "object", "properties": {"old": {"type": "integer", "deprecated": true}}}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.IsFalse(diags.HasError()))
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, validator.CodeDeprecated))
}

func TestValidateArrayValuesOrderWarnsOnViolation(t *testing.T) {
	tbl, root := lower(t, "v = [3, 1, 2]\n")
	doc := schemaFrom(t, `{
		"type": "object",
		"properties": {
			"v": {"type": "array", "items": {"type": "integer"}, "x-tombi-array-values-order": "ascending"}
		}
	}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.IsFalse(diags.HasError()))
	found := false
	for _, d := range diags {
		if d.Code == validator.CodeValuesOrder {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}

func TestValidateArrayValuesOrderAcceptsSortedArray(t *testing.T) {
	tbl, root := lower(t, "v = [1, 2, 3]\n")
	doc := schemaFrom(t, `{
		"type": "object",
		"properties": {
			"v": {"type": "array", "items": {"type": "integer"}, "x-tombi-array-values-order": "ascending"}
		}
	}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	for _, d := range diags {
		qt.Assert(t, qt.IsTrue(d.Code != validator.CodeValuesOrder))
	}
}

func TestValidateValueDirectiveDisablesMatchingRule(t *testing.T) {
	tbl, root := lower(t, "name = 1 # tombi: lint.rules.type-mismatch.disabled = true\n")
	doc := schemaFrom(t, `{"type": "object", "properties": {"name": {"type": "string"}}}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	for _, d := range diags {
		qt.Assert(t, qt.IsTrue(d.Code != validator.CodeTypeMismatch))
	}
}

func TestValidateValueDirectiveOverridesSeverity(t *testing.T) {
	tbl, root := lower(t, "name = 1 # tombi: lint.rules.type-mismatch.severity = \"warning\"\n")
	doc := schemaFrom(t, `{"type": "object", "properties": {"name": {"type": "string"}}}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, validator.CodeTypeMismatch))
	qt.Assert(t, qt.IsFalse(diags.HasError()))
}

func TestValidateValueDirectiveDoesNotAffectOtherValues(t *testing.T) {
	tbl, root := lower(t, "name = 1 # tombi: lint.rules.type-mismatch.disabled = true\nother = 1\n")
	doc := schemaFrom(t, `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"other": {"type": "string"}
		}
	}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, validator.CodeTypeMismatch))
}

func TestValidateTableKeysOrderWarnsOnViolation(t *testing.T) {
	tbl, root := lower(t, "b = 1\na = 2\n")
	doc := schemaFrom(t, `{"type": "object", "additionalProperties": true, "x-tombi-table-keys-order": "ascending"}`)
	diags := newValidator(t).Validate(tbl, doc, root)
	qt.Assert(t, qt.IsFalse(diags.HasError()))
	found := false
	for _, d := range diags {
		if d.Code == validator.CodeKeysOrder {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}
