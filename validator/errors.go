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

import "github.com/tombi-toml/tombi/syntax/errors"

// Diagnostic codes produced while validating a document tree against a
// schema (spec.md §4.6, §6.5 stable-code examples).
const (
	CodeTypeMismatch               errors.Code = "type-mismatch"
	CodeEnumMismatch               errors.Code = "enum-mismatch"
	CodeConstMismatch              errors.Code = "const-mismatch"
	CodeMinimum                    errors.Code = "minimum"
	CodeMaximum                    errors.Code = "maximum"
	CodeExclusiveMinimum           errors.Code = "exclusive-minimum"
	CodeExclusiveMaximum           errors.Code = "exclusive-maximum"
	CodeMultipleOf                 errors.Code = "multiple-of"
	CodeMinLength                  errors.Code = "min-length"
	CodeMaxLength                  errors.Code = "max-length"
	CodePattern                    errors.Code = "pattern-mismatch"
	CodeFormat                     errors.Code = "format-mismatch"
	CodeMinItems                   errors.Code = "min-items"
	CodeMaxItems                   errors.Code = "max-items"
	CodeUniqueItems                errors.Code = "unique-items"
	CodeRequired                   errors.Code = "required-key-missing"
	CodeMinProperties              errors.Code = "min-properties"
	CodeMaxProperties              errors.Code = "max-properties"
	CodeStrictAdditionalProperties errors.Code = "strict-additional-properties"
	CodeAdditionalProperties       errors.Code = "additional-properties"
	CodeOneOfNoMatch               errors.Code = "one-of-no-match"
	CodeOneOfMultipleMatch         errors.Code = "one-of-multiple-match"
	CodeNotSchemaMatch             errors.Code = "not-schema-match"
	CodeDeprecated                 errors.Code = "deprecated"
	CodeSchemaError                errors.Code = "schema-error"
	CodeValuesOrder                errors.Code = "values-order"
	CodeKeysOrder                  errors.Code = "keys-order"
)

// defaultSeverity is the built-in severity for each rule code absent a
// `# tombi: lint.rules.<code>.severity` override (SPEC_FULL's per-rule
// severity default table): error for type/shape violations a document
// cannot satisfy the schema without fixing, warning for advisory checks.
// CodeSchemaError is deliberately absent — it reports a broken schema, not
// a document-lint rule, and is never directive-overridable.
var defaultSeverity = map[errors.Code]errors.Severity{
	CodeTypeMismatch:               errors.SeverityError,
	CodeEnumMismatch:               errors.SeverityError,
	CodeConstMismatch:              errors.SeverityError,
	CodeMinimum:                    errors.SeverityError,
	CodeMaximum:                    errors.SeverityError,
	CodeExclusiveMinimum:           errors.SeverityError,
	CodeExclusiveMaximum:           errors.SeverityError,
	CodeMultipleOf:                 errors.SeverityError,
	CodeMinLength:                  errors.SeverityError,
	CodeMaxLength:                  errors.SeverityError,
	CodePattern:                    errors.SeverityError,
	CodeFormat:                     errors.SeverityError,
	CodeMinItems:                   errors.SeverityError,
	CodeMaxItems:                   errors.SeverityError,
	CodeUniqueItems:                errors.SeverityError,
	CodeRequired:                   errors.SeverityError,
	CodeMinProperties:              errors.SeverityError,
	CodeMaxProperties:              errors.SeverityError,
	CodeStrictAdditionalProperties: errors.SeverityWarning,
	CodeAdditionalProperties:       errors.SeverityError,
	CodeOneOfNoMatch:               errors.SeverityError,
	CodeOneOfMultipleMatch:         errors.SeverityError,
	CodeNotSchemaMatch:             errors.SeverityError,
	CodeDeprecated:                 errors.SeverityWarning,
	CodeValuesOrder:                errors.SeverityWarning,
	CodeKeysOrder:                  errors.SeverityWarning,
}
