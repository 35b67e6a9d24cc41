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

package document

import (
	"fmt"

	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/token"
)

// Diagnostic codes produced while lowering the AST into a [Value] tree
// (spec.md §4.4).
const (
	CodeKeyAlreadyDefined  errors.Code = "key-already-defined"
	CodeTableAlreadyOpened errors.Code = "table-already-opened"
	CodeExtendClosedValue  errors.Code = "extend-closed-value"
	CodeArrayOfTableConflict errors.Code = "array-of-table-conflict"
)

func keyAlreadyDefined(key string, existing, redefined token.Range) *errors.Error {
	return &errors.Error{
		Severity: errors.SeverityError,
		Code:     CodeKeyAlreadyDefined,
		Message:  fmt.Sprintf("key %q is already defined at %s", key, existing.Start),
		Range:    redefined,
	}
}

func tableAlreadyOpened(path string, first, second token.Range) *errors.Error {
	return &errors.Error{
		Severity: errors.SeverityError,
		Code:     CodeTableAlreadyOpened,
		Message:  fmt.Sprintf("table %q is already opened by a header at %s", path, first.Start),
		Range:    second,
	}
}

func extendClosedValue(path string, closedAt, attemptedAt token.Range) *errors.Error {
	return &errors.Error{
		Severity: errors.SeverityError,
		Code:     CodeExtendClosedValue,
		Message:  fmt.Sprintf("%q was closed at %s and cannot be extended", path, closedAt.Start),
		Range:    attemptedAt,
	}
}

func arrayOfTableConflict(path string, existing, attempted token.Range) *errors.Error {
	return &errors.Error{
		Severity: errors.SeverityError,
		Code:     CodeArrayOfTableConflict,
		Message:  fmt.Sprintf("%q is not an array of tables (defined at %s)", path, existing.Start),
		Range:    attempted,
	}
}
