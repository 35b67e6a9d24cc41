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

// DocumentSchema is a fully parsed JSON-Schema document (spec.md §3).
// Definitions is keyed by the bare name used in `#/definitions/<name>` or
// `#/$defs/<name>` shorthand pointers.
type DocumentSchema struct {
	SchemaUri   SchemaUri
	SchemaID    string
	TomlVersion string
	Root        *Referable[ValueSchema]
	Definitions map[string]*Referable[ValueSchema]
}

// CurrentSchema is the traversal context the validator threads through a
// recursive walk: which schema document is in scope, which node within
// it, and the definitions available for `$ref` resolution (spec.md §3).
// It is cheap to copy — every field is a pointer or a small value.
type CurrentSchema struct {
	SchemaUri   SchemaUri
	Schema      ValueSchema
	Definitions map[string]*Referable[ValueSchema]
}
