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

package directive

import (
	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/token"
)

// Scoped pairs a parsed value-scoped directive with the range of the node it
// is attached to (a KeyValue, a Table/ArrayOfTable header, or a value nested
// inside an Array/InlineTable) — not the comment's own range, which Value.Range
// already carries. This is the range a consumer checks containment against
// (spec.md §8: "diag.range ⊆ V.range").
type Scoped struct {
	Scope token.Range
	*Value
}

// CollectValues walks every value-bearing node under root looking for an
// attached `# tombi:` directive (spec.md §4.7 point 3: "attached as a
// leading or trailing comment of a KeyValue, Table, Array, or similar"),
// returning each one found paired with the scope it governs.
func CollectValues(root *ast.Root) ([]Scoped, errors.List) {
	var out []Scoped
	var diags errors.List
	for _, item := range root.Items() {
		switch item.ItemKind {
		case ast.RootItemKeyValueGroup:
			for _, kv := range item.KeyValueGroup().KeyValues() {
				collectKeyValue(kv, &out, &diags)
			}
		case ast.RootItemTable:
			collectNode(item.Table().Node, item.Table().Range(), &out, &diags)
		case ast.RootItemArrayOfTable:
			collectNode(item.ArrayOfTable().Node, item.ArrayOfTable().Range(), &out, &diags)
		}
	}
	return out, diags
}

func collectKeyValue(kv *ast.KeyValue, out *[]Scoped, diags *errors.List) {
	collectNode(kv.Node, kv.Range(), out, diags)
	if val := kv.Value(); val != nil {
		collectValue(val, out, diags)
	}
}

func collectValue(val *ast.Value, out *[]Scoped, diags *errors.List) {
	collectNode(val.Node, val.Range(), out, diags)
	if arr := val.Array(); arr != nil {
		for _, elem := range arr.Values() {
			collectValue(elem, out, diags)
		}
	}
	if it := val.InlineTable(); it != nil {
		for _, kv := range it.KeyValues() {
			collectKeyValue(kv, out, diags)
		}
	}
}

func collectNode(n ast.Node, scope token.Range, out *[]Scoped, diags *errors.List) {
	v, d := FindValue(n)
	diags.Extend(d)
	if v != nil {
		*out = append(*out, Scoped{Scope: scope, Value: v})
	}
}
