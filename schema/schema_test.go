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

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestParseDocumentSchemaClassifiesKinds(t *testing.T) {
	raw := []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer", "minimum": 0},
			"tags": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["name"]
	}`)
	doc, err := ParseDocumentSchema(Uri{}, raw, false)
	qt.Assert(t, qt.IsNil(err))

	root, rerr := doc.Root.Resolve(nil)
	qt.Assert(t, qt.IsNil(rerr))
	tbl, ok := root.(*TableSchema)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(tbl.Required, []string{"name"}))

	name, _ := tbl.Properties["name"].Resolve(nil)
	_, ok = name.(*StringSchema)
	qt.Assert(t, qt.IsTrue(ok))

	age, _ := tbl.Properties["age"].Resolve(nil)
	ageSchema, ok := age.(*NumberSchema)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(ageSchema.IsInteger))
	qt.Assert(t, qt.Equals(*ageSchema.Minimum, 0.0))
}

func TestParseDocumentSchemaRef(t *testing.T) {
	raw := []byte(`{"properties": {"x": {"$ref": "#/definitions/foo"}}, "definitions": {"foo": {"type": "boolean"}}}`)
	doc, err := ParseDocumentSchema(Uri{}, raw, false)
	qt.Assert(t, qt.IsNil(err))

	root, _ := doc.Root.Resolve(nil)
	tbl := root.(*TableSchema)
	ref, isRef := tbl.Properties["x"].Ref()
	qt.Assert(t, qt.IsTrue(isRef))
	qt.Assert(t, qt.Equals(ref.Pointer, "/definitions/foo"))
	qt.Assert(t, qt.IsFalse(tbl.Properties["x"].IsResolved()))
}

func TestParseDocumentSchemaCombinator(t *testing.T) {
	raw := []byte(`{"anyOf": [{"type": "string"}, {"type": "boolean"}]}`)
	doc, err := ParseDocumentSchema(Uri{}, raw, false)
	qt.Assert(t, qt.IsNil(err))

	root, _ := doc.Root.Resolve(nil)
	comb, ok := root.(*CombinatorSchema)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(comb.Kind, CombinatorAnyOf))
	qt.Assert(t, qt.HasLen(comb.Deref, 2))
}

func TestReferableResolveCachesValue(t *testing.T) {
	calls := 0
	r := NewRef[ValueSchema](Ref{Pointer: "/definitions/x"})
	resolve := func(ref Ref) (ValueSchema, error) {
		calls++
		return &BooleanSchema{}, nil
	}
	v1, err := r.Resolve(resolve)
	qt.Assert(t, qt.IsNil(err))
	v2, err := r.Resolve(resolve)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(calls, 1))
	qt.Assert(t, qt.IsTrue(v1 == v2))
	qt.Assert(t, qt.IsTrue(r.IsResolved()))
}

func TestNavigatePointerIntoProperty(t *testing.T) {
	raw := []byte(`{"properties": {"foo": {"type": "string"}}}`)
	doc, err := ParseDocumentSchema(Uri{}, raw, false)
	qt.Assert(t, qt.IsNil(err))

	r, err := NavigatePointer(doc, "#/properties/foo")
	qt.Assert(t, qt.IsNil(err))
	v, _ := r.Resolve(nil)
	_, ok := v.(*StringSchema)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestNavigatePointerDefinitionsShorthand(t *testing.T) {
	raw := []byte(`{"definitions": {"foo": {"type": "boolean"}}}`)
	doc, err := ParseDocumentSchema(Uri{}, raw, false)
	qt.Assert(t, qt.IsNil(err))

	r, err := NavigatePointer(doc, "#/definitions/foo")
	qt.Assert(t, qt.IsNil(err))
	v, _ := r.Resolve(nil)
	_, ok := v.(*BooleanSchema)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestCycleGuardDetectsReentry(t *testing.T) {
	g := NewCycleGuard()
	key := "node-a"

	already, leave := g.Enter(key)
	qt.Assert(t, qt.IsFalse(already))

	reentrant, _ := g.Enter(key)
	qt.Assert(t, qt.IsTrue(reentrant))

	leave()
	again, _ := g.Enter(key)
	qt.Assert(t, qt.IsFalse(again))
}

func TestResolveTomlVersionPrecedence(t *testing.T) {
	v, src := ResolveTomlVersion("1.1.0", &DocumentSchema{TomlVersion: "1.0.0"}, "1.0.0")
	qt.Assert(t, qt.Equals(v, TomlVersionV1_1_0))
	qt.Assert(t, qt.Equals(src, VersionSourceDirective))

	v, src = ResolveTomlVersion("", &DocumentSchema{TomlVersion: "1.1.0"}, "1.0.0")
	qt.Assert(t, qt.Equals(v, TomlVersionV1_1_0))
	qt.Assert(t, qt.Equals(src, VersionSourceSchema))

	v, src = ResolveTomlVersion("", nil, "1.1.0")
	qt.Assert(t, qt.Equals(v, TomlVersionV1_1_0))
	qt.Assert(t, qt.Equals(src, VersionSourceConfig))

	v, src = ResolveTomlVersion("", nil, "")
	qt.Assert(t, qt.Equals(v, TomlVersionV1_0_0))
	qt.Assert(t, qt.Equals(src, VersionSourceDefault))
}

func TestParseUriCanonicalizesPath(t *testing.T) {
	u1, err := ParseUri("./schema.json")
	qt.Assert(t, qt.IsNil(err))
	u2, err := ParseUri("schema.json")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(u1.String(), u2.String()))
	qt.Assert(t, qt.Equals(u1.Scheme(), "file"))
}

func TestParseUriKeepsHttp(t *testing.T) {
	u, err := ParseUri("https://example.com/schema.json")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(u.String(), "https://example.com/schema.json"))
	qt.Assert(t, qt.Equals(u.Scheme(), "https"))
}

func TestParseUriRejectsEmpty(t *testing.T) {
	_, err := ParseUri("")
	qt.Assert(t, qt.IsTrue(err != nil))
	qt.Assert(t, qt.ErrorMatches(err, ".*empty schema/catalog uri.*"))
}

func TestCatalogMatchFirstWins(t *testing.T) {
	a, _ := ParseUri("file:///a.json")
	b, _ := ParseUri("file:///b.json")
	c := &Catalog{Entries: []CatalogEntry{
		{Url: a, FileMatch: []string{"*.toml"}},
		{Url: b, FileMatch: []string{"*.toml"}},
	}}
	entry, ok := c.Match("Cargo.toml")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(entry.Url.String(), a.String()))
}

func TestCatalogMatchNoneFound(t *testing.T) {
	c := &Catalog{}
	_, ok := c.Match("Cargo.toml")
	qt.Assert(t, qt.IsFalse(ok))
}
