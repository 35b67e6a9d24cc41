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
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseDocumentSchema decodes raw JSON-Schema text into a [DocumentSchema]
// (spec.md §4.5 "Parse"). strict is passed down through every nested
// schema node, but no step reads it: an unrecognized keyword is ignored
// whether strict is set or not.
func ParseDocumentSchema(uri SchemaUri, raw []byte, strict bool) (*DocumentSchema, error) {
	var root map[string]any
	if err := jsonAPI.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", uri, err)
	}

	definitions := map[string]*Referable[ValueSchema]{}
	for _, key := range []string{"definitions", "$defs"} {
		if raw, ok := root[key].(map[string]any); ok {
			for name, v := range raw {
				definitions[name] = parseNode(v, strict)
			}
		}
	}

	var schemaID string
	if id, ok := root["$id"].(string); ok {
		schemaID = id
	}
	var tomlVersion string
	if v, ok := root["x-tombi-toml-version"].(string); ok {
		tomlVersion = v
	}

	doc := &DocumentSchema{
		SchemaUri:   uri,
		SchemaID:    schemaID,
		TomlVersion: tomlVersion,
		Root:        parseNode(root, strict),
		Definitions: definitions,
	}
	return doc, nil
}

// parseNode classifies a decoded JSON value as a ValueSchema, wrapped in a
// Referable that may hold an unresolved `$ref` instead.
func parseNode(v any, strict bool) *Referable[ValueSchema] {
	m, ok := v.(map[string]any)
	if !ok {
		return NewResolved[ValueSchema](&NullSchema{})
	}
	if ref, ok := m["$ref"].(string); ok {
		baseUri, pointer := splitRef(ref)
		return NewRef[ValueSchema](Ref{BaseUri: baseUri, Pointer: pointer})
	}
	return NewResolved(classifyNode(m, strict))
}

// splitRef parses a `$ref` value into a base-uri override (empty for a
// same-document pointer) and a JSON-pointer path, accepting the shorthand
// `#/definitions/<name>` and `#/$defs/<name>` forms (spec.md §6.3).
func splitRef(ref string) (SchemaUri, string) {
	i := strings.IndexByte(ref, '#')
	if i < 0 {
		u, _ := ParseUri(ref)
		return u, ""
	}
	base, pointer := ref[:i], ref[i+1:]
	if base == "" {
		return Uri{}, pointer
	}
	u, _ := ParseUri(base)
	return u, pointer
}

func classifyNode(m map[string]any, strict bool) ValueSchema {
	common := parseCommon(m)

	if kind := combinatorKind(m); kind >= 0 {
		list, _ := m[combinatorKeyword(kind)].([]any)
		var derefs []*Referable[ValueSchema]
		for _, item := range list {
			derefs = append(derefs, parseNode(item, strict))
		}
		return &CombinatorSchema{common: common, Kind: kind, Deref: derefs}
	}
	if not, ok := m["not"]; ok {
		return &NotSchema{common: common, Inner: parseNode(not, strict)}
	}

	typ, _ := m["type"].(string)
	switch typ {
	case "boolean":
		return parseBoolean(m, common)
	case "integer":
		return parseNumber(m, common, true)
	case "number":
		return parseNumber(m, common, false)
	case "string":
		if isDateTimeFormat(m) {
			return parseDateTime(m, common)
		}
		return parseString(m, common)
	case "array":
		return parseArray(m, common, strict)
	case "object":
		return parseTable(m, common, strict)
	case "null":
		return &NullSchema{common: common}
	default:
		// No explicit "type": infer from whichever keywords are present,
		// falling back to an object schema (the common shape for a bare
		// `properties`-only schema with no "type" key).
		if _, ok := m["properties"]; ok {
			return parseTable(m, common, strict)
		}
		if _, ok := m["items"]; ok {
			return parseArray(m, common, strict)
		}
		return &TableSchema{common: common}
	}
}

func isDateTimeFormat(m map[string]any) bool {
	format, _ := m["format"].(string)
	switch format {
	case "date-time", "date", "time", "local-date-time", "local-date", "local-time":
		return true
	}
	return false
}

func combinatorKind(m map[string]any) CombinatorKind {
	switch {
	case has(m, "allOf"):
		return CombinatorAllOf
	case has(m, "anyOf"):
		return CombinatorAnyOf
	case has(m, "oneOf"):
		return CombinatorOneOf
	}
	return -1
}

func combinatorKeyword(k CombinatorKind) string {
	switch k {
	case CombinatorAllOf:
		return "allOf"
	case CombinatorAnyOf:
		return "anyOf"
	default:
		return "oneOf"
	}
}

func has(m map[string]any, key string) bool { _, ok := m[key]; return ok }

func parseCommon(m map[string]any) Common {
	var c Common
	c.Title, _ = m["title"].(string)
	c.Description, _ = m["description"].(string)
	c.Default = m["default"]
	c.Deprecated, _ = m["deprecated"].(bool)
	c.TomlVersion, _ = m["x-tombi-toml-version"].(string)
	if formats, ok := m["x-tombi-string-formats"].([]any); ok {
		for _, f := range formats {
			if s, ok := f.(string); ok {
				c.StringFormats = append(c.StringFormats, s)
			}
		}
	}
	return c
}

func parseBoolean(m map[string]any, common Common) *BooleanSchema {
	s := &BooleanSchema{common: common}
	if c, ok := m["const"].(bool); ok {
		s.Const = &c
	}
	if enum, ok := m["enum"].([]any); ok {
		for _, e := range enum {
			if b, ok := e.(bool); ok {
				s.Enum = append(s.Enum, b)
			}
		}
	}
	return s
}

func parseNumber(m map[string]any, common Common, isInteger bool) *NumberSchema {
	s := &NumberSchema{common: common, IsInteger: isInteger}
	s.Minimum = floatPtr(m, "minimum")
	s.Maximum = floatPtr(m, "maximum")
	s.ExclusiveMinimum = floatPtr(m, "exclusiveMinimum")
	s.ExclusiveMaximum = floatPtr(m, "exclusiveMaximum")
	s.MultipleOf = floatPtr(m, "multipleOf")
	s.Const = floatPtr(m, "const")
	if enum, ok := m["enum"].([]any); ok {
		for _, e := range enum {
			if f, ok := e.(float64); ok {
				s.Enum = append(s.Enum, f)
			}
		}
	}
	return s
}

func floatPtr(m map[string]any, key string) *float64 {
	if f, ok := m[key].(float64); ok {
		return &f
	}
	return nil
}

func intPtr(m map[string]any, key string) *int {
	if f, ok := m[key].(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func parseString(m map[string]any, common Common) *StringSchema {
	s := &StringSchema{common: common}
	s.MinLength = intPtr(m, "minLength")
	s.MaxLength = intPtr(m, "maxLength")
	s.Pattern, _ = m["pattern"].(string)
	s.Format, _ = m["format"].(string)
	if c, ok := m["const"].(string); ok {
		s.Const = &c
	}
	if enum, ok := m["enum"].([]any); ok {
		for _, e := range enum {
			if str, ok := e.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}
	return s
}

func parseDateTime(m map[string]any, common Common) *DateTimeSchema {
	s := &DateTimeSchema{common: common}
	if c, ok := m["const"].(string); ok {
		s.Const = &c
	}
	if enum, ok := m["enum"].([]any); ok {
		for _, e := range enum {
			if str, ok := e.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}
	return s
}

func parseArray(m map[string]any, common Common, strict bool) *ArraySchema {
	s := &ArraySchema{common: common}
	s.MinItems = intPtr(m, "minItems")
	s.MaxItems = intPtr(m, "maxItems")
	s.UniqueItems, _ = m["uniqueItems"].(bool)
	if items, ok := m["items"]; ok {
		if list, ok := items.([]any); ok {
			for _, item := range list {
				s.PrefixItems = append(s.PrefixItems, parseNode(item, strict))
			}
		} else {
			it := parseNode(items, strict)
			s.Items = it
		}
	}
	if order, ok := m["x-tombi-array-values-order"].(string); ok {
		s.ValuesOrder = ArrayValuesOrder(order)
	}
	return s
}

func parseTable(m map[string]any, common Common, strict bool) *TableSchema {
	s := &TableSchema{common: common}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*Referable[ValueSchema], len(props))
		for name, v := range props {
			s.Properties[name] = parseNode(v, strict)
		}
	}
	if props, ok := m["patternProperties"].(map[string]any); ok {
		s.PatternProperties = make(map[string]*Referable[ValueSchema], len(props))
		for name, v := range props {
			s.PatternProperties[name] = parseNode(v, strict)
		}
	}
	if ap, ok := m["additionalProperties"]; ok {
		switch v := ap.(type) {
		case bool:
			b := v
			s.AdditionalProperties = &AdditionalProperties{Allowed: &b}
		default:
			n := parseNode(v, strict)
			s.AdditionalProperties = &AdditionalProperties{Schema: n}
		}
	}
	if pn, ok := m["propertyNames"]; ok {
		s.PropertyNames = parseNode(pn, strict)
	}
	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			if str, ok := r.(string); ok {
				s.Required = append(s.Required, str)
			}
		}
	}
	s.MinProperties = intPtr(m, "minProperties")
	s.MaxProperties = intPtr(m, "maxProperties")
	if order, ok := m["x-tombi-table-keys-order"].(string); ok {
		s.KeysOrder = TableKeysOrder(order)
	}
	return s
}
