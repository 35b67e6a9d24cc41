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
	"strconv"
	"strings"
	"time"

	"github.com/tombi-toml/tombi/syntax/ast"
	"github.com/tombi-toml/tombi/syntax/errors"
	"github.com/tombi-toml/tombi/syntax/token"
	"github.com/tombi-toml/tombi/syntax/tree"
)

// lowerer carries the accumulated diagnostics for a single Lower call.
type lowerer struct {
	idx   *token.LineIndex
	diags errors.List
}

// Lower walks root in document order, merging every KeyValue declaration
// and Table/ArrayOfTable header into a single root [Table] per the rules
// in spec.md §4.4. It never aborts: every violation is recorded as a
// diagnostic and the tree is built best-effort around it.
func Lower(root *ast.Root, idx *token.LineIndex) (*Table, errors.List) {
	l := &lowerer{idx: idx}
	rootTable := &Table{Kind: TableRoot, ValueRange: root.Range()}

	current := rootTable
	for _, item := range root.Items() {
		switch item.ItemKind {
		case ast.RootItemKeyValueGroup:
			for _, kv := range item.KeyValueGroup().KeyValues() {
				l.lowerKeyValue(current, kv)
			}
		case ast.RootItemTable:
			t := item.Table()
			current = l.navigateHeader(rootTable, t.Keys(), t.Range())
		case ast.RootItemArrayOfTable:
			a := item.ArrayOfTable()
			current = l.navigateArrayHeader(rootTable, a.Keys(), a.Range())
		}
	}
	l.diags.Sort()
	return rootTable, l.diags
}

// navigateHeader implements spec.md §4.4 rule 3 for a `[a.b.c]` header:
// walk/create every segment, then mark the final table opened-by-header.
func (l *lowerer) navigateHeader(root *Table, keys *ast.Keys, headerRange token.Range) *Table {
	if keys == nil {
		return root
	}
	segments := keys.Segments()
	cur := root
	path := ""
	for i, seg := range segments {
		name := seg.ToRawText("")
		if path == "" {
			path = name
		} else {
			path += "." + name
		}
		last := i == len(segments)-1

		existing, found := cur.Get(name)
		if !found {
			child := &Table{Kind: TableStandard, ValueRange: seg.Range()}
			cur.Entries = append(cur.Entries, Entry{Key: name, KeyRange: seg.Range(), Value: child})
			if last {
				child.headerOpened = true
			}
			cur = child
			continue
		}

		tbl, ok := existing.(*Table)
		if !ok {
			l.diags.Add(keyAlreadyDefined(name, existing.Range(), seg.Range()))
			return &Table{Kind: TableStandard, ValueRange: headerRange}
		}
		if last {
			switch {
			case tbl.Kind == TableAoTElement:
				l.diags.Add(arrayOfTableConflict(path, tbl.ValueRange, headerRange))
			case tbl.headerOpened:
				l.diags.Add(tableAlreadyOpened(path, tbl.ValueRange, headerRange))
			case tbl.Kind == TableDotted:
				l.diags.Add(tableAlreadyOpened(path, tbl.ValueRange, headerRange))
			case tbl.Kind == TableInline:
				l.diags.Add(extendClosedValue(path, tbl.ValueRange, headerRange))
			}
			tbl.headerOpened = true
		}
		cur = tbl
	}
	return cur
}

// navigateArrayHeader implements spec.md §4.4 rule 4 for a `[[a.b]]`
// header: walk/create every segment but the last as plain tables, then
// append a fresh element to the array named by the last segment.
func (l *lowerer) navigateArrayHeader(root *Table, keys *ast.Keys, headerRange token.Range) *Table {
	if keys == nil {
		return &Table{Kind: TableAoTElement, ValueRange: headerRange}
	}
	segments := keys.Segments()
	cur := root
	path := ""
	for i, seg := range segments[:len(segments)-1] {
		name := seg.ToRawText("")
		if path == "" {
			path = name
		} else {
			path += "." + name
		}
		existing, found := cur.Get(name)
		if !found {
			child := &Table{Kind: TableStandard, ValueRange: seg.Range()}
			cur.Entries = append(cur.Entries, Entry{Key: name, KeyRange: seg.Range(), Value: child})
			cur = child
			continue
		}
		tbl, ok := existing.(*Table)
		if !ok {
			l.diags.Add(keyAlreadyDefined(name, existing.Range(), seg.Range()))
			return &Table{Kind: TableAoTElement, ValueRange: headerRange}
		}
		cur = tbl
	}

	last := segments[len(segments)-1]
	name := last.ToRawText("")
	if path == "" {
		path = name
	} else {
		path += "." + name
	}

	existing, found := cur.Get(name)
	if !found {
		elem := &Table{Kind: TableAoTElement, ValueRange: headerRange}
		arr := &Array{Kind: ArrayOfTables, ValueRange: headerRange, Items: []Value{elem}}
		cur.Entries = append(cur.Entries, Entry{Key: name, KeyRange: last.Range(), Value: arr})
		return elem
	}

	arr, ok := existing.(*Array)
	if !ok || arr.Kind != ArrayOfTables {
		l.diags.Add(arrayOfTableConflict(path, existing.Range(), headerRange))
		return &Table{Kind: TableAoTElement, ValueRange: headerRange}
	}
	elem := &Table{Kind: TableAoTElement, ValueRange: headerRange}
	arr.Items = append(arr.Items, elem)
	return elem
}

// lowerKeyValue implements spec.md §4.4 rule 2: walk/create intermediate
// tables for a dotted key, then insert the value at the leaf.
func (l *lowerer) lowerKeyValue(current *Table, kv *ast.KeyValue) {
	keysNode := kv.Keys()
	if keysNode == nil {
		return
	}
	segments := keysNode.Segments()
	if len(segments) == 0 {
		return
	}
	cur := current
	for i, seg := range segments {
		name := seg.ToRawText("")
		last := i == len(segments)-1

		if last {
			val := l.lowerValue(kv.Value())
			if idx := cur.indexOf(name); idx >= 0 {
				l.diags.Add(keyAlreadyDefined(name, cur.Entries[idx].Value.Range(), seg.Range()))
				return
			}
			cur.Entries = append(cur.Entries, Entry{Key: name, KeyRange: seg.Range(), Value: val})
			return
		}

		existing, found := cur.Get(name)
		if !found {
			child := &Table{Kind: TableDotted, ValueRange: seg.Range()}
			cur.Entries = append(cur.Entries, Entry{Key: name, KeyRange: seg.Range(), Value: child})
			cur = child
			continue
		}
		tbl, ok := existing.(*Table)
		if !ok || tbl.Kind == TableInline || tbl.Kind == TableAoTElement {
			l.diags.Add(keyAlreadyDefined(name, existing.Range(), seg.Range()))
			return
		}
		cur = tbl
	}
}

func (l *lowerer) lowerValue(v *ast.Value) Value {
	if v == nil {
		return &Incomplete{}
	}
	if arr := v.Array(); arr != nil {
		return l.lowerArray(arr)
	}
	if it := v.InlineTable(); it != nil {
		return l.lowerInlineTable(it)
	}
	lit := v.Literal()
	if lit == nil {
		return &Incomplete{ValueRange: v.Range()}
	}
	return l.lowerLiteral(lit)
}

func (l *lowerer) lowerArray(a *ast.Array) Value {
	var items []Value
	for _, v := range a.Values() {
		items = append(items, l.lowerValue(v))
	}
	return &Array{Items: items, Kind: ArrayStandard, ValueRange: a.Range()}
}

func (l *lowerer) lowerInlineTable(it *ast.InlineTable) Value {
	tbl := &Table{Kind: TableInline, ValueRange: it.Range()}
	for _, kv := range it.KeyValues() {
		l.lowerKeyValue(tbl, kv)
	}
	return tbl
}

func (l *lowerer) lowerLiteral(tok *tree.RedToken) Value {
	rng := tok.Range(l.idx)
	text := tok.Text()

	switch tok.Kind() {
	case token.BOOLEAN:
		return &Boolean{Value: text == "true", ValueRange: rng}

	case token.DEC_INTEGER:
		n, err := strconv.ParseInt(stripUnderscores(text), 10, 64)
		if err != nil {
			return &Incomplete{ValueRange: rng}
		}
		return &Integer{Value: n, Kind: IntegerDec, ValueRange: rng}
	case token.HEX_INTEGER:
		n, err := strconv.ParseInt(stripUnderscores(text)[2:], 16, 64)
		if err != nil {
			return &Incomplete{ValueRange: rng}
		}
		return &Integer{Value: n, Kind: IntegerHex, ValueRange: rng}
	case token.OCT_INTEGER:
		n, err := strconv.ParseInt(stripUnderscores(text)[2:], 8, 64)
		if err != nil {
			return &Incomplete{ValueRange: rng}
		}
		return &Integer{Value: n, Kind: IntegerOct, ValueRange: rng}
	case token.BIN_INTEGER:
		n, err := strconv.ParseInt(stripUnderscores(text)[2:], 2, 64)
		if err != nil {
			return &Incomplete{ValueRange: rng}
		}
		return &Integer{Value: n, Kind: IntegerBin, ValueRange: rng}

	case token.FLOAT:
		f, ok := parseFloat(text)
		if !ok {
			return &Incomplete{ValueRange: rng}
		}
		return &Float{Value: f, ValueRange: rng}

	case token.BASIC_STRING:
		return &String{Value: unescapeBasic(trimDelim(text, `"`)), Quoting: QuotingBasic, ValueRange: rng}
	case token.MULTI_LINE_BASIC_STRING:
		inner := strings.TrimPrefix(trimDelim(text, `"""`), "\n")
		return &String{Value: unescapeBasic(inner), Quoting: QuotingMultiBasic, ValueRange: rng}
	case token.LITERAL_STRING:
		return &String{Value: trimDelim(text, `'`), Quoting: QuotingLiteral, ValueRange: rng}
	case token.MULTI_LINE_LITERAL_STRING:
		inner := strings.TrimPrefix(trimDelim(text, `'''`), "\n")
		return &String{Value: inner, Quoting: QuotingMultiLiteral, ValueRange: rng}

	case token.OFFSET_DATE_TIME:
		t, ok := parseOffsetDateTime(text)
		if !ok {
			return &Incomplete{ValueRange: rng}
		}
		return &OffsetDateTime{Value: t, Text: text, ValueRange: rng}
	case token.LOCAL_DATE_TIME:
		t, ok := parseLocalDateTime(text)
		if !ok {
			return &Incomplete{ValueRange: rng}
		}
		return &LocalDateTime{Value: t, Text: text, ValueRange: rng}
	case token.LOCAL_DATE:
		t, err := time.Parse("2006-01-02", text)
		if err != nil {
			return &Incomplete{ValueRange: rng}
		}
		return &LocalDate{Value: t, Text: text, ValueRange: rng}
	case token.LOCAL_TIME:
		d, ok := parseLocalTime(text)
		if !ok {
			return &Incomplete{ValueRange: rng}
		}
		return &LocalTime{Value: d, Text: text, ValueRange: rng}

	default:
		return &Incomplete{ValueRange: rng}
	}
}

func trimDelim(s, delim string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, delim), delim)
}

func stripUnderscores(s string) string { return strings.ReplaceAll(s, "_", "") }

func parseFloat(text string) (float64, bool) {
	s := stripUnderscores(text)
	switch s {
	case "inf", "+inf":
		return strconv.ParseFloat("+Inf", 64)
	case "-inf":
		return strconv.ParseFloat("-Inf", 64)
	case "nan", "+nan", "-nan":
		return strconv.ParseFloat("NaN", 64)
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// parseOffsetDateTime accepts the TOML relaxations on RFC 3339: a space or
// 'T'/'t' date-time separator, and a 'Z'/'z' offset.
func parseOffsetDateTime(text string) (time.Time, bool) {
	norm := normalizeDateTime(text)
	for _, layout := range []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05.999999999Z07:00",
	} {
		if t, err := time.Parse(layout, norm); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLocalDateTime(text string) (time.Time, bool) {
	norm := normalizeDateTime(text)
	for _, layout := range []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999999",
	} {
		if t, err := time.Parse(layout, norm); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeDateTime(text string) string {
	if len(text) > 10 && (text[10] == ' ' || text[10] == 't') {
		return text[:10] + "T" + text[11:]
	}
	return text
}

func parseLocalTime(text string) (time.Duration, bool) {
	for _, layout := range []string{"15:04:05", "15:04:05.999999999"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Sub(t.Truncate(24 * time.Hour)), true
		}
	}
	return 0, false
}
