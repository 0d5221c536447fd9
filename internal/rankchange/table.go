package rankchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Table is an upstream JSON payload with its column order preserved.
// Cells hold string, json.Number, bool or nil.
type Table struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name is one of the columns
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Filter returns a table holding only the rows for which keep is true
func (t *Table) Filter(keep func(row map[string]any) bool) *Table {
	out := &Table{Columns: t.Columns, Rows: make([]map[string]any, 0, len(t.Rows))}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// CellString renders a cell for display. ok is false for null/missing cells.
func CellString(v any) (s string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	default:
		return fmt.Sprint(x), true
	}
}

// CellNumber reads a numeric cell. Numeric strings are accepted.
func CellNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(x, ",", "")), 64)
		return f, err == nil
	}
	return 0, false
}

// DecodeTable decodes a JSON payload into a Table. Accepted layouts are
// the ones pandas produces: an array of records, an object of column
// arrays, or an object of column objects keyed by row index. An object
// wrapping a "data" array is unwrapped.
func DecodeTable(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeOrdered(dec)
	if err != nil {
		return nil, &FormatError{Field: "payload", Reason: "invalid JSON: " + err.Error()}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &FormatError{Field: "payload", Reason: "trailing data after JSON value"}
	}

	switch v := root.(type) {
	case []any:
		return tableFromRecords(v)
	case *orderedObject:
		if inner, ok := v.values["data"].([]any); ok && recordsLike(inner) {
			return tableFromRecords(inner)
		}
		return tableFromColumns(v)
	case nil:
		return &Table{Columns: []string{}, Rows: []map[string]any{}}, nil
	}

	return nil, &FormatError{Field: "payload", Reason: "expected a JSON array or object"}
}

func tableFromRecords(records []any) (*Table, error) {
	t := &Table{Columns: []string{}, Rows: make([]map[string]any, 0, len(records))}
	seen := make(map[string]bool)

	for i, rec := range records {
		obj, ok := rec.(*orderedObject)
		if !ok {
			return nil, &FormatError{Field: "payload", Reason: fmt.Sprintf("record %d is not an object", i)}
		}
		row := make(map[string]any, len(obj.keys))
		for _, k := range obj.keys {
			if !seen[k] {
				seen[k] = true
				t.Columns = append(t.Columns, k)
			}
			row[k] = flatten(obj.values[k])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func tableFromColumns(obj *orderedObject) (*Table, error) {
	t := &Table{Columns: append([]string(nil), obj.keys...), Rows: []map[string]any{}}

	var index []string
	indexPos := make(map[string]int)
	addIndex := func(k string) int {
		if p, ok := indexPos[k]; ok {
			return p
		}
		indexPos[k] = len(index)
		index = append(index, k)
		t.Rows = append(t.Rows, make(map[string]any))
		return len(index) - 1
	}

	for _, col := range obj.keys {
		switch v := obj.values[col].(type) {
		case []any:
			for i, cell := range v {
				t.Rows[addIndex(strconv.Itoa(i))][col] = flatten(cell)
			}
		case *orderedObject:
			for _, k := range v.keys {
				t.Rows[addIndex(k)][col] = flatten(v.values[k])
			}
		default:
			return nil, &FormatError{Field: "payload", Value: col, Reason: "column is neither an array nor an object"}
		}
	}

	// pandas integer indexes come back as strings; keep numeric order
	if allDigits(index) {
		order := make([]int, len(index))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			x, _ := strconv.Atoi(index[order[a]])
			y, _ := strconv.Atoi(index[order[b]])
			return x < y
		})
		rows := make([]map[string]any, len(order))
		for i, o := range order {
			rows[i] = t.Rows[o]
		}
		t.Rows = rows
	}

	return t, nil
}

func recordsLike(arr []any) bool {
	if len(arr) == 0 {
		return true
	}
	_, ok := arr[0].(*orderedObject)
	return ok
}

func allDigits(keys []string) bool {
	for _, k := range keys {
		if !isDigits(k) {
			return false
		}
	}
	return true
}

// flatten turns nested values into display strings; tables are one level deep
func flatten(v any) any {
	switch x := v.(type) {
	case *orderedObject, []any:
		b, _ := json.Marshal(plain(x))
		return string(b)
	}
	return v
}

func plain(v any) any {
	switch x := v.(type) {
	case *orderedObject:
		m := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			m[k] = plain(x.values[k])
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// orderedObject is a JSON object that remembers key order
type orderedObject struct {
	keys   []string
	values map[string]any
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		obj := &orderedObject{values: make(map[string]any)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T", keyTok)
			}
			v, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			if _, exists := obj.values[key]; !exists {
				obj.keys = append(obj.keys, key)
			}
			obj.values[key] = v
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}
