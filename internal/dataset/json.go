package dataset

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// readJSON accepts four layouts:
//
//	[{"a":1,"b":2}, ...]          records
//	{"a":{"0":1,"1":2}, ...}      columns keyed by row label
//	{"a":[1,2], "b":[3,4]}        columns as arrays
//	[[1,2],[3,4]]                 rows as arrays, columns named 0..n-1
func readJSON(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}

	doc := gjson.ParseBytes(data)
	switch {
	case doc.IsArray():
		return jsonFromArray(doc.Array())
	case doc.IsObject():
		return jsonFromObject(doc)
	default:
		return nil, fmt.Errorf("expected a JSON array or object, got %s", doc.Type)
	}
}

func jsonFromArray(items []gjson.Result) (*Table, error) {
	if len(items) == 0 {
		return NewTable()
	}
	switch {
	case items[0].IsObject():
		return jsonRecords(items)
	case items[0].IsArray():
		return jsonRowArrays(items)
	default:
		return nil, fmt.Errorf("expected an array of objects or arrays, got %s elements", items[0].Type)
	}
}

// jsonRecords builds columns from the union of record keys in first-seen
// order. Keys missing from a record are null.
func jsonRecords(items []gjson.Result) (*Table, error) {
	keys := newKeyOrder()
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("record %d is %s, expected object", i, item.Type)
		}
		item.ForEach(func(k, _ gjson.Result) bool {
			keys.add(k.String())
			return true
		})
	}

	cells := make([][]any, len(keys.names))
	for i := range cells {
		cells[i] = make([]any, len(items))
	}
	for row, item := range items {
		item.ForEach(func(k, v gjson.Result) bool {
			cells[keys.pos[k.String()]][row] = jsonValue(v)
			return true
		})
	}

	return buildJSONTable(keys.names, cells)
}

func jsonRowArrays(items []gjson.Result) (*Table, error) {
	width := 0
	for i, item := range items {
		if !item.IsArray() {
			return nil, fmt.Errorf("row %d is %s, expected array", i, item.Type)
		}
		if n := len(item.Array()); n > width {
			width = n
		}
	}

	names := make([]string, width)
	cells := make([][]any, width)
	for i := range names {
		names[i] = strconv.Itoa(i)
		cells[i] = make([]any, len(items))
	}
	for row, item := range items {
		for col, v := range item.Array() {
			cells[col][row] = jsonValue(v)
		}
	}

	return buildJSONTable(names, cells)
}

func jsonFromObject(doc gjson.Result) (*Table, error) {
	var names []string
	var values []gjson.Result
	doc.ForEach(func(k, v gjson.Result) bool {
		names = append(names, k.String())
		values = append(values, v)
		return true
	})
	if len(names) == 0 {
		return NewTable()
	}

	switch {
	case values[0].IsObject():
		return jsonColumnObjects(names, values)
	case values[0].IsArray():
		return jsonColumnArrays(names, values)
	default:
		return nil, fmt.Errorf("column %q holds a scalar; an object of scalars has no row index", names[0])
	}
}

// jsonColumnObjects handles {"col": {"rowLabel": value}}; row labels are
// unioned in first-seen order.
func jsonColumnObjects(names []string, values []gjson.Result) (*Table, error) {
	rows := newKeyOrder()
	for i, v := range values {
		if !v.IsObject() {
			return nil, fmt.Errorf("column %q is %s, expected object", names[i], v.Type)
		}
		v.ForEach(func(k, _ gjson.Result) bool {
			rows.add(k.String())
			return true
		})
	}

	cells := make([][]any, len(names))
	for i, v := range values {
		cells[i] = make([]any, len(rows.names))
		v.ForEach(func(k, cell gjson.Result) bool {
			cells[i][rows.pos[k.String()]] = jsonValue(cell)
			return true
		})
	}

	return buildJSONTable(names, cells)
}

func jsonColumnArrays(names []string, values []gjson.Result) (*Table, error) {
	cells := make([][]any, len(names))
	for i, v := range values {
		if !v.IsArray() {
			return nil, fmt.Errorf("column %q is %s, expected array", names[i], v.Type)
		}
		arr := v.Array()
		if i > 0 && len(arr) != len(cells[0]) {
			return nil, fmt.Errorf("column %q has %d values, expected %d", names[i], len(arr), len(cells[0]))
		}
		cells[i] = make([]any, len(arr))
		for j, cell := range arr {
			cells[i][j] = jsonValue(cell)
		}
	}

	return buildJSONTable(names, cells)
}

func buildJSONTable(names []string, cells [][]any) (*Table, error) {
	names = normalizeHeaders(names, len(names))
	columns := make([]*Column, len(names))
	for i, name := range names {
		columns[i] = columnFromValues(name, cells[i])
	}
	return NewTable(columns...)
}

// jsonValue converts a gjson value into a cell. Integral numbers stay int64;
// nested objects and arrays are kept as their raw JSON text.
func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return n
			}
		}
		return v.Float()
	case gjson.String:
		return v.String()
	default:
		return v.Raw
	}
}

type keyOrder struct {
	names []string
	pos   map[string]int
}

func newKeyOrder() *keyOrder {
	return &keyOrder{pos: make(map[string]int)}
}

func (k *keyOrder) add(name string) {
	if _, ok := k.pos[name]; ok {
		return
	}
	k.pos[name] = len(k.names)
	k.names = append(k.names, name)
}
