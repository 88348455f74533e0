package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ColumnType is the inferred scalar type of a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeDatetime
)

// String returns the display name used in summaries ("int", "float", ...).
func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeDatetime:
		return "datetime"
	default:
		return "string"
	}
}

// MarshalText encodes the type by name so JSON responses stay readable.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsNumeric reports whether the type takes part in descriptive statistics.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// IsTemporal reports whether the type holds timestamps.
func (t ColumnType) IsTemporal() bool {
	return t == TypeDatetime
}

// ColumnDescriptor names a column and its inferred type.
type ColumnDescriptor struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Column is a named, typed, read-only sequence of cells.
//
// Cells are nil (null) or one of int64, float64, bool, time.Time or string,
// according to the column type.
type Column struct {
	name  string
	typ   ColumnType
	cells []any
}

// NewColumn builds a column from a copy of cells. Callers are expected to
// pass cells whose dynamic types agree with typ.
func NewColumn(name string, typ ColumnType, cells []any) *Column {
	owned := make([]any, len(cells))
	copy(owned, cells)
	return &Column{name: name, typ: typ, cells: owned}
}

func (c *Column) Name() string     { return c.name }
func (c *Column) Type() ColumnType { return c.typ }
func (c *Column) Len() int         { return len(c.cells) }

// Descriptor returns the column's name and type.
func (c *Column) Descriptor() ColumnDescriptor {
	return ColumnDescriptor{Name: c.name, Type: c.typ}
}

// Value returns the raw cell at row i.
func (c *Column) Value(i int) any {
	return c.cells[i]
}

// IsNull reports whether the cell at row i is missing.
func (c *Column) IsNull(i int) bool {
	return c.cells[i] == nil
}

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.cells {
		if v == nil {
			n++
		}
	}
	return n
}

// Float returns the numeric value at row i. ok is false for nulls and for
// non-numeric cells.
func (c *Column) Float(i int) (float64, bool) {
	switch v := c.cells[i].(type) {
	case int64:
		return float64(v), true
	case float64:
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Time returns the timestamp at row i. ok is false for nulls and for
// non-temporal cells.
func (c *Column) Time(i int) (time.Time, bool) {
	t, ok := c.cells[i].(time.Time)
	return t, ok
}

// Floats returns every non-null numeric value in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.cells))
	for i := range c.cells {
		if f, ok := c.Float(i); ok {
			out = append(out, f)
		}
	}
	return out
}

// Text formats the cell at row i for display. Nulls format as "".
func (c *Column) Text(i int) string {
	return FormatValue(c.cells[i])
}

// slice shares storage with c.
func (c *Column) slice(lo, hi int) *Column {
	return &Column{name: c.name, typ: c.typ, cells: c.cells[lo:hi:hi]}
}

// FormatValue renders a single cell value the way the preview shows it.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if math.IsNaN(val) {
			return "NaN"
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "True"
		}
		return "False"
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case string:
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Table is an ordered set of equal-length columns with unique names.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable assembles columns into a table. It fails when names repeat or
// column lengths differ.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for i, col := range columns {
		if _, dup := t.index[col.name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.name, col.Len(), t.rows)
		}
		t.index[col.name] = i
		t.columns = append(t.columns, col)
	}

	return t, nil
}

// MustTable is NewTable for fixtures; it panics on error.
func MustTable(columns ...*Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count (0 for a table without columns).
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.columns) }

// Columns returns the columns in order. The slice is a copy; the columns
// themselves are shared.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Descriptors returns one descriptor per column, in order.
func (t *Table) Descriptors() []ColumnDescriptor {
	out := make([]ColumnDescriptor, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Descriptor()
	}
	return out
}

// Head returns a projection of the first n rows. The result shares cell
// storage with t.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n >= t.rows {
		return t
	}
	head := &Table{
		columns: make([]*Column, len(t.columns)),
		index:   t.index,
		rows:    n,
	}
	for i, c := range t.columns {
		head.columns[i] = c.slice(0, n)
	}
	return head
}

// Select returns a projection holding only the named columns, in the order
// given. Unknown names are an error.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		cols = append(cols, c)
	}
	sel, err := NewTable(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		sel.rows = 0
	}
	return sel, nil
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.cells[i]
	}
	return row
}
