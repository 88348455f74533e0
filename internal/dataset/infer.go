package dataset

// infer.go decides a column's type from its raw cells.
//
// Text cells arrive from CSV and Excel and are promoted along
// int -> float -> bool -> datetime -> string. Typed cells arrive from JSON
// and only need reconciling (int+float -> float, strings -> datetime when
// every value is a date).

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	intRegex     = regexp.MustCompile(`^[+-]?\d+$`)
	numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// naValues are read as null, following the common dataframe defaults.
var naValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// TwoDigitYearPivot decides the century of two-digit years: a year more than
// this far in the future is moved back one hundred years.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "01-02-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"1/2/2006 15:04", "1/2/2006 15:04:05",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "02-Jan-2006",
	}
)

func isNA(s string) bool {
	return naValues[strings.TrimSpace(s)]
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !intRegex.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// parseTime accepts the layouts above. A two-digit year landing more than
// TwoDigitYearPivot years after the current year moves back a century.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// columnFromText infers a column from raw text cells.
func columnFromText(name string, raw []string) *Column {
	cells := make([]any, len(raw))
	present := 0
	for i, s := range raw {
		if isNA(s) {
			continue
		}
		cells[i] = s
		present++
	}
	if present == 0 {
		return emptyColumn(name, len(raw))
	}

	if typed, ok := convertAll(cells, func(s string) (any, bool) {
		n, ok := parseInt(s)
		return n, ok
	}); ok {
		return columnFromValues(name, typed)
	}
	if typed, ok := convertAll(cells, func(s string) (any, bool) {
		f, ok := parseFloat(s)
		return f, ok
	}); ok {
		return columnFromValues(name, typed)
	}
	if typed, ok := convertAll(cells, func(s string) (any, bool) {
		b, ok := parseBool(s)
		return b, ok
	}); ok {
		return columnFromValues(name, typed)
	}

	return columnFromValues(name, cells)
}

// convertAll applies fn to every non-null string cell, failing fast.
func convertAll(cells []any, fn func(string) (any, bool)) ([]any, bool) {
	out := make([]any, len(cells))
	for i, v := range cells {
		if v == nil {
			continue
		}
		converted, ok := fn(v.(string))
		if !ok {
			return nil, false
		}
		out[i] = converted
	}
	return out, true
}

// columnFromValues reconciles typed cells (nil, int64, float64, bool,
// string) into a single column type.
func columnFromValues(name string, cells []any) *Column {
	var ints, floats, bools, strs, nulls int
	for _, v := range cells {
		switch v.(type) {
		case nil:
			nulls++
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		default:
			strs++
		}
	}

	present := len(cells) - nulls
	switch {
	case present == 0:
		return emptyColumn(name, len(cells))

	case ints == present && nulls == 0:
		return &Column{name: name, typ: TypeInt, cells: cells}

	case ints+floats == present:
		out := make([]any, len(cells))
		for i, v := range cells {
			switch n := v.(type) {
			case int64:
				out[i] = float64(n)
			case float64:
				out[i] = n
			}
		}
		return &Column{name: name, typ: TypeFloat, cells: out}

	case bools == present:
		return &Column{name: name, typ: TypeBool, cells: cells}

	case strs == present:
		if typed, ok := convertAll(cells, func(s string) (any, bool) {
			t, ok := parseTime(s)
			return t, ok
		}); ok {
			return &Column{name: name, typ: TypeDatetime, cells: typed}
		}
		return &Column{name: name, typ: TypeString, cells: cells}
	}

	// Mixed types collapse to text.
	out := make([]any, len(cells))
	for i, v := range cells {
		if v != nil {
			out[i] = FormatValue(v)
		}
	}
	return &Column{name: name, typ: TypeString, cells: out}
}

// emptyColumn types a column with no values: float when it has rows (all
// null), string when it has none.
func emptyColumn(name string, rows int) *Column {
	if rows == 0 {
		return &Column{name: name, typ: TypeString, cells: []any{}}
	}
	return &Column{name: name, typ: TypeFloat, cells: make([]any, rows)}
}

// normalizeHeaders trims header cells, names blanks "Unnamed: i" and
// de-duplicates repeats as "a", "a.1", "a.2".
func normalizeHeaders(raw []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	counts := make(map[string]int, width)

	for i := 0; i < width; i++ {
		base := ""
		if i < len(raw) {
			base = strings.TrimSpace(raw[i])
		}
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}

		name := base
		for used[name] {
			counts[base]++
			name = fmt.Sprintf("%s.%d", base, counts[base])
		}
		used[name] = true
		names[i] = name
	}

	return names
}
