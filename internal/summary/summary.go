// Package summary computes the descriptive report shown next to a loaded
// table: shape, column types, null counts and per-column statistics for the
// numeric columns.
package summary

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/JonMunkholm/explorer/internal/dataset"
)

// ColumnStats is the describe() row for one numeric column. Fields are NaN
// when they are undefined for the column's non-null values.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Q50    float64 `json:"q50"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// MarshalJSON writes undefined (NaN) statistics as null.
func (cs ColumnStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column string   `json:"column"`
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Std    *float64 `json:"std"`
		Min    *float64 `json:"min"`
		Q25    *float64 `json:"q25"`
		Q50    *float64 `json:"q50"`
		Q75    *float64 `json:"q75"`
		Max    *float64 `json:"max"`
	}{
		Column: cs.Column,
		Count:  cs.Count,
		Mean:   finite(cs.Mean),
		Std:    finite(cs.Std),
		Min:    finite(cs.Min),
		Q25:    finite(cs.Q25),
		Q50:    finite(cs.Q50),
		Q75:    finite(cs.Q75),
		Max:    finite(cs.Max),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Summary describes a table.
type Summary struct {
	RowCount    int                        `json:"rowCount"`
	ColumnCount int                        `json:"columnCount"`
	Columns     []dataset.ColumnDescriptor `json:"columns"`
	NullCounts  map[string]int             `json:"nullCounts"`
	Stats       []ColumnStats              `json:"stats"`
}

// Summarize builds the report for t. An empty table yields zero counts and
// no statistics.
func Summarize(t *dataset.Table) Summary {
	s := Summary{
		RowCount:    t.NumRows(),
		ColumnCount: t.NumColumns(),
		Columns:     t.Descriptors(),
		NullCounts:  make(map[string]int, t.NumColumns()),
		Stats:       []ColumnStats{},
	}

	for _, col := range t.Columns() {
		s.NullCounts[col.Name()] = col.NullCount()
		if col.Type().IsNumeric() {
			s.Stats = append(s.Stats, Describe(col.Name(), col.Floats()))
		}
	}

	return s
}

// TypeOf returns the inferred type of the named column.
func (s Summary) TypeOf(name string) (dataset.ColumnType, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return dataset.TypeString, false
}

// HasStats reports whether any column produced statistics.
func (s Summary) HasStats() bool {
	return len(s.Stats) > 0
}

// Describe computes statistics over values, which must not contain nulls.
// Std is the sample standard deviation and is NaN below two values.
func Describe(name string, values []float64) ColumnStats {
	nan := math.NaN()
	cs := ColumnStats{
		Column: name,
		Count:  len(values),
		Mean:   nan, Std: nan,
		Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan,
	}
	if len(values) == 0 {
		return cs
	}

	mean, std := stat.MeanStdDev(values, nil)
	cs.Mean = mean
	if len(values) > 1 {
		cs.Std = std
	}

	// montanaflynn only fails on empty input, which is handled above.
	cs.Min, _ = stats.Min(values)
	cs.Max, _ = stats.Max(values)
	cs.Q50, _ = stats.Median(values)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	cs.Q25 = quantile(sorted, 0.25)
	cs.Q75 = quantile(sorted, 0.75)

	return cs
}

// quantile interpolates linearly between the closest ranks at position
// p*(n-1). sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
