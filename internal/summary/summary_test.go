package summary

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/explorer/internal/dataset"
)

func TestSummarize_People(t *testing.T) {
	table, err := dataset.Load("people.csv", strings.NewReader("name,age\nAlice,30\nBob,25\nCarol,40\n"))
	require.NoError(t, err)

	s := Summarize(table)
	assert.Equal(t, 3, s.RowCount)
	assert.Equal(t, 2, s.ColumnCount)
	assert.Equal(t, map[string]int{"name": 0, "age": 0}, s.NullCounts)

	typ, ok := s.TypeOf("age")
	require.True(t, ok)
	assert.Equal(t, dataset.TypeInt, typ)

	require.Len(t, s.Stats, 1)
	age := s.Stats[0]
	assert.Equal(t, "age", age.Column)
	assert.Equal(t, 3, age.Count)
	assert.InDelta(t, 31.67, age.Mean, 0.01)
	assert.InDelta(t, 7.64, age.Std, 0.01)
	assert.Equal(t, 25.0, age.Min)
	assert.Equal(t, 27.5, age.Q25)
	assert.Equal(t, 30.0, age.Q50)
	assert.Equal(t, 35.0, age.Q75)
	assert.Equal(t, 40.0, age.Max)
}

func TestSummarize_EmptyTable(t *testing.T) {
	table, err := dataset.NewTable()
	require.NoError(t, err)

	s := Summarize(table)
	assert.Equal(t, 0, s.RowCount)
	assert.Equal(t, 0, s.ColumnCount)
	assert.Empty(t, s.Stats)
	assert.False(t, s.HasStats())
}

func TestSummarize_NoNumericColumns(t *testing.T) {
	table := dataset.MustTable(
		dataset.NewColumn("city", dataset.TypeString, []any{"Oslo", nil, "Rome"}),
		dataset.NewColumn("flag", dataset.TypeBool, []any{true, false, true}),
	)

	s := Summarize(table)
	assert.Equal(t, 3, s.RowCount)
	assert.Empty(t, s.Stats)
	assert.Equal(t, 1, s.NullCounts["city"])

	_, ok := s.TypeOf("missing")
	assert.False(t, ok)
}

func TestSummarize_NullsExcludedFromStats(t *testing.T) {
	table := dataset.MustTable(
		dataset.NewColumn("x", dataset.TypeFloat, []any{1.0, nil, 3.0, nil}),
	)

	s := Summarize(table)
	require.Len(t, s.Stats, 1)
	assert.Equal(t, 2, s.Stats[0].Count)
	assert.Equal(t, 2.0, s.Stats[0].Mean)
	assert.Equal(t, 2, s.NullCounts["x"])
}

func TestDescribe_Degenerate(t *testing.T) {
	empty := Describe("e", nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.True(t, math.IsNaN(empty.Max))

	single := Describe("s", []float64{4})
	assert.Equal(t, 4.0, single.Mean)
	assert.True(t, math.IsNaN(single.Std), "sample std needs two values")
	assert.Equal(t, 4.0, single.Q25)
	assert.Equal(t, 4.0, single.Q75)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, quantile(sorted, tt.p), 1e-9, "p=%v", tt.p)
	}
}

func TestColumnStats_MarshalJSONWritesNaNAsNull(t *testing.T) {
	b, err := json.Marshal(Describe("s", []float64{4}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"column":"s","count":1,"mean":4,"std":null,"min":4,"q25":4,"q50":4,"q75":4,"max":4}`, string(b))
}
