package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const peopleCSV = "name,age\nAlice,30\nBob,25\nCarol,40\n"

func TestLoad_CSVScenario(t *testing.T) {
	table, err := Load("people.csv", strings.NewReader(peopleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, 2, table.NumColumns())
	assert.Equal(t, []ColumnDescriptor{
		{Name: "name", Type: TypeString},
		{Name: "age", Type: TypeInt},
	}, table.Descriptors())

	age, ok := table.Column("age")
	require.True(t, ok)
	assert.Equal(t, []float64{30, 25, 40}, age.Floats())
}

func TestLoad_RowAndColumnCounts(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     []byte
		wantRows int
		wantCols int
	}{
		{
			name:     "csv header only",
			file:     "empty.csv",
			data:     []byte("a,b,c\n"),
			wantRows: 0,
			wantCols: 3,
		},
		{
			name:     "csv short rows padded",
			file:     "ragged.csv",
			data:     []byte("a,b,c\n1,2\n3,4,5\n"),
			wantRows: 2,
			wantCols: 3,
		},
		{
			name:     "json records",
			file:     "records.json",
			data:     []byte(`[{"a":1,"b":"x"},{"a":2,"b":"y"},{"a":3}]`),
			wantRows: 3,
			wantCols: 2,
		},
		{
			name:     "json columns orient",
			file:     "columns.json",
			data:     []byte(`{"a":{"0":1,"1":2},"b":{"0":"x","1":"y"}}`),
			wantRows: 2,
			wantCols: 2,
		},
		{
			name:     "json column arrays",
			file:     "arrays.json",
			data:     []byte(`{"a":[1,2,3,4],"b":[true,false,true,false]}`),
			wantRows: 4,
			wantCols: 2,
		},
		{
			name:     "json row arrays",
			file:     "rows.json",
			data:     []byte(`[[1,"a"],[2,"b"]]`),
			wantRows: 2,
			wantCols: 2,
		},
		{
			name:     "json empty array",
			file:     "none.json",
			data:     []byte(`[]`),
			wantRows: 0,
			wantCols: 0,
		},
		{
			name:     "excel workbook",
			file:     "people.xlsx",
			data:     excelFixture(t, [][]any{{"name", "age"}, {"Alice", 30}, {"Bob", 25}, {"Carol", 40}}),
			wantRows: 3,
			wantCols: 2,
		},
		{
			name:     "excel with .xls suffix",
			file:     "people.XLS",
			data:     excelFixture(t, [][]any{{"x"}, {1}, {2}}),
			wantRows: 2,
			wantCols: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Load(tt.file, bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, table.NumRows(), "rows")
			assert.Equal(t, tt.wantCols, table.NumColumns(), "columns")
		})
	}
}

func TestLoad_ExcelTypes(t *testing.T) {
	data := excelFixture(t, [][]any{
		{"name", "age", "score", "active"},
		{"Alice", 30, 1.5, true},
		{"Bob", 25, 2.25, false},
	})

	table, err := Load("scores.xlsx", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []ColumnDescriptor{
		{Name: "name", Type: TypeString},
		{Name: "age", Type: TypeInt},
		{Name: "score", Type: TypeFloat},
		{Name: "active", Type: TypeBool},
	}, table.Descriptors())
}

func TestLoad_ExcelNumberFormatsReadAsNumbers(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"units", "share", "day"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1234, 0.12, 45306}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{56789, 0.5, 45307}))

	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	require.NoError(t, err)
	date, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "A3", thousands))
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B3", percent))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C3", date))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := Load("formatted.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, []ColumnDescriptor{
		{Name: "units", Type: TypeInt},
		{Name: "share", Type: TypeFloat},
		{Name: "day", Type: TypeDatetime},
	}, table.Descriptors())
	assert.Equal(t, []any{int64(1234), 0.12}, table.Row(0)[:2])
}

func TestLoad_LegacyExcel(t *testing.T) {
	data, err := os.ReadFile("testdata/people.xls")
	require.NoError(t, err)

	table, err := Load("people.xls", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []ColumnDescriptor{
		{Name: "name", Type: TypeString},
		{Name: "age", Type: TypeInt},
	}, table.Descriptors())
	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, []any{"Carol", int64(40)}, table.Row(2))
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"data.txt", "data", "archive.csv.gz", "sheet.ods"} {
		t.Run(name, func(t *testing.T) {
			table, err := Load(name, strings.NewReader("a,b\n1,2\n"))
			assert.Nil(t, table)

			var unsupported *UnsupportedFormatError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, name, unsupported.Name)
		})
	}
}

func TestLoad_ParseFailures(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"truncated json", "broken.json", `[{"name":"Alice","age":30},{"name":"Bo`},
		{"empty json", "empty.json", ``},
		{"scalar object json", "scalars.json", `{"a":1,"b":2}`},
		{"unequal column arrays", "uneven.json", `{"a":[1,2],"b":[1]}`},
		{"empty csv", "empty.csv", ``},
		{"csv long row", "long.csv", "a,b\n1,2,3\n"},
		{"csv bad quote", "quote.csv", "a,b\n\"1,2\n"},
		{"not a workbook", "fake.xlsx", "name,age\nAlice,30\n"},
		{"corrupt legacy workbook", "fake.xls", "\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Load(tt.file, strings.NewReader(tt.data))
			assert.Nil(t, table)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.file, loadErr.Name)
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}

func TestLoad_CSVWithBOMAndInvalidUTF8(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("city,pop\nK\xf6ln,1\nParis,2\n")...)

	table, err := Load("cities.csv", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"city", "pop"}, table.ColumnNames())
	city, _ := table.Column("city")
	assert.Equal(t, "K\uFFFDln", city.Text(0))
}

func TestLoad_CSVHeaders(t *testing.T) {
	table, err := Load("dups.csv", strings.NewReader("a,,a,a\n1,2,3,4\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2"}, table.ColumnNames())
}

func TestLoad_JSONRecordsMissingKeys(t *testing.T) {
	table, err := Load("r.json", strings.NewReader(`[{"a":1},{"b":"x"},{"a":3,"c":{"k":1}}]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, table.ColumnNames())

	a, _ := table.Column("a")
	assert.Equal(t, TypeFloat, a.Type(), "int column with nulls widens to float")
	assert.True(t, a.IsNull(1))

	c, _ := table.Column("c")
	assert.Equal(t, TypeString, c.Type())
	assert.Equal(t, `{"k":1}`, c.Text(2))
}

func TestLoad_LargeCSV(t *testing.T) {
	var b strings.Builder
	b.WriteString("i,sq\n")
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i*i)
	}

	table, err := Load("big.csv", strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, 1000, table.NumRows())
}

// excelFixture writes rows to Sheet1 of a fresh workbook.
func excelFixture(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
