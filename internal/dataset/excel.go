package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// oleMagic starts every compound document, which is how legacy BIFF
// workbooks are stored.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// readExcel parses the first worksheet of a workbook, OOXML or legacy BIFF.
// The first non-empty row is the header and cells go through the same
// inference as CSV text.
func readExcel(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	var rows [][]string
	if bytes.HasPrefix(data, oleMagic) {
		rows, err = readBIFFRows(bytes.NewReader(data))
	} else {
		rows, err = readOOXMLRows(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	return tableFromRows(rows)
}

// readOOXMLRows reads the first sheet of an .xlsx workbook. Numbers come
// back unformatted so "1,234" or "12%" display formats still infer as
// numeric; dates, booleans and text keep their display text.
func readOOXMLRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	for i, row := range rows {
		for j, shown := range row {
			if i >= len(raw) || j >= len(raw[i]) || raw[i][j] == shown {
				continue
			}
			if isPlainNumberCell(f, sheet, i, j) {
				row[j] = raw[i][j]
			}
		}
	}
	return rows, nil
}

// isPlainNumberCell reports whether the cell at zero-based row i, column j
// holds a number that is not formatted as a date or time.
func isPlainNumberCell(f *excelize.File, sheet string, i, j int) bool {
	cell, err := excelize.CoordinatesToCellName(j+1, i+1)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil || (typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset) {
		return false
	}

	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	if styleID == 0 {
		return true
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return !isDateFormat(*style.CustomNumFmt)
	}
	return !isBuiltInDateFormat(style.NumFmt)
}

// isBuiltInDateFormat covers the built-in date and time format IDs.
func isBuiltInDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDateFormat reports whether a custom format code draws a date or time:
// it has a y, m, d, h or s outside quotes, brackets and escapes.
func isDateFormat(code string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, c := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		case strings.ContainsRune("ymdhs", c):
			return true
		}
	}
	return false
}

// tableFromRows turns spreadsheet rows into a table, padding short rows.
func tableFromRows(rows [][]string) (*Table, error) {
	for len(rows) > 0 && len(rows[0]) == 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return NewTable()
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	names := normalizeHeaders(rows[0], width)
	raw := make([][]string, width)
	for i := range raw {
		raw[i] = make([]string, 0, len(rows)-1)
	}

	for _, row := range rows[1:] {
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			raw[i] = append(raw[i], cell)
		}
	}

	columns := make([]*Column, width)
	for i, name := range names {
		columns[i] = columnFromText(name, raw[i])
	}

	return NewTable(columns...)
}
