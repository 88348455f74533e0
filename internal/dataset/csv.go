package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// readCSV parses comma-separated text with a header row.
func readCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(NewTextReader(r))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errNoColumns
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	names := normalizeHeaders(header, len(header))
	raw := make([][]string, len(names))

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}

		if len(record) > len(names) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(names), len(record))
		}

		for i := range names {
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			raw[i] = append(raw[i], cell)
		}
	}

	columns := make([]*Column, len(names))
	for i, name := range names {
		columns[i] = columnFromText(name, raw[i])
	}

	return NewTable(columns...)
}
