package dataset

import (
	"io"
	"log/slog"
	"time"
)

// Load parses r as the format implied by name.
//
// The returned error is an *UnsupportedFormatError when the suffix is not
// recognised, or a *LoadError when parsing fails.
func Load(name string, r io.Reader) (*Table, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var t *Table
	switch format {
	case FormatCSV:
		t, err = readCSV(r)
	case FormatExcel:
		t, err = readExcel(r)
	case FormatJSON:
		t, err = readJSON(r)
	}
	if err != nil {
		return nil, &LoadError{Name: name, Format: format, Err: err}
	}

	slog.Debug("dataset loaded",
		"file", name,
		"format", format.String(),
		"rows", t.NumRows(),
		"columns", t.NumColumns(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return t, nil
}
