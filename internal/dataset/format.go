package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a recognised file family.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatExcel
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatExcel:
		return "excel"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// SupportedExtensions lists the suffixes the loader accepts, in picker order.
var SupportedExtensions = []string{".csv", ".xls", ".xlsx", ".json"}

// FormatFor maps a file name to its format using the suffix alone.
func FormatFor(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xls", ".xlsx":
		return FormatExcel, nil
	case ".json":
		return FormatJSON, nil
	}
	return FormatUnknown, &UnsupportedFormatError{Name: name, Ext: ext}
}

// UnsupportedFormatError is returned for file names outside the supported
// suffix families.
type UnsupportedFormatError struct {
	Name string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file format %s for %q: expected one of %s",
		ext, e.Name, strings.Join(SupportedExtensions, ", "))
}

// LoadError wraps a parse failure. No table is produced when it is returned.
type LoadError struct {
	Name   string
	Format Format
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s file %q: %v", e.Format, e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var (
	errNoColumns   = errors.New("no columns to parse from file")
	errInvalidJSON = errors.New("invalid or truncated JSON document")
)
