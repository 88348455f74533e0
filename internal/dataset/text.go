package dataset

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// NewTextReader wraps r for text parsing. A leading BOM is consumed (UTF-16
// input with a BOM is decoded to UTF-8) and invalid UTF-8 sequences are
// replaced with U+FFFD as they stream through.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(runes.ReplaceIllFormed()))
}
