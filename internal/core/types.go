package core

import (
	"errors"
	"time"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned when an upload carries no file name and no bytes.
	ErrNoFile = errors.New("no file provided")

	// ErrNoTable is returned for table-dependent calls on a session that has
	// not loaded anything.
	ErrNoTable = errors.New("no table loaded for session")
)

// UploadedFile is a file as received from the client. It lives only for the
// duration of one upload call.
type UploadedFile struct {
	Name string
	Data []byte
}

// Size returns the payload length in bytes.
func (f UploadedFile) Size() int64 {
	return int64(len(f.Data))
}

// PreviewRows is how many leading rows the head preview shows.
const PreviewRows = 5

// Status is a point-in-time snapshot for the status endpoint.
type Status struct {
	Sessions     int                `json:"sessions"`
	CachedTables int                `json:"cachedTables"`
	Parses       ParseLimiterStatus `json:"parses"`
	CheckedAt    time.Time          `json:"checkedAt"`
}
