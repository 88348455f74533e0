package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/explorer/internal/chart"
	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/logging"
)

// multipartOverhead is the allowance for form boundaries and headers on top
// of the file size limit.
const multipartOverhead = 1 << 20

// maxFormMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const maxFormMemory = 32 << 20

// sessionID returns the ID the Session middleware assigned to r.
func sessionID(r *http.Request) string {
	return core.SessionIDFromContext(r.Context())
}

// chartRequest reads the kind, x and y query parameters. An unknown kind
// draws nothing.
func chartRequest(r *http.Request) chart.Request {
	q := r.URL.Query()

	kind, err := chart.ParseKind(q.Get("kind"))
	if err != nil {
		logging.FromContext(r.Context()).Debug("ignoring plot type", "error", err)
	}

	return chart.Request{
		Kind:      kind,
		Primary:   q.Get("x"),
		Secondary: q.Get("y"),
	}
}

// readUpload pulls the "file" part out of a multipart request, refusing
// bodies larger than limit.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) (core.UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return core.UploadedFile{}, fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooLarge.Limit)
		case errors.Is(err, http.ErrNotMultipart):
			return core.UploadedFile{}, core.ErrNoFile
		}
		return core.UploadedFile{}, fmt.Errorf("read upload form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return core.UploadedFile{}, core.ErrNoFile
		}
		return core.UploadedFile{}, fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return core.UploadedFile{}, fmt.Errorf("read uploaded file: %w", err)
	}

	return core.UploadedFile{Name: header.Filename, Data: data}, nil
}
