package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/explorer/internal/chart"
	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/logging"
	"github.com/JonMunkholm/explorer/internal/summary"
	"github.com/JonMunkholm/explorer/internal/web/templates"
)

// handleIndex renders the explorer page for the session and the chart
// selection in the query string.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.View(r.Context(), sessionID(r), chartRequest(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	renderHTML(w, r, templates.Page(view), http.StatusOK)
}

// handleUpload accepts a form upload. On success the browser is sent back to
// the page; on failure the page is re-rendered with the error and whatever
// table the session already had.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, err := readUpload(w, r, s.service.MaxFileSize())
	if err == nil {
		_, err = s.service.Upload(ctx, sessionID(r), file)
	}
	if err != nil {
		status := statusFor(err)
		if isHTMX(r) {
			s.respondError(w, r, err, status)
			return
		}

		msg := s.logError(r, err, status)
		view, verr := s.service.View(ctx, sessionID(r), chart.Request{})
		if verr != nil {
			s.respondError(w, r, verr, statusFor(verr))
			return
		}
		view.Error = &msg
		renderHTML(w, r, templates.Page(view), status)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleChartSVG serves the current chart as an SVG document. Nothing to
// draw, including no table yet, is 204.
func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	spec, err := s.service.Chart(r.Context(), sessionID(r), chartRequest(r))
	switch {
	case errors.Is(err, core.ErrNoTable):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		s.respondError(w, r, err, statusFor(err))
		return
	case spec == nil:
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderSVG(spec, &buf, s.service.RenderOptions()); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleAPIView returns the full view model as JSON.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.View(r.Context(), sessionID(r), chartRequest(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// ChartResponse is the body of GET /api/chart. Chart is null when there is
// nothing to draw.
type ChartResponse struct {
	Request chart.Request `json:"request"`
	Chart   *chart.Spec   `json:"chart"`
}

// handleAPIChart returns the chart spec for the session's table.
func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	req := chartRequest(r)
	spec, err := s.service.Chart(r.Context(), sessionID(r), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if table, terr := s.service.Table(sessionID(r)); terr == nil {
		req = chart.Resolve(table, req)
	}
	writeJSON(w, r, http.StatusOK, ChartResponse{Request: req, Chart: spec})
}

// UploadResponse is the body of a successful POST /api/upload.
type UploadResponse struct {
	FileName string          `json:"fileName"`
	Summary  summary.Summary `json:"summary"`
}

// handleAPIUpload accepts a multipart upload and returns the new table's
// summary.
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	file, err := readUpload(w, r, s.service.MaxFileSize())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	table, err := s.service.Upload(r.Context(), sessionID(r), file)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusCreated, UploadResponse{
		FileName: file.Name,
		Summary:  summary.Summarize(table),
	})
}

// handleAPIStatus reports sessions, cached tables and parse slots.
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Status())
}

// renderHTML buffers c so a render failure can still produce an error
// response.
func renderHTML(w http.ResponseWriter, r *http.Request, c templ.Component, status int) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
		respondErrorJSON(w, core.MapError(err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
