package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/explorer/internal/chart"
	"github.com/JonMunkholm/explorer/internal/config"
	"github.com/JonMunkholm/explorer/internal/core"
)

const peopleCSV = "name,age\nAlice,30\nBob,25\nCarol,40\n"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			ShutdownTimeout: time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
		},
		Session: config.SessionConfig{
			IdleTimeout:   time.Minute,
			SweepInterval: time.Minute,
			CookieName:    "explorer_session",
		},
		Chart:    config.ChartConfig{Width: 400, Height: 300},
		Security: config.SecurityConfig{EnableCSP: true},
		Logging:  config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	svc := core.NewService(core.Options{
		MaxFileSize:   cfg.Upload.MaxFileSize,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		IdleTimeout:   cfg.Session.IdleTimeout,
		Chart:         chart.RenderOptions{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
	})
	return NewServer(svc, cfg)
}

// browser replays the session cookie like a real client.
type browser struct {
	h       http.Handler
	cookies []*http.Cookie
}

func newBrowser(s *Server) *browser {
	return &browser{h: s.Router()}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		b.cookies = cs
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) upload(t *testing.T, target, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	return b.do(uploadRequest(t, target, name, content))
}

func uploadRequest(t *testing.T, target, name, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestIndex_NothingUploaded(t *testing.T) {
	b := newBrowser(newTestServer(t))

	rec := b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Dataset Explorer</h1>")
	assert.Contains(t, body, `name="file"`)
	assert.NotContains(t, body, `id="preview"`)

	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Len(t, b.cookies, 1)
	assert.Equal(t, "explorer_session", b.cookies[0].Name)
}

func TestUpload_RedirectsThenRendersPage(t *testing.T) {
	b := newBrowser(newTestServer(t))

	rec := b.upload(t, "/upload", "people.csv", peopleCSV)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = b.get("/?kind=pie&x=name&y=age")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `id="preview"`)
	assert.Contains(t, body, "<td>Alice</td>")
	assert.Contains(t, body, "3 rows, 2 columns")
	assert.Contains(t, body, `<option value="pie" selected>`)
	assert.Contains(t, body, `name="y"`)
	assert.Contains(t, body, "data:image/svg+xml;base64,")
	assert.Contains(t, body, `id="stats"`)
}

func TestUpload_FailureKeepsPreviousTable(t *testing.T) {
	b := newBrowser(newTestServer(t))

	require.Equal(t, http.StatusSeeOther, b.upload(t, "/upload", "people.csv", peopleCSV).Code)

	rec := b.upload(t, "/upload", "broken.json", `[{"name":"Alice","age":30},{"name":"Bo`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "FILE003")
	assert.Contains(t, body, "<td>Alice</td>", "previous table still shown")
	assert.Contains(t, body, "File: <strong>people.csv</strong>")
}

func TestUpload_Rejections(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Upload.MaxFileSize = 16 })

	tests := []struct {
		name    string
		file    string
		content string
		status  int
		code    string
	}{
		{"unsupported", "notes.txt", "hello", http.StatusUnsupportedMediaType, "FILE002"},
		{"too large", "big.csv", strings.Repeat("a,b\n", 50), http.StatusRequestEntityTooLarge, "FILE001"},
		{"no file", "", "", http.StatusBadRequest, "FILE004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newBrowser(s).upload(t, "/upload", tt.file, tt.content)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
		})
	}
}

func TestUpload_HTMXGetsPartial(t *testing.T) {
	b := newBrowser(newTestServer(t))

	req := uploadRequest(t, "/upload", "notes.txt", "hello")
	req.Header.Set("HX-Request", "true")
	rec := b.do(req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<div class="alert"`))
}

func TestChartSVG(t *testing.T) {
	b := newBrowser(newTestServer(t))

	assert.Equal(t, http.StatusNoContent, b.get("/chart.svg?kind=bar").Code, "no table yet")

	require.Equal(t, http.StatusSeeOther, b.upload(t, "/upload", "people.csv", peopleCSV).Code)

	rec := b.get("/chart.svg?kind=histogram&x=age")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	assert.Equal(t, http.StatusNoContent, b.get("/chart.svg").Code, "no plot type")
	assert.Equal(t, http.StatusNoContent, b.get("/chart.svg?kind=radar").Code, "unknown plot type")

	rec = b.get("/chart.svg?kind=bar&x=name")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "CHART001")
}

func TestAPI_Flow(t *testing.T) {
	b := newBrowser(newTestServer(t))

	rec := b.get("/api/chart?kind=bar")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SES001", decodeJSON(t, rec)["code"])

	rec = b.upload(t, "/api/upload", "people.csv", peopleCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	up := decodeJSON(t, rec)
	assert.Equal(t, "people.csv", up["fileName"])
	assert.Equal(t, float64(3), up["summary"].(map[string]any)["rowCount"])

	rec = b.get("/api/chart?kind=pie&x=name&y=age")
	require.Equal(t, http.StatusOK, rec.Code)
	ch := decodeJSON(t, rec)
	spec := ch["chart"].(map[string]any)
	assert.Equal(t, "pie", spec["family"])
	assert.Len(t, spec["slices"], 3)

	rec = b.get("/api/chart?kind=histogram")
	require.Equal(t, http.StatusOK, rec.Code)
	req := decodeJSON(t, rec)["request"].(map[string]any)
	assert.Equal(t, "name", req["x"], "defaults to first column")

	rec = b.get("/api/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeJSON(t, rec)["chart"])

	rec = b.get("/api/view?kind=histogram&x=age")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeJSON(t, rec)
	assert.Equal(t, true, view["loaded"])
	assert.Equal(t, "Dataset Explorer", view["title"])
	assert.Contains(t, view["svg"], "<svg")

	rec = b.get("/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeJSON(t, rec)
	assert.Equal(t, float64(1), status["sessions"])
	assert.Equal(t, float64(1), status["cachedTables"])
}

func TestAPI_ViewEncodesUndefinedStats(t *testing.T) {
	b := newBrowser(newTestServer(t))
	require.Equal(t, http.StatusCreated, b.upload(t, "/api/upload", "one.csv", "n\n4\n").Code)

	rec := b.get("/api/view")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stats := decodeJSON(t, rec)["summary"].(map[string]any)["stats"].([]any)
	require.Len(t, stats, 1)
	assert.Nil(t, stats[0].(map[string]any)["std"])
}

func TestAPI_RequiresKey(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})

	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", "X-API-Key", "nope", http.StatusForbidden},
		{"header", "X-API-Key", "secret", http.StatusOK},
		{"bearer", "Authorization", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "pages are not behind the key")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, UploadLimit: 1}
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeJSON(t, rec)["code"])
}

func TestSession_MalformedCookieReplaced(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "explorer_session", Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "not-a-uuid", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessions_AreIsolated(t *testing.T) {
	s := newTestServer(t)
	alice, bob := newBrowser(s), newBrowser(s)

	require.Equal(t, http.StatusSeeOther, alice.upload(t, "/upload", "people.csv", peopleCSV).Code)
	bob.get("/")

	assert.Contains(t, alice.get("/").Body.String(), `id="preview"`)
	assert.NotContains(t, bob.get("/").Body.String(), `id="preview"`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{core.ErrNoFile, http.StatusBadRequest},
		{core.ErrNoTable, http.StatusNotFound},
		{core.ErrParseQueueFull, http.StatusServiceUnavailable},
		{errRateLimited, http.StatusTooManyRequests},
		{&chart.RenderError{Kind: chart.KindBar, Column: "x", Err: assert.AnError}, http.StatusUnprocessableEntity},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
