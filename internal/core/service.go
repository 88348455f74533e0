package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/explorer/internal/chart"
	"github.com/JonMunkholm/explorer/internal/dataset"
	"github.com/JonMunkholm/explorer/internal/logging"
)

// DefaultMaxFileSize is the upload size limit when none is configured.
const DefaultMaxFileSize int64 = 50 << 20

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	MaxFileSize   int64
	MaxConcurrent int
	MaxWait       time.Duration
	IdleTimeout   time.Duration
	Chart         chart.RenderOptions

	// Cache defaults to a new MemoryCache.
	Cache Cache
}

// Service holds every session's loaded table and answers view requests.
type Service struct {
	cache       Cache
	sessions    *SessionStore
	limiter     *ParseLimiter
	maxFileSize int64
	render      chart.RenderOptions
	parse       func(name string, r io.Reader) (*dataset.Table, error)
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Chart.Width <= 0 || opts.Chart.Height <= 0 {
		opts.Chart = chart.DefaultRenderOptions()
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}

	return &Service{
		cache:       opts.Cache,
		sessions:    NewSessionStore(opts.IdleTimeout),
		limiter:     NewParseLimiter(opts.MaxConcurrent, opts.MaxWait),
		maxFileSize: opts.MaxFileSize,
		render:      opts.Chart,
		parse:       dataset.Load,
	}
}

// MaxFileSize returns the upload size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// Limiter exposes the parse limiter for shutdown draining.
func (s *Service) Limiter() *ParseLimiter {
	return s.limiter
}

// Upload parses file and makes it the session's current table. On any error
// the session keeps the table it had before.
func (s *Service) Upload(ctx context.Context, sessionID string, file UploadedFile) (*dataset.Table, error) {
	log := logging.WithFields(ctx, "file", file.Name)

	if file.Name == "" && len(file.Data) == 0 {
		return nil, ErrNoFile
	}
	if file.Size() > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, file.Size(), s.maxFileSize)
	}
	if _, err := dataset.FormatFor(file.Name); err != nil {
		return nil, err
	}

	start := time.Now()
	key := CacheKey(sessionID, file.Data)
	table, err := s.cache.GetOrLoad(ctx, key, func() (*dataset.Table, error) {
		// The slot is held for the whole parse, even after every caller
		// has stopped waiting.
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
		return s.parse(file.Name, bytes.NewReader(file.Data))
	})
	if err != nil {
		if ctx.Err() != nil {
			s.dropUnadopted(sessionID, key)
		}
		log.Warn("upload rejected", "error", err)
		return nil, err
	}

	if prev := s.sessions.Replace(sessionID, file.Name, key, table); prev != "" && prev != key {
		s.cache.Invalidate(prev)
	}

	log.Info("dataset uploaded",
		"bytes", file.Size(),
		"rows", table.NumRows(),
		"columns", table.NumColumns(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

// dropUnadopted evicts key after an abandoned upload unless the session
// already shows that table.
func (s *Service) dropUnadopted(sessionID, key string) {
	if sess, ok := s.sessions.Get(sessionID); ok && sess.CacheKey == key {
		return
	}
	s.cache.Invalidate(key)
}

// State returns what the session has loaded; the zero State if nothing.
func (s *Service) State(sessionID string) State {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return State{}
	}
	return State{FileName: sess.FileName, Table: sess.Table}
}

// Table returns the session's current table.
func (s *Service) Table(sessionID string) (*dataset.Table, error) {
	st := s.State(sessionID)
	if st.Table == nil {
		return nil, ErrNoTable
	}
	return st.Table, nil
}

// View describes the page for the session and request.
func (s *Service) View(ctx context.Context, sessionID string, req chart.Request) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, err
	}
	return Update(s.State(sessionID), req, s.render), nil
}

// Chart dispatches req against the session's table. A nil Spec with a nil
// error means there is nothing to draw.
func (s *Service) Chart(ctx context.Context, sessionID string, req chart.Request) (*chart.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := s.Table(sessionID)
	if err != nil {
		return nil, err
	}
	return chart.Dispatch(table, req)
}

// RenderOptions returns the configured chart size.
func (s *Service) RenderOptions() chart.RenderOptions {
	return s.render
}

// Status reports sessions, cache and parse-slot usage.
func (s *Service) Status() Status {
	return Status{
		Sessions:     s.sessions.Len(),
		CachedTables: s.cache.Len(),
		Parses:       s.limiter.Status(),
		CheckedAt:    time.Now().UTC(),
	}
}
