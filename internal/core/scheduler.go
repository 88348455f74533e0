package core

// scheduler.go runs background maintenance.
//
// The session sweeper evicts sessions that have been idle longer than the
// configured timeout and drops their cached tables. It is long-running and
// stops when its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often idle sessions are checked.
const DefaultSweepInterval = time.Minute

// StartSessionSweeper evicts idle sessions every interval until ctx is
// cancelled. Run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweepSessions()
		}
	}
}

// sweepSessions performs one eviction pass and returns how many sessions
// were removed.
func (s *Service) sweepSessions() int {
	start := time.Now()

	expired := s.sessions.Sweep()
	for _, sess := range expired {
		s.cache.Invalidate(sess.CacheKey)
	}

	if len(expired) > 0 {
		slog.Info("evicted idle sessions",
			"sessions_evicted", len(expired),
			"sessions_remaining", s.sessions.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return len(expired)
}
