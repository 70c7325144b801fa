package usecase

import (
	"context"
	"log/slog"
	"time"

	"SavePublish/internal/ports"
)

// SessionSweeper drops suspended round trips whose prompt was never answered.
type SessionSweeper struct {
	driver ports.Scheduler
	store  ports.SessionExpirer
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionSweeper returns a helper that expires sessions older than ttl on
// every scheduler tick.
func NewSessionSweeper(driver ports.Scheduler, store ports.SessionExpirer, ttl time.Duration, logger *slog.Logger) *SessionSweeper {
	return &SessionSweeper{driver: driver, store: store, ttl: ttl, logger: logger}
}

// Start registers the sweep with the provided scheduler.
func (s *SessionSweeper) Start(ctx context.Context) error {
	if s.driver == nil || s.store == nil || s.ttl <= 0 {
		return nil
	}

	job := func(trigger time.Time) {
		_, _ = s.Sweep(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Sweep expires sessions last updated more than ttl before now.
func (s *SessionSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	n, err := s.store.ExpireSessions(ctx, now.Add(-s.ttl))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("session sweep failed", "error", err)
		}
		return 0, err
	}
	if n > 0 && s.logger != nil {
		s.logger.Info("expired abandoned sessions", "count", n)
	}
	return n, nil
}

// Stop gracefully tears down the underlying scheduler.
func (s *SessionSweeper) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
