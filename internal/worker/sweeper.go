// Package worker runs background maintenance jobs.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"board/internal/logger"
	"board/internal/repository"
)

// Sweeper periodically deletes expired verification codes.
type Sweeper struct {
	codes    repository.CodeRepository
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// NewSweeper creates a sweeper running every interval.
func NewSweeper(codes repository.CodeRepository, interval time.Duration, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{codes: codes, interval: interval, now: time.Now, log: log}
}

// RunOnce deletes every code expired by now and reports how many went.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.codes.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error("code sweep failed", zap.Error(err), logger.Since(start))
		return 0, err
	}
	s.log.Info("code sweep finished", zap.Int64("deleted", n), logger.Since(start))
	return n, nil
}

// Start sweeps in a background goroutine until ctx is cancelled.
// The returned channel is closed once the goroutine has exited.
func (s *Sweeper) Start(ctx context.Context) <-chan struct{} {
	stopped := make(chan struct{})
	if s.interval <= 0 {
		close(stopped)
		return stopped
	}

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = s.RunOnce(ctx)
			}
		}
	}()
	return stopped
}
