// Package sweeper periodically removes expired verification codes.
package sweeper

import (
	"context"
	"time"

	"github.com/moodgarden/verify-api/internal/metrics"
	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Minute

// Store is the part of verification.Store the sweeper uses.
type Store interface {
	Sweep(ctx context.Context) (int, error)
}

type Sweeper struct {
	Store    Store
	Interval time.Duration
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Run sweeps every Interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger().Info("sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger().Info("sweeper stopped")
			return
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	n, err := s.Store.Sweep(ctx)
	s.Metrics.CodesSwept(n)
	if err != nil {
		s.logger().Error("sweep failed", zap.Int("removed", n), zap.Error(err))
		return n, err
	}
	if n > 0 {
		s.logger().Info("expired codes removed", zap.Int("removed", n))
	}
	return n, nil
}

func (s *Sweeper) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
