package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler periodically re-triggers a catalog download. The catalog
// itself never expires on its own; this is the explicit re-trigger for
// long-running processes, opt-in via config.
type Scheduler struct {
	Interval time.Duration
	Download func(context.Context) error
	Log      *zap.Logger
}

// Start runs the download once immediately and then on every interval
// tick until ctx is cancelled. A failed refresh keeps the previous
// catalog; segments replace only on success.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		s.runOnce(ctx)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.Download(ctx); err != nil {
		s.Log.Warn("catalog refresh failed, keeping previous catalog", zap.Error(err))
		return
	}
	s.Log.Info("catalog refreshed")
}
