// Package sweeper periodically purges expired sessions. Resolve already
// drops expired sessions lazily; the sweep only reclaims ones nobody asks
// about again.
package sweeper

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/metrics"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/sessions"
	"github.com/robfig/cron/v3"
)

// Sweeper periodically removes expired sessions. Resolve already ignores
// them, so sweeping only reclaims space.
type Sweeper struct {
	sessions sessions.Repository
	interval time.Duration
	logger   logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(repo sessions.Repository, interval time.Duration, logger logging.Logger, mt *metrics.Metrics) *Sweeper {
	return &Sweeper{
		sessions: repo,
		interval: interval,
		logger:   logger.With("module", "sweeper"),
		metrics:  mt,
		now:      time.Now,
	}
}

// Sweep deletes every session expired at the current time.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.metrics.RecordSwept(n)
	return n, nil
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables sweeping and Run returns at once.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info(ctx, "session sweep disabled")
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		n, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error(ctx, "session sweep failed", "error", err)
			return
		}
		if n > 0 {
			s.logger.Info(ctx, "expired sessions swept", "count", n)
		}
	}))

	s.logger.Info(ctx, "session sweep started", "interval", s.interval.String())
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	s.logger.Info(context.Background(), "session sweep stopped")
	return nil
}
