package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/leadradar/internal/poller"
)

// Scheduler owns the main loop: it runs the signal poller once, then again
// every interval.
type Scheduler struct {
	poller   *poller.SignalPoller
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that polls at the given interval.
func NewScheduler(p *poller.SignalPoller, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		poller:   p,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the polling loop. It runs one immediate cycle, then waits the
// configured interval between cycles. It returns nil when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"companies", len(s.poller.Companies()),
	)

	s.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.pollOnce(ctx)
		}
	}
}

func (s *Scheduler) pollOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.poller.Poll(ctx); err != nil {
		s.logger.Error("poll failed", "error", err)
		return
	}
	s.logger.Debug("poll cycle complete", "took", time.Since(start).String())
}
