package poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/leadradar/internal/model"
)

// SignalPoller owns the full poll pipeline for the configured companies:
// compute → save → filter → notify.
type SignalPoller struct {
	companies []string
	computer  model.SignalComputer
	store     model.SignalStore
	filter    model.SignalFilter
	notifier  model.Notifier
	logger    *slog.Logger
}

// NewSignalPoller creates a poller wired with all its dependencies.
func NewSignalPoller(
	companies []string,
	computer model.SignalComputer,
	store model.SignalStore,
	filter model.SignalFilter,
	notifier model.Notifier,
	logger *slog.Logger,
) *SignalPoller {
	return &SignalPoller{
		companies: companies,
		computer:  computer,
		store:     store,
		filter:    filter,
		notifier:  notifier,
		logger:    logger,
	}
}

// Companies returns the company names polled each cycle.
func (p *SignalPoller) Companies() []string {
	return p.companies
}

// Poll runs one cycle. Every computed signal is stored; only those passing the
// filter are sent to the notifier.
func (p *SignalPoller) Poll(ctx context.Context) error {
	signals, err := p.computer.ComputeSignals(ctx, p.companies)
	if err != nil {
		return fmt.Errorf("polling signals: %w", err)
	}

	if len(signals) > 0 {
		if err := p.store.Save(ctx, signals); err != nil {
			return fmt.Errorf("polling signals: saving: %w", err)
		}
	}

	var matched []model.Signal
	for _, s := range signals {
		if p.filter.Match(s) {
			matched = append(matched, s)
		}
	}

	if len(matched) > 0 {
		if err := p.notifier.Notify(matched); err != nil {
			return fmt.Errorf("polling signals: notifying: %w", err)
		}
	}

	p.logger.Info("polled companies",
		"companies", len(p.companies),
		"signals", len(signals),
		"matched", len(matched),
	)

	return nil
}
