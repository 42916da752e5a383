package notifier

import (
	"log/slog"

	"github.com/amishk599/leadradar/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes alert-worthy signals to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each signal via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each signal with company, type, strength, and job count.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(signals []model.Signal) error {
	for _, s := range signals {
		n.logger.Info("new signal",
			"company", s.CompanyName,
			"type", s.SignalType,
			"strength", s.Strength,
			"job_count", s.Metadata.JobCount,
			"details", s.Details,
		)
	}
	return nil
}
