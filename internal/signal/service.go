package signal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/leadradar/internal/model"
)

const (
	// RecentTitlesLimit is how many of the provider's first postings are kept as recent titles.
	RecentTitlesLimit = 5

	defaultRequestTimeout = 15 * time.Second
)

// Options carries the process configuration a batch needs. It is read once
// per batch and never changes during one.
type Options struct {
	APIKey         string        // provider credential; empty fails every batch
	Concurrency    int           // max in-flight company lookups, <= 1 means sequential
	RequestTimeout time.Duration // per-company bound, defaults to 15s
}

// Service computes job_posting signals for a list of companies.
type Service struct {
	searcher model.JobSearcher
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a Service around a provider searcher.
func NewService(searcher model.JobSearcher, opts Options, logger *slog.Logger) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	return &Service{
		searcher: searcher,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// ComputeSignals looks up every company and returns one signal per company
// that has at least one recent posting, in input order. A failed lookup only
// drops that company. The batch as a whole fails when the provider credential
// is missing (before any request is made) or when ctx is cancelled.
func (s *Service) ComputeSignals(ctx context.Context, companies []string) ([]model.Signal, error) {
	if s.opts.APIKey == "" {
		return nil, model.ErrMissingAPIKey
	}

	results := make([]*model.Signal, len(companies))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, company := range companies {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = s.computeOne(ctx, company)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("computing signals: %w", err)
	}

	signals := make([]model.Signal, 0, len(companies))
	for _, sig := range results {
		if sig != nil {
			signals = append(signals, *sig)
		}
	}

	s.logger.Info("computed signals",
		"companies", len(companies),
		"signals", len(signals),
	)
	return signals, nil
}

// computeOne returns nil when the company yields no signal.
func (s *Service) computeOne(ctx context.Context, company string) *model.Signal {
	reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	postings, err := s.searcher.SearchJobs(reqCtx, company)
	if err != nil {
		s.logger.Warn("job search failed, skipping company", "company", company, "error", err)
		return nil
	}
	if len(postings) == 0 {
		s.logger.Debug("no recent postings", "company", company)
		return nil
	}

	sig := BuildJobPostingSignal(company, postings, s.now())
	return &sig
}

// BuildJobPostingSignal summarizes a non-empty posting list into a signal.
// Postings are taken in the order given; the first ones are treated as the most recent.
func BuildJobPostingSignal(company string, postings []model.Posting, now time.Time) model.Signal {
	jobCount := len(postings)
	recent := postings[:min(jobCount, RecentTitlesLimit)]

	titles := make([]string, 0, len(recent))
	for _, p := range recent {
		titles = append(titles, p.Title)
	}

	return model.Signal{
		ID:          uuid.New(),
		CompanyName: company,
		SignalType:  model.SignalJobPosting,
		Details:     fmt.Sprintf("%d new job postings in the last 30 days", jobCount),
		Strength:    ScoreSignal(jobCount, len(titles)),
		Metadata: model.SignalMetadata{
			JobCount:     jobCount,
			RecentTitles: titles,
		},
		CreatedAt: now.UTC(),
	}
}
