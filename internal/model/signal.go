package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignalType classifies the buying-intent activity a Signal represents.
type SignalType string

const (
	SignalJobPosting     SignalType = "job_posting"
	SignalTechChange     SignalType = "tech_change"
	SignalFunding        SignalType = "funding"
	SignalHiringVelocity SignalType = "hiring_velocity"
)

// Signal is a normalized record of observed buying-intent activity for a company.
type Signal struct {
	ID          uuid.UUID      `json:"id"`
	CompanyName string         `json:"company_name"`
	SignalType  SignalType     `json:"signal_type"`
	Details     string         `json:"details"`
	Strength    int            `json:"strength"` // 0-100
	Metadata    SignalMetadata `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SignalMetadata carries the raw numbers a job_posting signal was scored from.
type SignalMetadata struct {
	JobCount     int      `json:"job_count"`
	RecentTitles []string `json:"recent_titles"` // at most 5, provider order
}

// Posting is a single job posting as reported by the job-postings provider.
type Posting struct {
	Title      string
	URL        string
	Location   string
	DatePosted *time.Time // nullable (provider may omit it)
}

// JobSearcher looks up recent job postings for a company.
type JobSearcher interface {
	SearchJobs(ctx context.Context, company string) ([]Posting, error)
}

// SignalStore persists signals and serves the dashboard's recent-signals query.
type SignalStore interface {
	Save(ctx context.Context, signals []Signal) error
	Recent(ctx context.Context, limit int) ([]Signal, error)
	Close() error
}

// Notifier sends alerts for newly computed signals.
type Notifier interface {
	Notify(signals []Signal) error
}

// SignalFilter decides whether a signal is worth alerting on.
type SignalFilter interface {
	Match(s Signal) bool
}

// SignalComputer turns a list of company names into signals.
type SignalComputer interface {
	ComputeSignals(ctx context.Context, companies []string) ([]Signal, error)
}
