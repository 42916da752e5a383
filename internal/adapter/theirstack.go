package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

const (
	// TheirStackBaseURL is the production TheirStack API root.
	TheirStackBaseURL = "https://api.theirstack.com/v1"

	// Fixed query window: postings from the last 30 days, at most 20 per company.
	theirStackMaxAgeDays = 30
	theirStackLimit      = 20
)

// theirStackSearchRequest is the POST /jobs/search request body.
type theirStackSearchRequest struct {
	CompanyName        string `json:"company_name"`
	PostedAtMaxAgeDays int    `json:"posted_at_max_age_days"`
	Limit              int    `json:"limit"`
}

// theirStackJob represents a single posting in the search response.
// Older payloads carry "title", the current API uses "job_title".
type theirStackJob struct {
	Title      string `json:"title"`
	JobTitle   string `json:"job_title"`
	URL        string `json:"url"`
	Location   string `json:"location"`
	DatePosted string `json:"date_posted"`
}

// theirStackSearchResponse is the top-level search response. A missing
// "jobs" field decodes to a nil slice, which callers treat as no postings.
type theirStackSearchResponse struct {
	Jobs []*theirStackJob `json:"jobs"`
}

// TheirStackAdapter searches the TheirStack job-postings API by company name.
type TheirStackAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewTheirStackAdapter creates an adapter for the TheirStack API rooted at baseURL.
// An empty baseURL selects the production endpoint.
func NewTheirStackAdapter(baseURL, apiKey string, client *http.Client) *TheirStackAdapter {
	if baseURL == "" {
		baseURL = TheirStackBaseURL
	}
	return &TheirStackAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// SearchJobs returns the postings TheirStack reports for company, in the
// order the API returned them.
func (a *TheirStackAdapter) SearchJobs(ctx context.Context, company string) ([]model.Posting, error) {
	what := "theirstack search for " + company
	resp, err := postJSON(ctx, a.client, a.baseURL+"/jobs/search", a.apiKey, theirStackSearchRequest{
		CompanyName:        company,
		PostedAtMaxAgeDays: theirStackMaxAgeDays,
		Limit:              theirStackLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp, what); err != nil {
		return nil, err
	}

	var tsResp theirStackSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&tsResp); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", what, err)
	}

	postings := make([]model.Posting, 0, len(tsResp.Jobs))
	for i, tj := range tsResp.Jobs {
		if tj == nil {
			return nil, fmt.Errorf("%s: jobs[%d] is null", what, i)
		}
		p := model.Posting{
			Title:    strings.TrimSpace(tj.Title),
			URL:      tj.URL,
			Location: tj.Location,
		}
		if p.Title == "" {
			p.Title = strings.TrimSpace(tj.JobTitle)
		}
		if p.Title == "" {
			return nil, fmt.Errorf("%s: jobs[%d] has no title", what, i)
		}
		if t, ok := parseDatePosted(tj.DatePosted); ok {
			p.DatePosted = &t
		}
		postings = append(postings, p)
	}

	return postings, nil
}

// parseDatePosted accepts both the date-only and RFC 3339 forms the API emits.
func parseDatePosted(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
