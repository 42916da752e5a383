package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

func TestSearchJobs_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{"title": "Staff Engineer", "url": "https://acme.example/jobs/1", "location": "Remote", "date_posted": "2026-10-10"},
			{"job_title": "Data Engineer", "url": "https://acme.example/jobs/2", "date_posted": "2026-10-08T09:30:00Z"},
			{"title": "Designer"}
		],
		"metadata": {"total_results": 3}
	}`

	var gotReq theirStackSearchRequest
	var gotAuth, gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewTheirStackAdapter(srv.URL, "secret-key", srv.Client())
	postings, err := a.SearchJobs(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/jobs/search" {
		t.Errorf("request = %s %s, want POST /jobs/search", gotMethod, gotPath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer secret-key")
	}
	if gotReq.CompanyName != "Acme" || gotReq.PostedAtMaxAgeDays != 30 || gotReq.Limit != 20 {
		t.Errorf("request body = %+v, want company Acme, 30 days, limit 20", gotReq)
	}

	if len(postings) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(postings))
	}
	if postings[0].Title != "Staff Engineer" || postings[0].Location != "Remote" {
		t.Errorf("posting[0] = %+v", postings[0])
	}
	if postings[0].DatePosted == nil || !postings[0].DatePosted.Equal(time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("posting[0].DatePosted = %v", postings[0].DatePosted)
	}
	if postings[1].Title != "Data Engineer" {
		t.Errorf("posting[1].Title = %q, want job_title fallback", postings[1].Title)
	}
	if postings[1].DatePosted == nil {
		t.Error("posting[1].DatePosted should parse RFC 3339")
	}
	if postings[2].DatePosted != nil {
		t.Errorf("posting[2].DatePosted = %v, want nil", postings[2].DatePosted)
	}
}

func TestSearchJobs_MissingJobsField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"metadata": {}}`))
	}))
	defer srv.Close()

	a := NewTheirStackAdapter(srv.URL, "k", srv.Client())
	postings, err := a.SearchJobs(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}

func TestSearchJobs_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer srv.Close()

	a := NewTheirStackAdapter(srv.URL, "k", srv.Client())
	if _, err := a.SearchJobs(context.Background(), "Bad Co"); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestSearchJobs_MalformedEntries(t *testing.T) {
	tests := map[string]string{
		"null entry":       `{"jobs": [null, {"title": "SRE"}]}`,
		"missing title":    `{"jobs": [{"title": "SRE"}, {"url": "https://acme.example/jobs/2"}]}`,
		"blank job_title":  `{"jobs": [{"job_title": "   "}]}`,
		"entry not object": `{"jobs": ["SRE"]}`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(payload))
			}))
			defer srv.Close()

			a := NewTheirStackAdapter(srv.URL, "k", srv.Client())
			postings, err := a.SearchJobs(context.Background(), "Odd Co")
			if err == nil {
				t.Fatalf("expected error, got %d postings", len(postings))
			}
		})
	}
}

func TestSearchJobs_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewTheirStackAdapter(srv.URL, "k", srv.Client())
	_, err := a.SearchJobs(context.Background(), "Busy Co")
	if err == nil {
		t.Fatal("expected error for HTTP 429, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || httpErr.RetryAfter != 30*time.Second {
		t.Errorf("HTTPError = %+v", httpErr)
	}
}

func TestSearchJobs_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewTheirStackAdapter(srv.URL, "k", srv.Client())
	_, err := a.SearchJobs(ctx, "Acme")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewTheirStackAdapter_DefaultBaseURL(t *testing.T) {
	a := NewTheirStackAdapter("", "k", http.DefaultClient)
	if a.baseURL != TheirStackBaseURL {
		t.Errorf("baseURL = %q, want %q", a.baseURL, TheirStackBaseURL)
	}
	a = NewTheirStackAdapter("http://localhost:9999/v1/", "k", http.DefaultClient)
	if a.baseURL != "http://localhost:9999/v1" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", a.baseURL)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"120", 120 * time.Second},
		{" 5 ", 5 * time.Second},
		{"-3", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
	}
	for _, tc := range tests {
		if got := parseRetryAfter(tc.in); got != tc.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
