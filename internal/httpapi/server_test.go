package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

// --- Fakes ---

type fakeComputer struct {
	signals []model.Signal
	err     error
	got     []string
	calls   int
}

func (f *fakeComputer) ComputeSignals(_ context.Context, companies []string) ([]model.Signal, error) {
	f.calls++
	f.got = companies
	return f.signals, f.err
}

type fakeStore struct {
	saved     []model.Signal
	saveErr   error
	recent    []model.Signal
	recentErr error
	gotLimit  int
}

func (s *fakeStore) Save(_ context.Context, signals []model.Signal) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, signals...)
	return nil
}

func (s *fakeStore) Recent(_ context.Context, limit int) ([]model.Signal, error) {
	s.gotLimit = limit
	return s.recent, s.recentErr
}

func (s *fakeStore) Close() error { return nil }

type panicComputer struct{}

func (panicComputer) ComputeSignals(context.Context, []string) ([]model.Signal, error) {
	panic("boom")
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func acmeSignal() model.Signal {
	return model.Signal{
		CompanyName: "Acme",
		SignalType:  model.SignalJobPosting,
		Details:     "3 new job postings in the last 30 days",
		Strength:    45,
		Metadata:    model.SignalMetadata{JobCount: 3, RecentTitles: []string{"SDR", "AE", "SE"}},
		CreatedAt:   time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

// --- Tests ---

func TestComputeSignals_OK(t *testing.T) {
	computer := &fakeComputer{signals: []model.Signal{acmeSignal()}}
	store := &fakeStore{}
	srv := NewServer(computer, store, false, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/signals/theirstack", `{"companies":["Acme","Globex"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if len(computer.got) != 2 || computer.got[0] != "Acme" || computer.got[1] != "Globex" {
		t.Errorf("computer got %v", computer.got)
	}

	var resp struct {
		Signals []map[string]any `json:"signals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Signals) != 1 {
		t.Fatalf("got %d signals, want 1", len(resp.Signals))
	}
	s := resp.Signals[0]
	if s["company_name"] != "Acme" || s["signal_type"] != "job_posting" || s["strength"] != float64(45) {
		t.Errorf("unexpected signal JSON: %v", s)
	}
	meta, ok := s["metadata"].(map[string]any)
	if !ok || meta["job_count"] != float64(3) {
		t.Errorf("unexpected metadata: %v", s["metadata"])
	}
	if len(store.saved) != 0 {
		t.Errorf("saved %d signals with persist disabled", len(store.saved))
	}
}

func TestComputeSignals_EmptyResultIsEmptyArray(t *testing.T) {
	srv := NewServer(&fakeComputer{}, &fakeStore{}, false, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/signals/theirstack", `{"companies":[]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"signals":[]}` {
		t.Errorf("body = %s, want {\"signals\":[]}", got)
	}
}

func TestComputeSignals_MissingAPIKey(t *testing.T) {
	srv := NewServer(&fakeComputer{err: model.ErrMissingAPIKey}, &fakeStore{}, false, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/signals/theirstack", `{"companies":["Acme"]}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "TheirStack API key not configured" {
		t.Errorf("error = %q", msg)
	}
}

func TestComputeSignals_UnexpectedError(t *testing.T) {
	srv := NewServer(&fakeComputer{err: errors.New("computing signals: context canceled")}, &fakeStore{}, false, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/signals/theirstack", `{"companies":["Acme"]}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "computing signals: context canceled" {
		t.Errorf("error = %q", msg)
	}
}

func TestComputeSignals_InvalidJSON(t *testing.T) {
	tests := map[string]string{
		"malformed":  `{"companies":`,
		"empty body": ``,
		"wrong type": `{"companies":"Acme"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			computer := &fakeComputer{}
			srv := NewServer(computer, &fakeStore{}, false, discardLogger())

			rec := do(t, srv.Handler(), http.MethodPost, "/api/signals/theirstack", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := decodeError(t, rec); msg != "invalid JSON body" {
				t.Errorf("error = %q", msg)
			}
			if computer.calls != 0 {
				t.Errorf("computer called %d times on bad body", computer.calls)
			}
		})
	}
}

func TestComputeSignals_Persist(t *testing.T) {
	store := &fakeStore{}
	srv := NewServer(&fakeComputer{signals: []model.Signal{acmeSignal()}}, store, true, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/signals/theirstack", `{"companies":["Acme"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.saved) != 1 || store.saved[0].CompanyName != "Acme" {
		t.Errorf("saved = %v", store.saved)
	}
}

func TestComputeSignals_PersistError(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("database is locked")}
	srv := NewServer(&fakeComputer{signals: []model.Signal{acmeSignal()}}, store, true, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/signals/theirstack", `{"companies":["Acme"]}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "database is locked" {
		t.Errorf("error = %q", msg)
	}
}

func TestComputeSignals_WrongMethod(t *testing.T) {
	srv := NewServer(&fakeComputer{}, &fakeStore{}, false, discardLogger())
	rec := do(t, srv.Handler(), http.MethodGet, "/api/signals/theirstack", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRecentSignals(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantLimit int
	}{
		{name: "default limit", target: "/api/signals", wantCode: http.StatusOK, wantLimit: 0},
		{name: "explicit limit", target: "/api/signals?limit=10", wantCode: http.StatusOK, wantLimit: 10},
		{name: "non numeric", target: "/api/signals?limit=ten", wantCode: http.StatusBadRequest},
		{name: "negative", target: "/api/signals?limit=-1", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{recent: []model.Signal{acmeSignal()}, gotLimit: -99}
			srv := NewServer(&fakeComputer{}, store, false, discardLogger())

			rec := do(t, srv.Handler(), http.MethodGet, tt.target, "")

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if store.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", store.gotLimit, tt.wantLimit)
			}
			var resp signalsResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Signals) != 1 {
				t.Errorf("got %d signals, want 1", len(resp.Signals))
			}
		})
	}
}

func TestRecentSignals_StoreError(t *testing.T) {
	srv := NewServer(&fakeComputer{}, &fakeStore{recentErr: errors.New("no such table")}, false, discardLogger())
	rec := do(t, srv.Handler(), http.MethodGet, "/api/signals", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := NewServer(&fakeComputer{}, &fakeStore{}, false, discardLogger())
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestRequestID(t *testing.T) {
	srv := NewServer(&fakeComputer{}, &fakeStore{}, false, discardLogger())

	t.Run("echoes client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("X-Request-ID = %q, want abc-123", got)
		}
	})

	t.Run("generates one", func(t *testing.T) {
		rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected generated X-Request-ID")
		}
	})
}

func TestRecoverPanic(t *testing.T) {
	srv := NewServer(panicComputer{}, &fakeStore{}, false, discardLogger())
	rec := do(t, srv.Handler(), http.MethodPost, "/api/signals/theirstack", `{"companies":["Acme"]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if msg := decodeError(t, rec); msg != fallbackErrorMessage {
		t.Errorf("error = %q", msg)
	}
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	srv := NewServer(&fakeComputer{}, &fakeStore{}, false, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx, addr)
	}()

	url := fmt.Sprintf("http://%s/healthz", addr)
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down within 2s")
	}
}
