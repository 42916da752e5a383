package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/leadradar/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Server exposes signal computation and the stored signal feed over HTTP.
type Server struct {
	computer model.SignalComputer
	store    model.SignalStore
	persist  bool
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer wires the routes. When persist is true, computed signals are
// saved to store before the response is written.
func NewServer(computer model.SignalComputer, store model.SignalStore, persist bool, logger *slog.Logger) *Server {
	s := &Server{
		computer: computer,
		store:    store,
		persist:  persist,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(s.mux, RequestID, s.accessLog, s.recoverPanic)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
