package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/amishk599/leadradar/internal/model"
)

const (
	maxBodyBytes = 1 << 20

	fallbackErrorMessage = "Failed to fetch job signals"
)

type computeRequest struct {
	Companies []string `json:"companies"`
}

type signalsResponse struct {
	Signals []model.Signal `json:"signals"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleComputeSignals(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	signals, err := s.computer.ComputeSignals(r.Context(), req.Companies)
	if err != nil {
		s.logger.Error("computing signals", "request_id", RequestIDFrom(r.Context()), "error", err)
		WriteError(w, http.StatusInternalServerError, errorMessage(err))
		return
	}

	if s.persist && len(signals) > 0 {
		if err := s.store.Save(r.Context(), signals); err != nil {
			s.logger.Error("saving signals", "request_id", RequestIDFrom(r.Context()), "error", err)
			WriteError(w, http.StatusInternalServerError, errorMessage(err))
			return
		}
	}

	if signals == nil {
		signals = []model.Signal{}
	}
	WriteJSON(w, http.StatusOK, signalsResponse{Signals: signals})
}

func (s *Server) handleRecentSignals(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	signals, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("loading recent signals", "request_id", RequestIDFrom(r.Context()), "error", err)
		WriteError(w, http.StatusInternalServerError, errorMessage(err))
		return
	}
	if signals == nil {
		signals = []model.Signal{}
	}
	WriteJSON(w, http.StatusOK, signalsResponse{Signals: signals})
}

// errorMessage picks the client-facing text for a failed request. Configuration
// errors report their message without the setting prefix.
func errorMessage(err error) string {
	var cfgErr *model.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Msg
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackErrorMessage
}
