package httpapi

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/signals/theirstack", s.handleComputeSignals)
	s.mux.HandleFunc("GET /api/signals", s.handleRecentSignals)
}
