// Package api serves the listener's operational HTTP surface: metrics,
// readiness and a JSON state snapshot.
package api

import (
	"encoding/json"
	"net/http"

	service "github.com/okian/livebattle/internal/app"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Status is the live connection state.
	Status() service.Status

	// Snapshot is the latest published listener state.
	Snapshot() service.Snapshot
}

// Server wires HTTP routes for the listener.
type Server struct {
	healthHandler *HealthHandler
	readyHandler  *ReadyHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		readyHandler:  NewReadyHandler(deps),
		statsHandler:  NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.readyHandler.HandleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
