package api

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/livebattle/internal/app"
	"github.com/okian/livebattle/pkg/metrics"
)

// HealthHandler serves Prometheus metrics.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests with the Prometheus exposition
// of the listener registry. Process gauges are refreshed on every scrape.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	metrics.UpdateSystemMemoryUsage(ms.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	h.metrics.ServeHTTP(w, r)
}

// ReadyHandler reports whether the feed session is connected.
type ReadyHandler struct {
	deps Dependencies
}

// NewReadyHandler creates a new readiness handler.
func NewReadyHandler(deps Dependencies) *ReadyHandler {
	return &ReadyHandler{deps: deps}
}

type readyResponse struct {
	Status string `json:"status"`
}

// HandleReady handles GET /readyz: 200 when connected, 503 otherwise.
func (h *ReadyHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	status := h.deps.Status()
	code := http.StatusOK
	if status != service.StatusConnected {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, readyResponse{Status: status.String()})
}
