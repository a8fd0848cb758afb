package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks connectivity to a dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler. checks may be empty, e.g. when
// flash messages are kept in memory.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	if checks == nil {
		checks = map[string]Pinger{}
	}
	return &HealthHandler{checks: checks}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
	Uptime  string            `json:"uptime,omitempty"`
}

// Version is reported by the health endpoints
var Version = "dev"

var startTime = time.Now()

// GetHealth handles GET /health
func GetHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(startTime).String(),
		Checks:  map[string]string{},
	}, http.StatusOK)
}

// GetLiveness handles GET /health/live
func GetLiveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "alive"}, http.StatusOK)
}

// GetReadiness handles GET /health/ready. Every registered check must pass.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	status, code := "ready", http.StatusOK
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			status, code = "not ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	respondJSON(w, HealthResponse{
		Status:  status,
		Version: Version,
		Uptime:  time.Since(startTime).String(),
		Checks:  checks,
	}, code)
}
