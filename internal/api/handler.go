// Package api provides the HTTP API handlers and routing for the backup service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"netbackup/internal/backup"
	"netbackup/internal/health"
)

// Runner executes backup runs and remembers the last outcome.
type Runner interface {
	Run(ctx context.Context, trigger backup.Trigger) *backup.Outcome
	Last() *backup.Outcome
}

// Handler contains HTTP handlers for the backup API
type Handler struct {
	runner Runner
	health *health.Checker
}

// NewHandler creates a new API handler
func NewHandler(runner Runner, healthChecker *health.Checker) *Handler {
	return &Handler{
		runner: runner,
		health: healthChecker,
	}
}

// TriggerBackup handles POST /v1/backups.
// The run is executed synchronously and its outcome returned. A client that
// disconnects does not cancel the run.
func (h *Handler) TriggerBackup(w http.ResponseWriter, r *http.Request) {
	out := h.runner.Run(context.WithoutCancel(r.Context()), backup.TriggerOnDemand)
	h.writeJSON(w, out.HTTPStatus(), out)
}

// LastBackup handles GET /v1/backups/last
func (h *Handler) LastBackup(w http.ResponseWriter, r *http.Request) {
	out := h.runner.Last()
	if out == nil {
		h.writeError(w, http.StatusNotFound, "no backup run has finished yet")
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

// Livez handles GET /livez - liveness probe.
func (h *Handler) Livez(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.health.Liveness(r.Context()))
}

// Readyz handles GET /readyz - readiness probe.
// Returns 503 if the backup bucket is unreachable.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	response := h.health.Readiness(r.Context())

	status := http.StatusOK
	if !response.IsHealthy() {
		status = http.StatusServiceUnavailable
	}

	h.writeJSON(w, status, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
