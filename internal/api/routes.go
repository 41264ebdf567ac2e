package api

import (
	"net/http"
	"netbackup/internal/health"
	"netbackup/internal/observability"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Runner        Runner
	Metrics       *observability.Metrics
	HealthChecker *health.Checker
	APIKey        string
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg RouterConfig) http.Handler {
	handler := NewHandler(cfg.Runner, cfg.HealthChecker)

	mux := http.NewServeMux()

	// Health check endpoints - no auth required
	mux.HandleFunc("GET /livez", handler.Livez)
	mux.HandleFunc("GET /readyz", handler.Readyz)

	// Backup endpoints - auth required
	authMiddleware := AuthMiddleware(cfg.APIKey)
	mux.Handle("POST /v1/backups", authMiddleware(http.HandlerFunc(handler.TriggerBackup)))
	mux.Handle("GET /v1/backups/last", authMiddleware(http.HandlerFunc(handler.LastBackup)))

	// Apply middleware chain (order matters: outermost first)
	var h http.Handler = mux
	h = ObserveMiddleware(cfg.Metrics)(h)
	h = RecoveryMiddleware()(h)

	return h
}
