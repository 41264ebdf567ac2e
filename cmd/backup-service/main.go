// backup-service triggers controller backups on a schedule or on demand and
// copies the finished backup file into object storage.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"netbackup/internal/api"
	"netbackup/internal/backup"
	"netbackup/internal/config"
	"netbackup/internal/controller"
	"netbackup/internal/health"
	"netbackup/internal/observability"
	"netbackup/internal/schedule"
	"netbackup/internal/store"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/clock"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("Service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	// Load configuration
	svcCfg := config.LoadServiceConfig()
	backupCfg := config.LoadBackupConfig()

	// Missing settings are reported per run, so the service still starts
	// and answers on-demand requests with a configuration error.
	if err := backupCfg.Validate(); err != nil {
		slog.Warn("Backup configuration is incomplete", "error", err)
	}

	// Setup metrics
	metrics, metricsHandler, err := observability.NewMetrics(ctx)
	if err != nil {
		return err
	}

	// Open backup bucket
	bucket, err := store.Open(ctx, svcCfg.BucketURL)
	if err != nil {
		return err
	}
	defer bucket.Close()

	slog.Info("Opened backup bucket", "url", svcCfg.BucketURL)

	client := controller.NewClient(backupCfg.BaseURL, controller.Options{
		Site:    backupCfg.Site,
		Version: backupCfg.Version,
		Timeout: backupCfg.HTTPTimeout,
	})

	runner := backup.NewRunner(backup.RunnerConfig{
		Backup:     backupCfg,
		Controller: client,
		Store:      bucket,
		Clock:      clock.WallClock,
		Metrics:    metrics,
	})

	scheduler := schedule.New(runner, svcCfg.ScheduleInterval, clock.WallClock)
	scheduler.Start()

	// Create health checker
	healthChecker := health.NewChecker(bucket)

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Runner:        runner,
		Metrics:       metrics,
		HealthChecker: healthChecker,
		APIKey:        svcCfg.APIKey,
	})

	if svcCfg.APIKey != "" {
		slog.Info("API authentication enabled")
	} else {
		slog.Warn("API authentication disabled - no API_KEY_FILE configured")
	}

	// On-demand runs answer only when the run ends
	maxRun := backupCfg.MaxRunDuration()

	// Create API server
	apiServer := &http.Server{
		Addr:         ":" + svcCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: maxRun + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Create metrics server
	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", metricsHandler)
	metricsServer := &http.Server{
		Addr:         ":" + svcCfg.MetricsPort,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Channel to capture server errors
	serverErr := make(chan error, 1)

	// Start API server
	go func() {
		slog.Info("Starting API server", "port", svcCfg.Port)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Start metrics server
	go func() {
		slog.Info("Starting metrics server", "port", svcCfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// shutdown closes both servers gracefully
	shutdown := func(timeout time.Duration) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("API server shutdown error", "error", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErr:
		slog.Error("Server failed to start", "error", err)
		shutdown(5 * time.Second)
		scheduler.Close(context.Background())
		return err
	}

	// Phase 1: Mark service as unhealthy for load balancer draining
	healthChecker.SetShuttingDown()

	if svcCfg.ShutdownDrainWait > 0 {
		slog.Info("Waiting for traffic to drain", "duration", svcCfg.ShutdownDrainWait)
		time.Sleep(svcCfg.ShutdownDrainWait)
	}

	// Phase 2: Stop accepting requests and let on-demand runs finish
	slog.Info("Starting graceful shutdown")
	shutdown(maxRun + 5*time.Second)

	// Phase 3: Stop the scheduler and wait for a scheduled run in progress
	slog.Info("Stopping scheduler")
	schedCtx, schedCancel := context.WithTimeout(context.Background(), maxRun+5*time.Second)
	defer schedCancel()
	if err := scheduler.Close(schedCtx); err != nil {
		slog.Warn("Scheduler shutdown error", "error", err)
	}

	if last := runner.Last(); last != nil {
		slog.Info("Last backup run",
			"runId", last.RunID,
			"trigger", last.Trigger,
			"result", last.Result,
			"key", last.Key,
		)
	}

	slog.Info("Shutdown complete")
	return nil
}
