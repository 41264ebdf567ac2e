package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds all application metrics:
// - HTTP: latency, traffic and errors of the API
// - Runs: duration and result of each backup run
// - Attempts: poll and transfer attempts inside a run
type Metrics struct {
	meter metric.Meter

	// HTTP metrics (Latency, Traffic, Errors)
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsTotal   metric.Int64Counter
	HTTPErrorsTotal     metric.Int64Counter

	// Run metrics (Latency, Traffic, Errors, Saturation)
	RunDuration    metric.Float64Histogram
	RunsTotal      metric.Int64Counter
	RunErrorsTotal metric.Int64Counter
	RunsActive     metric.Int64UpDownCounter

	// Attempt metrics
	PollAttemptsTotal     metric.Int64Counter
	TransferAttemptsTotal metric.Int64Counter
	StoredBytesTotal      metric.Int64Counter
}

// NewMetrics creates and registers all metrics with a Prometheus exporter.
func NewMetrics(ctx context.Context) (*Metrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter("netbackup")
	m := &Metrics{meter: meter}

	// HTTP metrics
	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60, 300),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPErrorsTotal, err = meter.Int64Counter(
		"http_errors_total",
		metric.WithDescription("Total number of HTTP errors (4xx and 5xx)"),
	)
	if err != nil {
		return nil, nil, err
	}

	// Run metrics
	m.RunDuration, err = meter.Float64Histogram(
		"backup_run_duration_seconds",
		metric.WithDescription("Backup run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 180, 300, 600),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RunsTotal, err = meter.Int64Counter(
		"backup_runs_total",
		metric.WithDescription("Total number of backup runs by trigger and result"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RunErrorsTotal, err = meter.Int64Counter(
		"backup_run_errors_total",
		metric.WithDescription("Total number of backup runs that did not store a file"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RunsActive, err = meter.Int64UpDownCounter(
		"backup_runs_active",
		metric.WithDescription("Number of backup runs in progress"),
	)
	if err != nil {
		return nil, nil, err
	}

	// Attempt metrics
	m.PollAttemptsTotal, err = meter.Int64Counter(
		"backup_poll_attempts_total",
		metric.WithDescription("Total readiness probes by outcome"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.TransferAttemptsTotal, err = meter.Int64Counter(
		"backup_transfer_attempts_total",
		metric.WithDescription("Total download attempts by outcome"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.StoredBytesTotal, err = meter.Int64Counter(
		"backup_stored_bytes_total",
		metric.WithDescription("Total bytes written to the backup bucket"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, nil, err
	}

	return m, promhttp.Handler(), nil
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	attrs := metric.WithAttributes(
		methodAttr(method),
		pathAttr(path),
		statusAttr(statusCode),
	)

	m.HTTPRequestDuration.Record(ctx, durationSeconds, attrs)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)

	if statusCode >= 400 {
		m.HTTPErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordRunStarted records a backup run entering its first stage.
func (m *Metrics) RecordRunStarted(ctx context.Context, trigger string) {
	m.RunsActive.Add(ctx, 1, metric.WithAttributes(triggerAttr(trigger)))
}

// RecordRunCompleted records a backup run reaching a terminal result.
func (m *Metrics) RecordRunCompleted(ctx context.Context, trigger, result string, success bool, durationSeconds float64) {
	attrs := metric.WithAttributes(triggerAttr(trigger), resultAttr(result))
	m.RunDuration.Record(ctx, durationSeconds, attrs)
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunsActive.Add(ctx, -1, metric.WithAttributes(triggerAttr(trigger)))

	if !success {
		m.RunErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordPollAttempt records one readiness probe.
func (m *Metrics) RecordPollAttempt(ctx context.Context, ready bool) {
	m.PollAttemptsTotal.Add(ctx, 1, metric.WithAttributes(successAttr(ready)))
}

// RecordTransferAttempt records one download attempt.
// outcome is one of "stored", "undersize" or "failed".
func (m *Metrics) RecordTransferAttempt(ctx context.Context, outcome string) {
	m.TransferAttemptsTotal.Add(ctx, 1, metric.WithAttributes(resultAttr(outcome)))
}

// RecordStored records bytes persisted to the bucket.
func (m *Metrics) RecordStored(ctx context.Context, bytes int64) {
	m.StoredBytesTotal.Add(ctx, bytes)
}
