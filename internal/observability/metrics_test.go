package observability

import (
	"context"
	"testing"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metrics, handler, err := NewMetrics(ctx)
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	if metrics == nil {
		t.Fatal("Expected metrics to be non-nil")
	}

	if handler == nil {
		t.Fatal("Expected handler to be non-nil")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metrics, _, err := NewMetrics(ctx)
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/livez", 200, 0.001)
	metrics.RecordHTTPRequest(ctx, "POST", "/v1/backups", 200, 95.0)
	metrics.RecordHTTPRequest(ctx, "POST", "/v1/backups", 504, 180.0)
	metrics.RecordHTTPRequest(ctx, "GET", "/unknown/abc", 404, 0.001)
}

func TestRecordRunMetrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metrics, _, err := NewMetrics(ctx)
	if err != nil {
		t.Fatalf("Failed to create metrics: %v", err)
	}

	// Should not panic
	metrics.RecordRunStarted(ctx, "scheduled")
	metrics.RecordPollAttempt(ctx, false)
	metrics.RecordPollAttempt(ctx, true)
	metrics.RecordTransferAttempt(ctx, "undersize")
	metrics.RecordTransferAttempt(ctx, "stored")
	metrics.RecordStored(ctx, 50000)
	metrics.RecordRunCompleted(ctx, "scheduled", "success", true, 75.2)
	metrics.RecordRunStarted(ctx, "on-demand")
	metrics.RecordRunCompleted(ctx, "on-demand", "authentication-failure", false, 0.3)
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
	}{
		{"/livez", "/livez"},
		{"/readyz", "/readyz"},
		{"/v1/backups", "/v1/backups"},
		{"/v1/backups/last", "/v1/backups/last"},
		{"/v1/backups/xyz", "other"},
		{"/wp-admin", "other"},
	}

	for _, tt := range tests {
		result := normalizePath(tt.input)
		if result != tt.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
