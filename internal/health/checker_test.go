package health

import (
	"context"
	"errors"
	"testing"
)

type stubStore struct {
	err error
}

func (s stubStore) Ready(ctx context.Context) error { return s.err }

func TestChecker_Liveness(t *testing.T) {
	t.Parallel()
	checker := NewChecker(nil)

	response := checker.Liveness(context.Background())

	if response.Status != StatusHealthy {
		t.Errorf("Expected healthy status, got %s", response.Status)
	}
}

func TestChecker_Readiness(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		store ReadinessChecker
		want  Status
	}{
		{"no store", nil, StatusUnhealthy},
		{"store unreachable", stubStore{err: errors.New("access denied")}, StatusUnhealthy},
		{"store ready", stubStore{}, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			response := NewChecker(tt.store).Readiness(context.Background())

			if response.Status != tt.want {
				t.Errorf("Status = %s, want %s", response.Status, tt.want)
			}
			check, ok := response.Checks["store"]
			if !ok {
				t.Fatal("Expected store check to be present")
			}
			if check.Status != tt.want {
				t.Errorf("store check = %s, want %s", check.Status, tt.want)
			}
		})
	}
}

func TestChecker_ShuttingDown(t *testing.T) {
	t.Parallel()
	checker := NewChecker(stubStore{})

	if !checker.Readiness(context.Background()).IsHealthy() {
		t.Fatal("Expected healthy before shutdown")
	}

	checker.SetShuttingDown()

	response := checker.Readiness(context.Background())
	if response.IsHealthy() {
		t.Error("Expected unhealthy after SetShuttingDown")
	}
	if _, ok := response.Checks["shutdown"]; !ok {
		t.Error("Expected shutdown check to be present")
	}
}
