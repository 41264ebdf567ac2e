package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("NETBACKUP_TEST_STRING", "")
	if got := GetEnv("NETBACKUP_TEST_STRING", "default"); got != "default" {
		t.Errorf("Expected 'default', got %q", got)
	}

	t.Setenv("NETBACKUP_TEST_STRING", "custom")
	if got := GetEnv("NETBACKUP_TEST_STRING", "default"); got != "custom" {
		t.Errorf("Expected 'custom', got %q", got)
	}
}

func TestGetIntEnv(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 42},
		{"123", 123},
		{"not-a-number", 42},
	}

	for _, tt := range tests {
		t.Setenv("NETBACKUP_TEST_INT", tt.value)
		if got := GetIntEnv("NETBACKUP_TEST_INT", 42); got != tt.want {
			t.Errorf("GetIntEnv(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestGetDurationEnv(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 5 * time.Second},
		{"1m30s", 90 * time.Second},
		{"60", time.Minute},
		{"0", 0},
		{"soon", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Setenv("NETBACKUP_TEST_DURATION", tt.value)
		if got := GetDurationEnv("NETBACKUP_TEST_DURATION", 5*time.Second); got != tt.want {
			t.Errorf("GetDurationEnv(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestGetSecretFile(t *testing.T) {
	t.Parallel()

	if got := GetSecretFile(""); got != "" {
		t.Errorf("Expected empty secret for empty path, got %q", got)
	}
	if got := GetSecretFile(filepath.Join(t.TempDir(), "missing")); got != "" {
		t.Errorf("Expected empty secret for missing file, got %q", got)
	}

	path := filepath.Join(t.TempDir(), "api_key")
	if err := os.WriteFile(path, []byte("  s3cret\n"), 0o600); err != nil {
		t.Fatalf("Failed to write secret: %v", err)
	}
	if got := GetSecretFile(path); got != "s3cret" {
		t.Errorf("Expected trimmed secret, got %q", got)
	}
}
