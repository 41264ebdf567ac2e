package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the environment variable value or a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetIntEnv returns an integer environment variable or a default.
// Unparseable values fall back to the default with a warning.
func GetIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Ignoring invalid integer setting", "key", key, "value", value)
		return defaultValue
	}
	return n
}

// GetDurationEnv returns a duration environment variable or a default.
// A bare integer is read as seconds, so POLL_DELAY=60 means one minute.
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Ignoring invalid duration setting", "key", key, "value", value)
		return defaultValue
	}
	return d
}

// GetSecretFile reads a secret from a file path.
// Works with Docker secrets (/run/secrets/) and K8s secrets (mounted volumes).
func GetSecretFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("Failed to read secret file", "path", path, "error", err)
		return ""
	}
	return strings.TrimSpace(string(data))
}
