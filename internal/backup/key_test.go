package backup

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"morning", time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC), "03.05.2024_9-07-AM"},
		{"midnight", time.Date(2024, 12, 31, 0, 0, 59, 0, time.UTC), "12.31.2024_12-00-AM"},
		{"noon", time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC), "01.01.2025_12-30-PM"},
		{"evening", time.Date(2025, 7, 4, 23, 59, 0, 0, time.UTC), "07.04.2025_11-59-PM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArtifactKey_RoundTrip(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("CET", 3600)
	instant := time.Date(2024, 3, 5, 21, 7, 42, 0, loc)

	key := ArtifactKey("network_backup", instant, "8.0.7.unf")
	if key != "network_backup_03.05.2024_9-07-PM_8.0.7.unf" {
		t.Fatalf("ArtifactKey() = %q", key)
	}
	if again := ArtifactKey("network_backup", instant, "8.0.7.unf"); again != key {
		t.Errorf("ArtifactKey() not deterministic: %q vs %q", again, key)
	}

	parsed, err := ParseArtifactKey(key, "network_backup", "8.0.7.unf", loc)
	if err != nil {
		t.Fatalf("ParseArtifactKey() error = %v", err)
	}
	if want := instant.Truncate(time.Minute); !parsed.Equal(want) {
		t.Errorf("ParseArtifactKey() = %v, want %v", parsed, want)
	}
}

func TestParseArtifactKey_Invalid(t *testing.T) {
	t.Parallel()
	tests := []string{
		"other_03.05.2024_9-07-PM_8.0.7.unf",
		"network_backup_03.05.2024_9-07-PM_9.0.0.unf",
		"network_backup_2024-03-05_8.0.7.unf",
	}
	for _, key := range tests {
		if _, err := ParseArtifactKey(key, "network_backup", "8.0.7.unf", time.UTC); err == nil {
			t.Errorf("ParseArtifactKey(%q) expected error", key)
		}
	}
}
