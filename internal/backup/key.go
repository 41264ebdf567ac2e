package backup

import (
	"fmt"
	"strings"
	"time"
)

// keyTimestampLayout renders as MM.DD.YYYY_H-MM-AM on a 12-hour clock.
const keyTimestampLayout = "01.02.2006_3-04-PM"

// FormatTimestamp renders t for use in an artifact key, in t's location.
func FormatTimestamp(t time.Time) string {
	return t.Format(keyTimestampLayout)
}

// ParseTimestamp parses a key timestamp in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(keyTimestampLayout, s, loc)
}

// ArtifactKey builds <prefix>_<timestamp>_<suffix>.
func ArtifactKey(prefix string, t time.Time, suffix string) string {
	return prefix + "_" + FormatTimestamp(t) + "_" + suffix
}

// ParseArtifactKey extracts the timestamp from a key built by ArtifactKey.
func ParseArtifactKey(key, prefix, suffix string, loc *time.Location) (time.Time, error) {
	ts, ok := strings.CutPrefix(key, prefix+"_")
	if !ok {
		return time.Time{}, fmt.Errorf("key %q does not start with %q", key, prefix+"_")
	}
	ts, ok = strings.CutSuffix(ts, "_"+suffix)
	if !ok {
		return time.Time{}, fmt.Errorf("key %q does not end with %q", key, "_"+suffix)
	}
	return ParseTimestamp(ts, loc)
}
