package monitor

import (
	"fmt"
	"time"
)

// FormatReset converts an absolute reset timestamp into a short relative
// string: "in 3d", "in 2h 10m", "in 45m", "soon" for past times, "unknown"
// when absent. Unparseable input falls back to its first 16 characters.
func FormatReset(raw string, now time.Time) string {
	if raw == "" {
		return "unknown"
	}

	reset, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		reset, err = time.Parse(time.RFC3339Nano, raw)
	}
	if err != nil {
		if len(raw) > 16 {
			return raw[:16]
		}
		return raw
	}

	total := int(reset.Sub(now).Seconds())
	if total < 0 {
		return "soon"
	}

	hours := total / 3600
	minutes := (total % 3600) / 60

	switch {
	case hours > 24:
		return fmt.Sprintf("in %dd", hours/24)
	case hours > 0:
		return fmt.Sprintf("in %dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("in %dm", minutes)
	}
}
