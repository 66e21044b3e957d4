package monitor

import (
	"testing"
	"time"
)

func TestFormatReset(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"absent", "", "unknown"},
		{"past", "2026-02-01T11:59:00Z", "soon"},
		{"zero delta", "2026-02-01T12:00:00Z", "in 0m"},
		{"minutes only", "2026-02-01T12:45:00Z", "in 45m"},
		{"hours and minutes", "2026-02-01T14:10:00Z", "in 2h 10m"},
		{"exactly 24h", "2026-02-02T12:00:00Z", "in 24h 0m"},
		{"days", "2026-02-04T13:00:00Z", "in 3d"},
		{"fractional seconds", "2026-02-01T12:30:00.500Z", "in 30m"},
		{"offset timezone", "2026-02-01T14:00:00+01:00", "in 1h 0m"},
		{"unparseable short", "not-a-time", "not-a-time"},
		{"unparseable long", "definitely-not-a-timestamp-at-all", "definitely-not-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReset(tt.raw, now); got != tt.want {
				t.Errorf("FormatReset(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
