package tui

import (
	"strings"
	"testing"
)

func TestRenderUsageGauge_Label(t *testing.T) {
	out := RenderUsageGauge(72, 20, 0.70, 0.85, 0.95)
	if out == "" {
		t.Fatal("expected non-empty output")
	}
	if !strings.Contains(out, "72.0%") {
		t.Fatalf("output should contain '72.0%%', got %q", out)
	}
}

func TestRenderUsageGauge_Negative(t *testing.T) {
	out := RenderUsageGauge(-1, 20, 0.70, 0.85, 0.95)
	if !strings.Contains(out, "N/A") {
		t.Fatalf("negative percent should render N/A, got %q", out)
	}
}

func TestRenderUsageGauge_OverHundred(t *testing.T) {
	// The label keeps the real value even when the bar is capped.
	out := RenderUsageGauge(120, 20, 0.70, 0.85, 0.95)
	if !strings.Contains(out, "120.0%") {
		t.Fatalf("output should contain '120.0%%', got %q", out)
	}
}

func TestGaugeColor_Tiers(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{10, string(colorOK)},
		{70, string(colorWarn)},
		{85, string(colorHigh)},
		{95, string(colorCrit)},
		{120, string(colorCrit)},
	}
	for _, tt := range tests {
		if got := string(gaugeColor(tt.pct, 0.70, 0.85, 0.95)); got != tt.want {
			t.Errorf("gaugeColor(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}
