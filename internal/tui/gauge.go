package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderUsageGauge produces a text-based gauge bar that fills from left to
// right as usage increases (0=empty, 100=full). Colors shift green through
// yellow and orange to red as the used fraction crosses warning, danger and
// critical. Thresholds are used fractions (e.g. 0.70 = warn at 70% used).
// A negative percent renders a dimmed track with "N/A".
func RenderUsageGauge(usedPercent float64, width int, warn, danger, critical float64) string {
	if width < 5 {
		width = 5
	}

	if usedPercent < 0 {
		return gaugeTrackStyle.Render(strings.Repeat("─", width)) + dimStyle.Render(" N/A")
	}

	fill := usedPercent
	if fill > 100 {
		fill = 100
	}
	filled := int(fill / 100 * float64(width))
	empty := width - filled

	color := gaugeColor(usedPercent, warn, danger, critical)

	filledStyle := lipgloss.NewStyle().Foreground(color)
	trackStyle := lipgloss.NewStyle().Foreground(colorSurface1)

	bar := filledStyle.Render(strings.Repeat("━", filled)) +
		trackStyle.Render(strings.Repeat("━", empty))

	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	return fmt.Sprintf("%s %s", bar, pctStyle.Render(fmt.Sprintf("%5.1f%%", usedPercent)))
}

func gaugeColor(usedPercent, warn, danger, critical float64) lipgloss.Color {
	switch {
	case usedPercent >= critical*100:
		return colorCrit
	case usedPercent >= danger*100:
		return colorHigh
	case usedPercent >= warn*100:
		return colorWarn
	default:
		return colorOK
	}
}
