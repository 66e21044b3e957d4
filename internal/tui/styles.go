package tui

import "github.com/charmbracelet/lipgloss"

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorBase     = lipgloss.Color("#1E1E2E") // background
	colorSurface0 = lipgloss.Color("#313244") // card bg
	colorSurface1 = lipgloss.Color("#45475A") // lighter surface
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted, borders

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve – primary accent
	colorGreen    = lipgloss.Color("#A6E3A1") // OK / healthy
	colorYellow   = lipgloss.Color("#F9E2AF") // warning
	colorPeach    = lipgloss.Color("#FAB387") // elevated
	colorRed      = lipgloss.Color("#F38BA8") // critical
	colorSapphire = lipgloss.Color("#74C7EC") // key hints
	colorLavender = lipgloss.Color("#B4BEFE") // titles

	colorOK   = colorGreen
	colorWarn = colorYellow
	colorHigh = colorPeach
	colorCrit = colorRed
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	gaugeTrackStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	statusOKStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorSapphire).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 2)
)
