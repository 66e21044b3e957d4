package tui

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/claudebar/claudebar/internal/monitor"
)

// RenderMsg delivers a fresh render from the monitor loop.
type RenderMsg monitor.Render

// SparkMsg delivers recent five-hour utilization points (0-100) for the
// history sparkline, oldest first.
type SparkMsg []float64

const (
	gaugeWidth  = 30
	sparkHeight = 4
)

type Model struct {
	render  monitor.Render
	spark   []float64
	chart   sparkline.Model
	hasData bool

	warn     float64
	danger   float64
	critical float64

	width  int
	height int

	refreshing bool

	// onRefresh is called when the user presses "r". Set from main.go to
	// wire into the monitor loop; it runs off the update goroutine.
	onRefresh func()
}

func NewModel(warn, danger, critical float64) Model {
	return Model{
		warn:     warn,
		danger:   danger,
		critical: critical,
		chart:    newSparkline(gaugeWidth),
	}
}

// SetOnRefresh registers the manual-refresh callback.
func (m *Model) SetOnRefresh(fn func()) {
	m.onRefresh = fn
}

func newSparkline(width int) sparkline.Model {
	return sparkline.New(width, sparkHeight,
		sparkline.WithMaxValue(100),
		sparkline.WithStyle(lipgloss.NewStyle().Foreground(colorAccent)),
	)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart = newSparkline(m.sparkWidth())
		m.redrawSpark()
		return m, nil

	case RenderMsg:
		m.render = monitor.Render(msg)
		m.hasData = true
		m.refreshing = false
		return m, nil

	case SparkMsg:
		m.spark = []float64(msg)
		m.redrawSpark()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.onRefresh != nil && !m.refreshing {
				m.refreshing = true
				fn := m.onRefresh
				return m, func() tea.Msg {
					fn()
					return nil
				}
			}
		}
	}
	return m, nil
}

func (m *Model) sparkWidth() int {
	w := gaugeWidth
	if m.width > 0 && m.width-12 < w {
		w = m.width - 12
	}
	if w < 10 {
		w = 10
	}
	return w
}

func (m *Model) redrawSpark() {
	m.chart.Clear()
	if len(m.spark) == 0 {
		return
	}
	m.chart.PushAll(m.spark)
	m.chart.Draw()
}

func (m Model) View() string {
	var b strings.Builder

	title := m.render.Title
	if title == "" {
		title = "starting…"
	}
	header := headerStyle.Render("claudebar") + "  " + valueStyle.Render(title)
	if m.refreshing {
		header += "  " + dimStyle.Render("refreshing…")
	}
	if m.width > 0 {
		header = fitAnsiWidth(header, m.width)
	}
	b.WriteString(header + "\n\n")

	if !m.hasData {
		b.WriteString(dimStyle.Render("waiting for first usage fetch…") + "\n")
		b.WriteString("\n" + m.helpView())
		return b.String()
	}

	var card strings.Builder
	card.WriteString(m.gaugeRow("5h limit", m.render.FivePct*100) + "\n")
	card.WriteString(m.gaugeRow("Weekly", m.render.WeekPct*100) + "\n\n")
	card.WriteString(labelStyle.Render(m.render.FiveHourLine) + "\n")
	card.WriteString(labelStyle.Render(m.render.WeeklyLine) + "\n\n")
	card.WriteString(m.statusView())
	if m.render.UpdatedLine != "" {
		card.WriteString("  " + dimStyle.Render(m.render.UpdatedLine))
	}
	if len(m.spark) > 1 {
		card.WriteString("\n\n" + dimStyle.Render("5h history") + "\n")
		card.WriteString(strings.TrimRight(m.chart.View(), "\n"))
	}

	b.WriteString(cardStyle.Render(card.String()) + "\n\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) gaugeRow(label string, pct float64) string {
	return labelStyle.Render(padLabel(label)) + " " +
		RenderUsageGauge(pct, m.sparkWidth(), m.warn, m.danger, m.critical)
}

func (m Model) statusView() string {
	switch m.render.State {
	case monitor.StateConnected:
		return statusOKStyle.Render(m.render.StatusLine)
	case monitor.StateCached:
		return statusWarnStyle.Render(m.render.StatusLine)
	default:
		return statusErrStyle.Render(m.render.StatusLine)
	}
}

func (m Model) helpView() string {
	return helpStyle.Render(" ") +
		helpKeyStyle.Render("r") + helpStyle.Render(" refresh  ") +
		helpKeyStyle.Render("q") + helpStyle.Render(" quit")
}

func padLabel(label string) string {
	const w = 8
	if len(label) >= w {
		return label
	}
	return label + strings.Repeat(" ", w-len(label))
}
