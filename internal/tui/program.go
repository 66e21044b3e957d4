package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/claudebar/claudebar/internal/monitor"
)

// Program wraps a running bubbletea program and adapts it to the monitor's
// Display interface. Sends are safe from any goroutine.
type Program struct {
	prog *tea.Program
}

func NewProgram(m Model, opts ...tea.ProgramOption) *Program {
	return &Program{prog: tea.NewProgram(m, opts...)}
}

// Run blocks until the user quits.
func (p *Program) Run() error {
	_, err := p.prog.Run()
	return err
}

// Update implements monitor.Display.
func (p *Program) Update(r monitor.Render) {
	p.prog.Send(RenderMsg(r))
}

// PushHistory feeds recent utilization points to the sparkline.
func (p *Program) PushHistory(points []float64) {
	p.prog.Send(SparkMsg(points))
}

func (p *Program) Quit() {
	p.prog.Quit()
}
