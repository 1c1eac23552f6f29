// Package viz renders simulations live in the terminal with a braille
// canvas and a bubbletea event loop.
package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/jmkerr/odelab/internal/dynamics"
	"github.com/jmkerr/odelab/internal/models"
	"github.com/jmkerr/odelab/internal/solver"
)

const (
	canvasCols = 60
	canvasRows = 20
	historyCap = 400
	trailCap   = 200
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

type dot struct{ x, y int }

// Model drives one system interactively: it steps the adaptive
// integrator on every frame tick and redraws the canvas.
type Model struct {
	sys       dynamics.System
	integ     *solver.Dopri5
	modelName string

	state   dynamics.State
	initial dynamics.State
	t, dt   float64
	running bool

	canvas        *Canvas
	trail         []dot
	energyHistory []float64

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
}

func NewModel(sys dynamics.System, modelName string, x0 dynamics.State, dt float64) Model {
	params := make(map[string]float64)
	initialParams := make(map[string]float64)
	if cfg, ok := sys.(dynamics.Configurable); ok {
		for k, v := range cfg.Params() {
			params[k] = v
			initialParams[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Model{
		sys:           sys,
		integ:         solver.NewDopri5(),
		modelName:     modelName,
		state:         x0.Clone(),
		initial:       x0.Clone(),
		dt:            dt,
		running:       true,
		canvas:        NewCanvas(canvasCols, canvasRows),
		trail:         make([]dot, 0, trailCap),
		energyHistory: make([]float64, 0, historyCap),
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	m.params[key] *= factor
	if cfg, ok := m.sys.(dynamics.Configurable); ok {
		cfg.SetParam(key, m.params[key])
	}
}

func (m *Model) step() {
	newState, suggested, err := m.integ.StepAdaptive(m.sys, m.state, m.t, m.dt, 1e-9, 1e-9)
	if err != nil || !newState.IsValid() {
		m.running = false
		return
	}
	m.state = newState
	m.t += m.dt
	if suggested > 1e-4 && suggested < 0.05 {
		m.dt = suggested
	}

	if e, ok := m.sys.(dynamics.ConservesEnergy); ok {
		m.energyHistory = append(m.energyHistory, e.Energy(m.state))
		if len(m.energyHistory) > historyCap {
			m.energyHistory = m.energyHistory[1:]
		}
	}
}

func (m *Model) reset() {
	m.t = 0
	m.dt = 0.01
	m.state = m.initial.Clone()
	m.trail = m.trail[:0]
	m.energyHistory = m.energyHistory[:0]
	m.running = true
	if cfg, ok := m.sys.(dynamics.Configurable); ok {
		for k, v := range m.initialParams {
			m.params[k] = v
			cfg.SetParam(k, v)
		}
	}
}

func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.modelName)) + "\n")
	if m.running {
		s.WriteString("RUNNING\n\n")
	} else {
		s.WriteString("PAUSED\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%.4fs", m.dt)) + "\n")
	if e, ok := m.sys.(dynamics.ConservesEnergy); ok {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4f", e.Energy(m.state))) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-8s %.3f", k, m.params[k])
		if i == m.selected {
			s.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("\nSP:Pause R:Reset Q:Quit\nTab:Select ↑↓:Tune"))

	canvasView := canvasStyle.Render(m.canvas.String())
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func (m *Model) draw() {
	m.canvas.Clear()
	switch sys := m.sys.(type) {
	case *models.DoublePendulum:
		m.drawDoublePendulum(sys)
	case *models.TwoBody:
		m.drawTwoBody(sys)
	}
	for _, d := range m.trail {
		m.canvas.Dot(d.x, d.y)
	}
}

func (m *Model) pushTrail(x, y int) {
	m.trail = append(m.trail, dot{x, y})
	if len(m.trail) > trailCap {
		m.trail = m.trail[1:]
	}
}

func (m *Model) drawDoublePendulum(dp *models.DoublePendulum) {
	x1, y1, x2, y2 := dp.BobPositions(m.state)

	// Fit both arms fully extended, with a small margin.
	reach := dp.L1 + dp.L2
	scale := float64(m.canvas.DotHeight()) * 0.45 / reach
	cx := m.canvas.DotWidth() / 2
	cy := m.canvas.DotHeight() / 2

	px1 := cx + int(x1*scale)
	py1 := cy - int(y1*scale)
	px2 := cx + int(x2*scale)
	py2 := cy - int(y2*scale)

	m.pushTrail(px2, py2)
	m.canvas.Line(cx, cy, px1, py1)
	m.canvas.Line(px1, py1, px2, py2)
	m.canvas.Dot(px1, py1)
	m.canvas.Dot(px2, py2)
}

func (m *Model) drawTwoBody(tb *models.TwoBody) {
	x1, y1 := m.state[0], m.state[2]
	x2, y2 := m.state[4], m.state[6]

	span := math.Max(math.Hypot(x1, y1), math.Hypot(x2, y2))
	if span < 1 {
		span = 1
	}
	scale := float64(m.canvas.DotHeight()) * 0.45 / span
	cx := m.canvas.DotWidth() / 2
	cy := m.canvas.DotHeight() / 2

	px2 := cx + int(x2*scale)
	py2 := cy - int(y2*scale)
	m.pushTrail(px2, py2)

	m.canvas.Dot(cx+int(x1*scale), cy-int(y1*scale))
	m.canvas.Dot(px2, py2)
}

// Run starts the interactive viewer and blocks until the user quits.
func Run(sys dynamics.System, modelName string, x0 dynamics.State, dt float64) error {
	p := tea.NewProgram(NewModel(sys, modelName, x0, dt))
	_, err := p.Run()
	return err
}
