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

	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/sim"
)

const (
	width    = 60
	height   = 12
	maxSpeed = 64
	frame    = time.Second / 30
)

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4757")).Bold(true)
)

// thresholdParams are drawn over the forcing when the model has them.
var thresholdParams = []string{"i0", "i1", "i2", "i3"}

type TickMsg time.Time

// Model steps a session on every tick and renders the recent window.
type Model struct {
	model   dynamo.Model
	session *sim.Session
	times   []float64
	forcing []float64

	lo, hi float64
	canvas *Canvas
	theme  Theme

	snaps   []dynamo.Snapshot
	series  string
	running bool
	speed   int
	err     error
	// tuneErr is the last rejected parameter change; the run continues.
	tuneErr error

	paramKeys []string
	selected  int
	showHelp  bool
}

// NewModel wraps a session that has not been stepped yet. times and forcing
// must be the series the session was built from.
func NewModel(model dynamo.Model, session *sim.Session, times, forcing []float64) Model {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range forcing {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := 0.05 * (hi - lo)
	if pad == 0 {
		pad = 1
	}

	initial := session.Initial()
	series := "tc"
	if _, ok := initial.Vars["v"]; ok {
		series = "v"
	}

	keys := make([]string, 0)
	for k := range model.GetParams() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Model{
		model:     model,
		session:   session,
		times:     times,
		forcing:   forcing,
		lo:        lo - pad,
		hi:        hi + pad,
		canvas:    NewCanvas(width, height),
		theme:     Themes[0],
		snaps:     []dynamo.Snapshot{initial},
		series:    series,
		running:   true,
		speed:     1,
		paramKeys: keys,
	}
}

func tick() tea.Cmd {
	return tea.Tick(frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "t":
			m.theme = NextTheme(m.theme.Name)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.speed; i++ {
				if !m.Advance() {
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// Advance steps the session once. It reports false when the run is over or
// has failed.
func (m *Model) Advance() bool {
	if m.err != nil || m.session.Done() {
		m.running = false
		return false
	}
	_, _, snap, err := m.session.Next()
	if err != nil {
		m.err = err
		m.running = false
		return false
	}
	m.snaps = append(m.snaps, snap)
	return true
}

// adjustParam nudges the selected parameter: additively near zero,
// by 5% otherwise.
func (m *Model) adjustParam(dir float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.model.GetParams()[key]
	next := val + dir*0.05
	if math.Abs(val) > 1 {
		next = val * (1 + dir*0.05)
	}
	m.tuneErr = m.model.SetParam(key, next)
}

func (m Model) Step() int                    { return m.session.Step() }
func (m Model) Snapshots() []dynamo.Snapshot { return m.snaps }
func (m Model) Err() error                   { return m.err }
func (m Model) TuneErr() error               { return m.tuneErr }

// window returns the range of steps visible on the canvas.
func (m Model) window() (int, int) {
	w, _ := m.canvas.Dots()
	end := m.session.Step() + 1
	return max(0, end-w), end
}

func (m Model) draw() {
	m.canvas.Clear()
	params := m.model.GetParams()
	for _, name := range thresholdParams {
		if v, ok := params[name]; ok {
			m.canvas.HLine(v, m.lo, m.hi)
		}
	}
	from, to := m.window()
	m.canvas.Plot(m.forcing[from:to], m.lo, m.hi)
}

func (m Model) regimeStrip() string {
	from, to := m.window()
	cells := m.canvas.Width
	var b strings.Builder
	for c := 0; c < cells; c++ {
		k := from + c*2
		if k >= to {
			b.WriteByte(' ')
			continue
		}
		s := m.snaps[k].State
		b.WriteString(m.theme.Regime(s, "█"))
	}
	return b.String()
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("ERROR")
	case m.session.Done():
		return "DONE"
	case !m.running:
		return "PAUSED"
	}
	return fmt.Sprintf("RUNNING x%d", m.speed)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	forcingView := lipgloss.NewStyle().Foreground(m.theme.Forcing).Render(m.canvas.String())
	canvasView := canvasStyle.Render(forcingView + m.regimeStrip())

	step := m.session.Step()
	last := m.snaps[len(m.snaps)-1]

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.model.Name())) + "\n")
	s.WriteString(m.status() + "\n\n")

	values := make([]float64, 0, len(m.snaps))
	for _, snap := range m.snaps {
		if v, ok := snap.Vars[m.series]; ok {
			values = append(values, v)
		}
	}
	if len(values) > 1 {
		if len(values) > 200 {
			values = values[len(values)-200:]
		}
		chart := asciigraph.Plot(values, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(m.series))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%g", m.times[step])) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d/%d", step, len(m.times)-1)) + "\n")
	s.WriteString(labelStyle.Render("Forcing") + valueStyle.Render(fmt.Sprintf("%.3f", m.forcing[step])) + "\n")
	s.WriteString(labelStyle.Render("Regime") + m.theme.Regime(last.State, last.State.String()) + "\n")
	for _, name := range last.VarNames() {
		s.WriteString(labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%.4g", last.Vars[name])) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.model.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-10s %.4g", k, params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.tuneErr != nil {
		s.WriteString("\n" + errorStyle.Render(m.tuneErr.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause +/-:Speed Q:Quit\nTab:Param ↑↓:Tune T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpStyle.Render(strings.Join([]string{
			"Space    pause or resume",
			"+ / -    double or halve steps per frame",
			"Tab      select parameter",
			"Up/K     raise parameter",
			"Down/J   lower parameter",
			"T        cycle themes (" + strings.Join(ThemeNames(), ", ") + ")",
			"Q        quit",
		}, "\n")) + "\n\n" + mainView
	}
	return mainView
}

// Run starts the viewer on the terminal.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
