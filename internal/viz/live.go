package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/circlesim/internal/export"
	"github.com/san-kum/circlesim/internal/sim"
	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
	"go.uber.org/zap"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	minCols         = 20
	minRows         = 8
	statsWidth      = 45
	canvasPadX      = 2
	canvasPadY      = 1
	historyCapacity = 300

	gravityNudge = 10.0
	heavyMass    = 1e17
	heavyRadius  = 30.0
)

type TickMsg time.Time

// Options configures a live view.
type Options struct {
	Scene  string
	FPS    int
	Theme  string
	Logger *zap.Logger
}

// Model renders the world behind a driver and forwards input to it.
type Model struct {
	driver      *sim.Driver
	world       *world.World[float64]
	scene       string
	frame       time.Duration
	canvas      *Canvas
	stats       world.Stats[float64]
	energy      []float64
	comparisons []float64
	theme       Theme
	styles      styles
	showHelp    bool
	started     time.Time
	lastErr     string
	log         *zap.Logger
}

func NewModel(d *sim.Driver, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	theme := GetTheme(opts.Theme)
	m := Model{
		driver:      d,
		world:       d.World(),
		scene:       opts.Scene,
		frame:       time.Second / time.Duration(opts.FPS),
		canvas:      NewCanvas(defaultCols, defaultRows),
		energy:      make([]float64, 0, historyCapacity),
		comparisons: make([]float64, 0, historyCapacity),
		theme:       theme,
		styles:      newStyles(theme),
		started:     time.Now(),
		log:         opts.Logger,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input and redraws on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKey(msg.String()); cmd != nil {
			return m, cmd
		}
		m.refresh()
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y, msg.Shift || msg.Alt || msg.Ctrl)
			m.refresh()
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
	case TickMsg:
		m.refresh()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	w := m.world
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "+", "=":
		w.ScaleAllVelocities(1.25)
	case "-", "_":
		w.ScaleAllVelocities(0.75)
	case "up":
		w.NudgeGravity(vec.New(0, -gravityNudge))
	case "down":
		w.NudgeGravity(vec.New(0, gravityNudge))
	case "left":
		w.NudgeGravity(vec.New(-gravityNudge, 0))
	case "right":
		w.NudgeGravity(vec.New(gravityNudge, 0))
	case " ":
		w.SetGravity(vec.New(0, world.EarthGravity))
	case "0":
		w.SetGravity(vec.Vector2[float64]{})
	case "x":
		w.StopAll()
	case "n", "p":
		m.setErr(w.InsertRandom())
	case "c", "delete":
		w.Clear()
	case "r":
		m.driver.Report()
	case "b":
		w.SetBoundary(w.Boundary().Next())
	case "g":
		w.SetPairwiseGravity(!w.PairwiseGravity())
	case "t":
		m.theme = nextTheme(m.theme.Name)
		m.styles = newStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return nil
}

// click inserts a body under the terminal cell (x, y). Cells outside the
// canvas are ignored.
func (m *Model) click(x, y int, heavy bool) {
	ax, ay, ok := m.toArena(x, y)
	if !ok {
		return
	}
	if heavy {
		m.setErr(m.world.InsertAt(ax, ay, heavyMass, heavyRadius))
		return
	}
	m.setErr(m.world.InsertAt(ax, ay, 0, 0))
}

// canvasTop is the terminal row of the first canvas cell. The help overlay
// is rendered above the canvas and pushes it down.
func (m *Model) canvasTop() int {
	if m.showHelp {
		return strings.Count(helpText, "\n") + 1 + canvasPadY
	}
	return canvasPadY
}

// toArena maps a terminal cell to the arena coordinates of its center.
func (m *Model) toArena(x, y int) (float64, float64, bool) {
	col, row := x-canvasPadX, y-m.canvasTop()
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return 0, 0, false
	}
	w, h := m.world.Size()
	return (float64(col) + 0.5) / float64(m.canvas.Width) * w,
		(float64(row) + 0.5) / float64(m.canvas.Height) * h,
		true
}

func (m *Model) resize(width, height int) {
	cols := max(width-statsWidth-2*canvasPadX, minCols)
	rows := max(height-2*canvasPadY, minRows)
	if cols != m.canvas.Width || rows != m.canvas.Height {
		m.canvas = NewCanvas(cols, rows)
	}
}

func (m *Model) setErr(err error) {
	if err == nil {
		m.lastErr = ""
		return
	}
	m.lastErr = err.Error()
	m.log.Warn("live input rejected", zap.Error(err))
}

func (m *Model) refresh() {
	m.stats = m.world.Stats()
	m.energy = pushCapped(m.energy, m.stats.Energy)
	m.comparisons = pushCapped(m.comparisons, float64(m.stats.Comparisons))
	m.draw()
}

func pushCapped(s []float64, v float64) []float64 {
	if len(s) >= historyCapacity {
		s = s[1:]
	}
	return append(s, v)
}

// draw scales the arena onto the canvas dots. Heavy bodies are filled.
func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.world.Size()
	dw, dh := m.canvas.Dots()
	sx, sy := float64(dw)/w, float64(dh)/h
	for _, b := range m.world.Snapshot() {
		px, py := int(b.Position.X*sx), int(b.Position.Y*sy)
		r := int(b.Radius*(sx+sy)/2 + 0.5)
		if b.Mass >= export.HeavyMass {
			m.canvas.FillCircle(px, py, r)
		} else {
			m.canvas.DrawCircle(px, py, r)
		}
	}
}

func (m Model) View() string {
	st, sty := m.stats, m.styles
	var s strings.Builder

	s.WriteString(sty.header.Render(strings.ToUpper(m.scene)) + "\n")
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(sty.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(sty.label.Render(label) + sty.value.Render(value) + "\n")
	}
	row("Uptime", time.Since(m.started).Truncate(time.Second).String())
	row("Bodies", fmt.Sprintf("%d", st.Bodies))
	row("Energy", fmt.Sprintf("%.4g", st.Energy))
	row("vs peak", Meter(energyLevel(m.energy), 20))
	row("Momentum", st.Momentum.String())
	row("Gravity", st.Gravity.String())
	row("Pairwise", onOff(st.PairwiseGravity))
	row("Boundary", st.Boundary.String())
	row("Compares", fmt.Sprintf("%d", st.Comparisons))
	s.WriteString(sty.label.Render("") + sty.value.Render(Sparkline(m.comparisons, 24)) + "\n")
	if m.lastErr != "" {
		s.WriteString("\n" + sty.warn.Render(m.lastErr) + "\n")
	}

	s.WriteString(sty.help.Render(separator(26, sty.help) + "\n+/-:Energy  Arrows:Gravity  Q:Quit\nN:Add  C:Clear  B:Bound  ?:Help"))

	canvasView := sty.canvas.Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, sty.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

// energyLevel is the latest energy as a fraction of the peak in history.
func energyLevel(history []float64) float64 {
	if len(history) == 0 {
		return 0
	}
	peak := 0.0
	for _, e := range history {
		peak = max(peak, e)
	}
	if peak <= 0 {
		return 0
	}
	return history[len(history)-1] / peak
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

const helpText = `
╔══════════════════════════════════════════╗
║             KEYBOARD SHORTCUTS            ║
╠══════════════════════════════════════════╣
║  + / -     Speed up / slow down bodies   ║
║  Arrows    Nudge gravity                 ║
║  Space     Earth gravity                 ║
║  0         Zero gravity                  ║
║  X         Stop every body               ║
║  N / P     Insert a random circle        ║
║  C / Del   Clear the world               ║
║  R         Log a world report            ║
║  B         Cycle boundary mode           ║
║  G         Toggle pairwise gravity       ║
║  T         Cycle themes                  ║
║  Click     Insert a body (shift: heavy)  ║
║  Q         Quit                          ║
╚══════════════════════════════════════════╝`
