package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/stability"
)

const (
	mapWidth        = 64
	mapHeight       = 24
	historyCapacity = 300
	maxPerFrame     = 512
)

var (
	labelStyle = lipgloss.NewStyle().Width(10)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).Padding(0, 2).Width(44)
	helpStyle  = lipgloss.NewStyle().MarginTop(1)
)

type TickMsg time.Time

type Options struct {
	Name          string
	MaxSteps      int
	StepsPerFrame int
	FPS           int
	Palette       string
}

// Model steps an engine a few times per frame and draws it. It stops
// stepping at the step budget or on the first blow-up.
type Model struct {
	eng     *engine.Engine
	opts    Options
	palette Palette

	running  bool
	perFrame int
	verdict  stability.Verdict
	omega    []float64
	err      error
}

func NewModel(e *engine.Engine, opts Options) Model {
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	return Model{
		eng:      e,
		opts:     opts,
		palette:  GetPalette(opts.Palette),
		running:  true,
		perFrame: opts.StepsPerFrame,
		verdict:  stability.Smooth(),
		omega:    []float64{e.Omega()},
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Done reports whether the engine can no longer advance.
func (m Model) Done() bool {
	return m.verdict.BlownUp || m.err != nil || (m.opts.MaxSteps > 0 && m.eng.Steps() >= m.opts.MaxSteps)
}

// Err is the engine failure that stopped the view, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "+", "=":
			m.perFrame = min(m.perFrame*2, maxPerFrame)
		case "-", "_":
			m.perFrame = max(m.perFrame/2, 1)
		case "p":
			names := PaletteNames()
			for i, name := range names {
				if name == m.palette.Name {
					m.palette = GetPalette(names[(i+1)%len(names)])
					break
				}
			}
		}
	case TickMsg:
		if m.running {
			m.advance(m.perFrame)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance(n int) {
	for i := 0; i < n && !m.Done(); i++ {
		if err := m.eng.Step(); err != nil {
			m.err = err
			return
		}
		m.verdict = m.eng.Check()
	}
	if o := m.eng.Omega(); !math.IsNaN(o) && !math.IsInf(o, 0) {
		m.omega = append(m.omega, o)
	}
	if len(m.omega) > historyCapacity {
		m.omega = m.omega[1:]
	}
}

func (m Model) status() (string, lipgloss.Color) {
	switch {
	case m.verdict.BlownUp:
		return "BLOWN UP: " + m.verdict.String(), m.palette.Alert
	case m.err != nil:
		return "ERROR: " + m.err.Error(), m.palette.Alert
	case m.Done():
		return "FINISHED", m.palette.Accent
	case !m.running:
		return "PAUSED", m.palette.Muted
	}
	return "RUNNING", m.palette.Accent
}

func (m Model) View() string {
	c := m.eng.C()

	var field string
	if c.Dims() == 1 {
		field = Profile(c.Values(), mapWidth/2, mapHeight/2)
	} else {
		field = Heatmap(SliceOf(c), HeatmapOptions{Width: mapWidth, Height: mapHeight, Palette: &m.palette})
	}

	label := labelStyle.Foreground(m.palette.Muted)
	row := func(name, value string) string {
		return label.Render(name) + value + "\n"
	}

	var s strings.Builder
	title := m.opts.Name
	if title == "" {
		title = "field"
	}
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(m.palette.Accent).Render(strings.ToUpper(title)) + "\n")
	status, col := m.status()
	s.WriteString(lipgloss.NewStyle().Foreground(col).Render(status) + "\n\n")

	s.WriteString(row("step", fmt.Sprintf("%d", m.eng.Steps())))
	s.WriteString(row("time", fmt.Sprintf("%.4f", m.eng.Time())))
	s.WriteString(row("dt", fmt.Sprintf("%.3g", m.eng.LastDt())))
	s.WriteString(row("Ω", fmt.Sprintf("%.6g", m.omega[len(m.omega)-1])))
	s.WriteString(row("min C", fmt.Sprintf("%.4f", c.Min())))
	s.WriteString(row("max C", fmt.Sprintf("%.4f", c.Max())))
	s.WriteString(row("clamped", fmt.Sprintf("%d", m.eng.Clamped())))
	s.WriteString(row("boundary", m.eng.Boundary().String()))
	s.WriteString(row("speed", fmt.Sprintf("%d steps/frame", m.perFrame)))

	if len(m.omega) > 1 {
		chart := asciigraph.Plot(m.omega, asciigraph.Height(6), asciigraph.Width(32), asciigraph.Caption("Ω"))
		s.WriteString("\n" + chart + "\n")
	}
	s.WriteString(helpStyle.Foreground(m.palette.Muted).Render("SP:Pause N:Step +/-:Speed P:Palette Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, field, panelStyle.BorderForeground(m.palette.Muted).Render(s.String()))
}

// Run shows the engine until the user quits and returns the final model.
func Run(e *engine.Engine, opts Options) (Model, error) {
	final, err := tea.NewProgram(NewModel(e, opts), tea.WithAltScreen()).Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
