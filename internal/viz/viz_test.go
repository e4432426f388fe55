package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/grid"
)

func TestSliceOrientation(t *testing.T) {
	f, _ := grid.New([]int{3, 2}, 1)
	f.Set(9, 2, 0)

	v := SliceOf(f)
	if v.Rows != 3 || v.Cols != 2 {
		t.Fatalf("view %dx%d", v.Rows, v.Cols)
	}
	if v.At(0, 0) != 9 {
		t.Error("last row of axis 0 should be drawn on top")
	}

	cube, _ := grid.New([]int{2, 2, 4}, 1)
	cube.Set(5, 1, 1, 2)
	if got := SliceOf(cube).At(0, 1); got != 5 {
		t.Errorf("3D slice should use the middle plane, got %v", got)
	}
}

func TestHeatmapPlain(t *testing.T) {
	f, _ := grid.FromValues([]int{2, 3}, 1, []float64{0, 0.5, 1, 1, math.NaN(), 0})
	out := Heatmap(SliceOf(f), HeatmapOptions{})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	// top row is axis-0 index 1
	if lines[0] != "@!"+" " {
		t.Errorf("top row %q", lines[0])
	}
	if lines[1][0] != ' ' || lines[1][2] != '@' {
		t.Errorf("bottom row %q", lines[1])
	}
}

func TestHeatmapDownsamples(t *testing.T) {
	f, _ := grid.New([]int{40, 80}, 1)
	out := Heatmap(SliceOf(f), HeatmapOptions{Width: 20, Height: 10, Palette: &PaletteMono})
	if n := strings.Count(out, "\n"); n != 10 {
		t.Errorf("got %d rows, want 10", n)
	}
}

func TestProfile(t *testing.T) {
	out := Profile([]float64{0, 1, 0, math.NaN(), 1}, 5, 2)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d rows", len(lines))
	}
	for _, l := range lines {
		if len([]rune(l)) != 5 {
			t.Errorf("row %q has wrong width", l)
		}
	}
	if !strings.ContainsFunc(out, func(r rune) bool { return r > 0x2800 && r <= 0x28ff }) {
		t.Error("expected lit braille dots")
	}
}

func TestGetPalette(t *testing.T) {
	if GetPalette("ocean").Name != "ocean" {
		t.Error("expected ocean palette")
	}
	if GetPalette("neon").Name != "thermal" {
		t.Error("unknown palette should fall back to thermal")
	}
	if PaletteThermal.shade(0) != PaletteThermal.Ramp[0] || PaletteThermal.shade(1) != PaletteThermal.Ramp[len(PaletteThermal.Ramp)-1] {
		t.Error("shade should span the ramp")
	}
}

func newEngine(t *testing.T, dt float64) *engine.Engine {
	t.Helper()
	p := engine.DefaultParams()
	p.Dt = dt
	e, err := engine.New(engine.NewConfig([]int{8, 8}, 0.125, p, boundary.Driven))
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestModelSteps(t *testing.T) {
	m := NewModel(newEngine(t, 0.001), Options{Name: "lid", MaxSteps: 10, StepsPerFrame: 4})

	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	if m.eng.Steps() != 4 {
		t.Errorf("steps %d, want 4", m.eng.Steps())
	}

	for i := 0; i < 5; i++ {
		next, _ = m.Update(TickMsg{})
		m = next.(Model)
	}
	if m.eng.Steps() != 10 || !m.Done() {
		t.Errorf("should stop at the budget, steps %d", m.eng.Steps())
	}

	view := m.View()
	if !strings.Contains(view, "LID") || !strings.Contains(view, "FINISHED") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestModelPauseAndSpeed(t *testing.T) {
	m := NewModel(newEngine(t, 0.001), Options{})

	next, _ := m.Update(keyMsg(" "))
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.eng.Steps() != 0 {
		t.Error("paused model must not step on tick")
	}

	next, _ = m.Update(keyMsg("n"))
	m = next.(Model)
	if m.eng.Steps() != 1 {
		t.Errorf("single step gave %d steps", m.eng.Steps())
	}

	next, _ = m.Update(keyMsg("+"))
	m = next.(Model)
	if m.perFrame != 2 {
		t.Errorf("perFrame %d, want 2", m.perFrame)
	}
	next, _ = m.Update(keyMsg("p"))
	m = next.(Model)
	if m.palette.Name != "ocean" {
		t.Errorf("palette %s, want ocean", m.palette.Name)
	}
}

func TestModelStopsOnBlowUp(t *testing.T) {
	p := engine.Params{Kappa: 0.1, Alpha: 2, C0: 1, Dt: 0.05, Floor: 0.01}
	cfg := engine.NewConfig([]int{16, 16}, 1.0/16, p, boundary.None)
	cfg.WithCompanion = false
	for i := range cfg.Initial {
		cfg.Initial[i] = 1 + 0.01*math.Sin(float64(i*i))
	}
	e, err := engine.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	m := NewModel(e, Options{StepsPerFrame: 64})
	for i := 0; i < 10 && !m.Done(); i++ {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}
	if !m.verdict.BlownUp {
		t.Fatal("expected blow-up")
	}
	if m.Err() != nil {
		t.Errorf("blow-up must stop stepping before ErrHalted, got %v", m.Err())
	}
	if !strings.Contains(m.View(), "BLOWN UP") {
		t.Error("view should report the blow-up")
	}
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
