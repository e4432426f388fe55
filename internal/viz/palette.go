package viz

import "github.com/charmbracelet/lipgloss"

// Palette colours a heatmap from low to high and styles the side panel.
type Palette struct {
	Name   string
	Ramp   []lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
	Alert  lipgloss.Color
}

var (
	PaletteThermal = Palette{
		Name:   "thermal",
		Ramp:   colors("#1a1a6e", "#3b2bb0", "#8e2fc2", "#d6336c", "#f76707", "#fcc419", "#fff3bf"),
		Accent: lipgloss.Color("#fcc419"),
		Muted:  lipgloss.Color("#666688"),
		Alert:  lipgloss.Color("#ff4444"),
	}

	PaletteOcean = Palette{
		Name:   "ocean",
		Ramp:   colors("#001a33", "#004c80", "#0077be", "#00a8cc", "#66d9e8", "#e0f0ff"),
		Accent: lipgloss.Color("#ffd700"),
		Muted:  lipgloss.Color("#4488aa"),
		Alert:  lipgloss.Color("#ff4757"),
	}

	PaletteMono = Palette{
		Name:   "mono",
		Ramp:   colors("#444444", "#888888", "#cccccc", "#ffffff"),
		Accent: lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
		Alert:  lipgloss.Color("#ff0000"),
	}

	Palettes = []Palette{PaletteThermal, PaletteOcean, PaletteMono}
)

func colors(hex ...string) []lipgloss.Color {
	out := make([]lipgloss.Color, len(hex))
	for i, h := range hex {
		out[i] = lipgloss.Color(h)
	}
	return out
}

// GetPalette returns the named palette, falling back to thermal.
func GetPalette(name string) Palette {
	for _, p := range Palettes {
		if p.Name == name {
			return p
		}
	}
	return PaletteThermal
}

// PaletteNames lists the built-in palettes.
func PaletteNames() []string {
	names := make([]string, len(Palettes))
	for i, p := range Palettes {
		names[i] = p.Name
	}
	return names
}

// shade maps t in [0,1] to a ramp colour.
func (p Palette) shade(t float64) lipgloss.Color {
	i := int(t * float64(len(p.Ramp)-1))
	if i < 0 {
		i = 0
	}
	if i >= len(p.Ramp) {
		i = len(p.Ramp) - 1
	}
	return p.Ramp[i]
}
