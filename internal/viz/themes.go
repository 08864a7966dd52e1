package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/glacialsim/internal/dynamo"
)

// Theme colours the regime strip and the forcing trace.
type Theme struct {
	Name      string
	Regimes   [dynamo.NumStates]lipgloss.Color
	Forcing   lipgloss.Color
	Threshold lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
}

var (
	ThemeGlacier = Theme{
		Name:      "glacier",
		Regimes:   [dynamo.NumStates]lipgloss.Color{"#5fd068", "#66ccff", "#e0f4ff"},
		Forcing:   lipgloss.Color("#ffc048"),
		Threshold: lipgloss.Color("#444466"),
		Accent:    lipgloss.Color("#00ffff"),
		Muted:     lipgloss.Color("#666688"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Regimes:   [dynamo.NumStates]lipgloss.Color{"#005500", "#00cc00", "#88ff88"},
		Forcing:   lipgloss.Color("#00ff00"),
		Threshold: lipgloss.Color("#005500"),
		Accent:    lipgloss.Color("#88ff88"),
		Muted:     lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Regimes:   [dynamo.NumStates]lipgloss.Color{"#888888", "#cccccc", "#ffffff"},
		Forcing:   lipgloss.Color("#ffffff"),
		Threshold: lipgloss.Color("#444444"),
		Accent:    lipgloss.Color("#0088ff"),
		Muted:     lipgloss.Color("#888888"),
	}

	Themes = []Theme{
		ThemeGlacier,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Regime renders label in the colour of state s.
func (t Theme) Regime(s dynamo.GlacialState, label string) string {
	if !s.Valid() {
		return label
	}
	return lipgloss.NewStyle().Foreground(t.Regimes[s]).Render(label)
}
