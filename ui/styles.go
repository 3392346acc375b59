package ui

import (
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/leolalee/library/reader"
)

// palette is the set of colours a theme provides.
type palette struct {
	Background lipgloss.Color
	Text       lipgloss.Color
	Header     lipgloss.Color
	Accent     lipgloss.Color
	Subtle     lipgloss.Color
	// glamour style forced by the theme; empty follows the user's style.
	Glamour string
}

var palettes = map[reader.Theme]palette{
	reader.ThemeStandard: {
		Background: "#1a1a2e",
		Text:       "#e0e0e0",
		Header:     "#ffc107",
		Accent:     "#7B61FF",
		Subtle:     "#8a8aa3",
	},
	reader.ThemeWarm: {
		Background: "#3a0000",
		Text:       "#f8e3cb",
		Header:     "#ffb74d",
		Accent:     "#F5515F",
		Subtle:     "#b08968",
	},
	reader.ThemeCool: {
		Background: "#001a33",
		Text:       "#e6f7ff",
		Header:     "#8ecdf7",
		Accent:     "#4361EE",
		Subtle:     "#6c8ba6",
	},
	reader.ThemeDark: {
		Background: "#121212",
		Text:       "#c0c0c0",
		Header:     "#d4d4d4",
		Accent:     "#7D7D7D",
		Subtle:     "#5A5A5A",
		Glamour:    styles.DarkStyle,
	},
	reader.ThemeSepia: {
		Background: "#f5eedd",
		Text:       "#5c4b36",
		Header:     "#8a6d3b",
		Accent:     "#B5179E",
		Subtle:     "#9c8b72",
		Glamour:    styles.LightStyle,
	},
}

func paletteFor(t reader.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[reader.ThemeStandard]
}

// theme holds the styles derived from a palette.
type theme struct {
	palette

	title      lipgloss.Style
	subtitle   lipgloss.Style
	subtle     lipgloss.Style
	selected   lipgloss.Style
	errorTitle lipgloss.Style

	statusBar     lipgloss.Style
	statusNote    lipgloss.Style
	statusMessage lipgloss.Style
	statusError   lipgloss.Style
	statusPage    lipgloss.Style
	statusLogo    lipgloss.Style

	overlay      lipgloss.Style
	overlayTitle lipgloss.Style
	pane         lipgloss.Style
}

func newTheme(t reader.Theme) theme {
	p := paletteFor(t)
	statusBg := lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	return theme{
		palette:    p,
		title:      lipgloss.NewStyle().Foreground(p.Header).Bold(true),
		subtitle:   lipgloss.NewStyle().Foreground(p.Text),
		subtle:     lipgloss.NewStyle().Foreground(p.Subtle),
		selected:   lipgloss.NewStyle().Foreground(p.Header).Bold(true),
		errorTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")).Background(lipgloss.Color("#FF5F87")).Padding(0, 1),

		statusBar:     lipgloss.NewStyle().Background(statusBg),
		statusNote:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}).Background(statusBg),
		statusMessage: lipgloss.NewStyle().Foreground(lipgloss.Color("#89F0CB")).Background(lipgloss.Color("#1C8760")),
		statusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")).Background(lipgloss.Color("#A8323E")),
		statusPage:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).Background(statusBg),
		statusLogo:    lipgloss.NewStyle().Foreground(p.Background).Background(p.Header).Bold(true).Padding(0, 1),

		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),
		overlayTitle: lipgloss.NewStyle().Foreground(p.Header).Bold(true).MarginBottom(1),
		pane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, true).
			BorderForeground(p.Subtle).
			Padding(0, 1),
	}
}

// coverIcons are shown next to books in the library.
var coverIcons = map[string]string{
	"needle-and-yarn": "🧶",
	"crochet-mastery": "🧵",
}

func coverIcon(bookID string) string {
	if icon, ok := coverIcons[bookID]; ok {
		return icon
	}
	return "📚"
}
