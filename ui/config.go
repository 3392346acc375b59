package ui

import "github.com/leolalee/library/reader"

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool   `env:"LEOLA_ENABLE_MOUSE"`

	// Book to open at startup; empty starts in the library.
	BookID string

	// Settings at startup.
	Settings reader.Settings

	// Config file to watch for changes. Empty disables watching.
	ConfigFile string

	// For debugging the UI
	GlamourEnabled bool `env:"LEOLA_ENABLE_GLAMOUR" envDefault:"true"`
	AltScreen      bool `env:"LEOLA_ALT_SCREEN"     envDefault:"true"`
}
