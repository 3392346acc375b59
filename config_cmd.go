package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# style name or JSON path (default "auto")
style: "auto"
# mouse support
mouse: false
# word-wrap at width (0 detects the terminal width)
width: 0

# Reader preferences. Changes made while leola is running are picked up.
reader:
  # standard, warm, cool, dark or sepia
  theme: "standard"
  # 12 to 24; larger type means a narrower column
  font_size: 16
  # 0.5 to 2.0 in steps of 0.1
  speech_rate: 1.0
  # default, female-1, female-2, female-3 or male-1
  voice: "default"
  # floating craft density, 0 to 100 in steps of 10
  particles: 50
  # turn the page when narration finishes
  auto_advance: true

# Narration
tts:
  # off, mock or piper
  engine: "off"
  # reading speed of the mock engine
  words_per_minute: 160

  piper:
    binary: "piper"
    # model: "/path/to/en_US-lessac-medium.onnx"
    # -1 picks a speaker from the voice
    speaker: -1
    gender: "female"
    sample_rate: 22050
    timeout: "30s"
    requests_per_minute: 60

  # Synthesised audio is kept so pages are not synthesised twice.
  cache:
    # dir: "~/.cache/leola/audio"
    memory_mb: 32
    disk_mb: 512
`

var configCmd = &cobra.Command{
	Use:               "config",
	Hidden:            false,
	Short:             "Edit the leola config file",
	Long:              paragraph(fmt.Sprintf("\n%s the leola config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example:           paragraph("leola config\nleola config --config path/to/config.yml"),
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Leola", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o600); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
