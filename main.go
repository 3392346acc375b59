// Package main provides the entry point for the leola reader.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/leolalee/library/catalog"
	"github.com/leolalee/library/reader"
	"github.com/leolalee/library/tts"
	"github.com/leolalee/library/tts/engines"
	"github.com/leolalee/library/ui"
	"github.com/leolalee/library/utils"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	cfg        fileConfig

	rootCmd = &cobra.Command{
		Use:   "leola [BOOK-ID]",
		Short: "Read and listen to Leola's crochet stories",
		Long: paragraph(
			fmt.Sprintf("\nLeola's Digital Library: stories you can %s.", keyword("read or listen to")),
		),
		SilenceErrors:     false,
		SilenceUsage:      true,
		TraverseChildren:  true,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBookIDs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func completeBookIDs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, b := range catalog.Default().Books() {
		ids = append(ids, b.ID+"\t"+b.Title)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = utils.ExpandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(utils.ExpandPath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config: %w", err)
		}
	}

	c, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = c
	width = cfg.Width
	mouse = cfg.Mouse

	// validate the glamour style
	style = cfg.Style
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = "notty"
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func execute(_ *cobra.Command, args []string) error {
	var id string
	if len(args) == 1 {
		id = args[0]
		if _, ok := catalog.Default().Find(id); !ok {
			return fmt.Errorf("no book with id %q (see %s)", id, keyword("leola list"))
		}
	}
	return runTUI(id)
}

func runTUI(bookID string) error {
	// Read environment to get debugging stuff
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the flag/config one if unset or invalid
	if uiCfg.GlamourStyle == "" || validateStyle(uiCfg.GlamourStyle) != nil {
		uiCfg.GlamourStyle = style
	}

	uiCfg.BookID = bookID
	uiCfg.GlamourMaxWidth = width
	uiCfg.EnableMouse = uiCfg.EnableMouse || mouse
	uiCfg.Settings = cfg.settings()
	uiCfg.ConfigFile = viper.ConfigFileUsed()

	narrator, closer, err := openNarrator(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer() }()

	p := ui.NewProgram(uiCfg, ui.Deps{
		Catalog:      catalog.Default(),
		Settings:     reader.NewStore(uiCfg.Settings),
		Narrator:     narrator,
		LoadSettings: reloadSettings,
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

// openNarrator builds the narrator for the configured engine. An engine that
// cannot start leaves the narrator disabled rather than failing the reader.
func openNarrator(c fileConfig) (*tts.Narrator, func() error, error) {
	ec, err := c.engines()
	if err != nil {
		return nil, nil, err
	}
	synth, closer, err := engines.Open(ec)
	narrator := tts.NewNarrator(synth)
	if err != nil {
		narrator.Disable(err)
	}
	return narrator, closer.Close, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	setConfigDefaults(viper.GetViper())
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("style", "s", styles.AutoStyle, "style name or JSON path")
	flags.UintP("width", "w", 0, "word-wrap at width (set to 0 to detect)")

	rootCmd.Flags().BoolP("mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")
	rootCmd.Flags().String("tts", "", fmt.Sprintf("narration engine (%s)", strings.Join(engines.Names, ", ")))
	rootCmd.Flags().String("theme", "", "colour theme (standard, warm, cool, dark, sepia)")
	rootCmd.Flags().Int("font-size", 0, "text size, 12 to 24")
	rootCmd.Flags().Float64("speech-rate", 0, "narration speed, 0.5 to 2.0")
	rootCmd.Flags().String("voice", "", "narrator voice")
	rootCmd.Flags().Int("particles", 0, "floating craft density, 0 to 100")
	rootCmd.Flags().Bool("auto-advance", true, "turn the page when narration finishes")

	// Config bindings
	_ = viper.BindPFlag("style", flags.Lookup("style"))
	_ = viper.BindPFlag("width", flags.Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("tts.engine", rootCmd.Flags().Lookup("tts"))
	_ = viper.BindPFlag("reader.theme", rootCmd.Flags().Lookup("theme"))
	_ = viper.BindPFlag("reader.font_size", rootCmd.Flags().Lookup("font-size"))
	_ = viper.BindPFlag("reader.speech_rate", rootCmd.Flags().Lookup("speech-rate"))
	_ = viper.BindPFlag("reader.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("reader.particles", rootCmd.Flags().Lookup("particles"))
	_ = viper.BindPFlag("reader.auto_advance", rootCmd.Flags().Lookup("auto-advance"))

	rootCmd.AddCommand(listCmd, printCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "leola")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "leola")}, dirs...)
	}

	if c := os.Getenv("LEOLA_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("leola")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("leola")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "leola.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
		return
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Warn("Could not parse configuration file", "err", err)
	}
}
