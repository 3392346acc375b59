package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/leolalee/library/internal/cache"
	"github.com/leolalee/library/reader"
	"github.com/leolalee/library/tts/engines"
	"github.com/leolalee/library/tts/engines/piper"
	"github.com/leolalee/library/utils"
)

// fileConfig is leola.yml after flags and environment are merged in.
type fileConfig struct {
	Style  string       `mapstructure:"style"`
	Width  uint         `mapstructure:"width" validate:"lte=1000"`
	Mouse  bool         `mapstructure:"mouse"`
	Reader readerConfig `mapstructure:"reader"`
	TTS    ttsConfig    `mapstructure:"tts"`
}

// Numeric reader settings are clamped rather than rejected.
type readerConfig struct {
	Theme       string  `mapstructure:"theme" validate:"oneof=standard warm cool dark sepia"`
	FontSize    int     `mapstructure:"font_size"`
	SpeechRate  float64 `mapstructure:"speech_rate" validate:"gte=0"`
	Voice       string  `mapstructure:"voice" validate:"oneof=default female-1 female-2 female-3 male-1"`
	Particles   int     `mapstructure:"particles"`
	AutoAdvance bool    `mapstructure:"auto_advance"`
}

type ttsConfig struct {
	Engine         string      `mapstructure:"engine" validate:"omitempty,oneof=off mock piper"`
	WordsPerMinute int         `mapstructure:"words_per_minute" validate:"gte=40,lte=600"`
	Piper          piperConfig `mapstructure:"piper"`
	Cache          cacheConfig `mapstructure:"cache"`
}

type piperConfig struct {
	Binary            string        `mapstructure:"binary" validate:"required"`
	Model             string        `mapstructure:"model"`
	Speaker           int           `mapstructure:"speaker" validate:"gte=-1"`
	Gender            string        `mapstructure:"gender" validate:"omitempty,oneof=female male"`
	SampleRate        int           `mapstructure:"sample_rate" validate:"oneof=16000 22050 24000 44100 48000"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=1s"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" validate:"gte=0"`
}

type cacheConfig struct {
	Dir      string `mapstructure:"dir"`
	MemoryMB int64  `mapstructure:"memory_mb" validate:"gte=0,lte=4096"`
	DiskMB   int64  `mapstructure:"disk_mb" validate:"gte=0,lte=65536"`
}

// envKeyReplacer maps reader.font_size to LEOLA_READER_FONT_SIZE.
var envKeyReplacer = strings.NewReplacer(".", "_")

// validate is a shared validator instance for config validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use config key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("mapstructure")
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}()

func setConfigDefaults(v *viper.Viper) {
	d := reader.DefaultSettings()
	p := piper.DefaultConfig()

	v.SetDefault("style", "auto")
	v.SetDefault("width", 0)
	v.SetDefault("mouse", false)

	v.SetDefault("reader.theme", string(d.ColorTheme))
	v.SetDefault("reader.font_size", d.FontSize)
	v.SetDefault("reader.speech_rate", d.SpeechRate)
	v.SetDefault("reader.voice", d.Voice)
	v.SetDefault("reader.particles", d.ParticleDensity)
	v.SetDefault("reader.auto_advance", d.AutoAdvance)

	v.SetDefault("tts.engine", engines.Off)
	v.SetDefault("tts.words_per_minute", 160)
	v.SetDefault("tts.piper.binary", p.Binary)
	v.SetDefault("tts.piper.model", "")
	v.SetDefault("tts.piper.speaker", p.Speaker)
	v.SetDefault("tts.piper.gender", p.Gender)
	v.SetDefault("tts.piper.sample_rate", p.SampleRate)
	v.SetDefault("tts.piper.timeout", p.Timeout)
	v.SetDefault("tts.piper.requests_per_minute", p.RequestsPerMinute)
	v.SetDefault("tts.cache.dir", "")
	v.SetDefault("tts.cache.memory_mb", 32)
	v.SetDefault("tts.cache.disk_mb", 512)
}

// loadConfig decodes and validates the merged configuration.
func loadConfig(v *viper.Viper) (fileConfig, error) {
	var c fileConfig
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return c, formatValidationError(err)
	}
	return c, nil
}

// formatValidationError lists every invalid key on one line.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		// drop the root struct name
		key := e.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		msgs = append(msgs, fmt.Sprintf("%s %s (got %v)", key, friendlyMessage(e), e.Value()))
	}
	sort.Strings(msgs)
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}

func (c fileConfig) settings() reader.Settings {
	return reader.Settings{
		FontSize:        c.Reader.FontSize,
		ParticleDensity: c.Reader.Particles,
		SpeechRate:      c.Reader.SpeechRate,
		Voice:           c.Reader.Voice,
		ColorTheme:      reader.Theme(c.Reader.Theme),
		AutoAdvance:     c.Reader.AutoAdvance,
	}.Clamp()
}

func (c fileConfig) engines() (engines.Config, error) {
	dir := c.TTS.Cache.Dir
	if dir == "" {
		cacheDir, err := gap.NewScope(gap.User, "leola").CacheDir()
		if err != nil {
			return engines.Config{}, fmt.Errorf("unable to find cache directory: %w", err)
		}
		dir = filepath.Join(cacheDir, "audio")
	}

	cc := cache.DefaultConfig(utils.ExpandPath(dir))
	cc.MemoryBytes = c.TTS.Cache.MemoryMB << 20
	cc.DiskBytes = c.TTS.Cache.DiskMB << 20

	return engines.Config{
		Engine:         c.TTS.Engine,
		WordsPerMinute: c.TTS.WordsPerMinute,
		Cache:          cc,
		Piper: piper.Config{
			Binary:            c.TTS.Piper.Binary,
			Model:             c.TTS.Piper.Model,
			Speaker:           c.TTS.Piper.Speaker,
			Gender:            c.TTS.Piper.Gender,
			SampleRate:        c.TTS.Piper.SampleRate,
			Timeout:           c.TTS.Piper.Timeout,
			RequestsPerMinute: c.TTS.Piper.RequestsPerMinute,
		},
	}, nil
}

// reloadSettings re-reads the config file for the running TUI.
func reloadSettings() (reader.Settings, error) {
	if err := viper.ReadInConfig(); err != nil {
		return reader.Settings{}, fmt.Errorf("unable to read config: %w", err)
	}
	c, err := loadConfig(viper.GetViper())
	if err != nil {
		return reader.Settings{}, err
	}
	return c.settings(), nil
}
