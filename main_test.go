package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/leolalee/library/catalog"
	"github.com/leolalee/library/reader"
	"github.com/leolalee/library/tts/engines"
)

func newTestViper(t *testing.T, yml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setConfigDefaults(v)
	v.SetConfigType("yaml")
	if yml != "" {
		if err := v.ReadConfig(strings.NewReader(yml)); err != nil {
			t.Fatalf("reading config: %v", err)
		}
	}
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig(newTestViper(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := c.settings(), reader.DefaultSettings(); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if c.TTS.Engine != engines.Off {
		t.Errorf("expected engine %q, got %q", engines.Off, c.TTS.Engine)
	}
	if c.TTS.Piper.Timeout != 30*time.Second {
		t.Errorf("expected 30s piper timeout, got %v", c.TTS.Piper.Timeout)
	}
}

func TestLoadConfigDefaultFile(t *testing.T) {
	if _, err := loadConfig(newTestViper(t, defaultConfig)); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoadConfigClampsReaderSettings(t *testing.T) {
	c, err := loadConfig(newTestViper(t, `
reader:
  font_size: 40
  particles: 63
  speech_rate: 3.7
  theme: sepia
  auto_advance: false
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := c.settings()
	if s.FontSize != reader.MaxFontSize {
		t.Errorf("expected font size %d, got %d", reader.MaxFontSize, s.FontSize)
	}
	if s.ParticleDensity != 60 {
		t.Errorf("expected particles 60, got %d", s.ParticleDensity)
	}
	if s.SpeechRate != 2.0 {
		t.Errorf("expected speech rate 2.0, got %v", s.SpeechRate)
	}
	if s.ColorTheme != reader.ThemeSepia {
		t.Errorf("expected sepia, got %q", s.ColorTheme)
	}
	if s.AutoAdvance {
		t.Error("expected auto advance off")
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yml  string
		want string
	}{
		{"theme", "reader:\n  theme: neon\n", "reader.theme must be one of"},
		{"voice", "reader:\n  voice: robot\n", "reader.voice must be one of"},
		{"engine", "tts:\n  engine: gtts\n", "tts.engine must be one of"},
		{"gender", "tts:\n  piper:\n    gender: other\n", "tts.piper.gender must be one of"},
		{"sample rate", "tts:\n  piper:\n    sample_rate: 12345\n", "tts.piper.sample_rate must be one of"},
		{"wpm", "tts:\n  words_per_minute: 5\n", "tts.words_per_minute must be greater than or equal to 40"},
		{"cache", "tts:\n  cache:\n    disk_mb: -1\n", "tts.cache.disk_mb must be greater than or equal to 0"},
		{"binary", "tts:\n  piper:\n    binary: \"\"\n", "tts.piper.binary is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(newTestViper(t, tc.yml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestEnginesConfig(t *testing.T) {
	c, err := loadConfig(newTestViper(t, `
tts:
  engine: piper
  cache:
    dir: /tmp/leola-audio
    memory_mb: 1
    disk_mb: 2
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ec, err := c.engines()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ec.Engine != engines.Piper {
		t.Errorf("expected piper, got %q", ec.Engine)
	}
	if ec.Cache.Dir != "/tmp/leola-audio" {
		t.Errorf("unexpected cache dir %q", ec.Cache.Dir)
	}
	if ec.Cache.MemoryBytes != 1<<20 || ec.Cache.DiskBytes != 2<<20 {
		t.Errorf("unexpected cache sizes %d/%d", ec.Cache.MemoryBytes, ec.Cache.DiskBytes)
	}
	if ec.Piper.SampleRate != 22050 {
		t.Errorf("expected 22050 Hz, got %d", ec.Piper.SampleRate)
	}
}

func TestOpenNarratorOff(t *testing.T) {
	c, err := loadConfig(newTestViper(t, "tts:\n  cache:\n    dir: "+t.TempDir()+"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, closer, err := openNarrator(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = closer() }()
	if !n.State().Disabled {
		t.Error("expected narration to be disabled")
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"auto", false},
		{"dark", false},
		{"notty", false},
		{"/does/not/exist.json", true},
	}
	for _, tc := range tests {
		t.Run(tc.style, func(t *testing.T) {
			err := validateStyle(tc.style)
			if (err != nil) != tc.wantErr {
				t.Errorf("validateStyle(%q) error = %v, wantErr %v", tc.style, err, tc.wantErr)
			}
		})
	}
}

func TestBookMarkdown(t *testing.T) {
	b, ok := catalog.Default().Find("crochet-mastery")
	if !ok {
		t.Fatal("expected crochet-mastery in the catalog")
	}

	all, err := bookMarkdown(b, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(all, "# "+b.Title) {
		t.Errorf("expected the title first, got %q", all[:40])
	}
	if got := strings.Count(all, "\n## "); got != b.PageCount() {
		t.Errorf("expected %d page headings, got %d", b.PageCount(), got)
	}

	one, err := bookMarkdown(b, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(one, "## "+b.Pages[1].Title) {
		t.Errorf("expected page 2 only, got %q", one)
	}

	for _, page := range []int{-1, b.PageCount() + 1} {
		if _, err := bookMarkdown(b, page); err == nil {
			t.Errorf("expected an error for page %d", page)
		}
	}
}

func TestRenderBook(t *testing.T) {
	b, _ := catalog.Default().Find("needle-and-yarn")
	out, err := renderBook(b, 1, "notty", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, b.Pages[0].Title) {
		t.Errorf("expected the page title in %q", out)
	}
}

func TestListBooks(t *testing.T) {
	var buf bytes.Buffer
	if err := listBooks(&buf, catalog.Default()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range catalog.Default().Books() {
		if !strings.Contains(buf.String(), b.ID) {
			t.Errorf("expected %q in the listing", b.ID)
		}
	}
}
