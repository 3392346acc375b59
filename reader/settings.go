package reader

import (
	"math"
	"slices"
	"sync"
)

const (
	MinFontSize     = 12
	MaxFontSize     = 24
	DefaultFontSize = 16

	MinParticleDensity     = 0
	MaxParticleDensity     = 100
	ParticleDensityStep    = 10
	DefaultParticleDensity = 50

	MinSpeechRate     = 0.5
	MaxSpeechRate     = 2.0
	SpeechRateStep    = 0.1
	DefaultSpeechRate = 1.0

	DefaultVoice = "default"
)

// speechRateScale is 1/SpeechRateStep, kept integral so rounding is exact.
const speechRateScale = 10

// Theme is a colour scheme for the reader.
type Theme string

const (
	ThemeStandard Theme = "standard"
	ThemeWarm     Theme = "warm"
	ThemeCool     Theme = "cool"
	ThemeDark     Theme = "dark"
	ThemeSepia    Theme = "sepia"
)

// Themes lists every theme in display order.
var Themes = []Theme{ThemeStandard, ThemeWarm, ThemeCool, ThemeDark, ThemeSepia}

// VoiceOptions lists the selectable narrator voices in display order.
var VoiceOptions = []string{DefaultVoice, "female-1", "female-2", "female-3", "male-1"}

// Settings are the reader preferences. They live for the process only.
type Settings struct {
	FontSize        int
	ParticleDensity int
	SpeechRate      float64
	Voice           string
	ColorTheme      Theme
	AutoAdvance     bool
}

// DefaultSettings returns the settings used at startup.
func DefaultSettings() Settings {
	return Settings{
		FontSize:        DefaultFontSize,
		ParticleDensity: DefaultParticleDensity,
		SpeechRate:      DefaultSpeechRate,
		Voice:           DefaultVoice,
		ColorTheme:      ThemeStandard,
		AutoAdvance:     true,
	}
}

// Clamp returns s with every field forced into its allowed range.
func (s Settings) Clamp() Settings {
	s.FontSize = ClampFontSize(s.FontSize)
	s.ParticleDensity = ClampParticleDensity(s.ParticleDensity)
	s.SpeechRate = ClampSpeechRate(s.SpeechRate)
	if !slices.Contains(VoiceOptions, s.Voice) {
		s.Voice = DefaultVoice
	}
	if !slices.Contains(Themes, s.ColorTheme) {
		s.ColorTheme = ThemeStandard
	}
	return s
}

func ClampFontSize(n int) int {
	return min(max(n, MinFontSize), MaxFontSize)
}

// ClampParticleDensity clamps n and rounds it to the nearest step.
func ClampParticleDensity(n int) int {
	n = min(max(n, MinParticleDensity), MaxParticleDensity)
	return int(math.Round(float64(n)/ParticleDensityStep)) * ParticleDensityStep
}

// ClampSpeechRate clamps r and rounds it to the nearest step. NaN maps to
// the default rate.
func ClampSpeechRate(r float64) float64 {
	if math.IsNaN(r) {
		return DefaultSpeechRate
	}
	r = math.Min(math.Max(r, MinSpeechRate), MaxSpeechRate)
	return math.Round(r*speechRateScale) / speechRateScale
}

// Store holds the live settings. Setters clamp their input and return the
// value actually stored.
type Store struct {
	mu sync.RWMutex
	s  Settings
}

func NewStore(s Settings) *Store {
	return &Store{s: s.Clamp()}
}

// Snapshot returns a copy of the current settings.
func (st *Store) Snapshot() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Apply replaces all settings at once.
func (st *Store) Apply(s Settings) Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = s.Clamp()
	return st.s
}

func (st *Store) update(fn func(*Settings)) Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.s)
	st.s = st.s.Clamp()
	return st.s
}

func (st *Store) SetFontSize(n int) int {
	return st.update(func(s *Settings) { s.FontSize = n }).FontSize
}

func (st *Store) SetParticleDensity(n int) int {
	return st.update(func(s *Settings) { s.ParticleDensity = n }).ParticleDensity
}

func (st *Store) SetSpeechRate(r float64) float64 {
	return st.update(func(s *Settings) { s.SpeechRate = r }).SpeechRate
}

// SetVoice selects a voice option. Unknown options fall back to the default
// voice.
func (st *Store) SetVoice(v string) string {
	return st.update(func(s *Settings) { s.Voice = v }).Voice
}

func (st *Store) SetColorTheme(t Theme) Theme {
	return st.update(func(s *Settings) { s.ColorTheme = t }).ColorTheme
}

func (st *Store) SetAutoAdvance(on bool) bool {
	return st.update(func(s *Settings) { s.AutoAdvance = on }).AutoAdvance
}

// Cycle returns the option after (or before, when delta is negative) cur,
// wrapping around. An unknown cur starts from the first option.
func Cycle[T comparable](options []T, cur T, delta int) T {
	i := slices.Index(options, cur)
	if i < 0 {
		return options[0]
	}
	n := len(options)
	return options[((i+delta)%n+n)%n]
}
