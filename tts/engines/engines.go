// Package engines opens the speech synthesizer selected in the config.
package engines

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/leolalee/library/internal/cache"
	"github.com/leolalee/library/tts"
	"github.com/leolalee/library/tts/audio"
	"github.com/leolalee/library/tts/engines/mock"
	"github.com/leolalee/library/tts/engines/piper"
)

// Engine names.
const (
	Off   = "off"
	Mock  = "mock"
	Piper = "piper"
)

// Names lists the accepted engine names.
var Names = []string{Off, Mock, Piper}

// Config selects and configures a synthesizer.
type Config struct {
	Engine         string
	Piper          piper.Config
	WordsPerMinute int
	Cache          cache.Config
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured synthesizer. A nil synthesizer with a nil
// error means narration is switched off. The closer releases any cache.
func Open(cfg Config) (tts.Synthesizer, io.Closer, error) {
	switch cfg.Engine {
	case "", Off:
		log.Info("narration off")
		return nil, nopCloser{}, nil

	case Mock:
		log.Info("narration using mock engine", "wpm", cfg.WordsPerMinute)
		return mock.New(mock.WithWordsPerMinute(cfg.WordsPerMinute)), nopCloser{}, nil

	case Piper:
		ac := audio.DefaultConfig()
		ac.SampleRate = cfg.Piper.SampleRate
		player, err := audio.NewPlayer(ac)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("%w: %v", tts.ErrSpeechUnavailable, err)
		}
		c, err := cache.NewManager(cfg.Cache)
		if err != nil {
			log.Warn("audio cache unavailable", "err", err)
			c = nil
		}
		var pc piper.Cache
		var closer io.Closer = nopCloser{}
		if c != nil {
			pc, closer = c, c
		}
		e, err := piper.New(cfg.Piper, player, pc)
		if err != nil {
			_ = closer.Close()
			return nil, nopCloser{}, err
		}
		return e, closer, nil

	default:
		return nil, nopCloser{}, fmt.Errorf("unknown tts engine %q", cfg.Engine)
	}
}
