// Package piper speaks through the Piper neural TTS binary. Each utterance
// runs a fresh piper process that writes raw PCM to stdout, which is then
// played through the audio device.
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/time/rate"

	"github.com/leolalee/library/internal/cache"
	"github.com/leolalee/library/tts"
)

// Config describes the piper install and voice model.
type Config struct {
	Binary            string
	Model             string
	Speaker           int // -1 for the model's default speaker
	Gender            string
	SampleRate        int
	Timeout           time.Duration
	RequestsPerMinute int
}

func DefaultConfig() Config {
	return Config{
		Binary:            "piper",
		Speaker:           -1,
		Gender:            "female",
		SampleRate:        22050,
		Timeout:           30 * time.Second,
		RequestsPerMinute: 60,
	}
}

// Player plays PCM until it drains or ctx is done.
type Player interface {
	Play(ctx context.Context, pcm []byte) error
}

// Cache stores synthesized PCM.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// runFunc runs piper with args, feeding text on stdin, and returns stdout.
type runFunc func(ctx context.Context, binary string, args []string, text string) ([]byte, error)

// Engine is a tts.Synthesizer backed by piper.
type Engine struct {
	cfg     Config
	binary  string
	model   string
	player  Player
	cache   Cache
	limiter *rate.Limiter
	run     runFunc
}

// New checks that piper and its model are installed. It fails with
// tts.ErrSpeechUnavailable when either is missing. cache may be nil.
func New(cfg Config, player Player, c Cache) (*Engine, error) {
	if player == nil {
		return nil, fmt.Errorf("%w: no audio player", tts.ErrSpeechUnavailable)
	}

	binary, err := exec.LookPath(cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: piper binary %q not found", tts.ErrSpeechUnavailable, cfg.Binary)
	}

	model, err := homedir.Expand(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrSpeechUnavailable, err)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: no piper model configured", tts.ErrSpeechUnavailable)
	}
	if _, err := os.Stat(model); err != nil {
		return nil, fmt.Errorf("%w: piper model: %v", tts.ErrSpeechUnavailable, err)
	}
	cfg.Model = model

	e := newEngine(cfg, player, c, runPiper)
	e.binary = binary
	log.Info("piper ready", "binary", binary, "model", model)
	return e, nil
}

func newEngine(cfg Config, player Player, c Cache, run runFunc) *Engine {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultConfig().RequestsPerMinute
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	return &Engine{
		cfg:     cfg,
		binary:  cfg.Binary,
		model:   cfg.Model,
		player:  player,
		cache:   c,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		run:     run,
	}
}

// Voices returns the single voice provided by the configured model.
func (e *Engine) Voices() []tts.Voice {
	return []tts.Voice{VoiceFromModel(e.model, e.cfg.Gender)}
}

// VoiceFromModel describes a piper model from its file name, which follows
// the "<lang>_<REGION>-<name>-<quality>.onnx" convention.
func VoiceFromModel(model, gender string) tts.Voice {
	id := strings.TrimSuffix(filepath.Base(model), ".onnx")
	v := tts.Voice{ID: id, Name: id, Gender: gender}

	parts := strings.Split(id, "-")
	if len(parts) >= 2 {
		v.Language = strings.ReplaceAll(parts[0], "_", "-")
		name := parts[1]
		if name != "" {
			v.Name = strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return v
}

// Args builds the piper command line for an utterance.
func Args(cfg Config, speechRate float64) []string {
	args := []string{
		"--model", cfg.Model,
		"--output-raw",
		"--length_scale", strconv.FormatFloat(tts.LengthScale(speechRate), 'f', 3, 64),
	}
	if cfg.Speaker >= 0 {
		args = append(args, "--speaker", strconv.Itoa(cfg.Speaker))
	}
	return args
}

func (e *Engine) cacheKey(u tts.Utterance) string {
	return cache.Key(u.Text, fmt.Sprintf("piper:%s:%d", e.model, e.cfg.Speaker), tts.ClampRate(u.Rate))
}

// Synthesize returns PCM for u, from the cache when possible.
func (e *Engine) Synthesize(ctx context.Context, u tts.Utterance) ([]byte, error) {
	key := e.cacheKey(u)
	if e.cache != nil {
		if pcm, ok := e.cache.Get(key); ok {
			log.Debug("piper cache hit", "bytes", len(pcm))
			return pcm, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	pcm, err := e.run(ctx, e.binary, Args(e.cfg, u.Rate), u.Text)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, tts.NewEngineError("synthesize", errors.New("no audio produced"))
	}
	log.Debug("piper synthesized", "bytes", len(pcm), "took", time.Since(start))

	if e.cache != nil {
		if err := e.cache.Put(key, pcm); err != nil {
			log.Warn("caching synthesized audio", "err", err)
		}
	}
	return pcm, nil
}

func (e *Engine) Speak(ctx context.Context, u tts.Utterance) (<-chan tts.Event, error) {
	if strings.TrimSpace(u.Text) == "" {
		return nil, tts.ErrEmptyText
	}

	events := make(chan tts.Event, 2)
	go func() {
		defer close(events)

		pcm, err := e.Synthesize(ctx, u)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			events <- tts.Event{Type: tts.EventError, Err: err}
			return
		}

		events <- tts.Event{Type: tts.EventStart}
		if err := e.player.Play(ctx, pcm); err != nil {
			if ctx.Err() != nil {
				return
			}
			events <- tts.Event{Type: tts.EventError, Err: tts.NewAudioError("play", err)}
			return
		}
		events <- tts.Event{Type: tts.EventEnd}
	}()
	return events, nil
}

func runPiper(ctx context.Context, binary string, args []string, text string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(text + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
			msg = msg[i+1:]
		}
		return nil, tts.NewEngineError("synthesize", fmt.Errorf("%w: %s", err, msg))
	}
	return out, nil
}
