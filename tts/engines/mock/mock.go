// Package mock provides a synthesizer that pretends to speak. It takes as
// long as a person reading the text would and produces no sound.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/leolalee/library/tts"
)

// DefaultWordsPerMinute is a comfortable reading-aloud pace.
const DefaultWordsPerMinute = 160

// Engine simulates speech timing.
type Engine struct {
	mu        sync.Mutex
	voices    []tts.Voice
	wpm       int
	fixed     time.Duration
	failAfter int
	failErr   error
	calls     int
	spoken    []tts.Utterance
}

// Option configures an Engine.
type Option func(*Engine)

func WithWordsPerMinute(wpm int) Option {
	return func(e *Engine) {
		if wpm > 0 {
			e.wpm = wpm
		}
	}
}

// WithDuration makes every utterance last d regardless of its text.
func WithDuration(d time.Duration) Option {
	return func(e *Engine) { e.fixed = d }
}

func WithVoices(voices ...tts.Voice) Option {
	return func(e *Engine) { e.voices = voices }
}

// WithFailure makes the nth utterance (counting from 1) fail halfway
// through with err.
func WithFailure(n int, err error) Option {
	return func(e *Engine) {
		e.failAfter = n
		e.failErr = err
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		wpm: DefaultWordsPerMinute,
		voices: []tts.Voice{
			{ID: "mock-female", Name: "Mock Female", Language: "en-US", Gender: "female"},
			{ID: "mock-male", Name: "Mock Male", Language: "en-US", Gender: "male"},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Voices() []tts.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Voice(nil), e.voices...)
}

// Spoken returns every utterance passed to Speak.
func (e *Engine) Spoken() []tts.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Utterance(nil), e.spoken...)
}

// EstimateDuration is how long text takes to read at wpm words per minute
// and the given rate.
func EstimateDuration(text string, wpm int, rate float64) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 || wpm <= 0 {
		return 0
	}
	d := time.Duration(float64(words) / float64(wpm) * float64(time.Minute))
	return time.Duration(float64(d) / tts.ClampRate(rate))
}

func (e *Engine) Speak(ctx context.Context, u tts.Utterance) (<-chan tts.Event, error) {
	e.mu.Lock()
	e.calls++
	e.spoken = append(e.spoken, u)
	fail := e.failAfter > 0 && e.calls == e.failAfter
	d := e.fixed
	if d == 0 {
		d = EstimateDuration(u.Text, e.wpm, u.Rate)
	}
	e.mu.Unlock()

	end := tts.Event{Type: tts.EventEnd}
	if fail {
		d /= 2
		end = tts.Event{Type: tts.EventError, Err: tts.NewAudioError("play", e.failErr)}
	}

	events := make(chan tts.Event, 2)
	go func() {
		defer close(events)
		events <- tts.Event{Type: tts.EventStart}

		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			events <- end
		}
	}()
	return events, nil
}
