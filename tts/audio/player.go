// Package audio plays raw PCM through the system audio device.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var ErrEmptyAudio = errors.New("audio data is empty")

// pollInterval is how often Play checks whether the stream has drained.
const pollInterval = 20 * time.Millisecond

// Config describes the PCM format handed to the player. Samples are signed
// 16-bit little endian.
type Config struct {
	SampleRate int
	Channels   int
	Buffer     time.Duration
}

// DefaultConfig matches the output of most Piper voices.
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		Channels:   1,
		Buffer:     100 * time.Millisecond,
	}
}

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoCfg  Config
	otoErr  error
)

func openDevice(cfg Config) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: cfg.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   cfg.Buffer,
		})
		if err != nil {
			otoErr = fmt.Errorf("opening audio device: %w", err)
			return
		}
		<-ready
		otoCtx, otoCfg = ctx, cfg
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoCfg != cfg {
		return nil, fmt.Errorf("audio device already opened at %d Hz x%d", otoCfg.SampleRate, otoCfg.Channels)
	}
	return otoCtx, nil
}

// Player plays one stream at a time. Starting a stream stops the previous
// one first.
type Player struct {
	ctx *oto.Context
	cfg Config

	mu      sync.Mutex
	current *oto.Player
	data    []byte // kept alive while current plays
}

// NewPlayer opens the audio device. It fails when no device is available.
func NewPlayer(cfg Config) (*Player, error) {
	if cfg.SampleRate <= 0 || (cfg.Channels != 1 && cfg.Channels != 2) {
		return nil, fmt.Errorf("unsupported audio format: %d Hz x%d", cfg.SampleRate, cfg.Channels)
	}
	ctx, err := openDevice(cfg)
	if err != nil {
		return nil, err
	}
	return &Player{ctx: ctx, cfg: cfg}, nil
}

// Duration is how long pcm takes to play.
func (p *Player) Duration(pcm []byte) time.Duration {
	return Duration(len(pcm), p.cfg)
}

// Duration is how long n bytes of PCM in the given format take to play.
func Duration(n int, cfg Config) time.Duration {
	samples := n / (2 * cfg.Channels)
	return time.Duration(samples) * time.Second / time.Duration(cfg.SampleRate)
}

// Play stops any current stream, plays pcm and blocks until it has drained
// or ctx is done. Cancelling ctx stops the audio immediately.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return ErrEmptyAudio
	}

	p.mu.Lock()
	p.stopLocked()
	pl := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.current, p.data = pl, pcm
	pl.Play()
	p.mu.Unlock()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.release(pl)
			return ctx.Err()
		case <-ticker.C:
			if !pl.IsPlaying() {
				p.release(pl)
				return nil
			}
		}
	}
}

// release stops pl if it is still the current stream.
func (p *Player) release(pl *oto.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == pl {
		p.stopLocked()
	}
}

// Stop halts the current stream, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	p.current.Pause()
	_ = p.current.Close()
	p.current, p.data = nil, nil
}
