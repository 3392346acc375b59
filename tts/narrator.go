// Package tts reads pages aloud. A Narrator drives a Synthesizer, which is
// the host's speech capability, and guarantees that at most one utterance
// plays at a time.
package tts

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Reason says how an utterance ended.
type Reason int

const (
	Finished Reason = iota
	Canceled
	Failed
	Unavailable
)

func (r Reason) String() string {
	switch r {
	case Finished:
		return "finished"
	case Canceled:
		return "canceled"
	case Failed:
		return "failed"
	default:
		return "unavailable"
	}
}

// Result is delivered once for every call to Speak.
type Result struct {
	ID     uint64
	Text   string
	Reason Reason
	// Err is set when the utterance failed, and the first time speech is
	// found to be unavailable. It is nil for repeated unavailable results.
	Err error
}

// State is a snapshot of the narrator.
type State struct {
	IsSpeaking bool
	Disabled   bool
	Rate       float64
	Voice      Voice
	Text       string
	LastError  error
	Utterance  uint64
}

// Narrator owns the single active utterance. It is safe for concurrent use.
type Narrator struct {
	synth Synthesizer

	mu       sync.Mutex
	disabled bool
	reported bool
	speaking bool
	rate     float64
	voice    Voice
	text     string
	lastErr  error
	seq      uint64
	cancel   context.CancelFunc
}

// NewNarrator returns a narrator speaking through s. A nil s leaves the
// narrator permanently disabled.
func NewNarrator(s Synthesizer) *Narrator {
	return &Narrator{
		synth:    s,
		disabled: s == nil,
		rate:     DefaultRate,
	}
}

// Disable puts the narrator in permanent disabled mode, remembering why.
func (n *Narrator) Disable(reason error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.disabled = true
	if reason != nil {
		log.Warn("narration disabled", "err", reason)
	}
}

// Speak cancels any utterance in flight and starts reading text. The returned
// channel receives exactly one Result and is then closed.
func (n *Narrator) Speak(text string, rate float64, voiceHint string) <-chan Result {
	out := make(chan Result, 1)

	n.mu.Lock()
	if n.disabled {
		res := Result{ID: n.seq, Text: text, Reason: Unavailable}
		if !n.reported {
			n.reported = true
			n.lastErr = ErrSpeechUnavailable
			res.Err = ErrSpeechUnavailable
		}
		n.mu.Unlock()
		return deliver(out, res)
	}

	n.stopLocked()
	n.seq++
	id := n.seq

	if strings.TrimSpace(text) == "" {
		n.mu.Unlock()
		return deliver(out, Result{ID: id, Text: text, Reason: Failed, Err: ErrEmptyText})
	}

	n.rate = ClampRate(rate)
	n.voice = SelectVoice(n.synth.Voices(), voiceHint)
	n.text = text
	n.lastErr = nil

	ctx, cancel := context.WithCancel(context.Background())
	events, err := n.synth.Speak(ctx, Utterance{Text: text, Rate: n.rate, Voice: n.voice})
	if err != nil {
		cancel()
		n.lastErr = err
		n.mu.Unlock()
		log.Error("narration failed to start", "err", err)
		return deliver(out, Result{ID: id, Text: text, Reason: Failed, Err: err})
	}
	n.speaking = true
	n.cancel = cancel
	log.Debug("narration started", "utterance", id, "rate", n.rate, "voice", n.voice)
	n.mu.Unlock()

	go n.watch(ctx, id, text, events, out)
	return out
}

func deliver(out chan Result, res Result) <-chan Result {
	out <- res
	close(out)
	return out
}

// watch waits for the utterance to end and reports it.
func (n *Narrator) watch(ctx context.Context, id uint64, text string, events <-chan Event, out chan Result) {
	res := Result{ID: id, Text: text, Reason: Canceled}

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev, ok := <-events:
			if !ok {
				// Closed without an end event: the synthesizer saw the
				// cancellation before we did.
				break loop
			}
			switch ev.Type {
			case EventStart:
				continue
			case EventEnd:
				res.Reason = Finished
			case EventError:
				res.Reason = Failed
				res.Err = ev.Err
			}
			break loop
		}
	}

	n.finish(id, res)
	deliver(out, res)
}

// finish clears the speaking state if id is still the current utterance.
func (n *Narrator) finish(id uint64, res Result) {
	n.mu.Lock()
	defer n.mu.Unlock()

	log.Debug("narration ended", "utterance", id, "reason", res.Reason, "err", res.Err)
	if n.seq != id {
		return
	}
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.speaking = false
	if res.Err != nil {
		n.lastErr = res.Err
	}
}

// Stop cancels the utterance in flight. It is a no-op when nothing is being
// spoken.
func (n *Narrator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
}

func (n *Narrator) stopLocked() {
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
		log.Debug("narration stopped", "utterance", n.seq)
	}
	n.speaking = false
}

// ClearError forgets the last error. A disabled narrator keeps reporting
// nothing new after its one message.
func (n *Narrator) ClearError() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastErr = nil
}

func (n *Narrator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return State{
		IsSpeaking: n.speaking,
		Disabled:   n.disabled,
		Rate:       n.rate,
		Voice:      n.voice,
		Text:       n.text,
		LastError:  n.lastErr,
		Utterance:  n.seq,
	}
}

func (n *Narrator) IsSpeaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.speaking
}
