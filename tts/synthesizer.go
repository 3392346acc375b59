package tts

import "context"

// Voice is a voice offered by a synthesizer. The zero Voice asks for the
// synthesizer's default.
type Voice struct {
	ID       string
	Name     string
	Language string
	Gender   string
}

func (v Voice) IsDefault() bool {
	return v.ID == "" && v.Name == ""
}

func (v Voice) String() string {
	if v.IsDefault() {
		return "default"
	}
	return v.Name
}

// Utterance is a piece of text to speak.
type Utterance struct {
	Text  string
	Rate  float64
	Voice Voice
}

// EventType is a playback signal emitted by a synthesizer.
type EventType int

const (
	EventStart EventType = iota
	EventEnd
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	default:
		return "error"
	}
}

// Event is a playback signal. Err is set for EventError.
type Event struct {
	Type EventType
	Err  error
}

// Synthesizer is the speech capability of the host.
//
// Speak begins playback asynchronously. The returned channel receives
// EventStart, then exactly one of EventEnd or EventError, and is then closed.
// Cancelling ctx stops playback immediately; the channel is closed without an
// end event.
type Synthesizer interface {
	Voices() []Voice
	Speak(ctx context.Context, u Utterance) (<-chan Event, error)
}
