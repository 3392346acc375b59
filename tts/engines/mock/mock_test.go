package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leolalee/library/tts"
)

func collect(ch <-chan tts.Event) []tts.Event {
	var out []tts.Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		name string
		text string
		wpm  int
		rate float64
		want time.Duration
	}{
		{"one minute", "a b c d", 4, 1, time.Minute},
		{"double speed", "a b c d", 4, 2, 30 * time.Second},
		{"empty", "   ", 160, 1, 0},
		{"no pace", "words", 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateDuration(tt.text, tt.wpm, tt.rate); got != tt.want {
				t.Errorf("EstimateDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpeakEnds(t *testing.T) {
	e := New(WithDuration(5 * time.Millisecond))
	ch, err := e.Speak(context.Background(), tts.Utterance{Text: "hello", Rate: 1})
	if err != nil {
		t.Fatal(err)
	}

	got := collect(ch)
	if len(got) != 2 || got[0].Type != tts.EventStart || got[1].Type != tts.EventEnd {
		t.Errorf("events = %v", got)
	}
	if s := e.Spoken(); len(s) != 1 || s[0].Text != "hello" {
		t.Errorf("Spoken() = %v", s)
	}
}

func TestSpeakCanceled(t *testing.T) {
	e := New(WithDuration(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := e.Speak(ctx, tts.Utterance{Text: "hello"})
	cancel()

	got := collect(ch)
	if len(got) != 1 || got[0].Type != tts.EventStart {
		t.Errorf("events = %v, want only start", got)
	}
}

func TestSpeakFails(t *testing.T) {
	boom := errors.New("speaker unplugged")
	e := New(WithDuration(2*time.Millisecond), WithFailure(2, boom))

	first := collect(must(e.Speak(context.Background(), tts.Utterance{Text: "one"})))
	if first[len(first)-1].Type != tts.EventEnd {
		t.Errorf("first utterance events = %v", first)
	}

	second := collect(must(e.Speak(context.Background(), tts.Utterance{Text: "two"})))
	last := second[len(second)-1]
	if last.Type != tts.EventError || !errors.Is(last.Err, boom) {
		t.Errorf("second utterance ended with %+v", last)
	}
}

func TestNarratorWithMock(t *testing.T) {
	e := New(WithDuration(5 * time.Millisecond))
	n := tts.NewNarrator(e)

	r := <-n.Speak("Gather 'round, my dears", 1, "")
	if r.Reason != tts.Finished {
		t.Fatalf("Result = %+v", r)
	}
	if v := e.Spoken()[0].Voice; v.Gender != "female" {
		t.Errorf("narrator chose %+v, want the female voice", v)
	}
}

func must(ch <-chan tts.Event, err error) <-chan tts.Event {
	if err != nil {
		panic(err)
	}
	return ch
}
