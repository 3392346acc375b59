package reader

import (
	"context"
	"time"
)

// FallbackTimeout bounds how long a flip may wait for its animation to report
// completion before it is completed anyway.
const FallbackTimeout = time.Second

// Direction is the way a page flips.
type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrev
)

func (d Direction) String() string {
	if d == DirectionPrev {
		return "prev"
	}
	return "next"
}

// directionTo returns the direction of travel from one page to another.
func directionTo(from, target int) Direction {
	if target > from {
		return DirectionNext
	}
	return DirectionPrev
}

// Flip is a page transition in flight.
type Flip struct {
	ID        uint64
	Direction Direction
	From      int
	Target    int
}

// Transition is the page flip state machine. It is either idle or animating a
// single flip.
type Transition struct {
	current *Flip
	lastID  uint64
}

// Animating reports whether a flip is in flight.
func (t *Transition) Animating() bool {
	return t.current != nil
}

// Current returns the flip in flight, if any.
func (t *Transition) Current() (Flip, bool) {
	if t.current == nil {
		return Flip{}, false
	}
	return *t.current, true
}

// Begin moves from idle to animating. It refuses while another flip is in
// flight.
func (t *Transition) Begin(from, target int) (Flip, bool) {
	if t.current != nil {
		return Flip{}, false
	}
	t.lastID++
	t.current = &Flip{
		ID:        t.lastID,
		Direction: directionTo(from, target),
		From:      from,
		Target:    target,
	}
	return *t.current, true
}

// Complete returns to idle if id names the flip in flight. Completions for
// older flips are ignored.
func (t *Transition) Complete(id uint64) (Flip, bool) {
	if t.current == nil || t.current.ID != id {
		return Flip{}, false
	}
	f := *t.current
	t.current = nil
	return f, true
}

// Reset drops any flip in flight without completing it.
func (t *Transition) Reset() {
	t.current = nil
}

// Completion says how a flip ended.
type Completion int

const (
	CompletedNaturally Completion = iota
	CompletedByFallback
	Abandoned
)

func (c Completion) String() string {
	switch c {
	case CompletedNaturally:
		return "natural"
	case CompletedByFallback:
		return "fallback"
	default:
		return "abandoned"
	}
}

// Await blocks until done is closed or fallback elapses, whichever is first.
// It returns Abandoned if ctx ends before either.
func Await(ctx context.Context, done <-chan struct{}, fallback time.Duration) Completion {
	timer := time.NewTimer(fallback)
	defer timer.Stop()

	select {
	case <-done:
		return CompletedNaturally
	case <-timer.C:
		return CompletedByFallback
	case <-ctx.Done():
		return Abandoned
	}
}
