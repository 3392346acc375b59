package ui

import "testing"

func TestMarquee(t *testing.T) {
	words := []string{"Love", "Craft"}
	for _, tc := range []struct {
		offset int
		width  int
		want   string
	}{
		{0, 4, "Love"},
		{2, 8, "ve • Cra"},
		{15, 6, "Love •"}, // wraps around: "Love • Craft • " is 15 runes
		{0, 0, ""},
	} {
		if got := marquee(words, tc.offset, tc.width); got != tc.want {
			t.Errorf("marquee(%d, %d) = %q, want %q", tc.offset, tc.width, got, tc.want)
		}
	}
}

func TestInspiringMessagesRotate(t *testing.T) {
	m := newTestModel(t, nil)
	for i := range len(inspiringMessages) + 1 {
		if want := i % len(inspiringMessages); m.library.messageIndex != want {
			t.Fatalf("message %d, want %d", m.library.messageIndex, want)
		}
		m = update(m, rotateMessageMsg{})
	}
}

func TestLibraryCursorBounds(t *testing.T) {
	m := newTestModel(t, nil)
	for range 10 {
		m = update(m, keyPress("down"))
	}
	if got, want := m.library.cursor, len(m.library.books)-1; got != want {
		t.Errorf("cursor = %d, want %d", got, want)
	}
	for range 10 {
		m = update(m, keyPress("k"))
	}
	if m.library.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.library.cursor)
	}
}
