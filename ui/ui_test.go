package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leolalee/library/reader"
	"github.com/leolalee/library/tts"
	"github.com/leolalee/library/tts/engines/mock"
)

func testConfig() Config {
	return Config{
		GlamourMaxWidth: 80,
		GlamourStyle:    "notty",
		Settings:        reader.DefaultSettings(),
	}
}

func newTestModel(t *testing.T, narrator *tts.Narrator) model {
	t.Helper()
	m := newModel(testConfig(), Deps{Narrator: narrator})
	return update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func update(m model, msg tea.Msg) model {
	mm, _ := m.Update(msg)
	return mm.(model)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func openBook(t *testing.T, m model, id string) model {
	t.Helper()
	m = update(m, openBookMsg{id})
	if m.common.nav.View() != reader.ViewReader {
		t.Fatalf("expected reader view after opening %q", id)
	}
	return m
}

func currentFlip(t *testing.T, m model) reader.Flip {
	t.Helper()
	f, ok := m.common.nav.Flip()
	if !ok {
		t.Fatal("expected a page flip in flight")
	}
	return f
}

func TestOpenBookWithEnter(t *testing.T) {
	m := newTestModel(t, nil)
	want := m.library.books[0].ID

	_, cmd := m.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(openBookMsg)
	if !ok {
		t.Fatalf("expected openBookMsg, got %T", msg)
	}
	if msg.id != want {
		t.Errorf("opened %q, want %q", msg.id, want)
	}

	m = openBook(t, m, msg.id)
	if got := m.common.nav.PageIndex(); got != 0 {
		t.Errorf("page = %d, want 0", got)
	}
}

func TestOpenUnknownBook(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(m, openBookMsg{"no-such-book"})
	if m.common.nav.View() != reader.ViewLibrary {
		t.Error("expected to stay in the library")
	}
	if !m.library.statusMessageShown {
		t.Error("expected a status message")
	}
}

func TestStartupBook(t *testing.T) {
	cfg := testConfig()
	cfg.BookID = "crochet-mastery"
	m := newModel(cfg, Deps{})
	if m.common.nav.View() != reader.ViewReader {
		t.Fatal("expected the reader")
	}
	if b := m.common.nav.Book(); b == nil || b.ID != "crochet-mastery" {
		t.Errorf("unexpected book %v", b)
	}
}

func TestPageFlip(t *testing.T) {
	for _, tc := range []struct {
		name string
		land func(m model, id uint64) model
	}{
		{"animation", func(m model, id uint64) model {
			for frame := 1; frame <= flipFrames; frame++ {
				m = update(m, flipFrameMsg{id: id, frame: frame})
			}
			return m
		}},
		{"fallback", func(m model, id uint64) model {
			return update(m, flipTimeoutMsg{id: id})
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := openBook(t, newTestModel(t, nil), "needle-and-yarn")

			m = update(m, keyPress("right"))
			f := currentFlip(t, m)
			if f.Target != 1 || f.Direction != reader.DirectionNext {
				t.Fatalf("unexpected flip %+v", f)
			}
			if m.pager.flip == nil {
				t.Fatal("expected the pager to draw the flip")
			}
			if got := m.common.nav.PageIndex(); got != 0 {
				t.Errorf("page changed before the flip landed: %d", got)
			}

			m = tc.land(m, f.ID)
			if got := m.common.nav.PageIndex(); got != 1 {
				t.Errorf("page = %d, want 1", got)
			}
			if m.common.nav.Animating() || m.pager.flip != nil {
				t.Error("expected the flip to be over")
			}

			// The loser of the race changes nothing.
			m = update(m, flipTimeoutMsg{id: f.ID})
			m = update(m, flipFrameMsg{id: f.ID, frame: flipFrames})
			if got := m.common.nav.PageIndex(); got != 1 {
				t.Errorf("page = %d after stale completion, want 1", got)
			}
		})
	}
}

func TestPageKeysIgnoredWhileFlipping(t *testing.T) {
	m := openBook(t, newTestModel(t, nil), "needle-and-yarn")
	m = update(m, keyPress("right"))
	first := currentFlip(t, m)

	m = update(m, keyPress("right"))
	m = update(m, keyPress("G"))
	if f := currentFlip(t, m); f != first {
		t.Errorf("flip changed to %+v while animating", f)
	}
}

func TestPrevOnFirstPage(t *testing.T) {
	m := openBook(t, newTestModel(t, nil), "needle-and-yarn")
	m = update(m, keyPress("left"))
	if m.common.nav.Animating() {
		t.Error("expected no flip before the first page")
	}
}

func TestLastAndFirstPage(t *testing.T) {
	m := openBook(t, newTestModel(t, nil), "crochet-mastery")
	last := m.common.nav.Book().LastPage()

	m = update(m, keyPress("G"))
	f := currentFlip(t, m)
	m = update(m, flipTimeoutMsg{id: f.ID})
	if got := m.common.nav.PageIndex(); got != last {
		t.Fatalf("page = %d, want %d", got, last)
	}

	m = update(m, keyPress("right"))
	if m.common.nav.Animating() {
		t.Error("expected no flip past the last page")
	}

	m = update(m, keyPress("g"))
	f = currentFlip(t, m)
	if f.Direction != reader.DirectionPrev {
		t.Errorf("direction = %v, want prev", f.Direction)
	}
}

func TestNarrationUnavailable(t *testing.T) {
	narrator := tts.NewNarrator(nil)
	m := openBook(t, newTestModel(t, narrator), "needle-and-yarn")

	first := <-narrator.Speak("hello", 1, "")
	m = update(m, narrationDoneMsg(first))
	if m.pager.state != pagerStateStatusMessage || !m.pager.statusMessage.isError {
		t.Fatal("expected an error in the status bar")
	}
	if want := tts.UserMessage(tts.ErrSpeechUnavailable); m.pager.statusMessage.message != want {
		t.Errorf("message = %q, want %q", m.pager.statusMessage.message, want)
	}

	m = update(m, statusMessageTimeoutMsg(pagerContext))
	second := <-narrator.Speak("hello", 1, "")
	m = update(m, narrationDoneMsg(second))
	if m.pager.state != pagerStateBrowse {
		t.Error("expected the unavailable message only once")
	}
}

func TestNarrationAutoAdvance(t *testing.T) {
	narrator := tts.NewNarrator(mock.New(mock.WithDuration(time.Hour)))
	t.Cleanup(narrator.Stop)

	m := openBook(t, newTestModel(t, narrator), "needle-and-yarn")
	m = update(m, keyPress(" "))
	if !narrator.IsSpeaking() {
		t.Fatal("expected the narrator to be speaking")
	}

	id := narrator.State().Utterance
	m = update(m, narrationDoneMsg{ID: id, Reason: tts.Finished})
	f := currentFlip(t, m)
	if f.Target != 1 {
		t.Fatalf("target = %d, want 1", f.Target)
	}

	m = update(m, flipTimeoutMsg{id: f.ID})
	if got := m.common.nav.PageIndex(); got != 1 {
		t.Fatalf("page = %d, want 1", got)
	}
	if !narrator.IsSpeaking() {
		t.Error("expected narration to continue on the new page")
	}
	if got := narrator.State().Utterance; got == id {
		t.Error("expected a new utterance")
	}
}

func TestNarrationFinishedIgnored(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(t *testing.T, m model, n *tts.Narrator) (model, tts.Result)
	}{
		{"stale utterance", func(_ *testing.T, m model, n *tts.Narrator) (model, tts.Result) {
			m = update(m, keyPress(" "))
			return m, tts.Result{ID: n.State().Utterance + 1, Reason: tts.Finished}
		}},
		{"stopped by user", func(_ *testing.T, m model, n *tts.Narrator) (model, tts.Result) {
			m = update(m, keyPress(" "))
			id := n.State().Utterance
			m = update(m, keyPress(" "))
			return m, tts.Result{ID: id, Reason: tts.Finished}
		}},
		{"auto-advance off", func(_ *testing.T, m model, n *tts.Narrator) (model, tts.Result) {
			m.common.settings.SetAutoAdvance(false)
			m = update(m, keyPress(" "))
			return m, tts.Result{ID: n.State().Utterance, Reason: tts.Finished}
		}},
		{"canceled", func(_ *testing.T, m model, n *tts.Narrator) (model, tts.Result) {
			m = update(m, keyPress(" "))
			return m, tts.Result{ID: n.State().Utterance, Reason: tts.Canceled}
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			narrator := tts.NewNarrator(mock.New(mock.WithDuration(time.Hour)))
			t.Cleanup(narrator.Stop)
			m := openBook(t, newTestModel(t, narrator), "needle-and-yarn")

			m, res := tc.setup(t, m, narrator)
			m = update(m, narrationDoneMsg(res))
			if m.common.nav.Animating() {
				t.Error("expected no page flip")
			}
		})
	}
}

func TestNarrationFinishedOnLastPage(t *testing.T) {
	narrator := tts.NewNarrator(mock.New(mock.WithDuration(time.Hour)))
	t.Cleanup(narrator.Stop)
	m := openBook(t, newTestModel(t, narrator), "crochet-mastery")

	m = update(m, keyPress("G"))
	m = update(m, flipTimeoutMsg{id: currentFlip(t, m).ID})

	m = update(m, keyPress(" "))
	m = update(m, narrationDoneMsg{ID: narrator.State().Utterance, Reason: tts.Finished})
	if m.common.nav.Animating() {
		t.Error("expected no flip on the last page")
	}
	if m.pager.statusMessage.message != "The end" {
		t.Errorf("status = %q", m.pager.statusMessage.message)
	}
}

func TestNarrationFailed(t *testing.T) {
	m := openBook(t, newTestModel(t, nil), "needle-and-yarn")
	m = update(m, narrationDoneMsg{ID: 1, Reason: tts.Failed, Err: tts.NewEngineError("synthesize", tts.ErrEmptyText)})
	if !m.pager.statusMessage.isError {
		t.Error("expected an error status")
	}
	if m.continuous {
		t.Error("expected narration not to continue")
	}
}

func TestPageTurnStopsNarration(t *testing.T) {
	narrator := tts.NewNarrator(mock.New(mock.WithDuration(time.Hour)))
	t.Cleanup(narrator.Stop)
	m := openBook(t, newTestModel(t, narrator), "needle-and-yarn")

	m = update(m, keyPress(" "))
	m = update(m, keyPress("right"))
	if narrator.IsSpeaking() {
		t.Error("expected the page turn to stop narration")
	}
	m = update(m, flipTimeoutMsg{id: currentFlip(t, m).ID})
	if narrator.IsSpeaking() {
		t.Error("a manual page turn should not resume narration")
	}
}

func TestChangeRate(t *testing.T) {
	m := openBook(t, newTestModel(t, nil), "needle-and-yarn")
	m = update(m, keyPress("+"))
	m = update(m, keyPress("+"))
	m = update(m, keyPress("-"))
	if got := m.common.settings.Snapshot().SpeechRate; got != 1.1 {
		t.Errorf("rate = %v, want 1.1", got)
	}
}

func TestContentsJump(t *testing.T) {
	m := openBook(t, newTestModel(t, nil), "needle-and-yarn")

	m = update(m, keyPress("t"))
	if m.overlay.kind != overlayContents {
		t.Fatal("expected the contents overlay")
	}
	for range 3 {
		m = update(m, keyPress("down"))
	}

	mm, cmd := m.Update(keyPress("enter"))
	m = mm.(model)
	if m.overlay.open() {
		t.Error("expected the overlay to close")
	}
	msg, ok := cmd().(jumpToPageMsg)
	if !ok || msg.page != 3 {
		t.Fatalf("unexpected message %#v", msg)
	}

	m = update(m, msg)
	if f := currentFlip(t, m); f.Target != 3 {
		t.Errorf("target = %d, want 3", f.Target)
	}
}

func TestSettingsOverlayClamps(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(m, keyPress("o"))
	if m.overlay.kind != overlaySettings {
		t.Fatal("expected the settings overlay")
	}

	for range 20 {
		m = update(m, keyPress("right"))
	}
	if got := m.common.settings.Snapshot().FontSize; got != reader.MaxFontSize {
		t.Errorf("font size = %d, want %d", got, reader.MaxFontSize)
	}
	for range 30 {
		m = update(m, keyPress("left"))
	}
	if got := m.common.settings.Snapshot().FontSize; got != reader.MinFontSize {
		t.Errorf("font size = %d, want %d", got, reader.MinFontSize)
	}

	// particle density
	for range int(rowParticles) {
		m = update(m, keyPress("down"))
	}
	for range 10 {
		m = update(m, keyPress("left"))
	}
	m = update(m, settingsChangedMsg{})
	if got := m.common.settings.Snapshot().ParticleDensity; got != reader.MinParticleDensity {
		t.Errorf("density = %d, want %d", got, reader.MinParticleDensity)
	}
	if n := len(m.particles.particles); n != 0 {
		t.Errorf("%d particles left at zero density", n)
	}

	m = update(m, keyPress("esc"))
	if m.overlay.open() {
		t.Error("expected the overlay to close")
	}
}

func TestSettingsReloaded(t *testing.T) {
	m := newTestModel(t, nil)
	s := reader.DefaultSettings()
	s.ColorTheme = reader.ThemeSepia
	s.FontSize = 99

	m = update(m, settingsReloadedMsg{s})
	got := m.common.settings.Snapshot()
	if got.ColorTheme != reader.ThemeSepia || got.FontSize != reader.MaxFontSize {
		t.Errorf("unexpected settings %+v", got)
	}
	if m.common.theme.Background != palettes[reader.ThemeSepia].Background {
		t.Error("expected the theme to follow the settings")
	}
}

func TestBackToLibrary(t *testing.T) {
	m := openBook(t, newTestModel(t, nil), "needle-and-yarn")
	m = update(m, keyPress("esc"))
	if m.common.nav.View() != reader.ViewLibrary || m.common.nav.Book() != nil {
		t.Error("expected the library with no open book")
	}
}

func TestLibraryFilter(t *testing.T) {
	m := newTestModel(t, nil)
	all := len(m.library.books)

	m = update(m, keyPress("/"))
	if m.library.filterState != filtering {
		t.Fatal("expected to be filtering")
	}
	for _, r := range "crochet" {
		m = update(m, keyPress(string(r)))
	}
	if len(m.library.books) != 1 || m.library.books[0].ID != "crochet-mastery" {
		t.Fatalf("unexpected matches %v", m.library.books)
	}

	// q is text while filtering
	m = update(m, keyPress("q"))
	if m.library.filterState != filtering {
		t.Error("expected q to be typed into the filter")
	}

	m = update(m, keyPress("esc"))
	if m.library.filterState != unfiltered || len(m.library.books) != all {
		t.Error("expected the filter to be cleared")
	}
}

func TestViews(t *testing.T) {
	m := newTestModel(t, nil)
	if !strings.Contains(m.View(), bannerTitle) {
		t.Error("expected the banner in the library")
	}

	m = openBook(t, m, "needle-and-yarn")
	page, _ := m.common.nav.Page()
	if !strings.Contains(m.View(), "Page 1 of") {
		t.Error("expected the page position in the status bar")
	}
	if !strings.Contains(m.pager.viewport.View(), page.Title) {
		t.Error("expected the page title in the viewport")
	}

	m = update(m, keyPress("right"))
	m = update(m, flipFrameMsg{id: currentFlip(t, m).ID, frame: flipFrames / 2})
	if v := m.View(); v == "" {
		t.Error("expected the flip to render")
	}

	for _, k := range []string{"t", "o", "$"} {
		m = update(m, keyPress(k))
		if v := m.View(); v == "" {
			t.Errorf("overlay %q rendered nothing", k)
		}
		m = update(m, keyPress("esc"))
	}

	m = update(m, keyPress("?"))
	if !m.pager.showHelp {
		t.Error("expected help")
	}
}
