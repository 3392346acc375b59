// Package ui provides the terminal interface for the library.
package ui

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"

	"github.com/leolalee/library/catalog"
	"github.com/leolalee/library/reader"
	"github.com/leolalee/library/tts"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"

	animationInterval = time.Millisecond * 100
	messageInterval   = time.Second * 5
)

// Deps are the long lived parts of the application the UI drives.
type Deps struct {
	Catalog  *catalog.Catalog
	Settings *reader.Store
	Narrator *tts.Narrator

	// LoadSettings re-reads settings after the config file changes. It may
	// be nil.
	LoadSettings func() (reader.Settings, error)
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug(
		"Starting leola",
		"glamour", cfg.GlamourEnabled,
		"book", cfg.BookID,
		"mouse", cfg.EnableMouse,
	)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, deps)
	return tea.NewProgram(m, opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	statusMessageTimeoutMsg applicationContext
	animationTickMsg        struct{}
	rotateMessageMsg        struct{}
	openBookMsg             struct{ id string }
)

// applicationContext indicates the area of the application something applies
// to. Occasionally used as an argument to commands and messages.
type applicationContext int

const (
	libraryContext applicationContext = iota
	pagerContext
)

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	width  int
	height int
	theme  theme

	catalog  *catalog.Catalog
	nav      *reader.Navigator
	settings *reader.Store
	narrator *tts.Narrator
}

// bodyHeight is the space left for a view below the particle band.
func (c commonModel) bodyHeight() int {
	return max(0, c.height-particleBandHeight(c.settings.Snapshot().ParticleDensity))
}

type model struct {
	common   *commonModel
	fatalErr error

	// Sub-models
	library   libraryModel
	pager     pagerModel
	overlay   overlayModel
	particles *particleField

	// Keep reading aloud after an automatic page turn.
	continuous bool

	watcher      *configWatcher
	loadSettings func() (reader.Settings, error)

	startup tea.Cmd
}

func newModel(cfg Config, deps Deps) model {
	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	settings := deps.Settings
	if settings == nil {
		settings = reader.NewStore(cfg.Settings)
	}
	narrator := deps.Narrator
	if narrator == nil {
		narrator = tts.NewNarrator(nil)
	}
	cat := deps.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	common := &commonModel{
		cfg:      cfg,
		catalog:  cat,
		settings: settings,
		narrator: narrator,
		nav:      reader.NewNavigator(cat, settings, narrator),
		theme:    newTheme(settings.Snapshot().ColorTheme),
	}

	seed := uint64(time.Now().UnixNano()) //nolint:gosec
	rng := rand.New(rand.NewPCG(seed, seed>>1)) //nolint:gosec
	m := model{
		common:       common,
		library:      newLibraryModel(common),
		pager:        newPagerModel(common),
		overlay:      newOverlayModel(common),
		particles:    newParticleField(particleCount(settings.Snapshot().ParticleDensity), rng),
		loadSettings: deps.LoadSettings,
	}
	if cfg.ConfigFile != "" && deps.LoadSettings != nil {
		m.watcher = newConfigWatcher(cfg.ConfigFile)
	}

	if cfg.BookID != "" {
		if common.nav.OpenBook(cfg.BookID) {
			m.pager.render()
		} else {
			m.startup = m.library.showStatusMessage(fmt.Sprintf("No book called %q", cfg.BookID))
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	log.Debug("Init() called", "view", m.common.nav.View())
	cmds := []tea.Cmd{animationTick(), rotateMessage()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.wait(m.loadSettings))
	}
	if m.startup != nil {
		cmds = append(cmds, m.startup)
	}
	return tea.Batch(cmds...)
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.continuous = false
	m.common.narrator.Stop()
	if m.watcher != nil {
		m.watcher.close()
	}
	return m, tea.Quit
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m.quit()
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		// Ctrl+C always quits no matter where in the application you are.
		case "ctrl+c":
			return m.quit()
		case "ctrl+z":
			return m, tea.Suspend
		}

		if m.overlay.open() {
			var cmd tea.Cmd
			m.overlay, cmd = m.overlay.update(msg)
			return m, cmd
		}

		if m.common.nav.View() == reader.ViewReader {
			return m.handleReaderKey(msg)
		}
		return m.handleLibraryKey(msg)

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.library.setSize()
		m.pager.setSize()
		m.pager.render()

	case errMsg:
		m.fatalErr = msg

	case animationTickMsg:
		m.particles.resize(particleCount(m.common.settings.Snapshot().ParticleDensity))
		m.particles.step(particleSpeed)
		m.library.scrollWords()
		return m, animationTick()

	case rotateMessageMsg:
		m.library.nextMessage()
		return m, rotateMessage()

	case openBookMsg:
		return m, m.openBook(msg.id)

	case flipFrameMsg:
		return m, m.advanceFlip(msg)

	case flipTimeoutMsg:
		return m, m.completeFlip(msg.id, reader.CompletedByFallback)

	case narrationDoneMsg:
		return m, m.narrationDone(tts.Result(msg))

	case clearNarrationErrorMsg:
		m.common.narrator.ClearError()
		return m, nil

	case settingsChangedMsg:
		m.applySettings()
		return m, nil

	case settingsReloadedMsg:
		m.common.settings.Apply(msg.settings)
		m.applySettings()
		log.Info("settings reloaded", "file", m.common.cfg.ConfigFile)
		cmds = append(cmds, m.statusMessage("Settings reloaded"))
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.wait(m.loadSettings))
		}
		return m, tea.Batch(cmds...)

	case settingsReloadErrMsg:
		log.Error("unable to reload settings", "error", msg.err)
		cmds = append(cmds, m.statusError("Could not reload settings"))
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.wait(m.loadSettings))
		}
		return m, tea.Batch(cmds...)

	case jumpToPageMsg:
		f, ok := m.common.nav.ChangePage(msg.page)
		return m, m.startFlip(f, ok, false)

	case openedURLMsg:
		if msg.err != nil {
			log.Error("unable to open link", "url", msg.url, "error", msg.err)
			return m, m.statusError("Couldn't open " + msg.url)
		}
		return m, m.statusMessage("Opened " + msg.url)

	case copiedMsg:
		return m, m.statusMessage(string(msg))
	}

	// Process children
	switch m.common.nav.View() {
	case reader.ViewReader:
		newPagerModel, cmd := m.pager.update(msg)
		m.pager = newPagerModel
		cmds = append(cmds, cmd)
	default:
		newLibraryModel, cmd := m.library.update(msg)
		m.library = newLibraryModel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleLibraryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// pass through all keys if we're editing the filter
	if m.library.filterState != filtering {
		switch {
		case key.Matches(msg, libraryKeys.Quit):
			return m.quit()
		case key.Matches(msg, libraryKeys.Settings):
			m.overlay.show(overlaySettings)
			return m, nil
		case key.Matches(msg, libraryKeys.Support):
			m.overlay.show(overlaySupport)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.library, cmd = m.library.update(msg)
	return m, cmd
}

func (m model) handleReaderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nav := m.common.nav

	switch {
	case key.Matches(msg, pagerKeys.Quit):
		return m.quit()

	case key.Matches(msg, pagerKeys.Next):
		f, ok := nav.NextPage()
		return m, m.startFlip(f, ok, false)

	case key.Matches(msg, pagerKeys.Prev):
		f, ok := nav.PrevPage()
		return m, m.startFlip(f, ok, false)

	case key.Matches(msg, pagerKeys.First):
		f, ok := nav.FirstPage()
		return m, m.startFlip(f, ok, false)

	case key.Matches(msg, pagerKeys.Last):
		f, ok := nav.LastPage()
		return m, m.startFlip(f, ok, false)

	case key.Matches(msg, pagerKeys.Narrate):
		if m.common.narrator.IsSpeaking() {
			m.continuous = false
			m.common.narrator.Stop()
			return m, m.statusMessage("Narration stopped")
		}
		return m, m.speakPage()

	case key.Matches(msg, pagerKeys.Faster):
		return m, m.changeRate(1)

	case key.Matches(msg, pagerKeys.Slower):
		return m, m.changeRate(-1)

	case key.Matches(msg, pagerKeys.Contents):
		m.overlay.show(overlayContents)
		return m, nil

	case key.Matches(msg, pagerKeys.Settings):
		m.overlay.show(overlaySettings)
		return m, nil

	case key.Matches(msg, pagerKeys.Support):
		m.overlay.show(overlaySupport)
		return m, nil

	case key.Matches(msg, pagerKeys.Back):
		m.continuous = false
		nav.CloseBook()
		m.pager.unload()
		return m, nil
	}

	var cmd tea.Cmd
	m.pager, cmd = m.pager.update(msg)
	return m, cmd
}

func (m *model) openBook(id string) tea.Cmd {
	m.continuous = false
	if !m.common.nav.OpenBook(id) {
		return m.library.showStatusMessage(fmt.Sprintf("No book called %q", id))
	}
	m.pager.setSize()
	m.pager.render()
	return m.pager.showStatusMessage(pagerStatusMessage{"Opened " + m.common.nav.Book().Title, false})
}

// startFlip begins the animation for a flip the navigator accepted. When
// continuous is set the new page is read aloud once the flip lands.
func (m *model) startFlip(f reader.Flip, ok, continuous bool) tea.Cmd {
	if !ok {
		return nil
	}
	m.continuous = continuous
	m.pager.startFlip(f)
	return tea.Batch(flipFrame(f.ID, 1), flipFallback(f.ID))
}

func (m *model) advanceFlip(msg flipFrameMsg) tea.Cmd {
	if !m.pager.flipping(msg.id) {
		return nil
	}
	m.pager.flip.frame = msg.frame
	if msg.frame >= flipFrames {
		return m.completeFlip(msg.id, reader.CompletedNaturally)
	}
	return flipFrame(msg.id, msg.frame+1)
}

// completeFlip lands the flip with the given id. Whichever of the last frame
// and the fallback timer arrives second finds nothing to do.
func (m *model) completeFlip(id uint64, how reader.Completion) tea.Cmd {
	if !m.common.nav.FinishFlip(id) {
		return nil
	}
	log.Debug("page flip done", "id", id, "completion", how, "page", m.common.nav.PageIndex())
	m.pager.endFlip()
	m.pager.render()

	if m.continuous {
		return m.speakPage()
	}
	return nil
}

// speakPage reads the current page aloud.
func (m *model) speakPage() tea.Cmd {
	page, ok := m.common.nav.Page()
	if !ok {
		return nil
	}
	s := m.common.settings.Snapshot()
	text := tts.PlainText(page.Title + "\n\n" + page.Content)
	ch := m.common.narrator.Speak(text, s.SpeechRate, tts.PresetHint(s.Voice))
	m.continuous = true

	cmds := []tea.Cmd{waitForNarration(ch)}
	if st := m.common.narrator.State(); st.IsSpeaking {
		cmds = append(cmds,
			m.pager.spinner.Tick,
			m.statusMessage("Reading with voice: "+st.Voice.String()),
		)
	}
	return tea.Batch(cmds...)
}

func (m *model) narrationDone(res tts.Result) tea.Cmd {
	switch res.Reason {
	case tts.Finished:
		if res.ID != m.common.narrator.State().Utterance || !m.continuous {
			return nil
		}
		f, ok := m.common.nav.NarrationFinished()
		if !ok {
			m.continuous = false
			if b := m.common.nav.Book(); b != nil && m.common.nav.PageIndex() == b.LastPage() {
				return m.statusMessage("The end")
			}
			return nil
		}
		return m.startFlip(f, true, true)

	case tts.Canceled:
		return nil

	case tts.Unavailable:
		m.continuous = false
		if res.Err == nil {
			return nil
		}
		return m.statusError(tts.UserMessage(res.Err))

	default:
		m.continuous = false
		log.Error("narration failed", "utterance", res.ID, "error", res.Err)
		return tea.Batch(
			m.statusError(tts.UserMessage(res.Err)),
			clearNarrationError(statusMessageTimeout),
		)
	}
}

func (m *model) changeRate(steps int) tea.Cmd {
	cur := m.common.settings.Snapshot().SpeechRate
	rate := m.common.settings.SetSpeechRate(tts.StepRate(cur, steps))
	if rate == cur {
		return nil
	}
	msg := m.statusMessage("Speed " + tts.FormatRate(rate))
	if m.common.narrator.IsSpeaking() {
		return tea.Batch(msg, m.speakPage())
	}
	return msg
}

// applySettings refreshes everything derived from the settings store.
func (m *model) applySettings() {
	s := m.common.settings.Snapshot()
	m.common.theme = newTheme(s.ColorTheme)
	m.particles.resize(particleCount(s.ParticleDensity))
	m.library.setSize()
	m.pager.setSize()
	m.pager.render()
}

func (m *model) statusMessage(s string) tea.Cmd {
	if m.common.nav.View() == reader.ViewReader {
		return m.pager.showStatusMessage(pagerStatusMessage{s, false})
	}
	return m.library.showStatusMessage(s)
}

func (m *model) statusError(s string) tea.Cmd {
	if m.common.nav.View() == reader.ViewReader {
		return m.pager.showStatusMessage(pagerStatusMessage{s, true})
	}
	return m.library.showStatusMessage(s)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.common.theme, m.fatalErr, true)
	}

	var b strings.Builder
	if h := particleBandHeight(m.common.settings.Snapshot().ParticleDensity); h > 0 {
		b.WriteString(m.particles.view(m.common.theme, m.common.width, h))
		b.WriteString("\n")
	}

	if m.overlay.open() {
		b.WriteString(m.overlay.view(m.common.width, m.common.bodyHeight()))
		return b.String()
	}

	switch m.common.nav.View() {
	case reader.ViewReader:
		b.WriteString(m.pager.View())
	default:
		b.WriteString(m.library.view())
	}
	return b.String()
}

func errorView(t theme, err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		t.errorTitle.Render("ERROR"),
		err,
		t.subtle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func animationTick() tea.Cmd {
	return tea.Tick(animationInterval, func(time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

func rotateMessage() tea.Cmd {
	return tea.Tick(messageInterval, func(time.Time) tea.Msg {
		return rotateMessageMsg{}
	})
}

func waitForStatusMessageTimeout(appCtx applicationContext, t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg(appCtx)
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
