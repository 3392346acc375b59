package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/leolalee/library/catalog"
	"github.com/leolalee/library/reader"
	"github.com/leolalee/library/tts"
	"github.com/leolalee/library/utils"
)

const statusBarHeight = 1

var helpViewStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}).
	Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
	Render

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

type pagerStatusMessage struct {
	message string
	isError bool
}

type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	state    pagerState
	showHelp bool

	statusMessage      pagerStatusMessage
	statusMessageTimer *time.Timer

	// Page flip being drawn, if any.
	flip *flipView
}

func newPagerModel(common *commonModel) pagerModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return pagerModel{
		common:   common,
		state:    pagerStateBrowse,
		viewport: vp,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
	}
}

func (m *pagerModel) setSize() {
	m.viewport.Width = m.common.width
	m.viewport.Height = m.common.bodyHeight() - statusBarHeight
	m.help.Width = m.common.width

	if m.showHelp {
		m.viewport.Height -= strings.Count(m.helpView(), "\n") + 1
	}
	m.viewport.Height = max(0, m.viewport.Height)
}

func (m *pagerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize()
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

// Show a status message in the status bar for a few seconds. The returned
// command should be sent back through the pager update function.
func (m *pagerModel) showStatusMessage(msg pagerStatusMessage) tea.Cmd {
	m.state = pagerStateStatusMessage
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(pagerContext, m.statusMessageTimer)
}

// render draws the current page into the viewport, keeping the scroll
// position.
func (m *pagerModel) render() {
	page, ok := m.common.nav.Page()
	if !ok {
		return
	}
	md := pageMarkdown(page)
	s, err := glamourRender(*m, md)
	if err != nil {
		log.Error("error rendering with Glamour", "error", err)
		s = wordwrap.String(md, max(1, m.viewport.Width))
	}
	m.viewport.SetContent(s)
}

func (m *pagerModel) unload() {
	log.Debug("unload")
	if m.showHelp {
		m.toggleHelp()
	}
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.state = pagerStateBrowse
	m.flip = nil
	m.viewport.SetContent("")
	m.viewport.YOffset = 0
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pagerKeys.Copy):
			if page, ok := m.common.nav.Page(); ok {
				copyToClipboard(page.Title + "\n\n" + page.Content)
				cmds = append(cmds, m.showStatusMessage(pagerStatusMessage{"Copied page", false}))
			}

		case key.Matches(msg, pagerKeys.Help):
			m.toggleHelp()
		}

	case statusMessageTimeoutMsg:
		if applicationContext(msg) == pagerContext {
			m.state = pagerStateBrowse
		}

	case spinner.TickMsg:
		// Stop ticking once the narrator goes quiet.
		if !m.common.narrator.IsSpeaking() {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.flip == nil {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m pagerModel) View() string {
	var b strings.Builder
	if m.flip != nil {
		fmt.Fprint(&b, m.flipView()+"\n")
	} else {
		fmt.Fprint(&b, m.viewport.View()+"\n")
	}

	// Footer
	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	t := m.common.theme
	showStatusMessage := m.state == pagerStateStatusMessage

	noteStyle := t.statusNote
	if showStatusMessage {
		noteStyle = t.statusMessage
		if m.statusMessage.isError {
			noteStyle = t.statusError
		}
	}

	logo := t.statusLogo.Render("Leola")

	// Page position
	var position string
	if book := m.common.nav.Book(); book != nil {
		position = fmt.Sprintf(" Page %d of %d ", m.common.nav.PageIndex()+1, book.PageCount())
	}
	position = t.statusPage.Render(position)

	narration := t.statusNote.Render(m.narrationView())
	helpNote := t.statusNote.Render(" ? Help ")

	// Note
	var note string
	if showStatusMessage {
		note = m.statusMessage.message
	} else if book := m.common.nav.Book(); book != nil {
		note = book.Title
		if page, ok := m.common.nav.Page(); ok {
			note += " · " + page.Title
		}
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(narration)-
			ansi.PrintableRuneWidth(position)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	note = noteStyle.Render(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(narration)-
			ansi.PrintableRuneWidth(position)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := noteStyle.Render(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		narration,
		position,
		helpNote,
	)
}

// narrationView is the narrator's part of the status bar.
func (m pagerModel) narrationView() string {
	st := m.common.narrator.State()
	switch {
	case st.IsSpeaking:
		return fmt.Sprintf(" %s reading %s ", m.spinner.View(), tts.FormatRate(st.Rate))
	case st.Disabled:
		return ""
	default:
		return fmt.Sprintf(" ♪ %s ", tts.FormatRate(m.common.settings.Snapshot().SpeechRate))
	}
}

func (m pagerModel) helpView() string {
	s := "\n" + m.help.FullHelpView(pagerKeys.FullHelp())
	s = indent(s, 2)
	s = strings.TrimSuffix(s, "\n")

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := range lines {
			n := max(m.common.width-ansi.PrintableRuneWidth(lines[i]), 0)
			lines[i] += strings.Repeat(" ", n)
		}
		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

// ETC

func pageMarkdown(p catalog.Page) string {
	return "# " + p.Title + "\n\n" + p.Content + "\n"
}

// wrapWidth is the text column for a font size. Larger type means fewer
// characters per line, never wider than the viewport.
func wrapWidth(maxWidth uint, fontSize, viewportWidth int) int {
	w := int(maxWidth) * reader.DefaultFontSize / max(1, reader.ClampFontSize(fontSize)) //nolint:gosec
	return max(0, min(w, viewportWidth))
}

func copyToClipboard(s string) {
	// Copy using OSC 52
	termenv.Copy(s)
	// Copy using native system clipboard
	_ = clipboard.WriteAll(s)
}

// This is where the magic happens.
func glamourRender(m pagerModel, markdown string) (string, error) {
	width := wrapWidth(m.common.cfg.GlamourMaxWidth, m.common.settings.Snapshot().FontSize, m.viewport.Width)

	var out string
	if !m.common.cfg.GlamourEnabled {
		out = wordwrap.String(markdown, max(1, width))
	} else {
		style := m.common.cfg.GlamourStyle
		if m.common.theme.Glamour != "" && !utils.IsStyleFile(style) {
			style = m.common.theme.Glamour
		}

		r, err := glamour.NewTermRenderer(
			utils.GlamourStyle(style),
			glamour.WithWordWrap(width),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			return "", fmt.Errorf("error creating glamour renderer: %w", err)
		}

		out, err = r.Render(markdown)
		if err != nil {
			return "", fmt.Errorf("error rendering markdown: %w", err)
		}
	}

	// center the text column
	margin := strings.Repeat(" ", max(0, (m.viewport.Width-width)/2))
	lines := strings.Split(out, "\n")

	var content strings.Builder
	for i, s := range lines {
		content.WriteString(margin)
		content.WriteString(s)

		// don't add an artificial newline after the last split
		if i+1 < len(lines) {
			content.WriteRune('\n')
		}
	}

	return content.String(), nil
}
