package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/leolalee/library/reader"
	"github.com/leolalee/library/tts"
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlaySettings
	overlayContents
	overlaySupport
)

type (
	settingsChangedMsg struct{}
	jumpToPageMsg      struct{ page int }
	copiedMsg          string
	openedURLMsg       struct {
		url string
		err error
	}
)

type supportLink struct {
	name string
	url  string
}

var supportLinks = []supportLink{
	{"Buy Me a Coffee", "https://buymeacoffee.com"},
	{"Patreon", "https://patreon.com"},
	{"Ko-fi", "https://ko-fi.com"},
}

type settingRow int

const (
	rowFontSize settingRow = iota
	rowTheme
	rowSpeechRate
	rowVoice
	rowParticles
	rowAutoAdvance
	settingRows
)

var settingLabels = map[settingRow]string{
	rowFontSize:    "Font size",
	rowTheme:       "Theme",
	rowSpeechRate:  "Speech rate",
	rowVoice:       "Voice",
	rowParticles:   "Particles",
	rowAutoAdvance: "Auto-advance",
}

// overlayModel is a dialog drawn over the current view. At most one is open.
type overlayModel struct {
	common *commonModel
	kind   overlayKind
	cursor int
}

func newOverlayModel(common *commonModel) overlayModel {
	return overlayModel{common: common}
}

func (m overlayModel) open() bool {
	return m.kind != overlayNone
}

func (m *overlayModel) show(k overlayKind) {
	m.kind = k
	m.cursor = 0
	if k == overlayContents {
		m.cursor = m.common.nav.PageIndex()
	}
}

func (m *overlayModel) close() {
	m.kind = overlayNone
	m.cursor = 0
}

func (m overlayModel) rows() int {
	switch m.kind {
	case overlaySettings:
		return int(settingRows)
	case overlayContents:
		if b := m.common.nav.Book(); b != nil {
			return b.PageCount()
		}
	case overlaySupport:
		return len(supportLinks)
	}
	return 0
}

func (m overlayModel) update(msg tea.KeyMsg) (overlayModel, tea.Cmd) {
	switch {
	case key.Matches(msg, overlayKeys.Close):
		m.close()
		return m, nil
	case key.Matches(msg, overlayKeys.Up):
		m.cursor = max(0, m.cursor-1)
		return m, nil
	case key.Matches(msg, overlayKeys.Down):
		m.cursor = max(0, min(m.rows()-1, m.cursor+1))
		return m, nil
	}

	switch m.kind {
	case overlaySettings:
		switch {
		case key.Matches(msg, overlayKeys.Left):
			return m, m.adjust(-1)
		case key.Matches(msg, overlayKeys.Right), key.Matches(msg, overlayKeys.Select):
			return m, m.adjust(1)
		}

	case overlayContents:
		if key.Matches(msg, overlayKeys.Select) {
			page := m.cursor
			m.close()
			return m, func() tea.Msg { return jumpToPageMsg{page} }
		}

	case overlaySupport:
		link := supportLinks[m.cursor]
		switch {
		case key.Matches(msg, overlayKeys.Select):
			return m, openURL(link.url)
		case key.Matches(msg, overlayKeys.Copy):
			return m, copyLink(link.url)
		}
	}
	return m, nil
}

// adjust moves the selected setting by delta steps.
func (m overlayModel) adjust(delta int) tea.Cmd {
	st := m.common.settings
	s := st.Snapshot()

	switch settingRow(m.cursor) {
	case rowFontSize:
		st.SetFontSize(s.FontSize + delta)
	case rowTheme:
		st.SetColorTheme(reader.Cycle(reader.Themes, s.ColorTheme, delta))
	case rowSpeechRate:
		st.SetSpeechRate(s.SpeechRate + float64(delta)*reader.SpeechRateStep)
	case rowVoice:
		st.SetVoice(reader.Cycle(reader.VoiceOptions, s.Voice, delta))
	case rowParticles:
		st.SetParticleDensity(s.ParticleDensity + delta*reader.ParticleDensityStep)
	case rowAutoAdvance:
		st.SetAutoAdvance(!s.AutoAdvance)
	default:
		return nil
	}
	return func() tea.Msg { return settingsChangedMsg{} }
}

func (m overlayModel) view(width, height int) string {
	t := m.common.theme

	var title, body, hint string
	switch m.kind {
	case overlaySettings:
		title = "Settings"
		body = m.settingsView()
		hint = "↑/↓ choose · ←/→ change · esc close"
	case overlayContents:
		title = "Contents"
		if b := m.common.nav.Book(); b != nil {
			title = b.Title
		}
		body = m.contentsView(max(1, height-10))
		hint = "↑/↓ choose · enter go to page · esc close"
	case overlaySupport:
		title = "Support the Author"
		body = m.supportView()
		hint = "enter open · c copy link · esc close"
	default:
		return ""
	}

	box := t.overlay.Render(
		t.overlayTitle.Render(title) + "\n" +
			body + "\n\n" +
			t.subtle.Render(hint),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m overlayModel) cursorLine(i int, s string) string {
	if i == m.cursor {
		return m.common.theme.selected.Render("› " + s)
	}
	return "  " + s
}

func (m overlayModel) settingsView() string {
	s := m.common.settings.Snapshot()
	values := map[settingRow]string{
		rowFontSize:    fmt.Sprintf("%dpx", s.FontSize),
		rowTheme:       string(s.ColorTheme),
		rowSpeechRate:  tts.FormatRate(s.SpeechRate),
		rowVoice:       s.Voice,
		rowParticles:   fmt.Sprintf("%d%%", s.ParticleDensity),
		rowAutoAdvance: onOff(s.AutoAdvance),
	}

	lines := make([]string, 0, settingRows)
	for r := rowFontSize; r < settingRows; r++ {
		lines = append(lines, m.cursorLine(int(r), fmt.Sprintf("%-14s ‹ %s ›", settingLabels[r], values[r])))
	}
	return strings.Join(lines, "\n")
}

func (m overlayModel) contentsView(height int) string {
	b := m.common.nav.Book()
	if b == nil {
		return ""
	}

	start := m.cursor / height * height
	end := min(b.PageCount(), start+height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		p, _ := b.Page(i)
		line := fmt.Sprintf("%2d. %s", i+1, truncate.StringWithTail(p.Title, 48, ellipsis))
		if i == m.common.nav.PageIndex() {
			line += " •"
		}
		lines = append(lines, m.cursorLine(i, line))
	}
	return strings.Join(lines, "\n")
}

func (m overlayModel) supportView() string {
	lines := []string{
		"If these stories warmed your heart, you can",
		"support Leola's writing here:",
		"",
	}
	for i, l := range supportLinks {
		lines = append(lines, m.cursorLine(i, fmt.Sprintf("%-16s %s", l.name, m.common.theme.subtle.Render(l.url))))
	}
	return strings.Join(lines, "\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// COMMANDS

func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		return openedURLMsg{url: url, err: cmd.Run()}
	}
}

func copyLink(url string) tea.Cmd {
	return func() tea.Msg {
		copyToClipboard(url)
		return copiedMsg("Copied " + url)
	}
}
