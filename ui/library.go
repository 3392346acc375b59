package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/leolalee/library/catalog"
)

const (
	bannerTitle    = "Leola's Digital Library"
	bannerSubtitle = `A collection of heartwarming stories and guides by Leola "Sista" Lee`

	libraryHeaderHeight = 4 // title, subtitle, scrolling words, gap
	libraryFooterHeight = 3 // gap, message, help
	bookItemHeight      = 4
)

var scrollingWords = []string{
	"Creativity", "Love", "Connection", "Harmony", "Embrace",
	"Passion", "Stitch", "Weave", "Create", "Dream",
	"Craft", "Inspire", "Imagine", "Bloom", "Journey",
	"Heart", "Soul", "Spirit", "Warmth", "Family",
	"Tradition", "Legacy", "Beauty", "Wonder", "Magic",
}

var inspiringMessages = []string{
	"Keep stitching your dreams together!",
	"A single thread of hope is still a strong thread.",
	"Stay warm with cozy yarn and warm words.",
	"Every stitch is a story waiting to unfold.",
}

type filterState int

const (
	unfiltered    filterState = iota // no filter set
	filtering                        // user is actively setting a filter
	filterApplied                    // a filter is applied and user is not editing filter
)

type libraryModel struct {
	common      *commonModel
	books       []*catalog.Book
	cursor      int
	filterInput textinput.Model
	filterState filterState
	help        help.Model

	wordOffset   int
	messageIndex int

	statusMessageShown bool
	statusMessage      string
	statusMessageTimer *time.Timer
}

func newLibraryModel(common *commonModel) libraryModel {
	ti := textinput.New()
	ti.Prompt = "Find: "
	ti.Placeholder = "title or author"
	ti.CharLimit = 64

	return libraryModel{
		common:      common,
		books:       common.catalog.Books(),
		filterInput: ti,
		help:        help.New(),
	}
}

func (m *libraryModel) setSize() {
	m.filterInput.Width = max(0, m.common.width-lipgloss.Width(m.filterInput.Prompt)-4)
	m.help.Width = m.common.width
}

func (m *libraryModel) scrollWords() {
	m.wordOffset++
}

func (m *libraryModel) nextMessage() {
	m.messageIndex = (m.messageIndex + 1) % len(inspiringMessages)
}

func (m libraryModel) selected() *catalog.Book {
	if m.cursor < 0 || m.cursor >= len(m.books) {
		return nil
	}
	return m.books[m.cursor]
}

func (m *libraryModel) moveCursor(delta int) {
	if len(m.books) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(len(m.books)-1, m.cursor+delta))
}

func (m *libraryModel) applyFilter() {
	m.books = m.common.catalog.Filter(m.filterInput.Value())
	m.moveCursor(0)
}

func (m *libraryModel) resetFilter() {
	m.filterInput.Reset()
	m.filterInput.Blur()
	m.filterState = unfiltered
	m.applyFilter()
}

func (m *libraryModel) showStatusMessage(s string) tea.Cmd {
	m.statusMessageShown = true
	m.statusMessage = s
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(libraryContext, m.statusMessageTimer)
}

func (m libraryModel) update(msg tea.Msg) (libraryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case statusMessageTimeoutMsg:
		if applicationContext(msg) == libraryContext {
			m.statusMessageShown = false
			m.statusMessage = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.filterState == filtering {
			return m.handleFiltering(msg)
		}

		switch {
		case key.Matches(msg, libraryKeys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, libraryKeys.Down):
			m.moveCursor(1)
		case key.Matches(msg, libraryKeys.Open):
			if b := m.selected(); b != nil {
				id := b.ID
				return m, func() tea.Msg { return openBookMsg{id} }
			}
		case key.Matches(msg, libraryKeys.Filter):
			m.filterState = filtering
			return m, m.filterInput.Focus()
		case key.Matches(msg, libraryKeys.ClearFilter):
			if m.filterState == filterApplied {
				m.resetFilter()
			}
		}
		return m, nil
	}

	// cursor blinking and the like
	if m.filterState == filtering {
		m.filterInput, cmd = m.filterInput.Update(msg)
	}
	return m, cmd
}

func (m libraryModel) handleFiltering(msg tea.KeyMsg) (libraryModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.resetFilter()
		return m, nil
	case "enter", "tab":
		m.filterInput.Blur()
		m.filterState = filterApplied
		if strings.TrimSpace(m.filterInput.Value()) == "" {
			m.resetFilter()
		}
		return m, nil
	case "up", "ctrl+k":
		m.moveCursor(-1)
		return m, nil
	case "down", "ctrl+j":
		m.moveCursor(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m libraryModel) view() string {
	t := m.common.theme
	width := m.common.width
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
	}

	header := []string{
		center(t.title.Render(bannerTitle)),
		center(t.subtitle.Render(truncate.StringWithTail(bannerSubtitle, uint(max(0, width)), ellipsis))), //nolint:gosec
		t.subtle.Render(marquee(scrollingWords, m.wordOffset, width)),
		"",
	}

	listHeight := max(0, m.common.bodyHeight()-libraryHeaderHeight-libraryFooterHeight)
	list := m.listView(listHeight)

	footer := []string{
		"",
		center(t.subtle.Render("✨ " + inspiringMessages[m.messageIndex] + " ✨")),
		m.footerView(),
	}

	return strings.Join(append(append(header, list...), footer...), "\n")
}

// listView returns exactly height lines.
func (m libraryModel) listView(height int) []string {
	t := m.common.theme
	lines := make([]string, 0, height)

	if len(m.books) == 0 {
		lines = append(lines, "  "+t.subtle.Render(fmt.Sprintf("Nothing matches “%s”", m.filterInput.Value())))
	}

	perPage := max(1, height/bookItemHeight)
	start := m.cursor / perPage * perPage
	end := min(len(m.books), start+perPage)
	textWidth := uint(max(0, m.common.width-6)) //nolint:gosec

	for i := start; i < end; i++ {
		b := m.books[i]
		gutter, titleStyle := "  ", t.subtitle
		if i == m.cursor {
			gutter, titleStyle = t.selected.Render("│ "), t.selected
		}
		title := truncate.StringWithTail(b.Title, textWidth, ellipsis)
		meta := fmt.Sprintf("by %s · %s pages", b.Author, humanize.Comma(int64(b.PageCount())))
		desc := truncate.StringWithTail(b.Description, textWidth, ellipsis)

		lines = append(lines,
			gutter+coverIcon(b.ID)+" "+titleStyle.Render(title),
			gutter+"   "+t.subtle.Render(truncate.StringWithTail(meta, textWidth, ellipsis)),
			gutter+"   "+desc,
			"",
		)
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func (m libraryModel) footerView() string {
	t := m.common.theme
	switch {
	case m.filterState == filtering:
		return " " + m.filterInput.View()
	case m.statusMessageShown:
		return t.statusMessage.Render(" " + m.statusMessage + " ")
	case m.filterState == filterApplied:
		return " " + t.subtle.Render(fmt.Sprintf("Filtered by “%s” · esc to clear", m.filterInput.Value()))
	default:
		return " " + m.help.ShortHelpView(libraryKeys.ShortHelp())
	}
}

// marquee returns width cells of words scrolled left by offset.
func marquee(words []string, offset, width int) string {
	if width <= 0 || len(words) == 0 {
		return ""
	}
	runes := []rune(strings.Join(words, " • ") + " • ")
	offset %= len(runes)

	var b strings.Builder
	for i := range width {
		b.WriteRune(runes[(offset+i)%len(runes)])
	}
	return b.String()
}
