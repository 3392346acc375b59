package ui

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leolalee/library/catalog"
	"github.com/leolalee/library/reader"
)

const (
	flipFrames        = 8
	flipFrameInterval = time.Millisecond * 40
)

type (
	flipFrameMsg struct {
		id    uint64
		frame int
	}
	flipTimeoutMsg struct{ id uint64 }
)

// flipView is a page flip being drawn. The outgoing page narrows as the
// incoming one widens.
type flipView struct {
	reader.Flip
	from  catalog.Page
	to    catalog.Page
	frame int
}

func (m *pagerModel) startFlip(f reader.Flip) {
	book := m.common.nav.Book()
	if book == nil {
		return
	}
	from, _ := book.Page(f.From)
	to, _ := book.Page(f.Target)
	m.flip = &flipView{Flip: f, from: from, to: to}
}

func (m pagerModel) flipping(id uint64) bool {
	return m.flip != nil && m.flip.ID == id
}

// endFlip stops drawing the flip and shows the new page from the top.
func (m *pagerModel) endFlip() {
	m.flip = nil
	m.viewport.GotoTop()
}

func (m pagerModel) flipView() string {
	f := m.flip
	width, height := m.viewport.Width, m.viewport.Height
	if width <= 0 || height <= 0 {
		return ""
	}

	progress := math.Min(1, float64(f.frame)/flipFrames)
	in := int(math.Round(float64(width) * progress))
	out := width - in

	outgoing := m.flipPane(f.from, out, height)
	incoming := m.flipPane(f.to, in, height)

	// Next pages come in from the right, previous pages from the left.
	if f.Direction == reader.DirectionPrev {
		return lipgloss.JoinHorizontal(lipgloss.Top, incoming, outgoing)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, outgoing, incoming)
}

func (m pagerModel) flipPane(p catalog.Page, width, height int) string {
	const frame = 2 // left and right border

	if width <= 0 {
		return ""
	}
	if width <= frame+2 {
		return strings.TrimSuffix(strings.Repeat(strings.Repeat(" ", width)+"\n", height), "\n")
	}

	body := m.common.theme.title.Render(p.Title) + "\n\n" + strings.Join(p.Paragraphs(), "\n\n")
	return m.common.theme.pane.
		Width(width - frame).
		Height(height).
		MaxHeight(height).
		Render(body)
}

// COMMANDS

func flipFrame(id uint64, frame int) tea.Cmd {
	return tea.Tick(flipFrameInterval, func(time.Time) tea.Msg {
		return flipFrameMsg{id: id, frame: frame}
	})
}

// flipFallback completes the flip if the animation never does.
func flipFallback(id uint64) tea.Cmd {
	return tea.Tick(reader.FallbackTimeout, func(time.Time) tea.Msg {
		return flipTimeoutMsg{id: id}
	})
}
