package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leolalee/library/tts"
)

type (
	narrationDoneMsg       tts.Result
	clearNarrationErrorMsg struct{}
)

// waitForNarration delivers the outcome of an utterance.
func waitForNarration(ch <-chan tts.Result) tea.Cmd {
	return func() tea.Msg {
		return narrationDoneMsg(<-ch)
	}
}

func clearNarrationError(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearNarrationErrorMsg{}
	})
}
