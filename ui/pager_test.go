package ui

import (
	"strings"
	"testing"

	"github.com/leolalee/library/catalog"
)

func TestWrapWidth(t *testing.T) {
	for _, tc := range []struct {
		fontSize int
		viewport int
		want     int
	}{
		{16, 100, 80},
		{24, 100, 53},
		{12, 100, 100},
		{12, 200, 106},
		{16, 40, 40},
		{16, 0, 0},
		{99, 100, 53},
	} {
		if got := wrapWidth(80, tc.fontSize, tc.viewport); got != tc.want {
			t.Errorf("wrapWidth(80, %d, %d) = %d, want %d", tc.fontSize, tc.viewport, got, tc.want)
		}
	}
}

func TestGlamourRender(t *testing.T) {
	page := catalog.Page{Title: "Gathering Your Supplies", Content: "First, yarn.\n\nThen, needles."}

	for _, enabled := range []bool{false, true} {
		m := newTestModel(t, nil)
		m.common.cfg.GlamourEnabled = enabled

		out, err := glamourRender(m.pager, pageMarkdown(page))
		if err != nil {
			t.Fatalf("glamour=%v: %v", enabled, err)
		}
		for _, want := range []string{"Gathering Your Supplies", "First, yarn.", "Then, needles."} {
			if !strings.Contains(out, want) {
				t.Errorf("glamour=%v: output missing %q", enabled, want)
			}
		}
	}
}

func TestCopyStatus(t *testing.T) {
	m := openBook(t, newTestModel(t, nil), "needle-and-yarn")
	m = update(m, keyPress("c"))
	if m.pager.state != pagerStateStatusMessage || m.pager.statusMessage.message != "Copied page" {
		t.Errorf("unexpected status %+v", m.pager.statusMessage)
	}
	m = update(m, statusMessageTimeoutMsg(pagerContext))
	if m.pager.state != pagerStateBrowse {
		t.Error("expected the status message to time out")
	}
}
