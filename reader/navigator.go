// Package reader holds the reading state: the open book and page, page flips,
// the top level view and the user's settings.
package reader

import (
	"github.com/charmbracelet/log"

	"github.com/leolalee/library/catalog"
)

// Stopper halts narration.
type Stopper interface {
	Stop()
}

// Navigator owns the current page of the open book. Every page change goes
// through its Transition.
type Navigator struct {
	catalog  *catalog.Catalog
	settings *Store
	narrator Stopper

	router  Router
	flip    Transition
	book    *catalog.Book
	session *Session
}

// NewNavigator returns a navigator showing the library. settings may be nil,
// in which case auto-advance is on.
func NewNavigator(c *catalog.Catalog, settings *Store, narrator Stopper) *Navigator {
	return &Navigator{
		catalog:  c,
		settings: settings,
		narrator: narrator,
	}
}

// View returns the top level view.
func (n *Navigator) View() View {
	return n.router.Current()
}

// Book returns the open book, or nil in the library.
func (n *Navigator) Book() *catalog.Book {
	return n.book
}

// Session returns a copy of the reading session.
func (n *Navigator) Session() (Session, bool) {
	if n.session == nil {
		return Session{}, false
	}
	return *n.session, true
}

// PageIndex is the current page. It is 0 when no book is open.
func (n *Navigator) PageIndex() int {
	if n.session == nil {
		return 0
	}
	return n.session.PageIndex
}

// Page returns the current page of the open book.
func (n *Navigator) Page() (catalog.Page, bool) {
	if n.book == nil {
		return catalog.Page{}, false
	}
	return n.book.Page(n.PageIndex())
}

// Flip returns the flip in flight, if any.
func (n *Navigator) Flip() (Flip, bool) {
	return n.flip.Current()
}

// Animating reports whether a page flip is in flight.
func (n *Navigator) Animating() bool {
	return n.flip.Animating()
}

func (n *Navigator) stopNarration() {
	if n.narrator != nil {
		n.narrator.Stop()
	}
}

// OpenBook opens the book with the given id at its first page and shows the
// reader. An unknown id changes nothing.
func (n *Navigator) OpenBook(id string) bool {
	b, ok := n.catalog.Find(id)
	if !ok {
		log.Debug("open book: not found", "id", id)
		return false
	}

	n.stopNarration()
	n.flip.Reset()
	n.book = b
	n.session = newSession(b.ID)
	n.router.show(ViewReader)

	log.Info("opened book", "id", b.ID, "session", n.session.ID, "pages", b.PageCount())
	return true
}

// CloseBook stops narration and returns to the library.
func (n *Navigator) CloseBook() {
	n.stopNarration()
	if n.session != nil {
		log.Info("closed book", "id", n.session.BookID, "session", n.session.ID, "page", n.session.PageIndex)
	}
	n.flip.Reset()
	n.book = nil
	n.session = nil
	n.router.show(ViewLibrary)
}

// ChangePage starts a flip to target. It does nothing when no book is open,
// target is the current page or out of range, or a flip is already in
// flight. Narration is stopped before the flip begins.
func (n *Navigator) ChangePage(target int) (Flip, bool) {
	if n.book == nil || n.flip.Animating() {
		return Flip{}, false
	}
	cur := n.session.PageIndex
	if target == cur || target < 0 || target > n.book.LastPage() {
		return Flip{}, false
	}

	n.stopNarration()
	f, ok := n.flip.Begin(cur, target)
	if ok {
		log.Debug("page flip", "id", f.ID, "from", f.From, "to", f.Target, "direction", f.Direction)
	}
	return f, ok
}

func (n *Navigator) NextPage() (Flip, bool) {
	return n.ChangePage(n.PageIndex() + 1)
}

func (n *Navigator) PrevPage() (Flip, bool) {
	return n.ChangePage(n.PageIndex() - 1)
}

func (n *Navigator) FirstPage() (Flip, bool) {
	return n.ChangePage(0)
}

func (n *Navigator) LastPage() (Flip, bool) {
	if n.book == nil {
		return Flip{}, false
	}
	return n.ChangePage(n.book.LastPage())
}

// FinishFlip completes the flip with the given id and moves to its target
// page. Completions for any other flip are ignored.
func (n *Navigator) FinishFlip(id uint64) bool {
	f, ok := n.flip.Complete(id)
	if !ok || n.session == nil {
		return false
	}
	n.session.PageIndex = f.Target
	return true
}

// NarrationFinished advances to the next page after a page has been read
// aloud. On the last page, or with auto-advance off, nothing changes.
func (n *Navigator) NarrationFinished() (Flip, bool) {
	if n.book == nil {
		return Flip{}, false
	}
	if n.settings != nil && !n.settings.Snapshot().AutoAdvance {
		return Flip{}, false
	}
	if n.session.PageIndex >= n.book.LastPage() {
		log.Debug("narration finished on last page")
		return Flip{}, false
	}
	return n.NextPage()
}
