package reader

import (
	"time"

	"github.com/google/uuid"
)

// Session is the reading position in the open book.
type Session struct {
	ID        string
	BookID    string
	PageIndex int
	Opened    time.Time
}

func newSession(bookID string) *Session {
	return &Session{
		ID:     uuid.NewString(),
		BookID: bookID,
		Opened: time.Now(),
	}
}
