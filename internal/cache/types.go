// Package cache stores synthesized narration audio so a page that has been
// read once does not have to be synthesized again.
package cache

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

var (
	ErrItemTooLarge = errors.New("item exceeds cache capacity")
	ErrClosed       = errors.New("cache is closed")
)

// Stats reports cache usage.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64 // bytes held
	Capacity  int64 // bytes allowed
	Items     int
}

// HitRate is the fraction of lookups that were hits.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s Stats) String() string {
	return fmt.Sprintf("%d items, %s of %s, %.0f%% hits",
		s.Items,
		humanize.Bytes(uint64(max(s.Size, 0))),
		humanize.Bytes(uint64(max(s.Capacity, 0))),
		s.HitRate()*100)
}
