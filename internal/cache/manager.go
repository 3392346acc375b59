package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"
)

// Config sizes the two cache tiers. An empty Dir disables the disk tier.
type Config struct {
	MemoryBytes int64
	DiskBytes   int64
	Dir         string
}

// DefaultConfig keeps a few pages in memory and a few hundred on disk.
func DefaultConfig(dir string) Config {
	return Config{
		MemoryBytes: 32 << 20,
		DiskBytes:   512 << 20,
		Dir:         dir,
	}
}

// Manager looks values up in memory first and then on disk, promoting disk
// hits into memory.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache
}

func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{memory: NewMemoryCache(cfg.MemoryBytes)}
	if cfg.Dir != "" {
		d, err := NewDiskCache(cfg.Dir, cfg.DiskBytes)
		if err != nil {
			return nil, err
		}
		m.disk = d
		log.Debug("audio cache opened", "dir", cfg.Dir, "stats", d.Stats())
	}
	return m, nil
}

func (m *Manager) Get(key string) ([]byte, bool) {
	if v, ok := m.memory.Get(key); ok {
		return v, true
	}
	if m.disk == nil {
		return nil, false
	}
	v, ok := m.disk.Get(key)
	if ok {
		_ = m.memory.Put(key, v)
	}
	return v, ok
}

// Put stores value in both tiers. A value too large for memory is still
// written to disk.
func (m *Manager) Put(key string, value []byte) error {
	memErr := m.memory.Put(key, value)
	if m.disk == nil {
		return memErr
	}
	if err := m.disk.Put(key, value); err != nil {
		return fmt.Errorf("disk cache: %w", err)
	}
	return nil
}

// Stats returns memory and disk statistics. Disk stats are zero when the
// disk tier is disabled.
func (m *Manager) Stats() (memory, disk Stats) {
	memory = m.memory.Stats()
	if m.disk != nil {
		disk = m.disk.Stats()
	}
	return memory, disk
}

func (m *Manager) Close() error {
	memory, disk := m.Stats()
	log.Debug("audio cache", "memory", memory, "disk", disk)
	if m.disk == nil {
		return nil
	}
	return m.disk.Close()
}

// Key builds a cache key for a piece of synthesized speech. Text is
// normalised so visually identical input shares an entry.
func Key(text, voice string, rate float64) string {
	return strings.Join([]string{
		voice,
		strconv.FormatFloat(rate, 'f', 2, 64),
		norm.NFC.String(strings.TrimSpace(text)),
	}, "\x00")
}
