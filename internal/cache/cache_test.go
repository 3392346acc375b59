package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemoryCacheLRU(t *testing.T) {
	c := NewMemoryCache(10)

	_ = c.Put("a", []byte("aaaa"))
	_ = c.Put("b", []byte("bbbb"))
	if _, ok := c.Get("a"); !ok { // a is now most recent
		t.Fatal("a missing")
	}
	_ = c.Put("c", []byte("cccc")) // evicts b

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s missing", k)
		}
	}

	s := c.Stats()
	if s.Items != 2 || s.Size != 8 || s.Evictions != 1 {
		t.Errorf("Stats() = %+v", s)
	}

	if err := c.Put("huge", make([]byte, 11)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put(huge) error = %v", err)
	}
}

func TestMemoryCacheReplace(t *testing.T) {
	c := NewMemoryCache(10)
	_ = c.Put("a", []byte("12345678"))
	_ = c.Put("a", []byte("12"))

	if v, _ := c.Get("a"); string(v) != "12" {
		t.Errorf("Get(a) = %q", v)
	}
	if s := c.Stats(); s.Size != 2 {
		t.Errorf("Size = %d, want 2", s.Size)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	tests := []struct {
		name  string
		value []byte
		ext   string
	}{
		{"small stays raw", []byte("tiny"), rawExt},
		{"large compresses", bytes.Repeat([]byte{0, 1, 2, 3}, 4096), zstExt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := dc.Put(tt.name, tt.value); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, ok := dc.Get(tt.name)
			if !ok || !bytes.Equal(got, tt.value) {
				t.Fatalf("Get() returned %d bytes, ok=%v", len(got), ok)
			}
			if _, err := os.Stat(filepath.Join(dir, hashKey(tt.name)+tt.ext)); err != nil {
				t.Errorf("expected %s file: %v", tt.ext, err)
			}
		})
	}
}

func TestDiskCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dc, _ := NewDiskCache(dir, 1<<20)
	value := []byte(strings.Repeat("needle and yarn ", 200))
	_ = dc.Put("page", value)
	dc.Close()

	dc, err := NewDiskCache(dir, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	got, ok := dc.Get("page")
	if !ok || !bytes.Equal(got, value) {
		t.Error("value lost across reopen")
	}
}

func TestDiskCacheEviction(t *testing.T) {
	dc, _ := NewDiskCache(t.TempDir(), 100)
	defer dc.Close()

	_ = dc.Put("a", bytes.Repeat([]byte("a"), 60))
	_ = dc.Put("b", bytes.Repeat([]byte("b"), 60))

	if _, ok := dc.Get("a"); ok {
		t.Error("a should have been evicted")
	}
	if _, ok := dc.Get("b"); !ok {
		t.Error("b missing")
	}
	if s := dc.Stats(); s.Size > 100 || s.Items != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestManagerPromotes(t *testing.T) {
	m, err := NewManager(Config{MemoryBytes: 1 << 10, DiskBytes: 1 << 20, Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	_ = m.disk.Put("k", []byte("v"))
	if v, ok := m.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("Get(k) = %q, %v", v, ok)
	}
	if _, ok := m.memory.Get("k"); !ok {
		t.Error("disk hit was not promoted to memory")
	}

	// Too big for memory, still cached on disk.
	big := make([]byte, 2<<10)
	if err := m.Put("big", big); err != nil {
		t.Fatalf("Put(big) error = %v", err)
	}
	if _, ok := m.Get("big"); !ok {
		t.Error("big value missing")
	}
}

func TestKey(t *testing.T) {
	// "é" precomposed and decomposed share a key.
	a := Key("café", "en", 1)
	b := Key("café ", "en", 1.0)
	if a != b {
		t.Error("normalisation did not unify keys")
	}
	if Key("x", "en", 1) == Key("x", "en", 1.5) {
		t.Error("rate not part of key")
	}
}
