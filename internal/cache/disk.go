package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// compressThreshold is the smallest value worth compressing.
const compressThreshold = 1024

const (
	rawExt = ".pcm"
	zstExt = ".pcm.zst"
)

// DiskCache keeps values as files under a directory. Values larger than
// compressThreshold are stored zstd compressed. When the directory grows past
// its capacity the least recently used files are removed.
type DiskCache struct {
	mu       sync.Mutex
	dir      string
	capacity int64
	size     int64
	index    map[string]*diskEntry // by hashed name
	stats    Stats

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

type diskEntry struct {
	path       string
	size       int64
	lastAccess time.Time
}

// NewDiskCache opens (creating if needed) a cache in dir. Files already in dir
// are adopted so the cache survives restarts.
func NewDiskCache(dir string, capacity int64) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		encoder:  enc,
		decoder:  dec,
	}
	if err := dc.scan(); err != nil {
		return nil, err
	}
	return dc, nil
}

func (dc *DiskCache) scan() error {
	entries, err := os.ReadDir(dc.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, rawExt) || strings.HasSuffix(name, zstExt)) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		hash := strings.TrimSuffix(strings.TrimSuffix(name, zstExt), rawExt)
		dc.index[hash] = &diskEntry{
			path:       filepath.Join(dc.dir, name),
			size:       info.Size(),
			lastAccess: info.ModTime(),
		}
		dc.size += info.Size()
	}
	return nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	h := hashKey(key)
	entry, ok := dc.index[h]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.path)
	if err == nil && strings.HasSuffix(entry.path, zstExt) {
		data, err = dc.decoder.DecodeAll(data, nil)
	}
	if err != nil {
		dc.drop(h)
		dc.stats.Misses++
		return nil, false
	}

	now := time.Now()
	entry.lastAccess = now
	_ = os.Chtimes(entry.path, now, now)
	dc.stats.Hits++
	return data, true
}

func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	data, ext := value, rawExt
	if len(value) > compressThreshold {
		if z := dc.encoder.EncodeAll(value, nil); len(z) < len(value) {
			data, ext = z, zstExt
		}
	}
	n := int64(len(data))
	if n > dc.capacity {
		return ErrItemTooLarge
	}

	h := hashKey(key)
	dc.drop(h)
	for dc.size+n > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	path := filepath.Join(dc.dir, h+ext)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing cache file: %w", err)
	}

	dc.index[h] = &diskEntry{path: path, size: n, lastAccess: time.Now()}
	dc.size += n
	return nil
}

func (dc *DiskCache) Delete(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.drop(hashKey(key))
}

func (dc *DiskCache) drop(h string) {
	entry, ok := dc.index[h]
	if !ok {
		return
	}
	_ = os.Remove(entry.path)
	dc.size -= entry.size
	delete(dc.index, h)
}

func (dc *DiskCache) evictOldest() {
	hashes := make([]string, 0, len(dc.index))
	for h := range dc.index {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return dc.index[hashes[i]].lastAccess.Before(dc.index[hashes[j]].lastAccess)
	})
	dc.drop(hashes[0])
	dc.stats.Evictions++
}

func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Size = dc.size
	s.Capacity = dc.capacity
	s.Items = len(dc.index)
	return s
}

// Close releases the zstd codecs.
func (dc *DiskCache) Close() error {
	dc.decoder.Close()
	return dc.encoder.Close()
}
