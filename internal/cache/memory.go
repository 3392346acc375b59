package cache

import (
	"container/list"
	"sync"
)

// MemoryCache is a size-bounded LRU cache held in memory.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	items    map[string]*list.Element
	order    *list.List // front is most recently used
	stats    Stats
}

type memoryEntry struct {
	key   string
	value []byte
}

// NewMemoryCache returns a cache holding at most capacity bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*memoryEntry).value, true
}

func (c *MemoryCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(value))
	if n > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	for c.size+n > c.capacity && c.order.Len() > 0 {
		c.remove(c.order.Back())
		c.stats.Evictions++
	}

	c.items[key] = c.order.PushFront(&memoryEntry{key: key, value: value})
	c.size += n
	return nil
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

func (c *MemoryCache) remove(elem *list.Element) {
	e := elem.Value.(*memoryEntry)
	c.order.Remove(elem)
	delete(c.items, e.key)
	c.size -= int64(len(e.value))
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.size
	s.Capacity = c.capacity
	s.Items = c.order.Len()
	return s
}
