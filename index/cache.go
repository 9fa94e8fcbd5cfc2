// Package index implements an optional name->offset directory cache
// that accelerates the store's forward scan. The driver clears it on
// every overwrite, delete, defragment, and format; plain appends
// (create, copy, download) do not clear it but add the new record's
// offset with Put.
package index

import (
	"sync"

	"github.com/minio/highwayhash"
)

// cacheKey is fixed at package init; it need not be secret (the cache
// never leaves the process), only stable for the process's lifetime and
// exactly highwayhash.Size (32) bytes long.
var cacheKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// entry records the name an offset was last known to hold, so a hash
// collision (or a stale slot) is always caught on lookup.
type entry struct {
	name   string
	offset int64
}

// Cache is a best-effort name->offset accelerator. A miss or a
// validation failure is never an error: callers fall back to a full
// scan and repopulate the cache with Put.
type Cache struct {
	mu   sync.RWMutex
	data map[uint64]entry
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{data: make(map[uint64]entry)}
}

// hash derives the HighwayHash-64 of name. An error here means cacheKey
// itself is malformed; callers treat it the same as a miss rather than
// letting it propagate as a correctness failure.
func hash(name string) (uint64, error) {
	h, err := highwayhash.New64(cacheKey)
	if err != nil {
		return 0, err
	}
	_, err = h.Write([]byte(name))
	if err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Lookup returns the cached offset for name, and whether it was found.
// A caller must still validate the record at that offset is live and
// named name before trusting it: the cache only narrows the scan, it
// never substitutes for that validation.
func (c *Cache) Lookup(name string) (int64, bool) {
	key, err := hash(name)
	if err != nil {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.data[key]
	if !ok || e.name != name {
		return 0, false
	}
	return e.offset, true
}

// Put records name's current offset. A hashing failure is silently
// ignored: the entry is simply never cached, and later Lookups for name
// fall back to a full scan.
func (c *Cache) Put(name string, offset int64) {
	key, err := hash(name)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry{name: name, offset: offset}
}

// Invalidate clears the entire cache. The driver calls it on every
// overwrite, delete, defragment, and format, since any of those can
// change offsets this cache has recorded. Plain appends do not call
// it; the driver records the new offset with Put instead.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[uint64]entry)
}

// Len reports the number of cached entries (diagnostics only).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
