package index

import (
	"os"

	"github.com/viant/bintly"
)

// snapshotMagic guards against loading a sidecar written by an
// incompatible version of this cache.
const snapshotMagic = "containerfs-cache-v1"

// Save writes the cache's current contents to path as a bintly-encoded
// snapshot. The snapshot is advisory: a missing or corrupt sidecar only
// costs a cold cache, never correctness, since every entry is
// re-validated against the store on first use.
func (c *Cache) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	writers := bintly.NewWriters()
	w := writers.Get()
	defer writers.Put(w)

	w.String(snapshotMagic)
	w.Int(len(c.data))
	for key, e := range c.data {
		w.Uint64(key)
		w.String(e.name)
		w.Int64(e.offset)
	}

	return os.WriteFile(path, w.Bytes(), 0o644)
}

// LoadInto replaces c's contents with the snapshot stored at path. A
// missing file is not an error: the cache is left unchanged. A
// malformed snapshot is discarded rather than partially applied.
func (c *Cache) LoadInto(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	readers := bintly.NewReaders()
	r := readers.Get()
	defer readers.Put(r)
	if err := r.FromBytes(raw); err != nil {
		return err
	}

	var magic string
	r.String(&magic)
	if magic != snapshotMagic {
		return nil
	}

	var n int
	r.Int(&n)
	data := make(map[uint64]entry, n)
	for i := 0; i < n; i++ {
		var key uint64
		var name string
		var offset int64
		r.Uint64(&key)
		r.String(&name)
		r.Int64(&offset)
		data[key] = entry{name: name, offset: offset}
	}

	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	return nil
}
