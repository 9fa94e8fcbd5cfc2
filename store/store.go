// Package store implements the on-disk engine of the flat, single-file
// container filesystem: record codec, backing-file handle, allocator,
// directory scanner, write/read paths, defragmenter, lifecycle and the
// concurrency discipline that makes all of it safe under concurrent
// callers. It is grounded on the append-only, segment-based value store
// in github.com/viant/embedius/vectordb/storage/mmapstore, narrowed to a
// single fixed-capacity file with no checksums, no segmentation and no
// mmap.
package store

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"sync"
)

// prefixSize is the fixed size of the backing file's reserved prefix:
// capacity_total (4 bytes) + append_cursor (4 bytes).
const prefixSize = 8

// Store is a fixed-capacity, single-file container filesystem. The zero
// value is not usable; construct one with Open.
type Store struct {
	// mu is the single read-write lock gating the whole backing file.
	// Shared (reader) operations, and the entire lifetime of an open
	// read channel, RLock; exclusive (writer) operations Lock.
	mu sync.RWMutex

	f    *os.File
	path string

	capacityTotal int32
	appendCursor  int32

	logger *log.Logger
	closed bool
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger overrides the default logger (log.Default()), treating
// logging as an injected sink rather than a package-level global.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens the backing file at path, creating it at the given
// capacity if absent. capacity is the total file size including the
// 8-byte prefix; it must be greater than prefixSize. If the file
// already exists, its prefix is trusted and capacity is only checked
// against that lower bound.
func Open(path string, capacity int32, opts ...Option) (*Store, error) {
	if capacity <= prefixSize {
		return nil, fmt.Errorf("%w: capacity must exceed %d bytes, got %d", ErrInvalidArgument, prefixSize, capacity)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, path, err)
	}

	s := &Store{f: f, path: path, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.advisoryLock()

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", ErrStorageUnavailable, path, err)
	}

	if info.Size() >= prefixSize {
		if err := s.readPrefix(); err != nil {
			_ = f.Close()
			return nil, err
		}
	} else {
		s.capacityTotal = capacity
		s.appendCursor = 0
		if err := s.writePrefix(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	s.logger.Printf("store: opened %s (capacity=%d cursor=%d)", path, s.capacityTotal, s.appendCursor)
	return s, nil
}

// Close flushes and releases the backing file. Concurrent callers must
// have released all locks (in particular, all open read channels must
// already be closed).
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync on close: %v", ErrIO, err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrIO, err)
	}
	return nil
}

// readPrefix loads capacity_total and append_cursor from the first 8
// bytes of the backing file, recovering state on reopen.
func (s *Store) readPrefix() error {
	var buf [prefixSize]byte
	if _, err := s.f.ReadAt(buf[:], 0); err != nil {
		return fmt.Errorf("%w: read prefix: %v", ErrIO, err)
	}
	s.capacityTotal = int32(binary.BigEndian.Uint32(buf[0:4]))
	s.appendCursor = int32(binary.BigEndian.Uint32(buf[4:8]))
	if s.appendCursor < 0 || int64(s.appendCursor) > int64(s.capacityTotal)-prefixSize {
		return fmt.Errorf("%w: corrupt prefix: cursor %d out of range for capacity %d", ErrIO, s.appendCursor, s.capacityTotal)
	}
	return nil
}

// writePrefix persists capacity_total and append_cursor, then flushes
// the file so the prefix write is durable before the caller proceeds.
func (s *Store) writePrefix() error {
	var buf [prefixSize]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(s.capacityTotal))
	binary.BigEndian.PutUint32(buf[4:8], uint32(s.appendCursor))
	if _, err := s.f.WriteAt(buf[:], 0); err != nil {
		return fmt.Errorf("%w: write prefix: %v", ErrIO, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync prefix: %v", ErrIO, err)
	}
	return nil
}

// recordAreaCapacity is (CAP - 8), the total size of the record area.
func (s *Store) recordAreaCapacity() int64 {
	return int64(s.capacityTotal) - prefixSize
}

// AvailableSpace returns bytes free in the record area. It is a
// shared (reader) operation.
func (s *Store) AvailableSpace() (int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return int32(s.recordAreaCapacity() - int64(s.appendCursor)), nil
}

// Format resets append_cursor to 0 while preserving capacity_total.
// It does not zero the record area: readers are gated by append_cursor,
// so stale bytes beyond it are unreachable. Any open read channel must
// be closed first; Format holds the exclusive lock so it also blocks
// until in-flight readers complete.
func (s *Store) Format() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.appendCursor = 0
	if err := s.writePrefix(); err != nil {
		return err
	}
	s.logger.Printf("store: formatted %s", s.path)
	return nil
}

