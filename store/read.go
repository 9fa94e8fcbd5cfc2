package store

import (
	"fmt"
	"io"
)

// ReadFile returns a fresh copy of the named live record's content.
// Shared (reader) operation.
func (s *Store) ReadFile(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	rec, ok, err := s.locateLive(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFileNotFound
	}

	abs := prefixSize + rec.relOffset + headerSize + int64(rec.header.nameLen)
	buf := make([]byte, rec.header.contentLen)
	if len(buf) > 0 {
		if _, err := s.f.ReadAt(buf, abs); err != nil {
			return nil, fmt.Errorf("%w: read content: %v", ErrIO, err)
		}
	}
	return buf, nil
}

// ReadFileAt attempts the fast path a directory cache enables: it reads
// the record header directly at offsetHint (relative to the record
// area) and returns its content only if that record is live and named
// name. A false return (with a nil error) means the hint was stale or
// never valid; the caller must fall back to ReadFile's full scan. A
// mismatch is treated as a plain miss, not an error.
func (s *Store) ReadFileAt(name string, offsetHint int64) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	if offsetHint < 0 || offsetHint >= int64(s.appendCursor) {
		return nil, false, nil
	}

	abs := prefixSize + offsetHint
	var hbuf [headerSize]byte
	if _, err := s.f.ReadAt(hbuf[:], abs); err != nil {
		return nil, false, nil
	}
	h, err := decodeHeader(hbuf[:])
	if err != nil {
		return nil, false, nil
	}
	if h.tombstone != tombstoneLive {
		return nil, false, nil
	}
	nameBuf := make([]byte, h.nameLen)
	if _, err := s.f.ReadAt(nameBuf, abs+headerSize); err != nil {
		return nil, false, nil
	}
	if string(nameBuf) != name {
		return nil, false, nil
	}

	content := make([]byte, h.contentLen)
	if len(content) > 0 {
		if _, err := s.f.ReadAt(content, abs+headerSize+int64(h.nameLen)); err != nil {
			return nil, false, fmt.Errorf("%w: read content: %v", ErrIO, err)
		}
	}
	return content, true, nil
}

// OpenReadChannel locates the live record named name and returns a
// streaming channel pinned to its content range. The shared lock is
// held for the entire lifetime of the channel (§5 option (a), the
// specified default): no writer may tombstone, move, or reclaim the
// record until Close is called.
func (s *Store) OpenReadChannel(name string) (*ReadChannel, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}

	rec, ok, err := s.locateLive(name)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	if !ok {
		s.mu.RUnlock()
		return nil, ErrFileNotFound
	}

	contentStart := prefixSize + rec.relOffset + headerSize + int64(rec.header.nameLen)
	return &ReadChannel{
		store: s,
		start: contentStart,
		size:  int64(rec.header.contentLen),
	}, nil
}

// ReadChannel is a stateful cursor over one live record's byte range.
// It supports positional reads into a caller-provided buffer of
// arbitrary size, correctly clamping at EOF, and is a weak view: while
// it is open, the pinned record cannot be reclaimed (see Store's
// locking discipline). Closing the channel releases that pin.
type ReadChannel struct {
	store  *Store
	start  int64 // absolute file offset of content start
	size   int64 // total content length
	pos    int64 // read cursor, relative to start
	closed bool
}

// Len returns the total content length of the pinned record.
func (c *ReadChannel) Len() int64 { return c.size }

// Read implements io.Reader. It reads into p starting at the channel's
// current position, clamps at the record's content end, and returns
// io.EOF once the position reaches the end.
func (c *ReadChannel) Read(p []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if c.pos >= c.size {
		return 0, io.EOF
	}
	remaining := c.size - c.pos
	want := int64(len(p))
	if want > remaining {
		want = remaining
	}
	if want == 0 {
		return 0, nil
	}
	n, err := c.store.f.ReadAt(p[:want], c.start+c.pos)
	c.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: channel read: %v", ErrIO, err)
	}
	if c.pos >= c.size {
		if n < int(want) {
			return n, fmt.Errorf("%w: short read from backing file", ErrIO)
		}
		return n, nil
	}
	return n, nil
}

// ReadAt performs a positional read relative to the start of the
// record's content, without disturbing the channel's sequential cursor.
func (c *ReadChannel) ReadAt(p []byte, off int64) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if off < 0 || off >= c.size {
		return 0, io.EOF
	}
	remaining := c.size - off
	want := int64(len(p))
	if want > remaining {
		want = remaining
	}
	n, err := c.store.f.ReadAt(p[:want], c.start+off)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: channel readAt: %v", ErrIO, err)
	}
	return n, nil
}

// Close releases the channel's pin on the record, unblocking any writer
// waiting for exclusive access (defragment, format, delete, overwrite).
func (c *ReadChannel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.store.mu.RUnlock()
	return nil
}

var _ io.Reader = (*ReadChannel)(nil)
