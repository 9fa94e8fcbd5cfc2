package store

import "fmt"

// Defragment reclaims space held by tombstoned records by rewriting the
// record area in place: each live record is copied to the running total
// of live-record sizes seen so far, preserving scan order. Because
// each record's destination offset is always <= its source offset, a
// single forward pass with read-then-write per record is safe even
// though source and destination regions can overlap.
func (s *Store) Defragment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	var running int64
	err := s.scan(func(r scannedRecord) (bool, error) {
		if r.header.tombstone != tombstoneLive {
			return false, nil
		}

		size := r.header.onDiskSize()
		srcAbs := prefixSize + r.relOffset
		dstAbs := prefixSize + running

		if srcAbs != dstAbs {
			buf := make([]byte, size)
			if _, err := s.f.ReadAt(buf, srcAbs); err != nil {
				return false, fmt.Errorf("%w: defragment read at %d: %v", ErrIO, srcAbs, err)
			}
			if _, err := s.f.WriteAt(buf, dstAbs); err != nil {
				return false, fmt.Errorf("%w: defragment write at %d: %v", ErrIO, dstAbs, err)
			}
		}

		running += size
		return false, nil
	})
	if err != nil {
		return err
	}

	s.appendCursor = int32(running)
	if err := s.writePrefix(); err != nil {
		return err
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync after defragment: %v", ErrIO, err)
	}

	s.logger.Printf("store: defragmented %s (live bytes=%d)", s.path, running)
	return nil
}
