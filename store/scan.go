package store

import "fmt"

// scannedRecord is one record surfaced by a forward scan, with the
// record-area-relative offset of its header.
type scannedRecord struct {
	relOffset int64
	header    recordHeader
	name      string
}

// scan walks the record area from offset 0 up to append_cursor,
// decoding each record in turn. visit returns stop=true to end the
// scan early. The caller must hold at least the shared lock.
func (s *Store) scan(visit func(r scannedRecord) (stop bool, err error)) error {
	var rel int64
	cursor := int64(s.appendCursor)
	for rel < cursor {
		abs := prefixSize + rel

		var hbuf [headerSize]byte
		if _, err := s.f.ReadAt(hbuf[:], abs); err != nil {
			return fmt.Errorf("%w: read record header at %d: %v", ErrIO, rel, err)
		}
		h, err := decodeHeader(hbuf[:])
		if err != nil {
			return err
		}

		nameBuf := make([]byte, h.nameLen)
		if _, err := s.f.ReadAt(nameBuf, abs+headerSize); err != nil {
			return fmt.Errorf("%w: read record name at %d: %v", ErrIO, rel, err)
		}

		stop, err := visit(scannedRecord{relOffset: rel, header: h, name: string(nameBuf)})
		if err != nil {
			return err
		}
		if stop {
			return nil
		}

		rel += h.onDiskSize()
	}
	return nil
}

// locateLive resolves name to its first live record, by forward scan.
// CreateFile does not check for an existing name, so later live records
// with the same name can exist; they are not returned. The caller must
// hold at least the shared lock.
func (s *Store) locateLive(name string) (scannedRecord, bool, error) {
	var found scannedRecord
	ok := false
	err := s.scan(func(r scannedRecord) (bool, error) {
		if r.header.tombstone == tombstoneLive && r.name == name {
			found = r
			ok = true
			return true, nil
		}
		return false, nil
	})
	return found, ok, err
}

// listLive returns the names of all live records in scan order. The
// caller must hold at least the shared lock.
func (s *Store) listLive() ([]string, error) {
	var names []string
	err := s.scan(func(r scannedRecord) (bool, error) {
		if r.header.tombstone == tombstoneLive {
			names = append(names, r.name)
		}
		return false, nil
	})
	return names, err
}

// ListFiles returns the names of all live records in scan order (append
// order for records never touched by defragment). Shared (reader)
// operation.
func (s *Store) ListFiles() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.listLive()
}

// LocateOffset returns the record-area-relative offset of name's live
// record, for callers maintaining a directory cache. Shared (reader)
// operation.
func (s *Store) LocateOffset(name string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, false, ErrClosed
	}
	rec, ok, err := s.locateLive(name)
	if err != nil || !ok {
		return 0, ok, err
	}
	return rec.relOffset, true, nil
}

// FileExists reports whether a live record with name exists. Shared
// (reader) operation, short-circuited to the first hit.
func (s *Store) FileExists(name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	_, ok, err := s.locateLive(name)
	return ok, err
}
