package store

import (
	"fmt"
	"io"
)

// CreateFile appends a new record for name with the given content. It
// does not check for an existing live record with the same name (that
// is the contract of OverwriteFile): callers are expected to use
// CreateFile only for names not already present, mirroring the
// original driver's plain "create" semantics.
func (s *Store) CreateFile(name string, content []byte) error {
	_, err := s.CreateFileOffset(name, content)
	return err
}

// CreateFileOffset behaves like CreateFile but also returns the
// record-area-relative offset the new record was written at, so a
// caller maintaining a directory cache can populate it without a scan.
func (s *Store) CreateFileOffset(name string, content []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.appendRecordLocked(name, content)
}

// appendRecordLocked writes one record at append_cursor and advances
// the cursor. The caller must hold the exclusive lock and have already
// performed (or be relying on this call to perform) the admission
// check: this call itself re-validates admission so it is never
// bypassed by a caller forgetting the pre-check (§5: "a check outside
// the lock is advisory only").
func (s *Store) appendRecordLocked(name string, content []byte) (int64, error) {
	nameLen := int32(len(name))
	contentLen := int32(len(content))
	total := admissionSize(len(name), len(content))

	if nameLen <= 0 {
		return 0, fmt.Errorf("%w: name must be non-empty", ErrInvalidArgument)
	}
	if !s.isEnoughSpace(total) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientSpace, total, s.recordAreaCapacity()-int64(s.appendCursor))
	}

	hdr, err := encodeHeader(nameLen, contentLen, tombstoneLive)
	if err != nil {
		return 0, err
	}

	rel := int64(s.appendCursor)
	abs := prefixSize + rel

	if _, err := s.f.WriteAt(hdr[:], abs); err != nil {
		return 0, fmt.Errorf("%w: write header: %v", ErrIO, err)
	}
	if _, err := s.f.WriteAt([]byte(name), abs+headerSize); err != nil {
		return 0, fmt.Errorf("%w: write name: %v", ErrIO, err)
	}
	if len(content) > 0 {
		if _, err := s.f.WriteAt(content, abs+headerSize+int64(nameLen)); err != nil {
			return 0, fmt.Errorf("%w: write content: %v", ErrIO, err)
		}
	}

	s.appendCursor += int32(total)
	if err := s.writePrefix(); err != nil {
		return 0, err
	}
	return rel, nil
}

// streamRecordLocked writes a record header with the given known
// content length, then copies exactly length bytes from r directly
// into the record area (no intermediate buffer), advancing the cursor
// only after the full payload has landed. On any failure mid-stream,
// append_cursor is left unchanged (still pointing at the prior record
// boundary): the partial bytes beyond the old cursor are simply
// unreachable. The caller must hold the exclusive lock.
func (s *Store) streamRecordLocked(name string, length int64, r io.Reader) (int64, error) {
	nameLen := int32(len(name))
	total := admissionSize(len(name), int(length))

	if nameLen <= 0 {
		return 0, fmt.Errorf("%w: name must be non-empty", ErrInvalidArgument)
	}
	if length < 0 || length > int64(int32(1<<31-1)) {
		return 0, fmt.Errorf("%w: content length out of range: %d", ErrInvalidArgument, length)
	}
	if !s.isEnoughSpace(total) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientSpace, total, s.recordAreaCapacity()-int64(s.appendCursor))
	}

	hdr, err := encodeHeader(nameLen, int32(length), tombstoneLive)
	if err != nil {
		return 0, err
	}

	rel := int64(s.appendCursor)
	abs := prefixSize + rel

	if _, err := s.f.WriteAt(hdr[:], abs); err != nil {
		return 0, fmt.Errorf("%w: write header: %v", ErrIO, err)
	}
	if _, err := s.f.WriteAt([]byte(name), abs+headerSize); err != nil {
		return 0, fmt.Errorf("%w: write name: %v", ErrIO, err)
	}

	contentOff := abs + headerSize + int64(nameLen)
	w := io.NewOffsetWriter(s.f, contentOff)
	n, err := io.CopyN(w, r, length)
	if err != nil {
		return 0, fmt.Errorf("%w: stream content (wrote %d of %d): %v", ErrIO, n, length, err)
	}

	s.appendCursor += int32(total)
	if err := s.writePrefix(); err != nil {
		return 0, err
	}
	return rel, nil
}

// StreamCreate appends a new record whose content is read directly from
// r, for a source of known length (the ambient-OS ingestion path,
// §4.5 "Copy from ambient source").
func (s *Store) StreamCreate(name string, length int64, r io.Reader) error {
	_, err := s.StreamCreateOffset(name, length, r)
	return err
}

// StreamCreateOffset behaves like StreamCreate but also returns the
// offset the new record was written at (see CreateFileOffset).
func (s *Store) StreamCreateOffset(name string, length int64, r io.Reader) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.streamRecordLocked(name, length, r)
}

// OverwriteFile replaces any existing live record named name with new
// content, or creates one if none exists (§4.5 "Overwrite"). The
// existing live record, if any, is tombstoned in place before the new
// record is appended, so readers never observe two live records with
// the same name.
func (s *Store) OverwriteFile(name string, content []byte) error {
	_, err := s.OverwriteFileOffset(name, content)
	return err
}

// OverwriteFileOffset behaves like OverwriteFile but also returns the
// offset the new record was written at (see CreateFileOffset).
func (s *Store) OverwriteFileOffset(name string, content []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	existing, ok, err := s.locateLive(name)
	if err != nil {
		return 0, err
	}
	if ok {
		if err := s.tombstoneLocked(existing.relOffset); err != nil {
			return 0, err
		}
	}

	return s.appendRecordLocked(name, content)
}

// tombstoneLocked flips a record's tombstone byte in place. Monotonic:
// callers only ever transition live -> removed.
func (s *Store) tombstoneLocked(relOffset int64) error {
	abs := prefixSize + relOffset
	if _, err := s.f.WriteAt([]byte{tombstoneRemoved}, tombstoneOffset(abs)); err != nil {
		return fmt.Errorf("%w: tombstone write: %v", ErrIO, err)
	}
	return nil
}

// DeleteFile tombstones the live record named name. It is a no-op if no
// live record with that name exists (idempotent delete, P7).
func (s *Store) DeleteFile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	existing, ok, err := s.locateLive(name)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return s.tombstoneLocked(existing.relOffset)
}
