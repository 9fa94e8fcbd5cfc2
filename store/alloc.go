package store

// isEnoughSpace reports whether n bytes (the record's total on-disk
// size, header included) fit in the remaining free space of the record
// area. It is a pure function of append_cursor and capacity; the
// caller must hold the exclusive lock so the check and the subsequent
// append are atomic with respect to other writers.
func (s *Store) isEnoughSpace(n int64) bool {
	return n <= s.recordAreaCapacity()-int64(s.appendCursor)
}

// admissionSize is the total on-disk footprint of a record: header,
// name and content together. Every admission check must be made
// against this total, never against the payload length alone.
func admissionSize(nameLen, contentLen int) int64 {
	return headerSize + int64(nameLen) + int64(contentLen)
}
