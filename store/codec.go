package store

import (
	"encoding/binary"
	"fmt"
)

// headerSize is the fixed on-disk size of a record header:
// name_len (4) + content_len (4) + tombstone (1).
const headerSize = 9

const (
	tombstoneLive    byte = 0x00
	tombstoneRemoved byte = 0x01
)

// recordHeader is the decoded form of a record's fixed 9-byte prefix.
type recordHeader struct {
	nameLen    int32
	contentLen int32
	tombstone  byte
}

// onDiskSize returns the total bytes a record with this header occupies,
// header included.
func (h recordHeader) onDiskSize() int64 {
	return headerSize + int64(h.nameLen) + int64(h.contentLen)
}

// encodeHeader marshals a record header into a fresh 9-byte buffer. It
// rejects nameLen <= 0 and contentLen < 0, per the codec's contract.
func encodeHeader(nameLen, contentLen int32, tombstone byte) ([headerSize]byte, error) {
	var buf [headerSize]byte
	if nameLen <= 0 {
		return buf, fmt.Errorf("%w: name_len must be positive, got %d", ErrInvalidArgument, nameLen)
	}
	if contentLen < 0 {
		return buf, fmt.Errorf("%w: content_len must be non-negative, got %d", ErrInvalidArgument, contentLen)
	}
	binary.BigEndian.PutUint32(buf[0:4], uint32(nameLen))
	binary.BigEndian.PutUint32(buf[4:8], uint32(contentLen))
	buf[8] = tombstone
	return buf, nil
}

// decodeHeader parses a 9-byte buffer into a recordHeader.
func decodeHeader(buf []byte) (recordHeader, error) {
	if len(buf) != headerSize {
		return recordHeader{}, fmt.Errorf("%w: header must be %d bytes, got %d", ErrIO, headerSize, len(buf))
	}
	h := recordHeader{
		nameLen:    int32(binary.BigEndian.Uint32(buf[0:4])),
		contentLen: int32(binary.BigEndian.Uint32(buf[4:8])),
		tombstone:  buf[8],
	}
	if h.nameLen <= 0 {
		return recordHeader{}, fmt.Errorf("%w: decoded name_len not positive: %d", ErrIO, h.nameLen)
	}
	if h.contentLen < 0 {
		return recordHeader{}, fmt.Errorf("%w: decoded content_len negative: %d", ErrIO, h.contentLen)
	}
	return h, nil
}

// tombstoneOffset returns the absolute file offset of a record's
// tombstone byte, given the absolute offset of the record's header.
func tombstoneOffset(recordOffset int64) int64 {
	return recordOffset + 8
}
