package store

import "errors"

// Sentinel errors returned by the store. Most call sites wrap them
// with context via %w, so callers match them with errors.Is.
var (
	// ErrInsufficientSpace is returned when an operation's admission
	// check fails against the record area's remaining free space.
	ErrInsufficientSpace = errors.New("store: insufficient space")

	// ErrFileNotFound is returned when a read operation targets a name
	// with no live record.
	ErrFileNotFound = errors.New("store: file not found")

	// ErrInvalidArgument is returned for malformed input: empty name,
	// negative or out-of-range lengths, or a capacity too small for the
	// prefix. Ingestion failures (non-regular path, bad URI, non-200
	// response) use the ingest package's own errors.
	ErrInvalidArgument = errors.New("store: invalid argument")

	// ErrIO wraps underlying storage or network failures.
	ErrIO = errors.New("store: io failure")

	// ErrStorageUnavailable is returned when the backing file cannot be
	// opened, read, or written at construction time.
	ErrStorageUnavailable = errors.New("store: storage unavailable")

	// ErrClosed is returned once the store has been closed.
	ErrClosed = errors.New("store: closed")
)
