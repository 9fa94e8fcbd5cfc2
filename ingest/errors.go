package ingest

import "errors"

var (
	// ErrSourceNotFound is returned when an ambient path or remote URI
	// does not resolve to an existing object.
	ErrSourceNotFound = errors.New("ingest: source not found")
	// ErrNotRegularFile is returned when copyFromPath is given a
	// directory or other non-regular-file path.
	ErrNotRegularFile = errors.New("ingest: not a regular file")
	// ErrBadStatus is returned when a download responds with anything
	// other than HTTP 200.
	ErrBadStatus = errors.New("ingest: non-200 response")
	// ErrAmbiguousFilename is returned when a Content-Disposition
	// header cannot be unambiguously reduced to a filename.
	ErrAmbiguousFilename = errors.New("ingest: ambiguous filename in Content-Disposition")
)
