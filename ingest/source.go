// Package ingest provides byte-source adapters that feed content into
// the container filesystem's write path (CreateFile/StreamCreate),
// mirroring the collaborator boundary the original driver delegates to
// for copyExistingFile and downloadAndSaveFile: ambient-OS file access
// and HTTP download are external to the core's correctness surface.
package ingest

import "io"

// Source is a named, optionally length-known byte source that can be
// streamed into a container file. NameHint supplies the default file
// name a caller should use when one was not given explicitly.
type Source interface {
	io.Reader
	NameHint() string
	LengthHint() (int64, bool)
}
