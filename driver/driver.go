// Package driver provides the facade a caller actually talks to: it
// wires together the on-disk store, the optional directory cache and
// the ambient-OS/HTTP ingestion adapters, mirroring the original
// FileSystemDriver's role as a thin orchestration layer over a
// FileSystem collaborator.
package driver

import (
	"context"
	"io"
	"log"

	"github.com/viant/containerfs/index"
	"github.com/viant/containerfs/ingest"
	"github.com/viant/containerfs/store"
)

// Driver orchestrates the backing store with optional acceleration and
// ingestion adapters. The zero value is not usable; construct one with
// Open.
type Driver struct {
	store *store.Store
	cache *index.Cache // nil when caching is disabled

	cachePath      string
	downloadSecret string
	logger         *log.Logger
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithCache enables the optional name->offset directory cache,
// persisted as a sidecar snapshot at snapshotPath (loaded on Open,
// saved on Close; empty snapshotPath disables persistence but keeps
// the in-memory accelerator).
func WithCache(snapshotPath string) Option {
	return func(d *Driver) {
		d.cache = index.New()
		d.cachePath = snapshotPath
	}
}

// WithDownloadSecret sets the bearer token DownloadAndSave presents to
// authenticated endpoints.
func WithDownloadSecret(token string) Option {
	return func(d *Driver) { d.downloadSecret = token }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// Open opens (or creates) the backing file at path with the given
// capacity and applies opts.
func Open(path string, capacity int32, opts ...Option) (*Driver, error) {
	s, err := store.Open(path, capacity)
	if err != nil {
		return nil, err
	}
	d := &Driver{store: s, logger: log.Default()}
	for _, opt := range opts {
		opt(d)
	}
	if d.cache != nil && d.cachePath != "" {
		if err := d.cache.LoadInto(d.cachePath); err != nil {
			d.logger.Printf("driver: cache snapshot %s not loaded: %v", d.cachePath, err)
		}
	}
	return d, nil
}

// Close persists the cache snapshot, if enabled, then closes the store.
func (d *Driver) Close() error {
	if d.cache != nil && d.cachePath != "" {
		if err := d.cache.Save(d.cachePath); err != nil {
			d.logger.Printf("driver: cache snapshot %s not saved: %v", d.cachePath, err)
		}
	}
	return d.store.Close()
}

func (d *Driver) invalidate() {
	if d.cache != nil {
		d.cache.Invalidate()
	}
}

// CreateFile creates an empty file.
func (d *Driver) CreateFile(name string) error {
	return d.CreateFileWithContent(name, nil)
}

// CreateFileWithContent creates name with the given content.
func (d *Driver) CreateFileWithContent(name string, content []byte) error {
	off, err := d.store.CreateFileOffset(name, content)
	if err != nil {
		return err
	}
	d.remember(name, off)
	return nil
}

// CopyFromPath ingests an ambient-OS file and appends it as a new
// record named after the path's base name.
func (d *Driver) CopyFromPath(ctx context.Context, path string) error {
	src, err := ingest.NewFileSource(ctx, path)
	if err != nil {
		return err
	}
	length, _ := src.LengthHint()
	off, err := d.store.StreamCreateOffset(src.NameHint(), length, src)
	if err != nil {
		return err
	}
	d.remember(src.NameHint(), off)
	return nil
}

// DownloadAndSave ingests a remote object over HTTP and appends it as
// a new record, named per the Content-Disposition/URI rules in
// ingest.NewHTTPSource.
func (d *Driver) DownloadAndSave(ctx context.Context, uri string) error {
	src, err := ingest.NewHTTPSource(ctx, uri, d.downloadSecret)
	if err != nil {
		return err
	}
	length, _ := src.LengthHint()
	off, err := d.store.StreamCreateOffset(src.NameHint(), length, src)
	if err != nil {
		return err
	}
	d.remember(src.NameHint(), off)
	return nil
}

// OverwriteFile replaces name's content, or creates it if absent.
func (d *Driver) OverwriteFile(name string, content []byte) error {
	off, err := d.store.OverwriteFileOffset(name, content)
	if err != nil {
		return err
	}
	// the old record, if any, is now tombstoned: clear it before
	// remembering the new offset. A racing reader that still finds the
	// stale entry gets a miss from ReadFileAt, which rejects tombstoned
	// records, and falls back to a full scan.
	d.invalidate()
	d.remember(name, off)
	return nil
}

// ReadFile returns name's full content. When the directory cache holds
// an offset for name, it is tried first; a miss or stale hint falls
// back to the store's full scan transparently.
func (d *Driver) ReadFile(name string) ([]byte, error) {
	if d.cache != nil {
		if off, ok := d.cache.Lookup(name); ok {
			if content, hit, err := d.store.ReadFileAt(name, off); err != nil {
				return nil, err
			} else if hit {
				return content, nil
			}
		}
	}
	content, err := d.store.ReadFile(name)
	if err == nil {
		if off, ok, lerr := d.store.LocateOffset(name); lerr == nil && ok {
			d.remember(name, off)
		}
	}
	return content, err
}

// remember records name's offset in the optional cache.
func (d *Driver) remember(name string, offset int64) {
	if d.cache != nil {
		d.cache.Put(name, offset)
	}
}

// OpenReadChannel opens a streaming read channel over name.
func (d *Driver) OpenReadChannel(name string) (io.ReadCloser, error) {
	ch, err := d.store.OpenReadChannel(name)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// DeleteFile tombstones name; a no-op if absent.
func (d *Driver) DeleteFile(name string) error {
	if err := d.store.DeleteFile(name); err != nil {
		return err
	}
	d.invalidate()
	return nil
}

// ListFiles returns live names in scan order.
func (d *Driver) ListFiles() ([]string, error) {
	return d.store.ListFiles()
}

// FileExists reports whether name has a live record.
func (d *Driver) FileExists(name string) (bool, error) {
	return d.store.FileExists(name)
}

// AvailableSpace returns bytes free in the record area.
func (d *Driver) AvailableSpace() (int32, error) {
	return d.store.AvailableSpace()
}

// Defragment reclaims tombstoned space.
func (d *Driver) Defragment() error {
	if err := d.store.Defragment(); err != nil {
		return err
	}
	d.invalidate()
	return nil
}

// Format resets the backing file to empty, preserving capacity.
func (d *Driver) Format() error {
	if err := d.store.Format(); err != nil {
		return err
	}
	d.invalidate()
	return nil
}
