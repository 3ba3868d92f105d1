// Package cache stores result tables under a root directory, one file per
// request, at a path derived from the request's identifying parameters.
package cache

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/gzip"
)

// ErrExists occurs when writing with Fail to a path that already exists.
var ErrExists = errors.New("cache: file already exists")

// Cache is a directory of cached tables. It holds no state besides its root,
// so concurrent use is safe; concurrent writers to one path are not
// coordinated and the last rename wins.
type Cache struct {
	root string
	now  func() time.Time
	log  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the clock used to name backups.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New returns a cache rooted at root. The directory is created on first write.
func New(root string, options ...Option) *Cache {
	c := &Cache{
		root: root,
		now:  time.Now,
		log:  slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Root directory of the cache.
func (c *Cache) Root() string { return c.root }

// Path returns the file path of key in format.
func (c *Cache) Path(key Key, format Format) (string, error) {
	rel, err := Path(key, format)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.root, filepath.FromSlash(rel)), nil
}

// WriteOptions controls Write.
type WriteOptions struct {
	Format   Format
	IfExists IfExists
}

// Write stores rec at the path of key and returns that path. The file is
// written to a temporary name in the same directory and renamed into place.
func (c *Cache) Write(ctx context.Context, key Key, rec arrow.Record, opts WriteOptions) (string, error) {
	path, err := c.Path(key, opts.Format)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cache: create %s: %w", dir, err)
	}

	if _, err := os.Stat(path); err == nil {
		switch opts.IfExists {
		case Fail:
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		case Backup:
			backup, err := backupName(path, c.now().Unix())
			if err != nil {
				return "", err
			}
			if err := os.Rename(path, backup); err != nil {
				return "", fmt.Errorf("cache: backup %s: %w", path, err)
			}
			c.log.Debug("cache: backed up existing file", "path", path, "backup", backup)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("cache: stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return "", fmt.Errorf("cache: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if err := encode(tmp, rec, opts.Format); err != nil {
		tmp.Close()
		return "", fmt.Errorf("cache: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("cache: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("cache: rename into %s: %w", path, err)
	}

	c.log.Debug("cache: wrote table",
		"path", path,
		"format", opts.Format.String(),
		"rows", rec.NumRows(),
	)
	return path, nil
}

func encode(f *os.File, rec arrow.Record, format Format) error {
	// Writers below close what they are given, so they get a buffer that
	// leaves the file open for the caller.
	buf := bufio.NewWriter(f)
	switch format {
	case Parquet:
		if err := writeParquet(buf, rec); err != nil {
			return err
		}
	case JSONLines:
		if err := writeJSONLines(buf, rec); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %s", format)
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func writeParquet(w io.Writer, rec arrow.Record) error {
	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithDictionaryDefault(true),
	)
	fw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return err
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

func writeJSONLines(w io.Writer, rec arrow.Record) error {
	zw := gzip.NewWriter(w)
	if err := array.RecordToJSON(rec, zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// backupName returns the first unused name of <path>.<unix>.bak,
// <path>.<unix>.1.bak, <path>.<unix>.2.bak and so on.
func backupName(path string, unix int64) (string, error) {
	for n := 0; ; n++ {
		name := fmt.Sprintf("%s.%d.bak", path, unix)
		if n > 0 {
			name = fmt.Sprintf("%s.%d.%d.bak", path, unix, n)
		}
		_, err := os.Lstat(name)
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("cache: stat %s: %w", name, err)
		}
	}
}
