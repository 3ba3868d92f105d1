package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/gzip"
)

const defaultBatchSize = 64 * 1024

// Schema is the declared layout a scan is checked or decoded against.
type Schema interface {
	Arrow() *arrow.Schema
	Check(*arrow.Schema) error
}

type scanConfig struct {
	mem       memory.Allocator
	batchSize int
}

// ScanOption configures a scan.
type ScanOption func(*scanConfig)

func WithAllocator(mem memory.Allocator) ScanOption {
	return func(cfg *scanConfig) { cfg.mem = mem }
}

// WithBatchSize caps the number of rows per record batch.
func WithBatchSize(n int) ScanOption {
	return func(cfg *scanConfig) { cfg.batchSize = n }
}

type recordReader interface {
	Next() bool
	Record() arrow.Record
	Err() error
	Release()
}

// Scanner iterates the record batches of one cached file without loading
// the whole file. Records are only valid until the next call to Next.
type Scanner struct {
	rr     recordReader
	closer io.Closer
}

func (s *Scanner) Next() bool { return s.rr.Next() }

func (s *Scanner) Record() arrow.Record { return s.rr.Record() }

func (s *Scanner) Err() error {
	if err := s.rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Close releases the reader and closes the file.
func (s *Scanner) Close() error {
	s.rr.Release()
	return s.closer.Close()
}

// Scan opens the file of key in format.
func (c *Cache) Scan(ctx context.Context, key Key, format Format, schema Schema, options ...ScanOption) (*Scanner, error) {
	path, err := c.Path(key, format)
	if err != nil {
		return nil, err
	}
	return scanFile(ctx, path, format, schema, options...)
}

func scanFile(ctx context.Context, path string, format Format, schema Schema, options ...ScanOption) (*Scanner, error) {
	cfg := scanConfig{mem: memory.DefaultAllocator, batchSize: defaultBatchSize}
	for _, opt := range options {
		opt(&cfg)
	}
	switch format {
	case Parquet:
		return scanParquet(ctx, path, schema, cfg)
	case JSONLines:
		return scanJSONLines(path, schema, cfg)
	}
	return nil, fmt.Errorf("cache: unknown format %s", format)
}

func scanParquet(ctx context.Context, path string, schema Schema, cfg scanConfig) (*Scanner, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: int64(cfg.batchSize)}, cfg.mem)
	if err != nil {
		pf.Close()
		return nil, fmt.Errorf("cache: read %s: %w", path, err)
	}
	sc, err := fr.Schema()
	if err != nil {
		pf.Close()
		return nil, fmt.Errorf("cache: read schema of %s: %w", path, err)
	}
	if err := schema.Check(sc); err != nil {
		pf.Close()
		return nil, fmt.Errorf("cache: %s: %w", path, err)
	}
	rr, err := fr.GetRecordReader(ctx, nil, nil)
	if err != nil {
		pf.Close()
		return nil, fmt.Errorf("cache: read %s: %w", path, err)
	}
	return &Scanner{rr: rr, closer: pf}, nil
}

func scanJSONLines(path string, schema Schema, cfg scanConfig) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cache: read %s: %w", path, err)
	}
	rr := array.NewJSONReader(zr, schema.Arrow(),
		array.WithChunk(cfg.batchSize),
		array.WithAllocator(cfg.mem),
	)
	return &Scanner{rr: rr, closer: multiCloser{zr, f}}, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Collect drains a scanner through rows and closes it.
func Collect[T any](s *Scanner, rows func(arrow.Record) ([]T, error)) (out []T, err error) {
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	out = []T{}
	for s.Next() {
		batch, err := rows(s.Record())
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, s.Err()
}

// File is one cached table found by Glob.
type File struct {
	Path       string
	Collection Collection
	// Name is the file name without its format extension.
	Name   string
	Format Format
}

func (f File) Scan(ctx context.Context, schema Schema, options ...ScanOption) (*Scanner, error) {
	return scanFile(ctx, f.Path, f.Format, schema, options...)
}

// Glob lists cached files of a collection whose name (without extension)
// matches pattern, sorted by path. Backups and temporary files are skipped.
func (c *Cache) Glob(collection Collection, pattern string) ([]File, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("cache: bad pattern %q: %w", pattern, err)
	}
	dir := filepath.Join(c.root, filepath.FromSlash(string(collection)))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: list %s: %w", dir, err)
	}

	var files []File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".bak") {
			continue
		}
		format, ok := formatOf(name)
		if !ok {
			continue
		}
		stem := strings.TrimSuffix(name, format.Ext())
		if ok, _ := filepath.Match(pattern, stem); !ok {
			continue
		}
		files = append(files, File{
			Path:       filepath.Join(dir, name),
			Collection: collection,
			Name:       stem,
			Format:     format,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
