package cache

import (
	"fmt"
	"strings"
)

// Format is the on-disk encoding of a cached table.
type Format int

const (
	// Parquet is the primary columnar format, zstd compressed with the arrow
	// schema stored in the file metadata.
	Parquet Format = iota
	// JSONLines is a row oriented, gzip compressed, newline delimited JSON format.
	JSONLines
)

func (f Format) Ext() string {
	switch f {
	case JSONLines:
		return ".jsonl.gz"
	default:
		return ".parquet"
	}
}

func (f Format) String() string {
	switch f {
	case Parquet:
		return "parquet"
	case JSONLines:
		return "jsonl"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts "parquet" or "jsonl".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "parquet":
		return Parquet, nil
	case "jsonl", "jsonl.gz", "jsonlines":
		return JSONLines, nil
	}
	return 0, fmt.Errorf("cache: unknown format %q", s)
}

func formatOf(name string) (Format, bool) {
	switch {
	case strings.HasSuffix(name, Parquet.Ext()):
		return Parquet, true
	case strings.HasSuffix(name, JSONLines.Ext()):
		return JSONLines, true
	}
	return 0, false
}

// IfExists selects what Write does when the target file already exists.
type IfExists int

const (
	Overwrite IfExists = iota
	// Backup renames the existing file to <name>.<unix>.bak before writing,
	// adding a counter (<name>.<unix>.<n>.bak) when that name is taken.
	Backup
	// Fail returns ErrExists.
	Fail
)

// ParseIfExists accepts "overwrite", "backup" or "fail".
func ParseIfExists(s string) (IfExists, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return Overwrite, nil
	case "backup":
		return Backup, nil
	case "fail":
		return Fail, nil
	}
	return 0, fmt.Errorf("cache: unknown if-exists policy %q", s)
}

func (i IfExists) String() string {
	switch i {
	case Overwrite:
		return "overwrite"
	case Backup:
		return "backup"
	case Fail:
		return "fail"
	}
	return fmt.Sprintf("IfExists(%d)", int(i))
}
