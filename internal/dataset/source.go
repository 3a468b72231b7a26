// Package dataset loads the three dashboard tables from flat files into an
// immutable snapshot. Files come from a pluggable source (local directory,
// S3 bucket, or in-memory for tests) and may be CSV or XLSX.
package dataset

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/mineral-insights/mineralboard/internal/config"
)

// Source provides read access to dataset files by relative name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Open selects a Source from config: fs|s3|memory (default fs).
func Open(ctx context.Context, cfg config.DataConfig) (Source, error) {
	switch cfg.Driver {
	case "", "fs":
		return NewFSSource(cfg.Dir), nil
	case "s3":
		return NewS3Source(ctx, cfg.S3)
	case "memory":
		return NewMemorySource(nil), nil
	default:
		return nil, eris.Errorf("dataset: unknown source driver %q", cfg.Driver)
	}
}

// FSSource reads dataset files from a local directory.
type FSSource struct {
	root string
}

// NewFSSource creates a filesystem source rooted at dir ("." when empty).
func NewFSSource(dir string) *FSSource {
	if dir == "" {
		dir = "."
	}
	return &FSSource{root: dir}
}

func (s *FSSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", name)
	}
	return f, nil
}

// MemorySource serves dataset files from a map, keyed by name.
type MemorySource struct {
	files map[string][]byte
}

// NewMemorySource creates an in-memory source over the given files.
func NewMemorySource(files map[string][]byte) *MemorySource {
	if files == nil {
		files = make(map[string][]byte)
	}
	return &MemorySource{files: files}
}

func (s *MemorySource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, eris.Errorf("dataset: no file %q in memory source", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
