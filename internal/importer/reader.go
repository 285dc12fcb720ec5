// Package importer loads CSV/TSV files into a datastore table.
package importer

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// OpenFile opens a file, decompressing .gz and .bz2 files transparently.
func OpenFile(filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".gz":
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &decompressed{Reader: gzReader, closers: []io.Closer{gzReader, file}}, nil
	case ".bz2":
		return &decompressed{Reader: bzip2.NewReader(file), closers: []io.Closer{file}}, nil
	default:
		return file, nil
	}
}

// decompressed closes the decoder and the underlying file together.
type decompressed struct {
	io.Reader
	closers []io.Closer
}

func (d *decompressed) Close() error {
	var first error
	for _, c := range d.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BaseExt returns the lower-cased extension of filePath ignoring any
// compression suffixes, e.g. "data.tsv.gz" yields ".tsv".
func BaseExt(filePath string) string {
	path := filePath
	for {
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".gz" && ext != ".bz2" {
			return ext
		}
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
}

// DetectDelimiter returns '\t' for TSV files and ',' for everything else.
func DetectDelimiter(filePath string) rune {
	if BaseExt(filePath) == ".tsv" {
		return '\t'
	}
	return ','
}
