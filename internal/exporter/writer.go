// Package exporter renders query results for the console and CSV/TSV files.
package exporter

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// compressedOutput writes through a compression layer. Closers run in order,
// the compressor before the file underneath it.
type compressedOutput struct {
	io.Writer
	closers []io.Closer
}

func (o *compressedOutput) Close() error {
	var first error
	for _, c := range o.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenOutputFile truncates or creates filePath along with its directory.
// A .gz suffix compresses the stream; .bz2 is refused.
func OpenOutputFile(filePath string) (io.WriteCloser, error) {
	name := strings.ToLower(filePath)
	switch {
	case filePath == "":
		return nil, errors.New("no output file given")
	case strings.HasSuffix(name, ".bz2"):
		return nil, fmt.Errorf("cannot write %s: bzip2 output is not supported, use .gz", filePath)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory for %s: %w", filePath, err)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	if !strings.HasSuffix(name, ".gz") {
		return file, nil
	}
	zw := gzip.NewWriter(file)
	return &compressedOutput{Writer: zw, closers: []io.Closer{zw, file}}, nil
}

// DetectOutputDelimiter picks tab for .tsv paths (compressed or not) and
// comma for everything else.
func DetectOutputDelimiter(filePath string) rune {
	name := strings.TrimSuffix(strings.ToLower(filePath), ".gz")
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}
