package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/remibot/remi-go/internal/database"
)

// Result contains the result of an import operation.
type Result struct {
	TableName string
	Columns   []string
	RowCount  int
}

// FileInput describes a file to be imported.
type FileInput struct {
	FilePath  string
	TableName string
	Delimiter rune // 0 detects from the file extension
}

// ProgressCallback is called after each batch is written.
type ProgressCallback func(filePath string, rowsWritten int64)

// Import streams a CSV/TSV file into a table. The table is created first, so
// it exists even when the file cannot be read. The first row is the header and
// any missing columns are added, then rows are inserted verbatim in
// database.BatchSize transactions. Only one batch is held in memory.
//
// A failing batch aborts the rest of the file. The returned Result still
// reports the rows committed before the failure.
func Import(ctx context.Context, db *database.DB, input FileInput, progress ProgressCallback) (*Result, error) {
	if err := db.EnsureTable(ctx, input.TableName); err != nil {
		return nil, err
	}

	file, err := OpenFile(input.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	delimiter := input.Delimiter
	if delimiter == 0 {
		delimiter = DetectDelimiter(input.FilePath)
	}

	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file %s has no header row", input.FilePath)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns, err := db.EnsureColumns(ctx, input.TableName, headers)
	if err != nil {
		return nil, err
	}

	result := &Result{TableName: input.TableName, Columns: columns}

	flush := func(batch [][]string) error {
		if err := db.InsertBatch(ctx, input.TableName, columns, batch); err != nil {
			return fmt.Errorf("failed to insert batch after %d rows: %w", result.RowCount, err)
		}
		result.RowCount += len(batch)
		if progress != nil {
			progress(input.FilePath, int64(result.RowCount))
		}
		return nil
	}

	batch := make([][]string, 0, database.BatchSize)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read row: %w", err)
		}

		batch = append(batch, record)
		if len(batch) >= database.BatchSize {
			if err := flush(batch); err != nil {
				return result, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return result, err
		}
	}

	return result, nil
}
