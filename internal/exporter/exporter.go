package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/remibot/remi-go/internal/database"
)

// FormatRows renders every row of rs as a parenthesised tuple inside one
// bracketed list. A nil result set renders as "None".
func FormatRows(rs *database.ResultSet) string {
	if rs == nil {
		return "None"
	}

	var b strings.Builder
	b.WriteByte('[')
	for i, row := range rs.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatValue(v))
		}
		if len(row) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strconv.Quote(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// WriteCSV writes rs with a header row to outputFile. The delimiter is chosen
// from the file extension and .gz files are compressed.
func WriteCSV(outputFile string, rs *database.ResultSet) (int, error) {
	output, err := OpenOutputFile(outputFile)
	if err != nil {
		return 0, err
	}

	rowCount, err := writeRecords(output, rs, DetectOutputDelimiter(outputFile))
	if closeErr := output.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output file: %w", closeErr)
	}
	return rowCount, err
}

func writeRecords(w io.Writer, rs *database.ResultSet, delimiter rune) (int, error) {
	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	if err := writer.Write(rs.Columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	rowCount := 0
	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) && row[i] != nil {
				record[i] = fmt.Sprintf("%v", row[i])
			}
		}
		if err := writer.Write(record); err != nil {
			return rowCount, fmt.Errorf("failed to write row: %w", err)
		}
		rowCount++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rowCount, fmt.Errorf("failed to flush output: %w", err)
	}
	return rowCount, nil
}
