package database

import (
	"context"
	"fmt"
)

// ResultSet holds every row returned by a query.
type ResultSet struct {
	Columns []string
	Rows    [][]interface{}
}

// FetchAll executes arbitrary SQL and fetches all rows. There is no row limit
// and no validation of the statement against the table schema.
// []byte values are converted to strings; NULL stays nil.
func (d *DB) FetchAll(ctx context.Context, query string) (*ResultSet, error) {
	rows, err := d.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	result := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
