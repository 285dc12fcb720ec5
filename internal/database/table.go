package database

import (
	"context"
	"fmt"
	"strings"
)

const (
	// BatchSize is the number of rows to insert in a single transaction.
	BatchSize = 10000
)

// Column is one entry of a table's metadata snapshot.
type Column struct {
	Name string
	Type string
}

// EnsureTable creates the table with its identifier column if it does not
// exist yet. Existing tables and their rows are left untouched.
func (d *DB) EnsureTable(ctx context.Context, table string) error {
	if _, err := d.ExecContext(ctx, d.Dialect.CreateTableSQL(table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// EnsureColumns adds a ColumnType column for every header not already present
// and returns the column names to insert into, in header order.
func (d *DB) EnsureColumns(ctx context.Context, table string, headers []string) ([]string, error) {
	existing, err := d.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, col := range existing {
		have[strings.ToLower(col.Name)] = true
	}

	names := ColumnNames(headers)
	for _, name := range names {
		if have[strings.ToLower(name)] {
			continue
		}
		alterSQL := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			d.Dialect.QuoteIdent(table), d.Dialect.QuoteIdent(name), ColumnType)
		if _, err := d.ExecContext(ctx, alterSQL); err != nil {
			return nil, fmt.Errorf("failed to add column %s: %w", name, err)
		}
		have[strings.ToLower(name)] = true
	}

	return names, nil
}

// InsertBatch inserts a batch of rows into the specified table within a
// transaction. Values are bound verbatim and every row must have exactly one
// value per column. Any failed row rolls back the whole batch.
func (d *DB) InsertBatch(ctx context.Context, table string, columns []string, batch [][]string) error {
	if len(batch) == 0 {
		return nil
	}

	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = "?"
		quoted[i] = d.Dialect.QuoteIdent(c)
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Dialect.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	values := make([]interface{}, len(columns))
	for n, row := range batch {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d has %d fields, want %d", n+1, len(row), len(columns))
		}
		for i, v := range row {
			values[i] = v
		}

		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", n+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Columns returns the (name, declared type) metadata for a table.
// A table that does not exist yields no columns and no error.
func (d *DB) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := d.QueryContext(ctx, d.Dialect.ColumnsQuery(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to get table info: %w", err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading columns: %w", err)
	}

	return columns, nil
}
