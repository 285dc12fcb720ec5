package database

import (
	"fmt"
	"strings"
)

// IDColumn is the auto-incrementing identifier every table is created with.
const IDColumn = "id"

// ColumnType is the declared type for every CSV-derived column.
const ColumnType = "VARCHAR(255)"

// Dialect holds the engine-specific statement text.
// Identifiers cannot be bound as parameters, so they are sanitized and quoted
// here; values always go through placeholders.
type Dialect interface {
	Name() string
	QuoteIdent(name string) string
	CreateTableSQL(table string) string
	// ColumnsQuery returns a query taking the table name as its single
	// parameter and yielding (name, type) rows in declaration order.
	ColumnsQuery() string
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d sqliteDialect) CreateTableSQL(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s INTEGER PRIMARY KEY AUTOINCREMENT)",
		d.QuoteIdent(table), d.QuoteIdent(IDColumn))
}

func (sqliteDialect) ColumnsQuery() string {
	return "SELECT name, type FROM pragma_table_info(?) ORDER BY cid"
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d mysqlDialect) CreateTableSQL(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s INT AUTO_INCREMENT PRIMARY KEY)",
		d.QuoteIdent(table), d.QuoteIdent(IDColumn))
}

func (mysqlDialect) ColumnsQuery() string {
	return `SELECT COLUMN_NAME, COLUMN_TYPE FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`
}
