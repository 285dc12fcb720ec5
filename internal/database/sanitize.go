package database

import (
	"fmt"
	"strings"
)

// SanitizeColumnName sanitizes a column name for SQL compatibility.
// - Replaces invalid characters with underscores
// - Prefixes with "col_" if the name starts with a digit
// - Returns "unnamed" for empty names
func SanitizeColumnName(name string) string {
	return sanitize(name, "unnamed")
}

// SanitizeTableName applies the column rules to a table name,
// falling back to "data" when nothing usable remains.
func SanitizeTableName(name string) string {
	return sanitize(name, "data")
}

func sanitize(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}

	result := make([]rune, 0, len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}

	sanitized := string(result)
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "col_" + sanitized
	}

	return sanitized
}

// ColumnNames maps CSV headers to unique column names in header order.
// A header that collides with the identifier column becomes "col_id";
// repeated headers get a numeric suffix.
func ColumnNames(headers []string) []string {
	seen := map[string]bool{IDColumn: true}
	names := make([]string, len(headers))
	for i, header := range headers {
		name := SanitizeColumnName(header)
		if strings.EqualFold(name, IDColumn) {
			name = "col_" + name
		}
		base := name
		for n := 2; seen[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}
