package sqlite

import (
	"strings"

	"tripetl/internal/ddl"
	"tripetl/internal/schema"
)

// Dialect renders CREATE TABLE IF NOT EXISTS with double-quoted identifiers.
var Dialect = ddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: quoteIdent,
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// MapType maps a logical contract type to a SQLite column type. Timestamps
// use TIMESTAMP so the driver parses them back into time.Time.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeDouble:
		return "REAL"
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
