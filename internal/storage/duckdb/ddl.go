package duckdb

import (
	"strings"

	"tripetl/internal/ddl"
	"tripetl/internal/schema"
)

// Dialect renders CREATE TABLE IF NOT EXISTS with double-quoted identifiers.
var Dialect = ddl.Dialect{
	Name:       "duckdb ddl",
	QuoteIdent: quoteIdent,
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// MapType maps a logical contract type to a DuckDB column type.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeDouble:
		return "DOUBLE"
	case schema.TypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "VARCHAR"
	}
}
