package postgres

import (
	"strings"

	"tripetl/internal/ddl"
	"tripetl/internal/schema"
)

// Dialect renders CREATE TABLE IF NOT EXISTS with double-quoted identifiers.
var Dialect = ddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: quoteIdent,
}

// quoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	quoteIdent(`pcv`)        => `"pcv"`
//	quoteIdent(`weird"name`) => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// MapType maps a logical contract type to a Postgres column type.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeDouble:
		return "DOUBLE PRECISION"
	case schema.TypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
