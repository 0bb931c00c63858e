package mssql

import (
	"fmt"
	"strings"

	"tripetl/internal/ddl"
	"tripetl/internal/schema"
)

// Dialect uses [bracket] quoting and wraps CREATE TABLE in an OBJECT_ID guard
// since T-SQL has no CREATE TABLE IF NOT EXISTS.
var Dialect = ddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: quoteIdent,
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
			strings.ReplaceAll(fqn, "'", "''"), fqn, body,
		)
	},
}

// quoteIdent wraps id in brackets, escaping any closing bracket.
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// MapType maps a logical contract type to a SQL Server column type.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeDouble:
		return "FLOAT"
	case schema.TypeTimestamp:
		return "DATETIME2"
	default:
		// Default to a flexible Unicode string type.
		return "NVARCHAR(MAX)"
	}
}
