package ddl

import (
	"fmt"
	"strings"

	"tripetl/internal/schema"
)

// FromContract derives a table definition from a column contract using a
// backend's logical type mapping. All columns are nullable except the
// contract's primary-key field. The primary key is not emitted as a
// constraint: the trips table is append-only and repeated keys are
// expected.
func FromContract(c schema.Contract, fqn string, mapType func(logical string) string) (TableDef, error) {
	if strings.TrimSpace(fqn) == "" {
		fqn = c.Name
	}
	if strings.TrimSpace(fqn) == "" {
		return TableDef{}, fmt.Errorf("ddl: table name is required")
	}
	if len(c.Fields) == 0 {
		return TableDef{}, fmt.Errorf("ddl: contract %q has no fields", c.Name)
	}

	cols := make([]ColumnDef, 0, len(c.Fields))
	for _, f := range c.Fields {
		cols = append(cols, ColumnDef{
			Name:     f.Name,
			SQLType:  mapType(f.Type),
			Nullable: !f.PrimaryKey,
		})
	}
	return TableDef{FQN: fqn, Columns: cols}, nil
}
