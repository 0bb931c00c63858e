// Package table holds the in-memory columnar representation shared by the
// parser, the transformers and the storage loader.
//
// A Table is an ordered list of named columns of equal length. Values are
// plain Go values (string, int64, float64, time.Time, ...) and nil marks a
// missing value. The type is deliberately small: it is a carrier between
// pipeline stages, not a dataframe library.
package table

import (
	"fmt"
	"slices"
)

// Column is a named vector of values.
type Column struct {
	Name   string
	Values []any
}

// Table is an ordered set of equally sized columns.
type Table struct {
	Columns []Column
	rows    int
}

// New returns an empty table with the given column names and zero rows.
func New(names ...string) *Table {
	t := &Table{Columns: make([]Column, len(names))}
	for i, n := range names {
		t.Columns[i] = Column{Name: n, Values: []any{}}
	}
	return t
}

// FromColumns builds a table from prepared columns. All columns must have the
// same length.
func FromColumns(cols []Column) (*Table, error) {
	t := &Table{Columns: cols}
	for i, c := range cols {
		if i == 0 {
			t.rows = len(c.Values)
			continue
		}
		if len(c.Values) != t.rows {
			return nil, fmt.Errorf("table: column %q has %d values, want %d", c.Name, len(c.Values), t.rows)
		}
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column and whether it exists.
func (t *Table) Column(name string) ([]any, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	return t.Columns[i].Values, true
}

// Row materializes row i in column order. It allocates; loaders use it one
// batch at a time.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Append concatenates the rows of other onto t. Both tables must have the
// same column names in the same order.
func (t *Table) Append(other *Table) error {
	if other == nil || other.Len() == 0 {
		return nil
	}
	if !slices.Equal(t.Names(), other.Names()) {
		return fmt.Errorf("table: append: column mismatch %v vs %v", t.Names(), other.Names())
	}
	for i := range t.Columns {
		t.Columns[i].Values = append(t.Columns[i].Values, other.Columns[i].Values...)
	}
	t.rows += other.rows
	return nil
}

// Concat returns a new table holding the rows of all parts in order. The
// result has the given column names even when parts is empty.
func Concat(names []string, parts ...*Table) (*Table, error) {
	total := 0
	for _, p := range parts {
		total += p.Len()
	}
	out := &Table{Columns: make([]Column, len(names))}
	for i, n := range names {
		out.Columns[i] = Column{Name: n, Values: make([]any, 0, total)}
	}
	for _, p := range parts {
		if err := out.Append(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}
