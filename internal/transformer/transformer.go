// Package transformer chains table-to-table steps applied to each fetched
// unit before aggregation.
package transformer

import "tripetl/internal/table"

// Transformer rewrites a table. Implementations may reuse the input's
// column slices.
type Transformer interface {
	Apply(*table.Table) (*table.Table, error)
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer in order and stops at the first error.
func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in
	for _, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
