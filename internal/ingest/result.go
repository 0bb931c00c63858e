package ingest

import (
	"time"

	"tripetl/internal/fetch"
	"tripetl/internal/table"
	"tripetl/internal/window"
)

// Result is the output of a run. Table always has the contract's columns;
// it has zero rows when no unit loaded.
type Result struct {
	RunID       string
	Window      window.Window
	ExtractedAt time.Time
	Table       *table.Table
	Outcomes    []fetch.Outcome // enumeration order
	Duration    time.Duration
}

// Empty reports whether no rows were produced.
func (r *Result) Empty() bool { return r.Table.Len() == 0 }

// Failures returns the outcomes that failed, in enumeration order.
func (r *Result) Failures() []fetch.Outcome {
	var out []fetch.Outcome
	for _, o := range r.Outcomes {
		if o.Status == fetch.StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Counts tallies outcomes by status.
func (r *Result) Counts() (loaded, skipped, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case fetch.StatusLoaded:
			loaded++
		case fetch.StatusSkipped:
			skipped++
		case fetch.StatusFailed:
			failed++
		}
	}
	return loaded, skipped, failed
}

// Bytes is the total object bytes downloaded.
func (r *Result) Bytes() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Bytes
	}
	return n
}
