package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/xxh3"

	"tripetl/internal/datasource"
	"tripetl/internal/table"
)

// Status classifies a unit's outcome.
type Status int

const (
	// StatusPending is the zero value: the unit was never attempted.
	StatusPending Status = iota
	// StatusLoaded means the object was fetched and decoded.
	StatusLoaded
	// StatusSkipped means the object does not exist at the source.
	StatusSkipped
	// StatusFailed means the object could not be fetched or decoded.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoaded:
		return "loaded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// UnitError ties a failure to its unit.
type UnitError struct {
	Unit Unit
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Unit, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Outcome is the result of fetching one unit. Table is set only for
// StatusLoaded; Err is set for StatusSkipped and StatusFailed.
type Outcome struct {
	Unit     Unit
	Status   Status
	Location string
	Table    *table.Table
	Err      error
	Bytes    int
	Digest   uint64
	Duration time.Duration
}

// Rows returns the decoded row count, zero unless loaded.
func (o Outcome) Rows() int { return o.Table.Len() }

// Decoder turns an object body into a raw table.
type Decoder func([]byte) (*table.Table, error)

// Fetcher retrieves and decodes units. It holds no per-call state and is
// safe for concurrent use.
type Fetcher struct {
	Source datasource.Source
	Decode Decoder
}

// Fetch performs one attempt for u. It never returns an error; failures are
// carried in the outcome so the caller decides how to report them.
func (f *Fetcher) Fetch(ctx context.Context, u Unit) Outcome {
	start := time.Now()
	name := u.ObjectName()
	out := Outcome{Unit: u, Location: f.Source.Locate(name)}

	body, err := f.Source.Fetch(ctx, name)
	if err != nil {
		out.Err = &UnitError{Unit: u, Err: err}
		if errors.Is(err, datasource.ErrNotFound) {
			out.Status = StatusSkipped
		} else {
			out.Status = StatusFailed
		}
		return finish(out, start)
	}
	out.Bytes = len(body)
	out.Digest = xxh3.Hash(body)

	tbl, err := f.Decode(body)
	if err != nil {
		out.Status = StatusFailed
		out.Err = &UnitError{Unit: u, Err: err}
		return finish(out, start)
	}
	out.Status = StatusLoaded
	out.Table = tbl
	return finish(out, start)
}

func finish(o Outcome, start time.Time) Outcome {
	o.Duration = time.Since(start)
	return o
}
