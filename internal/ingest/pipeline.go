// Package ingest runs one fetch-and-reconcile pass: it expands the window
// into fetch units, fetches and reconciles them on a bounded worker pool
// and concatenates the results in enumeration order.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tripetl/internal/datasource"
	"tripetl/internal/fetch"
	"tripetl/internal/metrics"
	"tripetl/internal/schema"
	"tripetl/internal/table"
	"tripetl/internal/transformer"
	"tripetl/internal/transformer/builtin"
	"tripetl/internal/window"
)

// DefaultWorkers bounds concurrent fetches when Pipeline.Workers is zero.
const DefaultWorkers = 4

// Request is the explicit input of a run.
type Request struct {
	Window   window.Window
	Variants []string
}

// Pipeline holds the collaborators of a run. The zero value is not usable;
// Source and Decode are required.
type Pipeline struct {
	Source   datasource.Source
	Decode   fetch.Decoder
	Contract schema.Contract // defaults to schema.Trips
	Workers  int
	Job      string
	Logger   *slog.Logger
	Now      func() time.Time
}

// Plan returns the fetch units a run of req would attempt.
func Plan(req Request) []fetch.Unit {
	return fetch.Enumerate(req.Window.Months(), req.Variants)
}

// Run executes one pass. Per-unit problems never fail the run: missing
// objects are skipped and broken ones are reported in Result.Outcomes.
// Only an invalid window or a canceled context return an error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if !req.Window.Start.Before(req.Window.End) {
		return nil, fmt.Errorf("ingest: %w: %s", window.ErrInvalidWindow, req.Window)
	}
	if p.Source == nil || p.Decode == nil {
		return nil, fmt.Errorf("ingest: pipeline needs a source and a decoder")
	}

	contract := p.contract()
	log := p.logger()
	start := time.Now()

	res := &Result{
		RunID:  uuid.NewString(),
		Window: req.Window,
	}
	log = log.With("run_id", res.RunID)

	units := Plan(req)
	log.Info("ingest: run started",
		"window", req.Window.String(),
		"units", len(units),
		"workers", p.workers(),
	)

	res.Outcomes = make([]fetch.Outcome, len(units))
	fetcher := &fetch.Fetcher{Source: p.Source, Decode: p.Decode}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for _, u := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res.Outcomes[u.Index] = p.process(gctx, log, fetcher, contract, u)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		log.Warn("ingest: run canceled", "err", err)
		return nil, err
	}

	// One stamp for the whole run, taken once every unit is in.
	res.ExtractedAt = p.now().UTC()
	aggStart := time.Now()
	tbl, err := Aggregate(contract.Names(), res.Outcomes, res.ExtractedAt)
	metrics.RecordStep(p.Job, "aggregate", err, time.Since(aggStart))
	if err != nil {
		return nil, fmt.Errorf("ingest: aggregate: %w", err)
	}
	res.Table = tbl
	res.Duration = time.Since(start)

	loaded, skipped, failed := res.Counts()
	log.Info("ingest: run finished",
		"loaded", loaded,
		"skipped", skipped,
		"failed", failed,
		"rows", res.Table.Len(),
		"bytes", res.Bytes(),
		"duration", res.Duration,
	)
	if res.Empty() {
		log.Warn("ingest: no data fetched for window", "window", req.Window.String())
	}
	return res, nil
}

// process fetches one unit and, when it loads, reconciles it in place.
func (p *Pipeline) process(
	ctx context.Context,
	log *slog.Logger,
	fetcher *fetch.Fetcher,
	contract schema.Contract,
	u fetch.Unit,
) fetch.Outcome {
	out := fetcher.Fetch(ctx, u)
	metrics.RecordStep(p.Job, "fetch", out.Err, out.Duration)

	if out.Status == fetch.StatusLoaded {
		t0 := time.Now()
		rawRows := out.Table.Len()
		tbl, err := Canonicalize(contract, u.Variant).Apply(out.Table)
		metrics.RecordStep(p.Job, "reconcile", err, time.Since(t0))
		if err != nil {
			out.Status = fetch.StatusFailed
			out.Table = nil
			out.Err = &fetch.UnitError{Unit: u, Err: fmt.Errorf("reconcile: %w", err)}
		} else {
			out.Table = tbl
			metrics.RecordRows(p.Job, "fetched", int64(rawRows))
		}
	}

	metrics.RecordUnit(p.Job, u.Variant, out.Status.String())
	metrics.RecordBytes(p.Job, u.Variant, out.Bytes)

	attrs := []any{
		"unit", u.String(),
		"location", out.Location,
		"bytes", out.Bytes,
		"duration", out.Duration,
	}
	switch out.Status {
	case fetch.StatusLoaded:
		log.Debug("ingest: unit loaded", append(attrs, "rows", out.Rows(), "xxh3", fmt.Sprintf("%016x", out.Digest))...)
	case fetch.StatusSkipped:
		if datasource.Denied(out.Err) {
			log.Warn("ingest: unit skipped, access denied treated as not found", append(attrs, "err", out.Err)...)
		} else {
			log.Info("ingest: unit skipped, object not found", attrs...)
		}
	case fetch.StatusFailed:
		log.Warn("ingest: unit failed", append(attrs, "err", out.Err)...)
	}
	return out
}

// Canonicalize is the per-unit transformer chain: reconcile the layout,
// coerce values to the contract's types, then derive trip_hash.
// extracted_at is left nil here and stamped by Aggregate.
func Canonicalize(contract schema.Contract, variant string) transformer.Chain {
	return transformer.Chain{
		builtin.Reconcile{Contract: contract, Variant: variant},
		builtin.Coerce{Types: contract.Types()},
		builtin.TripHash,
	}
}

func (p *Pipeline) contract() schema.Contract {
	if len(p.Contract.Fields) == 0 {
		return schema.Trips
	}
	return p.Contract
}

func (p *Pipeline) workers() int {
	if p.Workers <= 0 {
		return DefaultWorkers
	}
	return p.Workers
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Aggregate concatenates the tables of loaded outcomes in the order given
// and sets extracted_at to extractedAt on every row when the column is
// present. With no loaded outcome the result is an empty table with the
// given columns.
func Aggregate(names []string, outcomes []fetch.Outcome, extractedAt time.Time) (*table.Table, error) {
	parts := make([]*table.Table, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Status == fetch.StatusLoaded {
			parts = append(parts, o.Table)
		}
	}
	out, err := table.Concat(names, parts...)
	if err != nil {
		return nil, err
	}
	if i := out.Index(schema.ColExtractedAt); i >= 0 {
		vals := out.Columns[i].Values
		for j := range vals {
			vals[j] = extractedAt
		}
	}
	return out, nil
}
