package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"tripetl/internal/config"
	"tripetl/internal/ingest"
	"tripetl/internal/metrics"
	"tripetl/internal/parser/parquet"
	"tripetl/internal/schema"
	"tripetl/internal/storage"
	"tripetl/internal/window"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, reconcile and load the trips of the window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.loadPipeline(cmd.Flags())
			if err != nil {
				return err
			}
			if err := checkPipeline(cmd.ErrOrStderr(), p); err != nil {
				return err
			}
			log, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			flush := setupMetrics(p, opts.getenv, log)
			defer flush()

			return runPipeline(cmd.Context(), cmd.OutOrStdout(), log, p)
		},
	}
	addWindowFlags(cmd.Flags())
	return cmd
}

// runPipeline fetches and reconciles the window, then appends the result to
// the configured sink. A summary line is written to out.
func runPipeline(ctx context.Context, out io.Writer, log *slog.Logger, p config.Pipeline) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w, err := window.Parse(p.Window.StartDate, p.Window.EndDate)
	if err != nil {
		return err
	}
	src, err := newSource(p)
	if err != nil {
		return err
	}

	pl := &ingest.Pipeline{
		Source:   src,
		Decode:   parquet.Decode,
		Contract: schema.Trips,
		Workers:  p.Runtime.FetchWorkers,
		Job:      p.Job,
		Logger:   log,
	}
	res, err := pl.Run(ctx, ingest.Request{Window: w, Variants: p.Variants})
	if err != nil {
		return err
	}
	for _, f := range res.Failures() {
		log.Warn("unit failed", "unit", f.Unit.String(), "location", f.Location, "err", f.Err)
	}

	var inserted int64
	if p.Storage.LoadsStorage() {
		start := time.Now()
		inserted, err = load(ctx, log, p, res)
		metrics.RecordStep(p.Job, "load", err, time.Since(start))
		if err != nil {
			return err
		}
		metrics.RecordRows(p.Job, "inserted", inserted)
	}

	loaded, skipped, failed := res.Counts()
	fmt.Fprintf(out, "run=%s window=%s loaded=%d skipped=%d failed=%d rows=%d inserted=%d duration=%s\n",
		res.RunID, w, loaded, skipped, failed, res.Table.Len(), inserted, res.Duration.Truncate(time.Millisecond))
	return nil
}

func load(ctx context.Context, log *slog.Logger, p config.Pipeline, res *ingest.Result) (int64, error) {
	repo, err := storage.New(ctx, storage.Config{
		Kind:  p.Storage.Kind,
		DSN:   p.Storage.DB.DSN,
		Table: p.Storage.DB.Table,
	})
	if err != nil {
		return 0, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	if p.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, p.Storage.Kind, repo, p.Storage.DB.Table, schema.Trips); err != nil {
			return 0, fmt.Errorf("ensure table: %w", err)
		}
	}
	n, err := storage.LoadTable(ctx, log.With("table", p.Storage.DB.Table), repo, res.Table, p.Runtime.BatchSize)
	if err != nil {
		return n, fmt.Errorf("load %s: %w", p.Storage.DB.Table, err)
	}
	return n, nil
}
