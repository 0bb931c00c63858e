package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"tripetl/internal/table"
)

var quiet = slog.New(slog.DiscardHandler)

// TestLoadBatches_Basic verifies rows are grouped into batches and copyFn is
// called with the expected counts.
func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	in := make(chan []any, 8)
	for i := 0; i < 7; i++ {
		in <- []any{i, "x"}
	}
	close(in)

	var calls int32
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		atomic.AddInt32(&calls, 1)
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), quiet, []string{"c1", "c2"}, in, 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("copyFn calls %d, want 3 (3+3+1)", got)
	}
}

// TestLoadBatches_ErrorPropagation ensures the first copy error is returned
// and processing stops after that batch.
func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	in := make(chan []any, 5)
	for i := 0; i < 5; i++ {
		in <- []any{i}
	}
	close(in)

	wantErr := errors.New("copy failed")
	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), quiet, []string{"c"}, in, 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	if total != 2 || batches != 2 {
		t.Fatalf("total=%d batches=%d, want 2/2", total, batches)
	}
}

// TestLoadBatches_ContextCancel checks the loader exits on cancellation
// even when the input never closes.
func TestLoadBatches_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	in := make(chan []any)
	_, err := LoadBatches(ctx, quiet, []string{"c"}, in, 10, func(context.Context, []string, [][]any) (int64, error) {
		return 0, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestLoadBatches_Validation(t *testing.T) {
	t.Parallel()

	if _, err := LoadBatches(context.Background(), quiet, nil, nil, 0, nil); err == nil {
		t.Fatalf("expected error for batchSize 0")
	}
	if _, err := LoadBatches(context.Background(), quiet, nil, nil, 1, nil); err == nil {
		t.Fatalf("expected error for nil copyFn")
	}
}

// recordingRepo keeps copies of every batch it receives.
type recordingRepo struct {
	columns []string
	rows    [][]any
	calls   int
	failAt  int
}

func (r *recordingRepo) CopyFrom(_ context.Context, columns []string, rows [][]any) (int64, error) {
	r.calls++
	if r.failAt > 0 && r.calls == r.failAt {
		return 0, errors.New("disk full")
	}
	r.columns = columns
	for _, row := range rows {
		r.rows = append(r.rows, append([]any(nil), row...))
	}
	return int64(len(rows)), nil
}

func (r *recordingRepo) Exec(context.Context, string) error { return nil }
func (r *recordingRepo) Close()                             {}

func TestLoadTable(t *testing.T) {
	t.Parallel()

	tbl, err := table.FromColumns([]table.Column{
		{Name: "trip_hash", Values: []any{"a", "b", "c", "d", "e"}},
		{Name: "fare_amount", Values: []any{1.0, 2.0, nil, 4.0, 5.0}},
	})
	if err != nil {
		t.Fatal(err)
	}

	repo := &recordingRepo{}
	n, err := LoadTable(context.Background(), quiet, repo, tbl, 2)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if n != 5 || repo.calls != 3 {
		t.Fatalf("n=%d calls=%d, want 5/3", n, repo.calls)
	}
	if len(repo.columns) != 2 || repo.columns[0] != "trip_hash" {
		t.Fatalf("columns = %v", repo.columns)
	}
	for i, row := range repo.rows {
		if row[0] != tbl.Columns[0].Values[i] || row[1] != tbl.Columns[1].Values[i] {
			t.Fatalf("row %d = %v, want table order", i, row)
		}
	}
}

func TestLoadTable_ErrorStopsProducer(t *testing.T) {
	t.Parallel()

	vals := make([]any, 100)
	for i := range vals {
		vals[i] = i
	}
	tbl, err := table.FromColumns([]table.Column{{Name: "n", Values: vals}})
	if err != nil {
		t.Fatal(err)
	}

	repo := &recordingRepo{failAt: 2}
	n, err := LoadTable(context.Background(), quiet, repo, tbl, 10)
	if err == nil {
		t.Fatalf("expected error")
	}
	if n != 10 {
		t.Fatalf("n = %d, want 10 from the first batch", n)
	}
}

func TestLoadTable_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	repo := &recordingRepo{}
	n, err := LoadTable(context.Background(), quiet, repo, table.New("a"), 10)
	if err != nil || n != 0 || repo.calls != 0 {
		t.Fatalf("n=%d err=%v calls=%d", n, err, repo.calls)
	}
	if _, err := LoadTable(context.Background(), quiet, repo, table.New("a"), 0); err == nil {
		t.Fatalf("expected error for batch size 0")
	}
}
