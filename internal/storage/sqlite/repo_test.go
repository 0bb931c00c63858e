package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tripetl/internal/schema"
	"tripetl/internal/storage"
	"tripetl/internal/table"
)

func newRepo(tb testing.TB, tbl string) storage.Repository {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "trips.db")
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: dsn, Table: tbl})
	if err != nil {
		tb.Fatalf("storage.New sqlite: %v", err)
	}
	tb.Cleanup(repo.Close)
	return repo
}

func count(tb testing.TB, repo storage.Repository, tbl string) int {
	tb.Helper()
	var n int
	r := repo.(*wrappedRepo).Repository
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + Dialect.QuoteFQN(TableName(tbl))).Scan(&n); err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}

func TestTableName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"trips":           "trips",
		"ingestion.trips": "ingestion_trips",
		"main.trips":      "main.trips",
		" a.b.c ":         "a_b_c",
	}
	for in, want := range cases {
		if got := TableName(in); got != want {
			t.Errorf("TableName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnsureTableAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepo(t, "ingestion.trips")

	if err := storage.EnsureTable(ctx, "sqlite", repo, "ingestion.trips", schema.Trips); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	// Idempotent.
	if err := storage.EnsureTable(ctx, "sqlite", repo, "ingestion.trips", schema.Trips); err != nil {
		t.Fatalf("EnsureTable (second): %v", err)
	}

	names := schema.Trips.Names()
	cols := make([]table.Column, len(names))
	ts := time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)
	for i, n := range names {
		vals := make([]any, 5)
		for r := range vals {
			switch n {
			case schema.ColTripHash:
				vals[r] = strings.Repeat("a", r+1)
			case schema.ColTaxiType:
				vals[r] = "yellow"
			case schema.ColPickupDatetime, schema.ColExtractedAt:
				vals[r] = ts
			case schema.ColPassengerCount:
				vals[r] = int64(r)
			case schema.ColFareAmount:
				vals[r] = 9.5
			}
		}
		cols[i] = table.Column{Name: n, Values: vals}
	}
	tbl, err := table.FromColumns(cols)
	if err != nil {
		t.Fatal(err)
	}

	n, err := storage.LoadTable(ctx, slog.New(slog.DiscardHandler), repo, tbl, 2)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if n != 5 {
		t.Fatalf("inserted %d, want 5", n)
	}
	if got := count(t, repo, "ingestion.trips"); got != 5 {
		t.Fatalf("COUNT(*) = %d, want 5", got)
	}

	// Duplicate keys are accepted; the table is append-only.
	if _, err := storage.LoadTable(ctx, slog.New(slog.DiscardHandler), repo, tbl, 10); err != nil {
		t.Fatalf("second LoadTable: %v", err)
	}
	if got := count(t, repo, "ingestion.trips"); got != 10 {
		t.Fatalf("COUNT(*) = %d, want 10", got)
	}
}

func TestCopyFrom_RowLengthMismatchRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepo(t, "t")
	if err := repo.Exec(ctx, `CREATE TABLE "t" ("a" TEXT, "b" INTEGER)`); err != nil {
		t.Fatal(err)
	}

	_, err := repo.CopyFrom(ctx, []string{"a", "b"}, [][]any{{"x", int64(1)}, {"y"}})
	if err == nil {
		t.Fatalf("expected row length error")
	}
	if got := count(t, repo, "t"); got != 0 {
		t.Fatalf("COUNT(*) = %d after rollback, want 0", got)
	}
}

func TestNewRepository_Validation(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{Table: "t"}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
	if _, _, err := NewRepository(context.Background(), Config{DSN: ":memory:"}); err == nil {
		t.Fatalf("expected error for empty table")
	}
}

func TestMapType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"integer": "INTEGER", "double": "REAL", "timestamp": "TIMESTAMP", "string": "TEXT",
	} {
		if got := MapType(in); got != want {
			t.Errorf("MapType(%q) = %q, want %q", in, got, want)
		}
	}
}
