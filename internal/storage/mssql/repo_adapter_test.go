package mssql

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"tripetl/internal/schema"
	"tripetl/internal/storage"
)

func TestAdapterRegistration(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var got Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:  "mssql",
		DSN:   "sqlserver://sa:pw@localhost:1433?database=trips",
		Table: "ingestion.trips",
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if got.Table != "ingestion.trips" || !strings.HasPrefix(got.DSN, "sqlserver://") {
		t.Fatalf("cfg = %+v", got)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not call closeFn")
	}
}

type execRepo struct{ stmts []string }

func (e *execRepo) CopyFrom(context.Context, []string, [][]any) (int64, error) { return 0, nil }
func (e *execRepo) Exec(_ context.Context, sql string) error {
	e.stmts = append(e.stmts, sql)
	return nil
}
func (e *execRepo) Close() {}

func TestEnsureTable_ObjectIDGuard(t *testing.T) {
	t.Parallel()

	repo := &execRepo{}
	if err := storage.EnsureTable(context.Background(), "mssql", repo, "ingestion.trips", schema.Trips); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	sql := repo.stmts[0]
	for _, want := range []string{
		"IF OBJECT_ID(N'[ingestion].[trips]', N'U') IS NULL\nBEGIN\n  CREATE TABLE [ingestion].[trips] (\n    [trip_hash] NVARCHAR(MAX) NOT NULL,",
		"[pickup_datetime] DATETIME2,",
		"[passenger_count] BIGINT,",
		"[fare_amount] FLOAT,",
		"\n  );\nEND;",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("DDL missing %q:\n%s", want, sql)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	if got := quoteIdent("a]b"); got != "[a]]b]" {
		t.Fatalf("quoteIdent = %s", got)
	}
	if got := Dialect.QuoteFQN("dbo.trips"); got != "[dbo].[trips]" {
		t.Fatalf("QuoteFQN = %s", got)
	}
}

func TestNewRepository_Validation(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://sa:pw@localhost", Table: ""}); err == nil {
		t.Fatalf("expected error for empty table")
	}
}

// TestCopyFrom_Integration runs only when TEST_MSSQL_DSN is set.
func TestCopyFrom_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_MSSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MSSQL_DSN not set; skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	table := "dbo.tripetl_it_trips"
	repo, err := storage.New(ctx, storage.Config{Kind: "mssql", DSN: dsn, Table: table})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	_ = repo.Exec(ctx, "DROP TABLE IF EXISTS [dbo].[tripetl_it_trips]")
	if err := storage.EnsureTable(ctx, "mssql", repo, table, schema.Trips); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	row := make([]any, len(schema.Trips.Fields))
	row[0] = "abc"
	if n, err := repo.CopyFrom(ctx, schema.Trips.Names(), [][]any{row}); err != nil || n != 1 {
		t.Fatalf("CopyFrom n=%d err=%v", n, err)
	}
}
