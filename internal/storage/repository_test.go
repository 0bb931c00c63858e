package storage

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"tripetl/internal/schema"
)

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	closed bool
	execs  []string
}

func (f *fakeRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (f *fakeRepo) Close() { f.closed = true }

func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return nil
}

func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	var seen Config
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		seen = cfg
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: kind, DSN: "mem", Table: "t"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}
	if seen.DSN != "mem" || seen.Table != "t" {
		t.Fatalf("factory got cfg %+v", seen)
	}
	if !slices.Contains(ListKinds(), kind) {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, ListKinds())
	}
}

// TestNew_Unsupported verifies that unsupported kinds return a helpful error.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if got, want := err.Error(), "unsupported storage.kind=does-not-exist (registered: "; !strings.HasPrefix(got, want) {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

// TestRegister_Override verifies that re-registering a kind replaces the
// previous factory.
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls++
		return &fakeRepo{}, nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls += 10
		return &fakeRepo{}, nil
	})

	if _, err := New(context.Background(), Config{Kind: kind}); err != nil {
		t.Fatalf("New error: %v", err)
	}
	if calls != 10 {
		t.Fatalf("factory call count = %d, want 10", calls)
	}
}

// TestListKinds_Snapshot checks ListKinds returns a copy.
func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	Register("snap", func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil })

	a := ListKinds()
	if len(a) == 0 {
		t.Fatalf("ListKinds empty after registration")
	}
	a[0] = "mutated"
	if b := ListKinds(); reflect.DeepEqual(a, b) {
		t.Fatalf("ListKinds returned same slice; want snapshot copy")
	}
}

// TestRegister_AllowsErrors shows factory errors bubble up.
func TestRegister_AllowsErrors(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("dial failed")
	Register("broken", func(ctx context.Context, cfg Config) (Repository, error) { return nil, wantErr })

	if _, err := New(context.Background(), Config{Kind: "broken"}); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestEnsureTable_Dispatch(t *testing.T) {
	t.Parallel()

	var gotTable string
	RegisterDDL("fake-ddl", func(ctx context.Context, repo Repository, table string, c schema.Contract) error {
		gotTable = table
		return repo.Exec(ctx, "CREATE "+table)
	})

	repo := &fakeRepo{}
	if err := EnsureTable(context.Background(), "fake-ddl", repo, "ingestion.trips", schema.Trips); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if gotTable != "ingestion.trips" || len(repo.execs) != 1 {
		t.Fatalf("table=%q execs=%v", gotTable, repo.execs)
	}

	if err := EnsureTable(context.Background(), "nope", repo, "t", schema.Trips); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}
