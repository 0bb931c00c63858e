package duckdb

import (
	"context"
	"fmt"

	"tripetl/internal/ddl"
	"tripetl/internal/schema"
	"tripetl/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// EnsureTable creates the schema (when qualified) and the table for
// contract if they do not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string, contract schema.Contract) error {
	if table == "" {
		table = contract.Name
	}
	td, err := ddl.FromContract(contract, table, MapType)
	if err != nil {
		return fmt.Errorf("infer table definition: %w", err)
	}
	if sch, _ := splitFQN(td.FQN); sch != "" {
		if err := repo.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+Dialect.QuoteFQN(sch)+";"); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	sql, err := Dialect.BuildCreateTableSQL(td)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}

func init() {
	storage.Register("duckdb", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("duckdb", EnsureTable)
}
