// Package mssql wires the SQL Server backend into the storage factory.
package mssql

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

// EnsureTable creates the table for contract unless OBJECT_ID finds it.
func EnsureTable(ctx context.Context, repo storage.Repository, table string, contract schema.Contract) error {
	td, err := ddl.FromContract(contract, table, MapType)
	if err != nil {
		return fmt.Errorf("infer table definition: %w", err)
	}
	sql, err := Dialect.BuildCreateTableSQL(td)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("mssql", EnsureTable)
}
