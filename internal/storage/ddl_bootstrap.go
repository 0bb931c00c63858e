package storage

import (
	"context"
	"fmt"
	"sync"

	"tripetl/internal/schema"
)

// DDLBootstrapper creates the destination table for contract if it does not
// exist. Backends register one per kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, contract schema.Contract) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind against repo.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, contract schema.Contract) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, table, contract)
}
