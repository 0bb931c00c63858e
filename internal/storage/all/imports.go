// Package all links every storage backend into the binary. Import it for
// side effects so storage.New can resolve any supported kind.
package all

import (
	_ "tripetl/internal/storage/duckdb"
	_ "tripetl/internal/storage/mssql"
	_ "tripetl/internal/storage/postgres"
	_ "tripetl/internal/storage/sqlite"
)
