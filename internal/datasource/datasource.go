// Package datasource defines how the pipeline retrieves remote objects.
//
// Implementations live in subpackages (httpds for plain HTTP, s3ds for
// S3-compatible stores). Each call is a single attempt; retry policy, if
// any, belongs to whatever orchestrates the run.
package datasource

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by Source implementations when the requested object
// does not exist. Callers treat it as "no data" rather than a failure.
var ErrNotFound = errors.New("object not found")

// Denied reports whether err is a not-found inferred from an access-denied
// answer rather than a definite "no such object". Such skips may hide a real
// permission problem and are worth surfacing louder.
func Denied(err error) bool {
	var d interface{ Denied() bool }
	return errors.As(err, &d) && d.Denied()
}

// Source fetches a named object and returns its full body.
//
// Implementations must be safe for concurrent use.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Locate returns the human-readable location of name (URL, s3:// URI)
	// used in logs and diagnostics.
	Locate(name string) string
}
