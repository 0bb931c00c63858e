// Package builtin contains the transformers that bring a raw trip extract
// into the canonical shape: Reconcile renames and selects columns, Coerce
// fixes value types and SurrogateKey derives trip_hash.
package builtin

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"tripetl/internal/schema"
	"tripetl/internal/table"
)

// Renames maps source column names onto canonical ones. Lookup is done on
// the folded form (see FoldName), so PULocationID and PUlocationID share an
// entry. The table is the same for every taxi type.
var Renames = map[string]string{
	"tpep_pickup_datetime":  schema.ColPickupDatetime,
	"lpep_pickup_datetime":  schema.ColPickupDatetime,
	"tpep_dropoff_datetime": schema.ColDropoffDatetime,
	"lpep_dropoff_datetime": schema.ColDropoffDatetime,
	"dropoff_datetime":      schema.ColDropoffDatetime,
	"pulocationid":          "pickup_location_id",
	"dolocationid":          "dropoff_location_id",
	"airport_fee":           "airport_fee",
	"trip_miles":            "trip_distance",
	"base_passenger_fare":   schema.ColFareAmount,
	"tips":                  "tip_amount",
	"tolls":                 "tolls_amount",
}

// FoldName returns the case-folded, NFC-normalized, trimmed form of a
// column name. A Caser is stateful, so each call builds its own.
func FoldName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// CanonicalName returns the canonical name for a source column, or the
// name unchanged when it has no rename entry.
func CanonicalName(src string) string {
	if to, ok := Renames[FoldName(src)]; ok {
		return to
	}
	return src
}

// Reconcile projects a raw table onto Contract: renames source columns,
// stamps taxi_type, and returns exactly the contract's columns in order.
// extracted_at is set from ExtractedAt, or left nil when it is zero so the
// caller can stamp it later. Missing columns are all nil and extra columns are
// dropped. When two source columns map to the same name the first wins.
type Reconcile struct {
	Contract    schema.Contract
	Variant     string
	ExtractedAt time.Time
}

func (r Reconcile) Apply(in *table.Table) (*table.Table, error) {
	n := in.Len()

	byName := make(map[string][]any, len(in.Columns))
	for _, c := range in.Columns {
		name := CanonicalName(c.Name)
		if _, taken := byName[name]; taken {
			continue
		}
		byName[name] = c.Values
	}
	byName[schema.ColTaxiType] = constant(r.Variant, n)
	if r.ExtractedAt.IsZero() {
		delete(byName, schema.ColExtractedAt)
	} else {
		byName[schema.ColExtractedAt] = constant(r.ExtractedAt.UTC(), n)
	}

	cols := make([]table.Column, len(r.Contract.Fields))
	for i, f := range r.Contract.Fields {
		vals, ok := byName[f.Name]
		if !ok {
			vals = make([]any, n)
		}
		cols[i] = table.Column{Name: f.Name, Values: vals}
	}
	return table.FromColumns(cols)
}

func constant(v any, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}
