// Package fetch turns calendar months and taxi types into fetch units and
// retrieves each unit's object, classifying the result as loaded, skipped
// or failed.
package fetch

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"tripetl/internal/window"
)

// DefaultVariant is used when no taxi type is requested.
const DefaultVariant = "yellow"

// Unit is one (month, variant) pair. Index is its position in enumeration
// order and is what the aggregator sorts on.
type Unit struct {
	Index   int
	Year    int
	Month   time.Month
	Variant string
}

// ObjectName is the remote object for the unit, e.g.
// yellow_tripdata_2024-01.parquet.
func (u Unit) ObjectName() string {
	return fmt.Sprintf("%s_tripdata_%04d-%02d.parquet", u.Variant, u.Year, int(u.Month))
}

func (u Unit) String() string {
	return fmt.Sprintf("%s/%04d-%02d", u.Variant, u.Year, int(u.Month))
}

// Variants trims blanks, drops duplicates keeping the first occurrence and
// falls back to DefaultVariant when nothing is left.
func Variants(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return []string{DefaultVariant}
	}
	return out
}

// Enumerate crosses months with variants, months outer and variants inner.
func Enumerate(months iter.Seq[window.Month], variants []string) []Unit {
	vs := Variants(variants)
	var units []Unit
	for m := range months {
		for _, v := range vs {
			units = append(units, Unit{
				Index:   len(units),
				Year:    m.Year,
				Month:   m.Month,
				Variant: v,
			})
		}
	}
	return units
}
