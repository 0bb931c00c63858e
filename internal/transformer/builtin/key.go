package builtin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tripetl/internal/schema"
	"tripetl/internal/table"
)

// KeySeparator joins the stringified key columns.
const KeySeparator = "|"

// keyTimeLayout prints fractional seconds only when they are non-zero.
const keyTimeLayout = "2006-01-02 15:04:05.999999999"

// SurrogateKey fills Column with the fingerprint of Keys: each key column
// is stringified as a whole, then the strings are joined row by row. Nil
// stringifies to "" so every key has len(Keys)-1 separators. Equal inputs
// always give equal keys; distinct trips may collide.
type SurrogateKey struct {
	Column string
	Keys   []string
}

// TripHash is the key used for the canonical trips table.
var TripHash = SurrogateKey{Column: schema.ColTripHash, Keys: schema.KeyColumns}

func (k SurrogateKey) Apply(in *table.Table) (*table.Table, error) {
	target := in.Index(k.Column)
	if target < 0 {
		return nil, fmt.Errorf("surrogate key: missing output column %q", k.Column)
	}

	parts := make([][]string, len(k.Keys))
	for i, name := range k.Keys {
		vals, ok := in.Column(name)
		if !ok {
			return nil, fmt.Errorf("surrogate key: missing key column %q", name)
		}
		parts[i] = StringifyColumn(vals)
	}

	n := in.Len()
	keys := make([]any, n)
	row := make([]string, len(parts))
	for r := 0; r < n; r++ {
		for i := range parts {
			row[i] = parts[i][r]
		}
		keys[r] = strings.Join(row, KeySeparator)
	}

	cols := make([]table.Column, len(in.Columns))
	copy(cols, in.Columns)
	cols[target] = table.Column{Name: k.Column, Values: keys}
	return table.FromColumns(cols)
}

// StringifyColumn renders every value of a column for key derivation.
func StringifyColumn(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = Stringify(v)
	}
	return out
}

// Stringify renders one value: nil is "", timestamps use
// "2006-01-02 15:04:05" with optional fraction, floats the shortest
// decimal form.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(keyTimeLayout)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(v)
	}
}
