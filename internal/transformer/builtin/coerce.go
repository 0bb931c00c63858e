package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tripetl/internal/schema"
	"tripetl/internal/table"
)

// Coerce converts column values to the Go type of their logical type:
// integer -> int64, double -> float64, timestamp -> time.Time (UTC),
// string -> string. Values that cannot be converted become nil. Columns
// without an entry in Types pass through untouched.
type Coerce struct {
	Types map[string]string // column -> schema.Type*
}

func (c Coerce) Apply(in *table.Table) (*table.Table, error) {
	if len(c.Types) == 0 {
		return in, nil
	}
	cols := make([]table.Column, len(in.Columns))
	for i, col := range in.Columns {
		conv := converter(c.Types[col.Name])
		if conv == nil {
			cols[i] = col
			continue
		}
		vals := make([]any, len(col.Values))
		for j, v := range col.Values {
			if v != nil {
				vals[j] = conv(v)
			}
		}
		cols[i] = table.Column{Name: col.Name, Values: vals}
	}
	return table.FromColumns(cols)
}

func converter(typ string) func(any) any {
	switch typ {
	case schema.TypeInteger:
		return toInt
	case schema.TypeDouble:
		return toFloat
	case schema.TypeTimestamp:
		return toTime
	case schema.TypeString:
		return toString
	}
	return nil
}

func toInt(v any) any {
	switch x := v.(type) {
	case int64:
		return x
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float64:
		return floatToInt(x)
	case float32:
		return floatToInt(float64(x))
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	}
	return nil
}

// floatToInt accepts only integral values; counts stored as 1.0 are common
// in the green and FHV extracts.
func floatToInt(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil
	}
	return int64(f)
}

func toFloat(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

func toTime(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC()
	case string:
		s := strings.TrimSpace(x)
		for _, l := range timeLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t.UTC()
			}
		}
	}
	return nil
}

func toString(v any) any {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}
