// Package parquet decodes a Parquet object held in memory into a
// table.Table. Only flat top-level columns are read; nested groups are
// ignored since trip extracts never use them.
package parquet

import (
	"fmt"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go/common"
	pq "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/types"

	"tripetl/internal/table"
)

// Decode reads every flat column of the Parquet file in data. Values come
// back as string, bool, int64, float64 or time.Time; nulls are nil.
func Decode(data []byte) (t *table.Table, err error) {
	// parquet-go panics on some malformed footers.
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("parquet: decode: %v", r)
		}
	}()

	pr, err := reader.NewParquetColumnReader(newBytesFile(data), 1)
	if err != nil {
		return nil, fmt.Errorf("parquet: open: %w", err)
	}
	defer pr.ReadStop()

	n := pr.GetNumRows()
	sh := pr.SchemaHandler

	cols := make([]table.Column, 0, len(sh.ValueColumns))
	for i, path := range sh.ValueColumns {
		if strings.Count(path, common.PAR_GO_PATH_DELIMITER) != 1 {
			continue
		}
		idx, ok := sh.MapIndex[path]
		if !ok {
			continue
		}

		var raw []any
		if n > 0 {
			raw, _, _, err = pr.ReadColumnByIndex(int64(i), n)
			if err != nil {
				return nil, fmt.Errorf("parquet: read column %s: %w", sh.Infos[idx].ExName, err)
			}
		}
		if int64(len(raw)) != n {
			return nil, fmt.Errorf("parquet: column %s: got %d values, want %d", sh.Infos[idx].ExName, len(raw), n)
		}

		conv := converterFor(sh.SchemaElements[idx])
		vals := make([]any, len(raw))
		for j, v := range raw {
			vals[j] = conv(v)
		}
		cols = append(cols, table.Column{Name: sh.Infos[idx].ExName, Values: vals})
	}

	out, err := table.FromColumns(cols)
	if err != nil {
		return nil, fmt.Errorf("parquet: %w", err)
	}
	return out, nil
}

type converter func(any) any

func converterFor(el *pq.SchemaElement) converter {
	if unit, ok := timestampUnit(el); ok {
		return func(v any) any {
			switch x := v.(type) {
			case int64:
				return fromEpoch(x, unit)
			case nil:
				return nil
			}
			return widen(v)
		}
	}
	if el.Type != nil && *el.Type == pq.Type_INT96 {
		return func(v any) any {
			if s, ok := v.(string); ok {
				return types.INT96ToTime(s).UTC()
			}
			return widen(v)
		}
	}
	if el.ConvertedType != nil && *el.ConvertedType == pq.ConvertedType_DATE {
		return func(v any) any {
			if d, ok := v.(int32); ok {
				return time.Unix(int64(d)*86400, 0).UTC()
			}
			return widen(v)
		}
	}
	return widen
}

// widen maps the narrower physical types onto int64/float64.
func widen(v any) any {
	switch x := v.(type) {
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

func timestampUnit(el *pq.SchemaElement) (time.Duration, bool) {
	if lt := el.LogicalType; lt != nil && lt.TIMESTAMP != nil && lt.TIMESTAMP.Unit != nil {
		u := lt.TIMESTAMP.Unit
		switch {
		case u.MILLIS != nil:
			return time.Millisecond, true
		case u.MICROS != nil:
			return time.Microsecond, true
		case u.NANOS != nil:
			return time.Nanosecond, true
		}
	}
	if ct := el.ConvertedType; ct != nil {
		switch *ct {
		case pq.ConvertedType_TIMESTAMP_MILLIS:
			return time.Millisecond, true
		case pq.ConvertedType_TIMESTAMP_MICROS:
			return time.Microsecond, true
		}
	}
	return 0, false
}

func fromEpoch(v int64, unit time.Duration) time.Time {
	switch unit {
	case time.Millisecond:
		return time.UnixMilli(v).UTC()
	case time.Microsecond:
		return time.UnixMicro(v).UTC()
	default:
		return time.Unix(0, v).UTC()
	}
}
