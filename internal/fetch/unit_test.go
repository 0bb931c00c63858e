package fetch

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripetl/internal/window"
)

func TestEnumerate_Order(t *testing.T) {
	t.Parallel()

	w, err := window.Parse("2024-01-01", "2024-03-01")
	require.NoError(t, err)

	units := Enumerate(w.Months(), []string{"yellow", "green"})
	want := []Unit{
		{Index: 0, Year: 2024, Month: time.January, Variant: "yellow"},
		{Index: 1, Year: 2024, Month: time.January, Variant: "green"},
		{Index: 2, Year: 2024, Month: time.February, Variant: "yellow"},
		{Index: 3, Year: 2024, Month: time.February, Variant: "green"},
	}
	assert.Equal(t, want, units)
}

func TestEnumerate_DefaultAndDedup(t *testing.T) {
	t.Parallel()

	w, err := window.Parse("2024-05-10", "2024-05-11")
	require.NoError(t, err)

	tests := []struct {
		name     string
		variants []string
		want     []string
	}{
		{"nil", nil, []string{"yellow"}},
		{"empty", []string{}, []string{"yellow"}},
		{"blanks only", []string{" ", ""}, []string{"yellow"}},
		{"duplicates", []string{"green", "yellow", "green"}, []string{"green", "yellow"}},
		{"trimmed", []string{" fhv "}, []string{"fhv"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, u := range Enumerate(w.Months(), tc.variants) {
				got = append(got, u.Variant)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnumerate_Cardinality(t *testing.T) {
	t.Parallel()

	w, err := window.Parse("2022-11-01", "2024-02-01")
	require.NoError(t, err)
	months := slices.Collect(w.Months())
	variants := []string{"yellow", "green", "fhv"}

	units := Enumerate(w.Months(), variants)
	require.Len(t, units, len(months)*len(variants))
	for i, u := range units {
		assert.Equal(t, i, u.Index)
	}
}

func TestUnit_ObjectName(t *testing.T) {
	t.Parallel()

	u := Unit{Year: 2024, Month: time.March, Variant: "green"}
	assert.Equal(t, "green_tripdata_2024-03.parquet", u.ObjectName())
	assert.Equal(t, "green/2024-03", u.String())
}
