package ddl

import (
	"strings"
	"testing"

	"tripetl/internal/schema"
)

func TestBuildCreateTableSQL_Generic(t *testing.T) {
	t.Parallel()

	got, err := Generic.BuildCreateTableSQL(TableDef{
		FQN: "ingestion.trips",
		Columns: []ColumnDef{
			{Name: "trip_hash", SQLType: "TEXT", PrimaryKey: true},
			{Name: "fare_amount", SQLType: "DOUBLE", Nullable: true, Default: "0"},
		},
	})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS ingestion.trips (\n" +
		"  trip_hash TEXT NOT NULL,\n" +
		"  fare_amount DOUBLE DEFAULT 0,\n" +
		"  PRIMARY KEY (trip_hash)\n" +
		");"
	if got != want {
		t.Fatalf("SQL mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildCreateTableSQL_QuotingAndWrap(t *testing.T) {
	t.Parallel()

	d := Dialect{
		Name:       "test ddl",
		QuoteIdent: func(s string) string { return "[" + s + "]" },
		Wrap: func(fqn, body string) string {
			return "CREATE " + fqn + " (" + body + ")"
		},
	}
	got, err := d.BuildCreateTableSQL(TableDef{FQN: "a. b", Columns: []ColumnDef{{Name: "c", SQLType: "INT", Nullable: true}}})
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	if got != "CREATE [a].[b] ([c] INT)" {
		t.Fatalf("got %q", got)
	}
}

func TestBuildCreateTableSQL_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  TableDef
		frag string
	}{
		{"empty fqn", TableDef{Columns: []ColumnDef{{Name: "a", SQLType: "INT"}}}, "FQN"},
		{"no columns", TableDef{FQN: "t"}, "at least one column"},
		{"blank column name", TableDef{FQN: "t", Columns: []ColumnDef{{Name: " ", SQLType: "INT"}}}, "empty name"},
		{"missing type", TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a"}}}, "missing SQLType"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Generic.BuildCreateTableSQL(tc.def)
			if err == nil || !strings.Contains(err.Error(), tc.frag) {
				t.Fatalf("err = %v, want containing %q", err, tc.frag)
			}
		})
	}
}

func TestFromContract(t *testing.T) {
	t.Parallel()

	td, err := FromContract(schema.Trips, "", strings.ToUpper)
	if err != nil {
		t.Fatalf("FromContract: %v", err)
	}
	if td.FQN != "ingestion.trips" {
		t.Fatalf("FQN = %q, want contract name", td.FQN)
	}
	if len(td.Columns) != len(schema.Trips.Fields) {
		t.Fatalf("columns = %d", len(td.Columns))
	}
	first := td.Columns[0]
	if first.Name != "trip_hash" || first.Nullable || first.PrimaryKey || first.SQLType != "STRING" {
		t.Fatalf("trip_hash column = %+v", first)
	}
	if !td.Columns[1].Nullable {
		t.Fatalf("non-key columns must be nullable")
	}

	if _, err := FromContract(schema.Contract{Name: "x"}, "", strings.ToUpper); err == nil {
		t.Fatalf("expected error for empty contract")
	}
}
