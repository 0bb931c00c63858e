package transformer

import (
	"errors"
	"testing"

	"tripetl/internal/table"
)

type stepFunc func(*table.Table) (*table.Table, error)

func (f stepFunc) Apply(t *table.Table) (*table.Table, error) { return f(t) }

/*
addColumn appends a constant column. Used to verify tables flow through Chain
in order.
*/
func addColumn(name string, v any) stepFunc {
	return func(in *table.Table) (*table.Table, error) {
		vals := make([]any, in.Len())
		for i := range vals {
			vals[i] = v
		}
		return table.FromColumns(append(in.Columns, table.Column{Name: name, Values: vals}))
	}
}

func TestChain_AppliesInOrder(t *testing.T) {
	in, err := table.FromColumns([]table.Column{{Name: "a", Values: []any{1, 2}}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := Chain{addColumn("b", "x"), addColumn("c", "y")}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := out.Names()
	if len(got) != 3 || got[1] != "b" || got[2] != "c" {
		t.Fatalf("names = %v", got)
	}
	if out.Len() != 2 {
		t.Fatalf("rows = %d", out.Len())
	}
}

func TestChain_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	count := stepFunc(func(in *table.Table) (*table.Table, error) { calls++; return in, nil })
	fail := stepFunc(func(*table.Table) (*table.Table, error) { return nil, boom })

	_, err := Chain{count, fail, count}.Apply(table.New("a"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestChain_Empty(t *testing.T) {
	in := table.New("a")
	out, err := Chain(nil).Apply(in)
	if err != nil || out != in {
		t.Fatalf("empty chain should return input unchanged")
	}
}
