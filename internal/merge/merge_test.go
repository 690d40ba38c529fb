package merge

import (
	"context"
	"testing"

	"github.com/exceltoolspro/exceltools/internal/table"
)

func mainTable() *table.Table {
	t := table.New("REF", "Title")
	t.AppendRow("A-1", "First")
	t.AppendRow(" A-2 ", "Second") // key needs trimming
	t.AppendRow("A-9", "Orphan")
	t.AppendRow("", "No key")
	return t
}

func refTable() *table.Table {
	t := table.New("REF", "Owner", "Title", "LAST")
	t.AppendRow("A-1", "Alice", "First ref", "Y")
	t.AppendRow("A-2", "Bob", "Second ref", "N")
	t.AppendRow("A-2", "Carol", "Second ref v2", "Y")
	return t
}

func TestLeftJoin(t *testing.T) {
	r, err := Run(context.Background(), mainTable(), refTable(), Options{
		MainKey:        "REF",
		AddMatchColumn: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if r.Table.NumRows() != 4 {
		t.Fatalf("output rows = %d, expected 4", r.Table.NumRows())
	}
	// Colliding Title column from the reference is renamed.
	if idx := r.Table.ColumnIndex("Title_REF"); idx < 0 {
		t.Errorf("headers = %v, expected Title_REF", r.Table.Headers)
	}

	if r.Table.Cell(0, r.Table.ColumnIndex("Owner")) != "Alice" {
		t.Errorf("matched owner = %q", r.Table.Cell(0, r.Table.ColumnIndex("Owner")))
	}
	// Trimmed key matches; first duplicate wins.
	if got := r.Table.Cell(1, r.Table.ColumnIndex("Owner")); got != "Bob" {
		t.Errorf("trimmed key owner = %q, expected Bob", got)
	}

	match := r.Table.ColumnIndex("MATCH")
	if r.Table.Cell(0, match) != "OUI" || r.Table.Cell(2, match) != "NON" {
		t.Errorf("match column = %q/%q", r.Table.Cell(0, match), r.Table.Cell(2, match))
	}

	if r.Stats.Matched != 2 || r.Stats.Unmatched != 2 || r.Stats.EmptyKeys != 1 {
		t.Errorf("stats = %+v", r.Stats)
	}
	if r.Stats.DuplicateKeys != 1 {
		t.Errorf("duplicate keys = %d, expected 1", r.Stats.DuplicateKeys)
	}
	if len(r.Stats.UnmatchedSample) != 1 || r.Stats.UnmatchedSample[0] != "A-9" {
		t.Errorf("unmatched sample = %v", r.Stats.UnmatchedSample)
	}
}

func TestFilterLastOnly(t *testing.T) {
	r, err := Run(context.Background(), mainTable(), refTable(), Options{
		MainKey:        "REF",
		FilterLastOnly: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if r.Stats.FilteredRef != 2 {
		t.Errorf("filtered ref rows = %d, expected 2", r.Stats.FilteredRef)
	}
	// With history filtered, A-2 resolves to the current row.
	if got := r.Table.Cell(1, r.Table.ColumnIndex("Owner")); got != "Carol" {
		t.Errorf("owner after LAST filter = %q, expected Carol", got)
	}
}

func TestMatchesOnly(t *testing.T) {
	r, err := Run(context.Background(), mainTable(), refTable(), Options{
		MainKey:     "REF",
		MatchesOnly: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if r.Table.NumRows() != 2 {
		t.Errorf("matched-only rows = %d, expected 2", r.Table.NumRows())
	}
}

func TestMissingKeyColumn(t *testing.T) {
	if _, err := Run(context.Background(), mainTable(), refTable(), Options{MainKey: "Nope"}); err == nil {
		t.Error("expected error for unknown main key")
	}
	if _, err := Run(context.Background(), mainTable(), refTable(), Options{MainKey: "REF", RefKey: "Nope"}); err == nil {
		t.Error("expected error for unknown ref key")
	}
}

func TestAutoKey(t *testing.T) {
	key, ok := AutoKey(mainTable(), refTable(), []string{"ID", "REF", "Code"})
	if !ok || key != "REF" {
		t.Errorf("AutoKey = %q/%v", key, ok)
	}
	if _, ok := AutoKey(mainTable(), refTable(), []string{"ID"}); ok {
		t.Error("AutoKey should fail when no pattern is shared")
	}
}
