package compare

import (
	"context"
	"testing"

	"github.com/exceltoolspro/exceltools/internal/table"
)

func sourceTable() *table.Table {
	t := table.New("REF", "Title")
	t.AppendRow("A-100", "First")
	t.AppendRow("a-200", "Second")
	t.AppendRow("A-3O0", "Typo")
	t.AppendRow("Z-999", "Gone")
	return t
}

func targetTable() *table.Table {
	t := table.New("REF", "Notes")
	t.AppendRow("A-100", "")
	t.AppendRow("A-200", "")
	t.AppendRow("A-300", "")
	return t
}

func TestExactMembership(t *testing.T) {
	r, err := Run(context.Background(), sourceTable(), targetTable(), Options{SourceKey: "REF"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if r.Stats.ExactMatches != 2 {
		t.Errorf("exact matches = %d, expected 2 (case-insensitive)", r.Stats.ExactMatches)
	}
	if r.Stats.Missing != 2 {
		t.Errorf("missing = %d, expected 2", r.Stats.Missing)
	}
	if r.Found.NumRows()+r.Missing.NumRows() != 4 {
		t.Errorf("rows do not partition the source")
	}

	typeCol := r.Found.ColumnIndex("Match Type")
	if r.Found.Cell(0, typeCol) != "exact" {
		t.Errorf("match type = %q", r.Found.Cell(0, typeCol))
	}
}

func TestCaseSensitive(t *testing.T) {
	r, err := Run(context.Background(), sourceTable(), targetTable(), Options{
		SourceKey:     "REF",
		CaseSensitive: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Stats.ExactMatches != 1 {
		t.Errorf("case-sensitive exact matches = %d, expected 1", r.Stats.ExactMatches)
	}
}

func TestFuzzyFallback(t *testing.T) {
	r, err := Run(context.Background(), sourceTable(), targetTable(), Options{
		SourceKey:      "REF",
		Fuzzy:          true,
		FuzzyThreshold: 0.75,
	})
	if err != nil {
		t.Fatal(err)
	}

	// The typo key A-3O0 should fuzzy-match A-300.
	if r.Stats.FuzzyMatches != 1 {
		t.Fatalf("fuzzy matches = %d, expected 1", r.Stats.FuzzyMatches)
	}
	valCol := r.Found.ColumnIndex("Matched Value")
	typeCol := r.Found.ColumnIndex("Match Type")
	last := r.Found.NumRows() - 1
	if r.Found.Cell(last, valCol) != "A-300" || r.Found.Cell(last, typeCol) != "fuzzy" {
		t.Errorf("fuzzy row = %q/%q", r.Found.Cell(last, valCol), r.Found.Cell(last, typeCol))
	}
}

func TestContainment(t *testing.T) {
	source := table.New("Code")
	source.AppendRow("A-100")

	target := table.New("Description")
	target.AppendRow("See document A-100 rev 2")

	r, err := Run(context.Background(), source, target, Options{
		SourceKey:   "Code",
		TargetKey:   "Description",
		Containment: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Found.NumRows() != 1 {
		t.Fatalf("containment found = %d", r.Found.NumRows())
	}
	if r.Found.Cell(0, r.Found.ColumnIndex("Match Type")) != "contains" {
		t.Errorf("match type = %q", r.Found.Cell(0, r.Found.ColumnIndex("Match Type")))
	}
}

func TestUnknownColumns(t *testing.T) {
	if _, err := Run(context.Background(), sourceTable(), targetTable(), Options{SourceKey: "Nope"}); err == nil {
		t.Error("expected error for unknown source column")
	}
	if _, err := Run(context.Background(), sourceTable(), targetTable(), Options{SourceKey: "REF", TargetKey: "Nope"}); err == nil {
		t.Error("expected error for unknown target column")
	}
}
