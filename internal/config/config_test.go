package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "config.json"))
	cfg := m.Load()

	if cfg.ExcelExport.HeaderBgColor != "#1F4E79" {
		t.Errorf("HeaderBgColor = %q", cfg.ExcelExport.HeaderBgColor)
	}
	if cfg.Transfer.MaxRowsToScan != 200 {
		t.Errorf("MaxRowsToScan = %d", cfg.Transfer.MaxRowsToScan)
	}
	if cfg.Search.FuzzyThreshold != 0.8 {
		t.Errorf("FuzzyThreshold = %v", cfg.Search.FuzzyThreshold)
	}
}

func TestLoadCorruptFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path)
	cfg := m.Load()

	if cfg.Performance.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, expected default 4", cfg.Performance.MaxConcurrency)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	m := NewManager(path)
	m.Config().Search.FuzzyThreshold = 0.65
	m.Config().Merge.DefaultOutputSheetName = "Joined"
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	m2 := NewManager(path)
	cfg := m2.Load()
	if cfg.Search.FuzzyThreshold != 0.65 {
		t.Errorf("FuzzyThreshold = %v after reload", cfg.Search.FuzzyThreshold)
	}
	if cfg.Merge.DefaultOutputSheetName != "Joined" {
		t.Errorf("DefaultOutputSheetName = %q after reload", cfg.Merge.DefaultOutputSheetName)
	}
	// Untouched fields keep their defaults.
	if cfg.Transfer.AdjacentColumnsToCheck != 3 {
		t.Errorf("AdjacentColumnsToCheck = %d", cfg.Transfer.AdjacentColumnsToCheck)
	}
}

func TestGetSetDottedPath(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "config.json"))
	m.Config().AutoSaveConfig = false

	if v := m.Get("excel_export.header_bg_color"); v != "#1F4E79" {
		t.Errorf("Get header_bg_color = %v", v)
	}
	if v := m.Get("no.such.key"); v != nil {
		t.Errorf("Get unknown = %v, expected nil", v)
	}

	if err := m.Set("search.fuzzy_threshold", "0.9"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if m.Config().Search.FuzzyThreshold != 0.9 {
		t.Errorf("FuzzyThreshold = %v after Set", m.Config().Search.FuzzyThreshold)
	}

	if err := m.Set("excel_export.freeze_header", "false"); err != nil {
		t.Fatalf("Set bool failed: %v", err)
	}
	if m.Config().ExcelExport.FreezeHeader {
		t.Error("FreezeHeader still true after Set")
	}

	if err := m.Set("merge.key_column_patterns", "REF, Code"); err != nil {
		t.Fatalf("Set slice failed: %v", err)
	}
	got := m.Config().Merge.KeyColumnPatterns
	if len(got) != 2 || got[0] != "REF" || got[1] != "Code" {
		t.Errorf("KeyColumnPatterns = %v", got)
	}

	if err := m.Set("search.nonexistent", "x"); err == nil {
		t.Error("expected error for unknown setting")
	}
}

func TestResetSection(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "config.json"))
	m.Config().AutoSaveConfig = false
	m.Config().Transfer.MaxRowsToScan = 5

	if err := m.ResetSection("transfer"); err != nil {
		t.Fatalf("ResetSection failed: %v", err)
	}
	if m.Config().Transfer.MaxRowsToScan != 200 {
		t.Errorf("MaxRowsToScan = %d after reset", m.Config().Transfer.MaxRowsToScan)
	}

	if err := m.ResetSection("bogus"); err == nil {
		t.Error("expected error for unknown section")
	}
}

func TestAddRecentFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "config.json"))
	m.Config().AutoSaveConfig = false
	m.Config().MaxRecentFiles = 3

	m.AddRecentFile("a.xlsx")
	m.AddRecentFile("b.xlsx")
	m.AddRecentFile("a.xlsx") // moves to front, no duplicate
	m.AddRecentFile("c.xlsx")
	m.AddRecentFile("d.xlsx") // pushes b.xlsx out

	got := m.Config().RecentFiles
	want := []string{"d.xlsx", "c.xlsx", "a.xlsx"}
	if len(got) != len(want) {
		t.Fatalf("RecentFiles = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RecentFiles[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}

func TestFlatten(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "config.json"))
	flat := m.Flatten()

	if flat["transfer.header_title"] != "EXTRACTED DATA" {
		t.Errorf("flat transfer.header_title = %v", flat["transfer.header_title"])
	}
	if _, ok := flat["excel_export"]; ok {
		t.Error("Flatten should not include struct nodes")
	}
}
