package transfer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/exceltoolspro/exceltools/internal/config"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
name: quality
fields:
  - name: Reference
    label: "Ref. No"
  - label: "Owner"
`)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if p.Name != "quality" || len(p.Fields) != 2 {
		t.Fatalf("profile = %+v", p)
	}
	// A field without a name falls back to its label.
	if p.Fields[1].Name != "Owner" {
		t.Errorf("fallback name = %q", p.Fields[1].Name)
	}
}

func TestLoadProfileRejectsEmpty(t *testing.T) {
	path := writeProfile(t, "name: empty\nfields: []\n")
	if _, err := LoadProfile(path); err == nil {
		t.Error("expected error for empty profile")
	}

	path = writeProfile(t, "fields:\n  - name: X\n")
	if _, err := LoadProfile(path); err == nil {
		t.Error("expected error for field without label")
	}
}

// formWorkbook builds a loosely structured form sheet:
//
//	A1: "Ref. No"   C1: "A-1234"    (value 2 columns right)
//	A3: "Owner"                      (value below, A4)
//	A6:B6 merged "Approval Date"    C6: "2024-01-15" (value past merge)
func formWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", "Ref. No")
	f.SetCellValue("Sheet1", "C1", "A-1234")
	f.SetCellValue("Sheet1", "A3", "Owner")
	f.SetCellValue("Sheet1", "A4", "Quality Dept")
	if err := f.MergeCell("Sheet1", "A6", "B6"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Sheet1", "A6", "Approval Date")
	f.SetCellValue("Sheet1", "C6", "2024-01-15")

	path := filepath.Join(t.TempDir(), "form.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func testProfile() *Profile {
	return &Profile{
		Name: "test",
		Fields: []FieldSpec{
			{Name: "Reference", Label: "Ref. No"},
			{Name: "Owner", Label: "Owner"},
			{Name: "Approved", Label: "Approval Date"},
			{Name: "Missing", Label: "No Such Label"},
		},
	}
}

func TestExtractStrategies(t *testing.T) {
	path := formWorkbook(t)

	fields, err := Extract(path, testProfile(), Options{})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := map[string]string{
		"Reference": "A-1234",
		"Owner":     "Quality Dept",
		"Approved":  "2024-01-15",
		"Missing":   "",
	}
	for _, f := range fields {
		if f.Value != want[f.Name] {
			t.Errorf("%s = %q, expected %q", f.Name, f.Value, want[f.Name])
		}
	}
}

func TestProcessFileWritesSummary(t *testing.T) {
	path := formWorkbook(t)

	opts := Options{Export: config.Default().ExcelExport}
	if _, err := ProcessFile(path, testProfile(), opts); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	title, _ := f.GetCellValue("Activity", "A1")
	if title != "EXTRACTED DATA" {
		t.Errorf("summary title = %q", title)
	}
	name, _ := f.GetCellValue("Activity", "A2")
	value, _ := f.GetCellValue("Activity", "B2")
	if name != "Reference" || value != "A-1234" {
		t.Errorf("summary row = %q/%q", name, value)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.xlsx", "two.xlsx"} {
		f := excelize.NewFile()
		f.SetCellValue("Sheet1", "A1", "Ref. No")
		f.SetCellValue("Sheet1", "B1", "X-1")
		if err := f.SaveAs(filepath.Join(dir, name)); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	// Lock files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "~$one.xlsx"), []byte("lock"), 0644); err != nil {
		t.Fatal(err)
	}

	profile := &Profile{Fields: []FieldSpec{{Name: "Reference", Label: "Ref. No"}}}
	opts := Options{Export: config.Default().ExcelExport, Concurrency: 2}

	summary, err := Run(context.Background(), dir, profile, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Total != 2 || summary.Success != 2 || summary.Errors != 0 {
		t.Errorf("summary = %+v", summary)
	}
	for _, r := range summary.Files {
		if len(r.Fields) != 1 || r.Fields[0].Value != "X-1" {
			t.Errorf("file result = %+v", r)
		}
	}
}

func TestRunEmptyFolder(t *testing.T) {
	if _, err := Run(context.Background(), t.TempDir(), testProfile(), Options{}); err == nil {
		t.Error("expected error for empty folder")
	}
}
