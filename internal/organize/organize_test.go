package organize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/exceltoolspro/exceltools/internal/table"
	"github.com/exceltoolspro/exceltools/pkg/utils"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func listing(paths ...string) *table.Table {
	t := table.New("REF", "File Path")
	for i, p := range paths {
		t.AppendRow(string(rune('A'+i)), p)
	}
	return t
}

func TestAutoDetectPathColumn(t *testing.T) {
	cases := []struct {
		headers []string
		want    string
		ok      bool
	}{
		{[]string{"REF", "Path"}, "Path", true},
		{[]string{"REF", "Chemin"}, "Chemin", true},
		{[]string{"REF", "Source File Path"}, "Source File Path", true},
		{[]string{"REF", "Amount"}, "", false},
	}
	for _, c := range cases {
		tbl := &table.Table{Headers: c.headers}
		got, ok := AutoDetectPathColumn(tbl)
		if ok != c.ok || got != c.want {
			t.Errorf("AutoDetect(%v) = %q/%v", c.headers, got, ok)
		}
	}
}

func TestRunMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc1.pdf")
	touch(t, src)
	target := filepath.Join(dir, "sorted")

	tbl := listing(src, filepath.Join(dir, "missing.pdf"))
	r, err := Run(context.Background(), tbl, Options{TargetDir: target})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if r.Stats.Success != 1 || r.Stats.NotFound != 1 {
		t.Errorf("stats = %+v", r.Stats)
	}
	if utils.FileExists(src) {
		t.Error("source still present after move")
	}
	if !utils.FileExists(filepath.Join(target, "doc1.pdf")) {
		t.Error("file missing from target")
	}
}

func TestRunCopyKeepsSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc1.pdf")
	touch(t, src)
	target := filepath.Join(dir, "sorted")

	r, err := Run(context.Background(), listing(src), Options{
		TargetDir: target,
		Action:    ActionCopy,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Stats.Success != 1 {
		t.Errorf("stats = %+v", r.Stats)
	}
	if !utils.FileExists(src) {
		t.Error("copy should keep the source")
	}
	if r.Rows[0].Outcome != OutcomeCopied {
		t.Errorf("outcome = %q", r.Rows[0].Outcome)
	}
}

func TestConflictPolicies(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sorted")
	touch(t, filepath.Join(target, "doc1.pdf"))

	// Skip.
	src := filepath.Join(dir, "doc1.pdf")
	touch(t, src)
	r, err := Run(context.Background(), listing(src), Options{TargetDir: target})
	if err != nil {
		t.Fatal(err)
	}
	if r.Stats.Skipped != 1 || !utils.FileExists(src) {
		t.Errorf("skip policy: stats = %+v", r.Stats)
	}

	// Rename.
	r, err = Run(context.Background(), listing(src), Options{
		TargetDir: target,
		Conflict:  ConflictRename,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Stats.Success != 1 {
		t.Errorf("rename policy: stats = %+v", r.Stats)
	}
	if !utils.FileExists(filepath.Join(target, "doc1_copy1.pdf")) {
		t.Error("renamed destination missing")
	}

	// Overwrite.
	touch(t, src)
	r, err = Run(context.Background(), listing(src), Options{
		TargetDir: target,
		Conflict:  ConflictOverwrite,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Stats.Success != 1 || utils.FileExists(src) {
		t.Errorf("overwrite policy: stats = %+v", r.Stats)
	}
}

func TestLockFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	r, err := Run(context.Background(), listing(filepath.Join(dir, "~$doc.xlsx")), Options{
		TargetDir: filepath.Join(dir, "sorted"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Stats.Skipped != 1 || r.Stats.Total != 1 {
		t.Errorf("stats = %+v", r.Stats)
	}
}

func TestRelativePathsUseBaseDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "docs", "a.pdf"))

	r, err := Run(context.Background(), listing(filepath.Join("docs", "a.pdf")), Options{
		TargetDir: filepath.Join(dir, "sorted"),
		BaseDir:   dir,
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Stats.Success != 1 {
		t.Errorf("stats = %+v", r.Stats)
	}
}

func TestPlanTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc1.pdf")
	touch(t, src)
	target := filepath.Join(dir, "sorted")

	r, err := Plan(listing(src), Options{TargetDir: target})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if r.Stats.Success != 1 {
		t.Errorf("stats = %+v", r.Stats)
	}
	if !utils.FileExists(src) {
		t.Error("plan must not move files")
	}
	if utils.DirExists(target) {
		t.Error("plan must not create the target directory")
	}
}

func TestReportTable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "doc1.pdf")
	touch(t, src)

	r, err := Run(context.Background(), listing(src), Options{
		TargetDir: filepath.Join(dir, "sorted"),
	})
	if err != nil {
		t.Fatal(err)
	}

	report := ReportTable(r)
	if report.NumRows() != 1 {
		t.Fatalf("report rows = %d", report.NumRows())
	}
	// Row numbers are 1-based sheet rows below the header.
	if report.Cell(0, 0) != "2" || report.Cell(0, 3) != "moved" {
		t.Errorf("report row = %v", report.Rows[0])
	}
}
