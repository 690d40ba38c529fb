package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
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

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")

	if got := UniquePath(path); got != path {
		t.Errorf("free path changed to %q", got)
	}

	touch(t, path)
	got := UniquePath(path)
	if got != filepath.Join(dir, "report_copy1.xlsx") {
		t.Errorf("first conflict = %q", got)
	}

	touch(t, got)
	got = UniquePath(path)
	if got != filepath.Join(dir, "report_copy2.xlsx") {
		t.Errorf("second conflict = %q", got)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "dst.txt")
	touch(t, src)

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	if !FileExists(dst) || !FileExists(src) {
		t.Error("copy should leave both files in place")
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "sub", "dst.txt")
	touch(t, src)

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if FileExists(src) {
		t.Error("source still present after move")
	}
	if !FileExists(dst) {
		t.Error("destination missing after move")
	}
}

func TestMoveToSubfolder(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "done.xlsx")
	touch(t, src)
	touch(t, filepath.Join(dir, "Processed", "done.xlsx"))

	moved, err := MoveToSubfolder(src, "Processed")
	if err != nil {
		t.Fatalf("MoveToSubfolder failed: %v", err)
	}
	if moved != filepath.Join(dir, "Processed", "done_copy1.xlsx") {
		t.Errorf("moved to %q", moved)
	}
	if !FileExists(moved) {
		t.Error("moved file missing")
	}
}

func TestBackupFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data.xlsx")
	touch(t, src)

	backup, err := BackupFile(src)
	if err != nil {
		t.Fatalf("BackupFile failed: %v", err)
	}
	if !strings.Contains(filepath.Base(backup), "data_backup_") {
		t.Errorf("backup name = %q", backup)
	}
	if !FileExists(src) || !FileExists(backup) {
		t.Error("backup should leave the original in place")
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.xlsx"))
	touch(t, filepath.Join(dir, "b.csv"))
	touch(t, filepath.Join(dir, "c.txt"))
	touch(t, filepath.Join(dir, "~$a.xlsx"))
	touch(t, filepath.Join(dir, "sub", "d.xlsx"))

	files, err := ListFiles(dir, ".xlsx", ".csv")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base != "a.xlsx" && base != "b.csv" {
			t.Errorf("unexpected file %q", base)
		}
	}
}

func TestCleanOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.log")
	fresh := filepath.Join(dir, "fresh.log")
	touch(t, old)
	touch(t, fresh)

	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	removed, err := CleanOldFiles(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("CleanOldFiles failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, expected 1", removed)
	}
	if FileExists(old) || !FileExists(fresh) {
		t.Error("wrong file removed")
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		512:     "512 B",
		2048:    "2.0 KB",
		1048576: "1.0 MB",
	}
	for in, want := range cases {
		if got := FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q, expected %q", in, got, want)
		}
	}
}

func TestStampedName(t *testing.T) {
	a := StampedName("report", ".xlsx")
	b := StampedName("report", ".xlsx")
	if a == b {
		t.Error("stamped names should not collide")
	}
	if !strings.HasPrefix(a, "report_") || !strings.HasSuffix(a, ".xlsx") {
		t.Errorf("name = %q", a)
	}
}
