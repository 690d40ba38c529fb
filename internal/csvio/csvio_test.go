package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/exceltoolspro/exceltools/internal/table"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadBasic(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("REF,Name\nA-1,Alpha\nA-2,Beta\n"))

	got, err := Read(path, Options{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.NumRows() != 2 || got.NumCols() != 2 {
		t.Fatalf("shape = %dx%d", got.NumRows(), got.NumCols())
	}
	if got.Cell(1, 1) != "Beta" {
		t.Errorf("cell = %q", got.Cell(1, 1))
	}
}

func TestReadSemicolonSeparator(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("REF;Name\nA-1;Alpha\n"))

	got, err := Read(path, Options{Separator: ";"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Headers[1] != "Name" || got.Cell(0, 0) != "A-1" {
		t.Errorf("headers = %v, first cell = %q", got.Headers, got.Cell(0, 0))
	}
}

func TestReadStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("REF,Name\nA-1,Alpha\n")...)
	path := writeFile(t, "in.csv", data)

	got, err := Read(path, Options{Encoding: "utf-8-sig"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Headers[0] != "REF" {
		t.Errorf("first header = %q, BOM not stripped", got.Headers[0])
	}
}

func TestLatin1RoundTrip(t *testing.T) {
	tbl := table.New("Nom", "Ville")
	tbl.AppendRow("Léa", "Orléans")

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := Write(path, tbl, Options{Encoding: "latin-1", Separator: ";"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// On disk the accented characters must be single Latin-1 bytes.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range raw {
		if b == 0xC3 {
			t.Fatal("found UTF-8 multibyte sequence in latin-1 output")
		}
	}

	got, err := Read(path, Options{Encoding: "latin-1", Separator: ";"})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Cell(0, 0) != "Léa" || got.Cell(0, 1) != "Orléans" {
		t.Errorf("round trip = %q, %q", got.Cell(0, 0), got.Cell(0, 1))
	}
}

func TestWriteUTF8SigAddsBOM(t *testing.T) {
	tbl := table.New("A")
	tbl.AppendRow("1")

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := Write(path, tbl, Options{Encoding: "utf-8-sig"}); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 3 || raw[0] != 0xEF || raw[1] != 0xBB || raw[2] != 0xBF {
		t.Error("missing byte-order mark")
	}
}

func TestUnsupportedEncoding(t *testing.T) {
	path := writeFile(t, "in.csv", []byte("A\n1\n"))
	if _, err := Read(path, Options{Encoding: "ebcdic"}); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}

func TestDetectSeparator(t *testing.T) {
	cases := map[string]string{
		"a,b,c\n1,2,3\n": ",",
		"a;b;c\n1;2;3\n": ";",
		"a\tb\tc\n":      "\t",
		"a|b|c\n":        "|",
	}
	for content, want := range cases {
		path := writeFile(t, "sample.csv", []byte(content))
		got, err := DetectSeparator(path)
		if err != nil {
			t.Fatalf("DetectSeparator failed: %v", err)
		}
		if got != want {
			t.Errorf("DetectSeparator(%q) = %q, expected %q", content, got, want)
		}
	}
}
