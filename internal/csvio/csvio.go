// =============================================================================
// ExcelTools - CSV Input/Output
// =============================================================================
//
// This module reads and writes delimited text files into the shared table
// model. Legacy exports frequently arrive in Windows or Latin encodings, so
// both directions run through a configurable character set alongside the
// separator. "utf-8-sig" handles the byte-order mark Excel prepends to its
// own CSV output.
//
// =============================================================================

package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/exceltoolspro/exceltools/internal/table"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls how a CSV file is parsed or written.
type Options struct {
	// Separator is the field delimiter. Empty selects a comma.
	Separator string

	// Encoding names the character set: utf-8, utf-8-sig, latin-1,
	// cp1252 or iso-8859-1. Empty selects utf-8.
	Encoding string
}

func (o Options) comma() (rune, error) {
	sep := o.Separator
	if sep == "" {
		sep = ","
	}
	if sep == "\\t" {
		sep = "\t"
	}
	runes := []rune(sep)
	if len(runes) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", o.Separator)
	}
	return runes[0], nil
}

// charset resolves the encoding name to a character map, or nil for UTF-8.
func (o Options) charset() (*charmap.Charmap, error) {
	switch strings.ToLower(strings.TrimSpace(o.Encoding)) {
	case "", "utf-8", "utf8", "utf-8-sig":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", o.Encoding)
}

// Read parses a CSV file into a table. The first record becomes the
// headers. Records may have varying field counts.
func Read(path string, opts Options) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
	}

	cm, err := opts.charset()
	if err != nil {
		return nil, err
	}
	if cm != nil {
		decoded, err := decode(data, cm.NewDecoder())
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s as %s: %w", path, opts.Encoding, err)
		}
		data = decoded
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	comma, err := opts.comma()
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	t := table.New()
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
		}
		if first {
			t.Headers = record
			first = false
			continue
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// Write renders a table to a CSV file with the given separator and
// encoding. "utf-8-sig" prepends the Excel byte-order mark.
func Write(path string, t *table.Table, opts Options) error {
	comma, err := opts.comma()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = comma

	if err := w.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	data := buf.Bytes()
	cm, err := opts.charset()
	if err != nil {
		return err
	}
	if cm != nil {
		encoded, err := decode(data, cm.NewEncoder())
		if err != nil {
			return fmt.Errorf("failed to encode as %s: %w", opts.Encoding, err)
		}
		data = encoded
	} else if strings.EqualFold(strings.TrimSpace(opts.Encoding), "utf-8-sig") {
		data = append(append([]byte{}, utf8BOM...), data...)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV %s: %w", path, err)
	}
	return nil
}

// decode runs data through an encoding transformer.
func decode(data []byte, t transform.Transformer) ([]byte, error) {
	out, _, err := transform.Bytes(t, data)
	return out, err
}

// DetectSeparator guesses the delimiter of a CSV file by counting
// candidate characters on the first line. Ties favor the comma.
func DetectSeparator(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open CSV %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 4096)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read CSV %s: %w", path, err)
	}
	line := string(buf[:n])
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ",", strings.Count(line, ",")
	for _, cand := range []string{";", "\t", "|"} {
		if c := strings.Count(line, cand); c > bestCount {
			best, bestCount = cand, c
		}
	}
	return best, nil
}
