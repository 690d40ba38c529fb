// =============================================================================
// ExcelTools - Table Model
// =============================================================================
//
// This package defines the in-memory table structure shared by every feature
// engine. A Table is an ordered list of column headers plus string rows read
// from a spreadsheet or CSV file. Types defined here are used by:
//   - excel (read/write)
//   - csvio (read/write)
//   - search, merge, compare, organize (transformations)
//
// All cell values are kept as strings: the feature engines are text
// transformations, and the spreadsheet layer formats values on export.
//
// =============================================================================

package table

import (
	"strconv"
	"strings"
)

// Table holds tabular data as ordered headers plus rows of string cells.
// Rows may be shorter than Headers; missing cells read as empty strings.
type Table struct {
	// Headers contains the column names, in sheet order.
	Headers []string

	// Rows contains the data rows, excluding the header row.
	Rows [][]string
}

// New creates an empty table with the given headers.
func New(headers ...string) *Table {
	return &Table{Headers: headers}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.Headers)
}

// AppendRow adds a data row to the table.
func (t *Table) AppendRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the index of the named column, or -1 if absent.
// Header names are compared after trimming surrounding whitespace.
func (t *Table) ColumnIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at the given row for the given column index.
// Out-of-range coordinates read as the empty string.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Column returns all values of the named column, one per row.
// An unknown column yields nil.
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, idx)
	}
	return values
}

// Filter returns a new table containing the rows for which keep returns true.
// The header slice is shared with the receiver.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Headers: t.Headers}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Head returns a copy of the table truncated to at most n rows.
// Used for previews so that callers never format the full data set.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Headers: t.Headers, Rows: t.Rows[:n]}
}

// =============================================================================
// COLUMN STATISTICS
// =============================================================================

// Stats summarizes a single column.
type Stats struct {
	// Total is the number of rows inspected.
	Total int

	// NonEmpty is the number of cells with a non-blank value.
	NonEmpty int

	// Empty is the number of blank cells.
	Empty int

	// Unique is the number of distinct non-blank values.
	Unique int

	// Numeric indicates whether every non-blank cell parsed as a number.
	// Min, Max, Mean and Sum are only meaningful when Numeric is true.
	Numeric bool
	Min     float64
	Max     float64
	Mean    float64
	Sum     float64
}

// ColumnStats computes summary statistics for the named column.
// The zero Stats value is returned for unknown columns.
func (t *Table) ColumnStats(name string) Stats {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return Stats{}
	}

	stats := Stats{Total: len(t.Rows), Numeric: true}
	seen := make(map[string]struct{})
	count := 0

	for i := range t.Rows {
		value := strings.TrimSpace(t.Cell(i, idx))
		if value == "" {
			stats.Empty++
			continue
		}
		stats.NonEmpty++
		seen[value] = struct{}{}

		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			stats.Numeric = false
			continue
		}
		if count == 0 || f < stats.Min {
			stats.Min = f
		}
		if count == 0 || f > stats.Max {
			stats.Max = f
		}
		stats.Sum += f
		count++
	}

	stats.Unique = len(seen)
	if stats.NonEmpty == 0 {
		stats.Numeric = false
	}
	if stats.Numeric && count > 0 {
		stats.Mean = stats.Sum / float64(count)
	}
	return stats
}
