// =============================================================================
// ExcelTools - Merge Module
// =============================================================================
//
// This module joins a main table with a reference table on a shared key
// column, the way a lookup sheet enriches a master list. The join is a left
// join: every main row is kept, reference columns are appended where the key
// matched. Keys are compared after trimming, reference columns whose name
// collides with a main column are renamed with a _REF suffix, and an
// optional MATCH column records the outcome per row.
//
// =============================================================================

package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/exceltoolspro/exceltools/internal/table"
)

// Options controls a merge.
type Options struct {
	// MainKey and RefKey name the join columns. RefKey empty means the
	// reference uses the same column name as the main table.
	MainKey string
	RefKey  string

	// FilterLastOnly keeps only reference rows whose LAST column equals
	// "Y" before joining, for reference sheets that carry history.
	FilterLastOnly bool

	// AddMatchColumn appends a MATCH column with OUI for matched rows
	// and NON otherwise.
	AddMatchColumn bool

	// MatchesOnly drops unmatched main rows from the output.
	MatchesOnly bool
}

// Stats summarizes a merge.
type Stats struct {
	MainRows      int
	RefRows       int
	FilteredRef   int
	Matched       int
	Unmatched     int
	EmptyKeys     int
	DuplicateKeys int
	OutputRows    int
	OutputColumns int

	// UnmatchedSample holds up to ten unmatched key values, for the
	// run summary.
	UnmatchedSample []string
}

// unmatchedSampleCap bounds the sample kept in Stats.
const unmatchedSampleCap = 10

// Result is the outcome of a merge.
type Result struct {
	Table *table.Table
	Stats Stats
}

// Run joins main with ref per opts. The context is checked between rows.
func Run(ctx context.Context, main, ref *table.Table, opts Options) (*Result, error) {
	if opts.MainKey == "" {
		return nil, fmt.Errorf("key column is required")
	}
	refKey := opts.RefKey
	if refKey == "" {
		refKey = opts.MainKey
	}

	mainIdx := main.ColumnIndex(opts.MainKey)
	if mainIdx < 0 {
		return nil, fmt.Errorf("key column %q not found in main table", opts.MainKey)
	}
	refIdx := ref.ColumnIndex(refKey)
	if refIdx < 0 {
		return nil, fmt.Errorf("key column %q not found in reference table", refKey)
	}

	stats := Stats{MainRows: main.NumRows(), RefRows: ref.NumRows()}

	// Optionally keep only the rows flagged as current.
	working := ref
	if opts.FilterLastOnly {
		lastIdx := ref.ColumnIndex("LAST")
		if lastIdx < 0 {
			return nil, fmt.Errorf("reference table has no LAST column to filter on")
		}
		working = ref.Filter(func(row []string) bool {
			v := ""
			if lastIdx < len(row) {
				v = row[lastIdx]
			}
			return strings.EqualFold(strings.TrimSpace(v), "Y")
		})
	}
	stats.FilteredRef = working.NumRows()

	// Index the reference by trimmed key. First occurrence wins;
	// later duplicates are counted but ignored.
	index := make(map[string]int, working.NumRows())
	for i := range working.Rows {
		key := strings.TrimSpace(working.Cell(i, refIdx))
		if key == "" {
			continue
		}
		if _, dup := index[key]; dup {
			stats.DuplicateKeys++
			continue
		}
		index[key] = i
	}

	// Reference columns, minus its key, renamed on collision.
	refCols := make([]int, 0, working.NumCols())
	refNames := make([]string, 0, working.NumCols())
	mainNames := make(map[string]struct{}, main.NumCols())
	for _, h := range main.Headers {
		mainNames[strings.TrimSpace(h)] = struct{}{}
	}
	for c, h := range working.Headers {
		if c == refIdx {
			continue
		}
		name := strings.TrimSpace(h)
		if _, clash := mainNames[name]; clash {
			name += "_REF"
		}
		refCols = append(refCols, c)
		refNames = append(refNames, name)
	}

	headers := append(append([]string{}, main.Headers...), refNames...)
	if opts.AddMatchColumn {
		headers = append(headers, "MATCH")
	}
	out := &table.Table{Headers: headers}

	for i := range main.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := strings.TrimSpace(main.Cell(i, mainIdx))
		refRow, found := -1, false
		if key == "" {
			stats.EmptyKeys++
		} else {
			refRow, found = index[key]
			if !found {
				refRow = -1
			}
		}

		if found {
			stats.Matched++
		} else {
			stats.Unmatched++
			if key != "" && len(stats.UnmatchedSample) < unmatchedSampleCap {
				stats.UnmatchedSample = append(stats.UnmatchedSample, key)
			}
			if opts.MatchesOnly {
				continue
			}
		}

		row := make([]string, 0, len(headers))
		for c := range main.Headers {
			row = append(row, main.Cell(i, c))
		}
		for _, c := range refCols {
			if found {
				row = append(row, working.Cell(refRow, c))
			} else {
				row = append(row, "")
			}
		}
		if opts.AddMatchColumn {
			if found {
				row = append(row, "OUI")
			} else {
				row = append(row, "NON")
			}
		}
		out.Rows = append(out.Rows, row)
	}

	stats.OutputRows = out.NumRows()
	stats.OutputColumns = out.NumCols()
	return &Result{Table: out, Stats: stats}, nil
}

// AutoKey returns the first pattern found as a column in both tables.
// Used when the caller gives no key column.
func AutoKey(main, ref *table.Table, patterns []string) (string, bool) {
	for _, p := range patterns {
		if main.ColumnIndex(p) >= 0 && ref.ColumnIndex(p) >= 0 {
			return p, true
		}
	}
	return "", false
}
