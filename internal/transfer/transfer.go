// =============================================================================
// ExcelTools - Field Transfer Module
// =============================================================================
//
// This module pulls labeled values out of loosely structured workbooks, the
// kind where forms place "Ref. No" somewhere on the sheet with the value in
// a nearby cell. For each profile field the sheet is scanned for the label,
// then the value is searched in order:
//
//   1. to the right of the label, within a window of adjacent columns
//   2. directly below the label, within two rows
//   3. just past the label's merged range, when the label cell is merged
//
// The first non-empty hit wins; a field with no hit stays empty. Results
// are written back into each workbook as a two-column summary sheet, and
// whole folders can be processed concurrently.
//
// =============================================================================

package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/exceltoolspro/exceltools/internal/config"
	"github.com/exceltoolspro/exceltools/internal/excel"
)

// Options controls an extraction run.
type Options struct {
	// Sheet is the sheet scanned for labels. Empty selects the first.
	Sheet string

	// OutputSheet is the summary sheet written into each workbook.
	OutputSheet string

	// HeaderTitle is the banner above the summary fields.
	HeaderTitle string

	// MaxRowsToScan bounds the label scan. Zero selects 200.
	MaxRowsToScan int

	// AdjacentColumns is how far right of a label a value is looked
	// for. Zero selects 3.
	AdjacentColumns int

	// Export controls the summary sheet formatting.
	Export config.ExcelExportConfig

	// Concurrency bounds parallel workbook processing. Zero selects 1.
	Concurrency int
}

func (o *Options) setDefaults() {
	if o.MaxRowsToScan <= 0 {
		o.MaxRowsToScan = 200
	}
	if o.AdjacentColumns <= 0 {
		o.AdjacentColumns = 3
	}
	if o.OutputSheet == "" {
		o.OutputSheet = "Activity"
	}
	if o.HeaderTitle == "" {
		o.HeaderTitle = "EXTRACTED DATA"
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
}

// Extract scans one workbook for the profile's labels and returns the
// field values, in profile order.
func Extract(path string, profile *Profile, opts Options) ([]excel.Field, error) {
	opts.setDefaults()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) > opts.MaxRowsToScan {
		rows = rows[:opts.MaxRowsToScan]
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells: %w", err)
	}

	fields := make([]excel.Field, len(profile.Fields))
	for i, spec := range profile.Fields {
		fields[i] = excel.Field{
			Name:  spec.Name,
			Value: findValue(rows, merges, spec.Label, opts),
		}
	}
	return fields, nil
}

// cellAt reads from the row matrix with 0-based coordinates.
func cellAt(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) || c < 0 || c >= len(rows[r]) {
		return ""
	}
	return strings.TrimSpace(rows[r][c])
}

// findValue locates the label in the scanned rows and applies the three
// lookup strategies. The first label occurrence with a value wins.
func findValue(rows [][]string, merges []excelize.MergeCell, label string, opts Options) string {
	want := strings.ToLower(strings.TrimSpace(label))

	for r := range rows {
		for c := range rows[r] {
			cell := strings.ToLower(strings.TrimSpace(rows[r][c]))
			if cell == "" || !strings.Contains(cell, want) {
				continue
			}

			// Right of the label, within the adjacent window plus one
			// extra column for labels followed by a separator cell.
			for dc := 1; dc <= opts.AdjacentColumns+1; dc++ {
				if v := cellAt(rows, r, c+dc); v != "" {
					return v
				}
			}

			// Below the label.
			for dr := 1; dr <= 2; dr++ {
				if v := cellAt(rows, r+dr, c); v != "" {
					return v
				}
			}

			// Past the label's merged range.
			if v := valueAfterMerge(rows, merges, r, c, opts.AdjacentColumns); v != "" {
				return v
			}
		}
	}
	return ""
}

// valueAfterMerge handles labels sitting in a merged range: the value is
// looked for just right of the range's last column.
func valueAfterMerge(rows [][]string, merges []excelize.MergeCell, r, c int, window int) string {
	for _, m := range merges {
		sc, sr, err1 := excelize.CellNameToCoordinates(m.GetStartAxis())
		ec, er, err2 := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		// Coordinates from excelize are 1-based.
		if r+1 < sr || r+1 > er || c+1 < sc || c+1 > ec {
			continue
		}
		for dc := 0; dc < window; dc++ {
			if v := cellAt(rows, r, ec+dc); v != "" {
				return v
			}
		}
	}
	return ""
}

// ProcessFile extracts a workbook's fields and writes them to its summary
// sheet.
func ProcessFile(path string, profile *Profile, opts Options) ([]excel.Field, error) {
	opts.setDefaults()

	fields, err := Extract(path, profile, opts)
	if err != nil {
		return nil, err
	}
	if err := excel.WriteFieldSheet(path, opts.OutputSheet, opts.HeaderTitle, fields, opts.Export); err != nil {
		return nil, err
	}
	return fields, nil
}

// =============================================================================
// BATCH RUNS
// =============================================================================

// FileResult is the outcome for one workbook of a batch run.
type FileResult struct {
	Path   string
	Fields []excel.Field
	Err    error
}

// Summary aggregates a batch run.
type Summary struct {
	Total   int
	Success int
	Errors  int
	Files   []FileResult
}

// Run processes every workbook of a folder with a bounded number of
// workers. Lock files are skipped. Results are ordered by path.
func Run(ctx context.Context, dir string, profile *Profile, opts Options) (*Summary, error) {
	opts.setDefaults()

	pattern := filepath.Join(dir, "*.xlsx")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var files []string
	for _, p := range paths {
		if strings.HasPrefix(filepath.Base(p), "~$") {
			continue
		}
		files = append(files, p)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no workbooks found in %s", dir)
	}

	results := make([]FileResult, len(files))
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return
			}
			fields, err := ProcessFile(path, profile, opts)
			results[i] = FileResult{Path: path, Fields: fields, Err: err}
		}(i, path)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(files), Files: results}
	for _, r := range results {
		if r.Err != nil {
			summary.Errors++
		} else {
			summary.Success++
		}
	}
	sort.Slice(summary.Files, func(a, b int) bool {
		return summary.Files[a].Path < summary.Files[b].Path
	})
	return summary, nil
}
