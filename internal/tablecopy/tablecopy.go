// =============================================================================
// ExcelTools - Table Copy Module
// =============================================================================
//
// This module finds a known table inside workbooks whose layout drifts, the
// header row is not always row 1 and stray content may sit above it. The
// header row is detected by requiring every expected field label to appear,
// the data region ends at the first run of two empty rows, and the region is
// copied into a destination workbook as a formatted native Excel table.
// Processed source files are moved aside so a folder can be worked through
// incrementally.
//
// =============================================================================

package tablecopy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/exceltoolspro/exceltools/internal/config"
	"github.com/exceltoolspro/exceltools/internal/excel"
	"github.com/exceltoolspro/exceltools/internal/table"
	"github.com/exceltoolspro/exceltools/pkg/utils"
)

// Header detection limits. Real header rows sit near the top; the column
// cap guards against sheets with absurd used ranges.
const (
	maxHeaderRow = 20
	maxColumns   = 700
)

// emptyRowRun is the number of consecutive empty rows ending the data.
const emptyRowRun = 2

// Options controls a table copy run.
type Options struct {
	// Fields are the expected header labels, compared lowercased.
	Fields []string

	// HeaderNames optionally renames the copied columns in the output.
	// Must match Fields in length when set.
	HeaderNames []string

	// Sheet is the source sheet. Empty selects the first.
	Sheet string

	// TableLabel names the native table in the output. Empty derives
	// it from the output file name.
	TableLabel string

	// MoveProcessed relocates handled sources into Processed/ or
	// Unprocessed/ subfolders next to the source.
	MoveProcessed bool

	// Concurrency bounds parallel workbook processing. Zero selects 1.
	Concurrency int

	Export config.ExcelExportConfig
}

// FindHeaders locates the header row by matching every expected field
// label, lowercased, against the leading cells of the first rows. It
// returns the 0-based row index and the column index of each field.
func FindHeaders(rows [][]string, fields []string) (int, []int, error) {
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("no field labels given")
	}
	want := make([]string, len(fields))
	for i, f := range fields {
		want[i] = strings.ToLower(strings.TrimSpace(f))
	}

	limit := len(rows)
	if limit > maxHeaderRow {
		limit = maxHeaderRow
	}

	for r := 0; r < limit; r++ {
		cols := make([]int, len(want))
		found := 0
		width := len(rows[r])
		if width > maxColumns {
			width = maxColumns
		}
		for i, label := range want {
			cols[i] = -1
			for c := 0; c < width; c++ {
				if strings.ToLower(strings.TrimSpace(rows[r][c])) == label {
					cols[i] = c
					found++
					break
				}
			}
		}
		if found == len(want) {
			return r, cols, nil
		}
	}
	return 0, nil, fmt.Errorf("no row within the first %d contains all %d field labels", limit, len(fields))
}

// FindDataEnd returns the exclusive 0-based end row of the data region
// starting below headerRow. The region ends at the first run of
// consecutive empty rows, or at the last row.
func FindDataEnd(rows [][]string, headerRow int, cols []int) int {
	empty := 0
	end := headerRow + 1
	for r := headerRow + 1; r < len(rows); r++ {
		blank := true
		for _, c := range cols {
			if c >= 0 && c < len(rows[r]) && strings.TrimSpace(rows[r][c]) != "" {
				blank = false
				break
			}
		}
		if blank {
			empty++
			if empty >= emptyRowRun {
				break
			}
			continue
		}
		empty = 0
		end = r + 1
	}
	return end
}

// ExtractTable reads the detected table region of a workbook sheet.
func ExtractTable(path string, opts Options) (*table.Table, error) {
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

	headerRow, cols, err := FindHeaders(rows, opts.Fields)
	if err != nil {
		return nil, err
	}
	end := FindDataEnd(rows, headerRow, cols)

	headers := opts.Fields
	if len(opts.HeaderNames) == len(opts.Fields) {
		headers = opts.HeaderNames
	}
	out := table.New(headers...)
	for r := headerRow + 1; r < end; r++ {
		row := make([]string, len(cols))
		for i, c := range cols {
			if c >= 0 && c < len(rows[r]) {
				row[i] = rows[r][c]
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// CopyTable extracts the table of a source workbook and writes it to the
// destination as a formatted sheet carrying a native Excel table.
func CopyTable(src, dst string, opts Options) (*table.Table, error) {
	t, err := ExtractTable(src, opts)
	if err != nil {
		return nil, err
	}

	sheet := "Data"
	if err := excel.WriteSheet(dst, sheet, t, opts.Export); err != nil {
		return nil, err
	}

	label := opts.TableLabel
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(dst), filepath.Ext(dst))
	}

	f, err := excelize.OpenFile(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen output %s: %w", dst, err)
	}
	defer f.Close()

	if err := excel.AddNativeTable(f, sheet, excel.TableName(label), t.NumRows()+1, t.NumCols()); err != nil {
		return nil, err
	}
	if err := f.Save(); err != nil {
		return nil, fmt.Errorf("failed to save output %s: %w", dst, err)
	}
	return t, nil
}

// =============================================================================
// BATCH RUNS
// =============================================================================

// FileResult is the outcome for one source workbook.
type FileResult struct {
	Path    string
	Rows    int
	MovedTo string
	Err     error
}

// Summary aggregates a batch run.
type Summary struct {
	Total     int
	Processed int
	Failed    int
	TotalRows int
	Files     []FileResult
}

// Run copies the detected table of every workbook in dir into a matching
// output workbook in outDir, with a bounded number of workers. With
// MoveProcessed set, handled sources move to Processed/ and failing ones
// to Unprocessed/. Results are ordered by path.
func Run(ctx context.Context, dir, outDir string, opts Options) (*Summary, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
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
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results := make([]FileResult, len(files))
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	for i, src := range files {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Path: src, Err: err}
				return
			}
			results[i] = copyOne(src, outDir, opts)
		}(i, src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(files), Files: results}
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Processed++
			summary.TotalRows += r.Rows
		}
	}
	sort.Slice(summary.Files, func(a, b int) bool {
		return summary.Files[a].Path < summary.Files[b].Path
	})
	return summary, nil
}

// copyOne handles a single workbook of a batch run, including the
// optional relocation of the source.
func copyOne(src, outDir string, opts Options) FileResult {
	result := FileResult{Path: src}

	dst := filepath.Join(outDir, filepath.Base(src))
	t, err := CopyTable(src, dst, opts)
	if err != nil {
		result.Err = err
	} else {
		result.Rows = t.NumRows()
	}

	if opts.MoveProcessed {
		folder := "Processed"
		if result.Err != nil {
			folder = "Unprocessed"
		}
		moved, err := utils.MoveToSubfolder(src, folder)
		if err != nil {
			if result.Err == nil {
				result.Err = err
			}
		} else {
			result.MovedTo = moved
		}
	}
	return result
}
