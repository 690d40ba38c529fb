// =============================================================================
// ExcelTools - File Organization Module
// =============================================================================
//
// This module relocates files listed in a spreadsheet column into a target
// folder, for the recurring chore of gathering documents referenced by a
// tracking sheet. Rows name source paths; each file is moved or copied with
// a configurable conflict policy, and the run reports per-row outcomes so
// the sheet can be reconciled afterwards.
//
// =============================================================================

package organize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/exceltoolspro/exceltools/internal/table"
	"github.com/exceltoolspro/exceltools/pkg/utils"
)

// Action selects between moving and copying files.
type Action string

const (
	ActionMove Action = "move"
	ActionCopy Action = "copy"
)

// ConflictPolicy decides what happens when the destination exists.
type ConflictPolicy string

const (
	ConflictSkip      ConflictPolicy = "skip"
	ConflictRename    ConflictPolicy = "rename"
	ConflictOverwrite ConflictPolicy = "overwrite"
)

// Options controls an organization run.
type Options struct {
	// PathColumn names the column holding source paths. Empty triggers
	// auto-detection.
	PathColumn string

	// TargetDir receives the files.
	TargetDir string

	Action   Action
	Conflict ConflictPolicy

	// BaseDir resolves relative paths found in the sheet.
	BaseDir string
}

// Outcome classifies one row of the run.
type Outcome string

const (
	OutcomeMoved    Outcome = "moved"
	OutcomeCopied   Outcome = "copied"
	OutcomeNotFound Outcome = "not found"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeError    Outcome = "error"
)

// RowResult is the outcome for one sheet row.
type RowResult struct {
	Row     int // zero-based data row index
	Source  string
	Dest    string
	Outcome Outcome
	Err     error
}

// Stats aggregates a run.
type Stats struct {
	Total    int
	Success  int
	NotFound int
	Skipped  int
	Errors   int
}

// Result is the outcome of an organization run.
type Result struct {
	Stats Stats
	Rows  []RowResult
}

// pathColumnNames are tried, lowercased, when auto-detecting the column.
var pathColumnNames = []string{
	"path", "file", "filepath", "file path", "filename",
	"chemin", "fichier", "source",
}

// AutoDetectPathColumn finds the most plausible path column: an exact
// name match first, then any header containing one of the names.
func AutoDetectPathColumn(t *table.Table) (string, bool) {
	for _, want := range pathColumnNames {
		for _, h := range t.Headers {
			if strings.ToLower(strings.TrimSpace(h)) == want {
				return h, true
			}
		}
	}
	for _, want := range pathColumnNames {
		for _, h := range t.Headers {
			if strings.Contains(strings.ToLower(h), want) {
				return h, true
			}
		}
	}
	return "", false
}

// Plan resolves the rows of a run without touching the filesystem, for
// previews. Existing files report the action they would get.
func Plan(t *table.Table, opts Options) (*Result, error) {
	return run(context.Background(), t, opts, true)
}

// Run relocates the listed files. The context is checked between rows.
func Run(ctx context.Context, t *table.Table, opts Options) (*Result, error) {
	return run(ctx, t, opts, false)
}

func run(ctx context.Context, t *table.Table, opts Options, dryRun bool) (*Result, error) {
	if opts.TargetDir == "" {
		return nil, fmt.Errorf("target directory is required")
	}
	if opts.Action == "" {
		opts.Action = ActionMove
	}
	if opts.Conflict == "" {
		opts.Conflict = ConflictSkip
	}

	column := opts.PathColumn
	if column == "" {
		detected, ok := AutoDetectPathColumn(t)
		if !ok {
			return nil, fmt.Errorf("no path column found; headers are %v", t.Headers)
		}
		column = detected
	}
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", column)
	}

	if !dryRun {
		if err := utils.EnsureDir(opts.TargetDir); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	for i := range t.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := strings.TrimSpace(t.Cell(i, idx))
		if src == "" {
			continue
		}
		result.Stats.Total++

		// Office lock files are never worth relocating.
		if strings.HasPrefix(filepath.Base(src), "~$") {
			result.Stats.Skipped++
			result.Rows = append(result.Rows, RowResult{Row: i, Source: src, Outcome: OutcomeSkipped})
			continue
		}

		if opts.BaseDir != "" && !filepath.IsAbs(src) {
			src = filepath.Join(opts.BaseDir, src)
		}

		if !utils.FileExists(src) {
			result.Stats.NotFound++
			result.Rows = append(result.Rows, RowResult{Row: i, Source: src, Outcome: OutcomeNotFound})
			continue
		}

		dst := filepath.Join(opts.TargetDir, filepath.Base(src))
		if utils.FileExists(dst) {
			switch opts.Conflict {
			case ConflictSkip:
				result.Stats.Skipped++
				result.Rows = append(result.Rows, RowResult{Row: i, Source: src, Dest: dst, Outcome: OutcomeSkipped})
				continue
			case ConflictRename:
				dst = utils.UniquePath(dst)
			case ConflictOverwrite:
				// MoveFile and CopyFile both truncate the destination.
			}
		}

		outcome := OutcomeMoved
		if opts.Action == ActionCopy {
			outcome = OutcomeCopied
		}

		if !dryRun {
			var err error
			if opts.Action == ActionCopy {
				err = utils.CopyFile(src, dst)
			} else {
				err = utils.MoveFile(src, dst)
			}
			if err != nil {
				result.Stats.Errors++
				result.Rows = append(result.Rows, RowResult{Row: i, Source: src, Dest: dst, Outcome: OutcomeError, Err: err})
				continue
			}
		}

		result.Stats.Success++
		result.Rows = append(result.Rows, RowResult{Row: i, Source: src, Dest: dst, Outcome: outcome})
	}
	return result, nil
}

// ReportTable renders a result as a table for export next to the run.
func ReportTable(r *Result) *table.Table {
	t := table.New("Row", "Source", "Destination", "Outcome", "Error")
	for _, row := range r.Rows {
		msg := ""
		if row.Err != nil {
			msg = row.Err.Error()
		}
		t.AppendRow(fmt.Sprintf("%d", row.Row+2), row.Source, row.Dest, string(row.Outcome), msg)
	}
	return t
}
