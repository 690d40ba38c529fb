// =============================================================================
// ExcelTools - Organize Command
// =============================================================================
//
// Relocate the files listed in a spreadsheet column into a target folder.
// The path column is auto-detected when not named, destination conflicts
// follow a configurable policy, and --preview shows the plan without
// touching anything. A report of per-row outcomes can be exported.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/organize"
)

var (
	organizeColumn   string
	organizeSheet    string
	organizeTarget   string
	organizeCopy     bool
	organizeConflict string
	organizeBaseDir  string
	organizePreview  bool
	organizeReport   string
)

var organizeCmd = &cobra.Command{
	Use:   "organize <listing-file>",
	Short: "Relocate files listed in a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		log := appLogger.WithSource("organize")

		t, err := loadTable(args[0], organizeSheet)
		if err != nil {
			return err
		}

		action := organize.ActionMove
		if organizeCopy {
			action = organize.ActionCopy
		}
		opts := organize.Options{
			PathColumn: organizeColumn,
			TargetDir:  organizeTarget,
			Action:     action,
			Conflict:   organize.ConflictPolicy(organizeConflict),
			BaseDir:    organizeBaseDir,
		}

		var result *organize.Result
		if organizePreview {
			result, err = organize.Plan(t, opts)
		} else {
			result, err = organize.Run(ctx, t, opts)
		}
		if err != nil {
			return err
		}

		if organizePreview {
			for _, r := range result.Rows {
				fmt.Printf("%-10s %s -> %s\n", r.Outcome, r.Source, r.Dest)
			}
		}

		s := result.Stats
		log.Info("%d files: %d handled, %d not found, %d skipped, %d errors",
			s.Total, s.Success, s.NotFound, s.Skipped, s.Errors)
		if s.Errors > 0 {
			for _, r := range result.Rows {
				if r.Err != nil {
					log.Error("row %d: %v", r.Row+2, r.Err)
				}
			}
		}

		if organizeReport != "" {
			if err := saveTable(organizeReport, "Report", organize.ReportTable(result)); err != nil {
				return err
			}
			log.Success("report written to %s", organizeReport)
		}
		return nil
	},
}

func init() {
	organizeCmd.Flags().StringVarP(&organizeColumn, "column", "c", "", "column holding file paths (default: auto-detect)")
	organizeCmd.Flags().StringVar(&organizeSheet, "sheet", "", "sheet of the listing file")
	organizeCmd.Flags().StringVarP(&organizeTarget, "target", "t", "", "target directory (required)")
	organizeCmd.Flags().BoolVar(&organizeCopy, "copy", false, "copy instead of moving")
	organizeCmd.Flags().StringVar(&organizeConflict, "on-conflict", "skip", "conflict policy: skip, rename, overwrite")
	organizeCmd.Flags().StringVar(&organizeBaseDir, "base-dir", "", "base directory for relative paths")
	organizeCmd.Flags().BoolVar(&organizePreview, "preview", false, "show the plan without touching files")
	organizeCmd.Flags().StringVar(&organizeReport, "report", "", "write per-row outcomes to this file")
	organizeCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(organizeCmd)
}
