// =============================================================================
// ExcelTools - Table Copy Command
// =============================================================================
//
// Find a known table inside workbooks whose layout drifts and copy it into
// formatted output workbooks carrying a native Excel table. The header row
// is detected by its field labels, the data region ends at two consecutive
// empty rows, and handled sources can be moved aside.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/runner"
	"github.com/exceltoolspro/exceltools/internal/tablecopy"
	"github.com/exceltoolspro/exceltools/internal/transfer"
)

var (
	tablecopyFields  []string
	tablecopyProfile string
	tablecopySheet   string
	tablecopyLabel   string
	tablecopyOut     string
	tablecopyMove    bool
)

var tablecopyCmd = &cobra.Command{
	Use:   "tablecopy <file-or-dir>",
	Short: "Copy detected tables into formatted workbooks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg := cfgManager.Config()
		log := appLogger.WithSource("tablecopy")

		fields := tablecopyFields
		var headerNames []string
		if tablecopyProfile != "" {
			profile, err := transfer.LoadProfile(tablecopyProfile)
			if err != nil {
				return err
			}
			for _, f := range profile.Fields {
				fields = append(fields, f.Label)
				headerNames = append(headerNames, f.Name)
			}
		}
		if len(fields) == 0 {
			return fmt.Errorf("no field labels given; use --fields or --profile")
		}

		opts := tablecopy.Options{
			Fields:        fields,
			HeaderNames:   headerNames,
			Sheet:         tablecopySheet,
			TableLabel:    tablecopyLabel,
			MoveProcessed: tablecopyMove,
			Concurrency:   cfg.Performance.MaxConcurrency,
			Export:        cfg.ExcelExport,
		}

		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", args[0], err)
		}

		if !info.IsDir() {
			out := tablecopyOut
			if out == "" {
				out = filepath.Join(filepath.Dir(args[0]), "extracted_"+filepath.Base(args[0]))
			}
			t, err := tablecopy.CopyTable(args[0], out, opts)
			if err != nil {
				return err
			}
			log.Success("%d rows copied to %s", t.NumRows(), out)
			return nil
		}

		outDir := tablecopyOut
		if outDir == "" {
			outDir = filepath.Join(args[0], "extracted")
		}
		var summary *tablecopy.Summary
		r := runner.New()
		r.OnStateChange(func(s runner.State) { log.Debug("run %s", s) })
		if err := r.Start(ctx, func(ctx context.Context, report func(runner.Progress)) error {
			report(runner.Progress{Message: fmt.Sprintf("processing %s", args[0])})
			s, err := tablecopy.Run(ctx, args[0], outDir, opts)
			summary = s
			return err
		}); err != nil {
			return err
		}
		if err := r.Wait(); err != nil {
			return err
		}
		for _, r := range summary.Files {
			if r.Err != nil {
				log.Warning("%s: %v", filepath.Base(r.Path), r.Err)
			}
		}
		log.Success("%d of %d workbooks processed, %d rows total (%d failed)",
			summary.Processed, summary.Total, summary.TotalRows, summary.Failed)
		return nil
	},
}

func init() {
	tablecopyCmd.Flags().StringSliceVarP(&tablecopyFields, "fields", "f", nil, "expected header labels, in output order")
	tablecopyCmd.Flags().StringVarP(&tablecopyProfile, "profile", "p", "", "YAML profile mapping output names to header labels")
	tablecopyCmd.Flags().StringVar(&tablecopySheet, "sheet", "", "source sheet (default: first)")
	tablecopyCmd.Flags().StringVar(&tablecopyLabel, "table-name", "", "native table label (default: output file name)")
	tablecopyCmd.Flags().StringVarP(&tablecopyOut, "output", "o", "", "output file or directory")
	tablecopyCmd.Flags().BoolVar(&tablecopyMove, "move-processed", false, "move handled sources to Processed/ or Unprocessed/")
	rootCmd.AddCommand(tablecopyCmd)
}
