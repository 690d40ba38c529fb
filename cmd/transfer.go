// =============================================================================
// ExcelTools - Transfer Command
// =============================================================================
//
// Pull labeled field values out of loosely structured workbooks using a YAML
// extraction profile, and write them back as a formatted summary sheet in
// each workbook. A single file or a whole folder can be processed; folder
// runs use a bounded worker pool.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/runner"
	"github.com/exceltoolspro/exceltools/internal/transfer"
	"github.com/exceltoolspro/exceltools/pkg/utils"
)

var (
	transferProfile string
	transferSheet   string
	transferOutput  string
	transferDryRun  bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer <file-or-dir>",
	Short: "Extract labeled fields from form workbooks",
	Long: `Extract labeled field values from loosely structured workbooks.

The extraction profile is a YAML file mapping output field names to the
cell labels they appear under. For each label the value is looked for to
the right of the label, below it, and past its merged range, in that
order. Results land on a summary sheet inside each workbook.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg := cfgManager.Config()
		log := appLogger.WithSource("transfer")

		profile, err := transfer.LoadProfile(transferProfile)
		if err != nil {
			return err
		}
		log.Info("profile %q with %d fields", profile.Name, len(profile.Fields))

		outputSheet := transferOutput
		if outputSheet == "" {
			outputSheet = cfg.Transfer.DefaultOutputSheetName
		}
		opts := transfer.Options{
			Sheet:           transferSheet,
			OutputSheet:     outputSheet,
			HeaderTitle:     cfg.Transfer.HeaderTitle,
			MaxRowsToScan:   cfg.Transfer.MaxRowsToScan,
			AdjacentColumns: cfg.Transfer.AdjacentColumnsToCheck,
			Export:          cfg.ExcelExport,
			Concurrency:     cfg.Performance.MaxConcurrency,
		}

		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", args[0], err)
		}

		if !info.IsDir() {
			if transferDryRun {
				fields, err := transfer.Extract(args[0], profile, opts)
				if err != nil {
					return err
				}
				for _, f := range fields {
					fmt.Printf("%-30s %s\n", f.Name, f.Value)
				}
				return nil
			}
			fields, err := transfer.ProcessFile(args[0], profile, opts)
			if err != nil {
				return err
			}
			filled := 0
			for _, f := range fields {
				if f.Value != "" {
					filled++
				}
			}
			log.Success("%d of %d fields extracted to sheet %q", filled, len(fields), outputSheet)
			return nil
		}

		if transferDryRun {
			return fmt.Errorf("--dry-run works on single files only")
		}

		// Folder runs go through the background runner so Ctrl-C lands
		// as a cooperative cancellation between workbooks.
		var summary *transfer.Summary
		r := runner.New()
		r.OnStateChange(func(s runner.State) { log.Debug("run %s", s) })
		if err := r.Start(ctx, func(ctx context.Context, report func(runner.Progress)) error {
			report(runner.Progress{Message: fmt.Sprintf("processing %s", args[0])})
			s, err := transfer.Run(ctx, args[0], profile, opts)
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
				log.Error("%s: %v", r.Path, r.Err)
			}
		}
		log.Success("%d of %d workbooks processed (%d errors)", summary.Success, summary.Total, summary.Errors)

		if summary.Errors > 0 {
			report := utils.StampedName("transfer_errors", ".txt")
			if n, err := appLogger.SaveErrorReport(report); err == nil && n > 0 {
				log.Info("error report written to %s", report)
			}
		}
		return nil
	},
}

func init() {
	transferCmd.Flags().StringVarP(&transferProfile, "profile", "p", "", "YAML extraction profile (required)")
	transferCmd.Flags().StringVar(&transferSheet, "sheet", "", "sheet scanned for labels (default: first)")
	transferCmd.Flags().StringVar(&transferOutput, "output-sheet", "", "summary sheet name")
	transferCmd.Flags().BoolVar(&transferDryRun, "dry-run", false, "print extracted fields without writing")
	transferCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(transferCmd)
}
