// =============================================================================
// ExcelTools - Compare Command
// =============================================================================
//
// Check which key values of one workbook exist in another. Exact membership
// runs by default; --fuzzy adds a similarity fallback for near matches and
// --containment accepts keys embedded in longer text. Found and missing rows
// can be exported as two sheets of one workbook.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/compare"
	"github.com/exceltoolspro/exceltools/internal/excel"
	"github.com/exceltoolspro/exceltools/internal/table"
)

var (
	compareSourceKey   string
	compareTargetKey   string
	compareSourceSheet string
	compareTargetSheet string
	compareFuzzy       bool
	compareFuzzyMin    float64
	compareContainment bool
	compareCaseSens    bool
	compareOutput      string
)

var compareCmd = &cobra.Command{
	Use:   "compare <source-file> <target-file>",
	Short: "Compare key columns of two workbooks",
	Long: `Check which key values of the source file exist in the target file.

The target may be another workbook or CSV, or a plain text file whose
lines are the values to compare against.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg := cfgManager.Config()
		log := appLogger.WithSource("compare")

		source, err := loadTable(args[0], compareSourceSheet)
		if err != nil {
			return err
		}
		target, err := loadCompareTarget(args[1])
		if err != nil {
			return err
		}

		targetKey := compareTargetKey
		if target.ColumnIndex("Value") >= 0 && len(target.Headers) == 1 {
			// Text-file targets expose a single Value column.
			targetKey = "Value"
		}

		threshold := compareFuzzyMin
		if threshold <= 0 {
			threshold = cfg.Search.FuzzyThreshold
		}
		result, err := compare.Run(ctx, source, target, compare.Options{
			SourceKey:      compareSourceKey,
			TargetKey:      targetKey,
			Fuzzy:          compareFuzzy,
			FuzzyThreshold: threshold,
			Containment:    compareContainment,
			CaseSensitive:  compareCaseSens,
		})
		if err != nil {
			return err
		}

		s := result.Stats
		log.Info("exact: %d, fuzzy: %d, missing: %d (of %d source rows)",
			s.ExactMatches, s.FuzzyMatches, s.Missing, s.SourceRows)

		if compareOutput == "" {
			log.Info("missing values:")
			printPreview(result.Missing)
			return nil
		}

		if err := excel.WriteSheet(compareOutput, "Found", result.Found, cfg.ExcelExport); err != nil {
			return err
		}
		if err := excel.ReplaceSheet(compareOutput, "Missing", result.Missing, cfg.ExcelExport); err != nil {
			return err
		}
		log.Success("comparison written to %s", compareOutput)
		return nil
	},
}

// loadCompareTarget reads the comparison target: a spreadsheet, or a
// plain text file whose non-empty lines become a one-column table.
func loadCompareTarget(path string) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".txt" || ext == ".lst" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read value list %s: %w", path, err)
		}
		t := table.New("Value")
		for _, line := range strings.Split(string(data), "\n") {
			if v := strings.TrimSpace(line); v != "" {
				t.AppendRow(v)
			}
		}
		return t, nil
	}
	return loadTable(path, compareTargetSheet)
}

func init() {
	compareCmd.Flags().StringVarP(&compareSourceKey, "key", "k", "", "key column in the source file")
	compareCmd.Flags().StringVar(&compareTargetKey, "target-key", "", "key column in the target file (default: same as --key)")
	compareCmd.Flags().StringVar(&compareSourceSheet, "sheet", "", "sheet of the source file")
	compareCmd.Flags().StringVar(&compareTargetSheet, "target-sheet", "", "sheet of the target file")
	compareCmd.Flags().BoolVar(&compareFuzzy, "fuzzy", false, "fall back to fuzzy matching")
	compareCmd.Flags().Float64Var(&compareFuzzyMin, "fuzzy-threshold", 0, "minimum similarity for fuzzy matches")
	compareCmd.Flags().BoolVar(&compareContainment, "containment", false, "accept keys contained in longer target values")
	compareCmd.Flags().BoolVar(&compareCaseSens, "case-sensitive", false, "match case exactly")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "write Found/Missing sheets to this workbook")
	compareCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(compareCmd)
}
