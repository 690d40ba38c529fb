// =============================================================================
// ExcelTools - Merge Command
// =============================================================================
//
// Join a main workbook with a reference workbook on a key column. Every main
// row is kept; matching reference columns are appended, colliding names get
// a _REF suffix, and a MATCH column can record the outcome. The key column
// is auto-detected from the configured patterns when not given.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/merge"
)

var (
	mergeKey         string
	mergeRefKey      string
	mergeMainSheet   string
	mergeRefSheet    string
	mergeOutput      string
	mergeOutputSheet string
	mergeLastOnly    bool
	mergeMatchesOnly bool
	mergeNoMatchCol  bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <main-file> <reference-file>",
	Short: "Join two workbooks on a key column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg := cfgManager.Config()
		log := appLogger.WithSource("merge")

		main, err := loadTable(args[0], mergeMainSheet)
		if err != nil {
			return err
		}
		ref, err := loadTable(args[1], mergeRefSheet)
		if err != nil {
			return err
		}
		cfgManager.AddRecentFile(args[0])

		key := mergeKey
		if key == "" {
			detected, ok := merge.AutoKey(main, ref, cfg.Merge.KeyColumnPatterns)
			if !ok {
				return fmt.Errorf("no shared key column found; use --key")
			}
			key = detected
			log.Info("using detected key column %q", key)
		}

		result, err := merge.Run(ctx, main, ref, merge.Options{
			MainKey:        key,
			RefKey:         mergeRefKey,
			FilterLastOnly: mergeLastOnly || cfg.Merge.DefaultFilterLastOnly,
			AddMatchColumn: !mergeNoMatchCol && cfg.Merge.DefaultAddMatchColumn,
			MatchesOnly:    mergeMatchesOnly || cfg.Merge.DefaultExportMatchesOnly,
		})
		if err != nil {
			return err
		}

		s := result.Stats
		log.Info("main rows: %d, reference rows: %d (kept %d)", s.MainRows, s.RefRows, s.FilteredRef)
		log.Info("matched: %d, unmatched: %d (%d empty keys), duplicate keys ignored: %d",
			s.Matched, s.Unmatched, s.EmptyKeys, s.DuplicateKeys)
		if len(s.UnmatchedSample) > 0 {
			log.Info("unmatched keys include: %s", strings.Join(s.UnmatchedSample, ", "))
		}

		output := mergeOutput
		if output == "" {
			printPreview(result.Table)
			return nil
		}
		sheet := mergeOutputSheet
		if sheet == "" {
			sheet = cfg.Merge.DefaultOutputSheetName
		}
		if err := saveTable(output, sheet, result.Table); err != nil {
			return err
		}
		log.Success("%d rows written to %s", s.OutputRows, output)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeKey, "key", "k", "", "key column in the main file (default: auto-detect)")
	mergeCmd.Flags().StringVar(&mergeRefKey, "ref-key", "", "key column in the reference file (default: same as --key)")
	mergeCmd.Flags().StringVar(&mergeMainSheet, "sheet", "", "sheet of the main file")
	mergeCmd.Flags().StringVar(&mergeRefSheet, "ref-sheet", "", "sheet of the reference file")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "write the merged table to this file")
	mergeCmd.Flags().StringVar(&mergeOutputSheet, "output-sheet", "", "output sheet name")
	mergeCmd.Flags().BoolVar(&mergeLastOnly, "last-only", false, "keep only reference rows with LAST = Y")
	mergeCmd.Flags().BoolVar(&mergeMatchesOnly, "matches-only", false, "drop unmatched main rows")
	mergeCmd.Flags().BoolVar(&mergeNoMatchCol, "no-match-column", false, "do not append the MATCH column")
	rootCmd.AddCommand(mergeCmd)
}
