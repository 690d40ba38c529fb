// =============================================================================
// ExcelTools - Search Command
// =============================================================================
//
// Search the rows of a workbook or CSV file for one or more terms, with six
// match modes, AND/OR combination and an optional column subset. A word-list
// mode searches many values at once and reports per-word counts. Matches can
// be previewed on the console or exported to a formatted workbook.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/search"
	"github.com/exceltoolspro/exceltools/internal/table"
)

var (
	searchSheet     string
	searchMode      string
	searchColumns   []string
	searchCaseSens  bool
	searchAnd       bool
	searchFuzzyMin  float64
	searchOutput    string
	searchWordsFile string
)

var searchCmd = &cobra.Command{
	Use:   "search <file> [terms...]",
	Short: "Search rows of a workbook or CSV file",
	Long: `Search the rows of a spreadsheet for one or more terms.

Modes: contains (default), exact (whole word), starts, ends, regex, fuzzy.
Multiple terms combine with OR unless --all is given. With --words-file the
terms come from a text file, one per line, and each word is counted
separately.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg := cfgManager.Config()

		t, err := loadTable(args[0], searchSheet)
		if err != nil {
			return err
		}
		cfgManager.AddRecentFile(args[0])

		mode, err := search.ParseMode(searchMode)
		if err != nil {
			return err
		}
		threshold := searchFuzzyMin
		if threshold <= 0 {
			threshold = cfg.Search.FuzzyThreshold
		}
		query := search.Query{
			Mode:           mode,
			CaseSensitive:  searchCaseSens,
			AndMode:        searchAnd,
			Columns:        searchColumns,
			FuzzyThreshold: threshold,
		}

		if searchWordsFile != "" {
			return runWordListSearch(ctx, t, query)
		}

		if len(args) < 2 {
			return fmt.Errorf("no search terms given")
		}
		query.Terms = args[1:]

		log := appLogger.WithSource("search")
		result, err := search.Run(ctx, t, query)
		if err != nil {
			return err
		}
		log.Info("%d of %d rows match", result.Matches.NumRows(), result.Scanned)

		if searchOutput != "" {
			if err := saveTable(searchOutput, "Search Results", result.Matches); err != nil {
				return err
			}
			log.Success("results written to %s", searchOutput)
			return nil
		}
		printPreview(result.Matches)
		return nil
	},
}

// runWordListSearch handles the --words-file variant.
func runWordListSearch(ctx context.Context, t *table.Table, query search.Query) error {
	log := appLogger.WithSource("search")

	data, err := os.ReadFile(searchWordsFile)
	if err != nil {
		return fmt.Errorf("failed to read word list %s: %w", searchWordsFile, err)
	}
	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if w := strings.TrimSpace(line); w != "" {
			words = append(words, w)
		}
	}

	result, err := search.RunWordList(ctx, t, words, query, true)
	if err != nil {
		return err
	}

	for _, wc := range result.Counts {
		fmt.Printf("%-30s %d\n", wc.Word, wc.Count)
	}
	log.Info("%d rows match at least one word", result.Matches.NumRows())

	if searchOutput != "" {
		if err := saveTable(searchOutput, "Search Results", result.Matches); err != nil {
			return err
		}
		log.Success("results written to %s", searchOutput)
	}
	return nil
}

func init() {
	searchCmd.Flags().StringVar(&searchSheet, "sheet", "", "sheet to search (default: first)")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "contains", "match mode: contains, exact, starts, ends, regex, fuzzy")
	searchCmd.Flags().StringSliceVarP(&searchColumns, "columns", "c", nil, "restrict the search to these columns")
	searchCmd.Flags().BoolVar(&searchCaseSens, "case-sensitive", false, "match case exactly")
	searchCmd.Flags().BoolVar(&searchAnd, "all", false, "require every term to match (AND)")
	searchCmd.Flags().Float64Var(&searchFuzzyMin, "fuzzy-threshold", 0, "minimum similarity for fuzzy mode")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "write matches to this file instead of previewing")
	searchCmd.Flags().StringVar(&searchWordsFile, "words-file", "", "search every word of this file, one per line")
	rootCmd.AddCommand(searchCmd)
}
