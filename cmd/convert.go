// =============================================================================
// ExcelTools - Convert Command
// =============================================================================
//
// Conversions between CSV and XLSX: single files in both directions, merging
// a folder of CSV files into one workbook, combining several workbooks, and
// a quick inspection of a file's shape and columns. CSV handling honors the
// configured separator and legacy encodings.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/csvio"
	"github.com/exceltoolspro/exceltools/internal/excel"
	"github.com/exceltoolspro/exceltools/internal/table"
	"github.com/exceltoolspro/exceltools/pkg/utils"
)

var (
	convertSeparator string
	convertEncoding  string
	convertSheet     string
	convertOutput    string
	convertKeepHdrs  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert between CSV and XLSX",
}

// csvOptions assembles the CSV options from flags and configuration.
func csvOptions() csvio.Options {
	cfg := cfgManager.Config().CSV
	sep := convertSeparator
	if sep == "" {
		sep = cfg.DefaultSeparator
	}
	enc := convertEncoding
	if enc == "" {
		enc = cfg.DefaultEncoding
	}
	return csvio.Options{Separator: sep, Encoding: enc}
}

var convertFromCSVCmd = &cobra.Command{
	Use:   "from-csv <file.csv>",
	Short: "Convert a CSV file to a formatted workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := appLogger.WithSource("convert")

		opts := csvOptions()
		if convertSeparator == "" {
			if sep, err := csvio.DetectSeparator(args[0]); err == nil {
				opts.Separator = sep
			}
		}

		t, err := csvio.Read(args[0], opts)
		if err != nil {
			return err
		}

		output := convertOutput
		if output == "" {
			output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".xlsx"
		}
		if err := excel.WriteSheet(output, "Data", t, cfgManager.Config().ExcelExport); err != nil {
			return err
		}
		log.Success("%d rows converted to %s", t.NumRows(), output)
		return nil
	},
}

var convertToCSVCmd = &cobra.Command{
	Use:   "to-csv <file.xlsx>",
	Short: "Convert a workbook sheet to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := appLogger.WithSource("convert")

		t, sheet, err := excel.ReadNamedOrFirst(args[0], convertSheet)
		if err != nil {
			return err
		}

		output := convertOutput
		if output == "" {
			output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".csv"
		}
		if err := csvio.Write(output, t, csvOptions()); err != nil {
			return err
		}
		log.Success("%d rows of sheet %q converted to %s", t.NumRows(), sheet, output)
		return nil
	},
}

var convertCombineCmd = &cobra.Command{
	Use:   "combine <dir>",
	Short: "Combine a folder of CSV files or workbooks into one workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cfgManager.Config()
		log := appLogger.WithSource("convert")

		files, err := utils.ListFiles(args[0], ".csv", ".xlsx")
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no CSV files or workbooks in %s", args[0])
		}

		// ListFiles sorts newest first; combining wants a stable
		// name order instead.
		paths := append([]string{}, files...)
		for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
			paths[i], paths[j] = paths[j], paths[i]
		}

		skip := !convertKeepHdrs && cfg.CSV.DefaultSkipHeadersOnMerge

		var combined *table.Table
		if xlsxPaths := filterExt(paths, ".xlsx"); len(xlsxPaths) > 0 {
			combined, err = excel.ConcatWorkbooks(xlsxPaths, skip)
			if err != nil {
				return err
			}
		}
		for _, p := range filterExt(paths, ".csv") {
			t, err := csvio.Read(p, csvOptions())
			if err != nil {
				return err
			}
			if combined == nil {
				combined = t
				continue
			}
			if skip {
				combined.Rows = append(combined.Rows, t.Rows...)
			} else {
				combined.Rows = append(combined.Rows, t.Headers)
				combined.Rows = append(combined.Rows, t.Rows...)
			}
		}
		if combined == nil {
			return fmt.Errorf("nothing to combine in %s", args[0])
		}

		output := convertOutput
		if output == "" {
			output = filepath.Join(args[0], utils.StampedName("combined", ".xlsx"))
		}
		if err := excel.WriteSheet(output, "Data", combined, cfg.ExcelExport); err != nil {
			return err
		}
		log.Success("%d files combined into %s (%d rows)", len(paths), output, combined.NumRows())
		return nil
	},
}

// filterExt keeps the paths carrying the given extension.
func filterExt(paths []string, ext string) []string {
	var out []string
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ext) {
			out = append(out, p)
		}
	}
	return out
}

var convertInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the shape, sheets and columns of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", args[0], err)
		}
		fmt.Printf("Size: %s\n", utils.FormatSize(info.Size()))

		if strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
			sheets, err := excel.SheetNames(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Sheets: %s\n", strings.Join(sheets, ", "))
		}

		t, err := loadTable(args[0], convertSheet)
		if err != nil {
			return err
		}
		fmt.Printf("Rows: %d\nColumns: %d\n", t.NumRows(), t.NumCols())
		for _, h := range t.Headers {
			stats := t.ColumnStats(h)
			if stats.Numeric {
				fmt.Printf("  %-30s %d values, numeric, min %g, max %g, mean %.2f\n",
					h, stats.NonEmpty, stats.Min, stats.Max, stats.Mean)
			} else {
				fmt.Printf("  %-30s %d values, %d unique, %d empty\n",
					h, stats.NonEmpty, stats.Unique, stats.Empty)
			}
		}
		return nil
	},
}

func init() {
	convertCmd.PersistentFlags().StringVar(&convertSeparator, "separator", "", "CSV field separator (default: configured, auto-detected for from-csv)")
	convertCmd.PersistentFlags().StringVar(&convertEncoding, "encoding", "", "CSV encoding: utf-8, utf-8-sig, latin-1, cp1252, iso-8859-1")
	convertCmd.PersistentFlags().StringVar(&convertSheet, "sheet", "", "workbook sheet (default: first)")
	convertCmd.PersistentFlags().StringVarP(&convertOutput, "output", "o", "", "output file")
	convertCombineCmd.Flags().BoolVar(&convertKeepHdrs, "keep-headers", false, "keep the header row of every combined file")
	convertCmd.AddCommand(convertFromCSVCmd, convertToCSVCmd, convertCombineCmd, convertInspectCmd)
	rootCmd.AddCommand(convertCmd)
}
