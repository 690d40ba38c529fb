// =============================================================================
// ExcelTools - VBA Command
// =============================================================================
//
// Extract the VBA source of macro workbooks into .bas/.cls/.frm files plus a
// combined listing, for review and version control. Accepts .xlsm/.xlsb
// workbooks or a raw vbaProject.bin.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/vba"
)

var (
	vbaOutDir string
	vbaList   bool
)

var vbaCmd = &cobra.Command{
	Use:   "vba <file.xlsm>",
	Short: "Extract VBA source from macro workbooks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := appLogger.WithSource("vba")

		modules, err := vba.Extract(args[0])
		if err != nil {
			return err
		}

		if vbaList {
			for _, m := range modules {
				fmt.Printf("%-8s %-30s %d lines\n", m.Kind, m.Name, m.Lines())
			}
			return nil
		}

		outDir := vbaOutDir
		if outDir == "" {
			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			outDir = filepath.Join(filepath.Dir(args[0]), stem+"_vba")
		}
		stats, err := vba.WriteModules(modules, outDir, args[0])
		if err != nil {
			return err
		}
		log.Success("%d modules, %d classes, %d forms (%d lines) written to %s",
			stats.Modules, stats.Classes, stats.Forms, stats.Lines, outDir)
		return nil
	},
}

func init() {
	vbaCmd.Flags().StringVarP(&vbaOutDir, "output", "o", "", "output directory (default: <name>_vba next to the file)")
	vbaCmd.Flags().BoolVar(&vbaList, "list", false, "list modules without writing files")
	rootCmd.AddCommand(vbaCmd)
}
