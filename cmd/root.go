// =============================================================================
// ExcelTools - Root Command
// =============================================================================
//
// This file defines the root Cobra command and the plumbing shared by every
// subcommand: the persisted configuration, the application logger and a
// signal-aware context so Ctrl-C cancels long runs cleanly.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/internal/config"
	"github.com/exceltoolspro/exceltools/internal/csvio"
	"github.com/exceltoolspro/exceltools/internal/excel"
	"github.com/exceltoolspro/exceltools/internal/logging"
	"github.com/exceltoolspro/exceltools/internal/table"
	"github.com/exceltoolspro/exceltools/pkg/utils"
)

var (
	// Persistent flags.
	configPath string
	verbose    bool
	logExport  string

	// Shared state built in the persistent pre-run.
	cfgManager *config.Manager
	appLogger  *logging.Logger
)

// rootCmd is the base command of the application.
var rootCmd = &cobra.Command{
	Use:   "exceltools",
	Short: "Utilities for repetitive spreadsheet work",
	Long: `ExcelTools bundles the recurring spreadsheet chores of a document-heavy
team: searching and joining workbooks, comparing key columns, pulling
labeled fields out of form sheets, CSV conversion, table extraction,
bulk file organization and VBA source extraction.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfgManager = config.NewManager(configPath)
		cfg := cfgManager.Load()

		level := logging.ParseLevel(cfg.Log.Level)
		if verbose {
			level = logging.LevelDebug
		}
		logDir := cfg.Log.LogDir
		if cfg.Log.SaveToFile && logDir == "" {
			logDir = filepath.Join(filepath.Dir(cfgManager.Path), "logs")
		}
		if !cfg.Log.SaveToFile {
			logDir = ""
		}
		if logDir != "" {
			utils.CleanOldFiles(logDir, logRetention)
		}
		appLogger = logging.New(logging.Options{
			Level:          level,
			MaxEntries:     cfg.Log.MaxEntries,
			LogDir:         logDir,
			ShowTimestamps: cfg.Log.ShowTimestamps,
			ShowSource:     cfg.Log.ShowSource,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger == nil {
			return
		}
		if logExport != "" {
			if err := appLogger.Export(logExport); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}
		appLogger.Close()
	},
}

// logRetention is how long per-run log files are kept.
const logRetention = 30 * 24 * time.Hour

// Execute runs the CLI. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default ~/.exceltools/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logExport, "log-export", "", "write the session log to this file on exit")
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// =============================================================================
// SHARED INPUT/OUTPUT HELPERS
// =============================================================================

// loadTable reads an input file into a table, dispatching on extension.
// CSV input uses the configured default separator and encoding.
func loadTable(path, sheet string) (*table.Table, error) {
	cfg := cfgManager.Config()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return csvio.Read(path, csvio.Options{
			Separator: cfg.CSV.DefaultSeparator,
			Encoding:  cfg.CSV.DefaultEncoding,
		})
	}
	return excel.ReadSheet(path, sheet)
}

// saveTable writes a table to an output file, dispatching on extension.
func saveTable(path, sheet string, t *table.Table) error {
	cfg := cfgManager.Config()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return csvio.Write(path, t, csvio.Options{
			Separator: cfg.CSV.DefaultSeparator,
			Encoding:  cfg.CSV.DefaultEncoding,
		})
	}
	return excel.WriteSheet(path, sheet, t, cfg.ExcelExport)
}

// printPreview renders the first rows of a table to stdout, bounded by
// the configured preview limits.
func printPreview(t *table.Table) {
	cfg := cfgManager.Config().Performance

	cols := t.NumCols()
	if cfg.PreviewMaxColumns > 0 && cols > cfg.PreviewMaxColumns {
		cols = cfg.PreviewMaxColumns
	}

	fmt.Println(strings.Join(t.Headers[:cols], " | "))
	fmt.Println(strings.Repeat("-", 60))

	shown := t.NumRows()
	if cfg.PreviewMaxRows > 0 && shown > cfg.PreviewMaxRows {
		shown = cfg.PreviewMaxRows
	}
	head := t.Head(shown)
	for i := 0; i < head.NumRows(); i++ {
		cells := make([]string, cols)
		for c := 0; c < cols; c++ {
			cells[c] = head.Cell(i, c)
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	if shown < t.NumRows() {
		fmt.Printf("... %d more rows\n", t.NumRows()-shown)
	}
}
