// =============================================================================
// ExcelTools - Main Entry Point
// =============================================================================
//
// This is the main entry point for the ExcelTools CLI application, a utility
// suite for repetitive spreadsheet tasks. It initializes the Cobra CLI
// framework and delegates command execution to the cmd package.
//
// USAGE:
//   exceltools search      - Search rows of a workbook sheet
//   exceltools merge       - Join two workbooks on a key column
//   exceltools compare     - Compare key columns of two workbooks
//   exceltools transfer    - Extract labeled fields across many workbooks
//   exceltools convert     - Convert between CSV and XLSX, combine, inspect
//   exceltools tablecopy   - Copy detected tables into formatted sheets
//   exceltools organize    - Relocate files listed in a workbook
//   exceltools vba         - Extract VBA source from macro workbooks
//   exceltools config      - Inspect and edit persisted settings
//   exceltools version     - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/exceltoolspro/exceltools/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
