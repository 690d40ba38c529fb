// =============================================================================
// ExcelTools - Version Command
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the application version, overridable at build time with
// -ldflags "-X github.com/exceltoolspro/exceltools/cmd.Version=...".
var Version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("exceltools %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
