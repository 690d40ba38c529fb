// =============================================================================
// ExcelTools - Config Command
// =============================================================================
//
// Inspect and edit the persisted settings: list every value, read or write
// one by dotted path, reset a section or everything, and move settings
// between machines with export/import.
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/exceltoolspro/exceltools/pkg/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit persisted settings",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its current value",
	Run: func(cmd *cobra.Command, args []string) {
		flat := cfgManager.Flatten()
		keys := make([]string, 0, len(flat))
		for k := range flat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s = %v\n", k, flat[k])
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read one setting by dotted path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := cfgManager.Get(args[0])
		if v == nil {
			return fmt.Errorf("unknown setting: %s", args[0])
		}
		fmt.Printf("%v\n", v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one setting by dotted path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfgManager.Set(args[0], args[1]); err != nil {
			return err
		}
		appLogger.Success("set %s = %s", args[0], args[1])
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset [section]",
	Short: "Restore defaults for one section, or everything",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if err := cfgManager.ResetSection(args[0]); err != nil {
				return err
			}
			appLogger.Success("section %s reset to defaults", args[0])
			return nil
		}
		if err := cfgManager.ResetAll(); err != nil {
			return err
		}
		appLogger.Success("all settings reset to defaults")
		return nil
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export settings to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfgManager.Export(args[0]); err != nil {
			return err
		}
		appLogger.Success("settings exported to %s", args[0])
		return nil
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import settings from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The current settings file is kept as a backup before it is
		// replaced.
		if utils.FileExists(cfgManager.Path) {
			backup, err := utils.BackupFile(cfgManager.Path)
			if err != nil {
				return err
			}
			appLogger.Info("previous settings backed up to %s", backup)
		}
		if err := cfgManager.Import(args[0]); err != nil {
			return err
		}
		appLogger.Success("settings imported from %s", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cfgManager.Path)
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd,
		configResetCmd, configExportCmd, configImportCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
