// Package cli implements the dtx command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	TablesDir  string
	ScriptsDir string
	Seed       uint64
}

// NewRootCommand creates the root command for the dtx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "dtx",
		Short:         "dtx - drop table engine",
		Long:          "Load drop table definitions, roll them, and simulate their odds.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.TablesDir, "tables", "", "table definitions directory (overrides content.tables_dir)")
	cmd.PersistentFlags().StringVar(&opts.ScriptsDir, "scripts", "", "Lua scripts directory (overrides content.scripts_dir)")
	cmd.PersistentFlags().Uint64Var(&opts.Seed, "seed", 0, "seed for reproducible rolls (disables the crypto source)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRollCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}
