package cli

import (
	"github.com/spf13/cobra"

	"github.com/nb2rs/dtx/internal/sim"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "List tables with their draw counts and meta magnitudes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return sim.WriteInspect(cmd.OutOrStdout(), sim.Inspect(e.catalog))
		},
	}
}
