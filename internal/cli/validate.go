package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and build every table definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			w := cmd.OutOrStdout()
			ids := e.catalog.IDs()
			for _, id := range ids {
				fmt.Fprintf(w, "%s: %s\n", id, e.catalog.Kind(id))
			}
			fmt.Fprintf(w, "%d tables valid\n", len(ids))
			return nil
		},
	}
}
