package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nb2rs/dtx/internal/rollable"
)

// RollOptions holds flags for the roll command.
type RollOptions struct {
	*RootOptions
	TargetOptions
	Table string
	Count int
}

// NewRollCommand creates the roll command.
func NewRollCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RollOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Roll a table and print the drops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoll(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "table id")
	cmd.Flags().IntVar(&opts.Count, "count", 1, "number of rolls")
	opts.bind(cmd)
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runRoll(opts *RollOptions, cmd *cobra.Command) error {
	if opts.Count < 1 {
		return errors.New("--count must be >= 1")
	}
	e, err := setup(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.table(opts.Table)
	if err != nil {
		return err
	}

	args := rollable.NewArgs(nil)
	for k, v := range opts.Args {
		args = args.With(k, v)
	}
	target := opts.context()

	w := cmd.OutOrStdout()
	for i := range opts.Count {
		out := t.Roll(target, args)
		line := "nothing"
		if !out.IsEmpty() {
			drops := out.Values()
			parts := make([]string, len(drops))
			for j, d := range drops {
				parts[j] = d.String()
			}
			line = strings.Join(parts, ", ")
		}
		fmt.Fprintf(w, "roll %d: %s\n", i+1, line)
	}
	return nil
}
