package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nb2rs/dtx/internal/content"
	"github.com/nb2rs/dtx/internal/rollable"
	"github.com/nb2rs/dtx/internal/sim"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	TargetOptions
	Table string
	Rolls int
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Roll a table many times and report drop frequencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "table id")
	cmd.Flags().IntVar(&opts.Rolls, "rolls", 0, "number of rolls (default sim.rolls)")
	opts.bind(cmd)
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	if opts.Rolls < 0 {
		return errors.New("--rolls must be >= 0")
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
	n := opts.Rolls
	if n == 0 {
		n = e.cfg.Sim.Rolls
	}

	args := rollable.NewArgs(nil)
	for k, v := range opts.Args {
		args = args.With(k, v)
	}
	rep := sim.Run(t, opts.context(), args, n, func(d content.Drop) string { return d.ItemID })

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "table %s (%s)\n", opts.Table, e.catalog.Kind(opts.Table))
	return rep.WriteText(w)
}
