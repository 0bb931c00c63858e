package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripetl/internal/ingest"
	"tripetl/internal/window"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the fetch units of the window without fetching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.loadPipeline(cmd.Flags())
			if err != nil {
				return err
			}
			if err := checkPipeline(cmd.ErrOrStderr(), p); err != nil {
				return err
			}
			w, err := window.Parse(p.Window.StartDate, p.Window.EndDate)
			if err != nil {
				return err
			}
			src, err := newSource(p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, u := range ingest.Plan(ingest.Request{Window: w, Variants: p.Variants}) {
				fmt.Fprintf(out, "%d\t%s\t%s\n", u.Index, u, src.Locate(u.ObjectName()))
			}
			return nil
		},
	}
	addWindowFlags(cmd.Flags())
	return cmd
}
