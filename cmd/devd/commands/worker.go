package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Run an internal worker (internal use)",
		Hidden: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Serve one install request from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.RunWorker(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	})

	return cmd
}
