package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/devd/internal/app"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list [name]",
		Aliases: []string{"ls"},
		Short:   "List installed versions and their compatibility",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.ListOptions{Dir: c.dir}
			if len(args) == 1 {
				opts.Name = args[0]
			}
			return c.app.List(cmd.Context(), opts)
		},
	}
}
