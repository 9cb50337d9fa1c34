package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/devd/internal/app"
)

func (c *CLI) newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Resolve and load the core and the configured plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Load(cmd.Context(), app.LoadOptions{Dir: c.dir})
		},
	}
}

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Load the project and reload modules when their files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context(), app.WatchOptions{Dir: c.dir})
		},
	}
}
