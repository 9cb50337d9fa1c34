package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/devd/internal/app"
)

func (c *CLI) newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove a plugin, the core or the whole store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetString("version")
			core, _ := cmd.Flags().GetBool("core")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.RemoveOptions{Dir: c.dir, Version: version, Core: core, All: all}
			if len(args) == 1 {
				opts.Name = args[0]
			}

			switch {
			case all && (core || opts.Name != "" || version != ""):
				return errors.New("--all cannot be combined with a name, --core or --version")
			case core && opts.Name != "":
				return errors.New("--core cannot be combined with a plugin name")
			case !all && !core && opts.Name == "":
				_ = cmd.Help()
				return nil
			}

			return c.app.Remove(cmd.Context(), opts)
		},
	}
	cmd.Flags().String("version", "", "Remove only this version")
	cmd.Flags().Bool("core", false, "Remove the core")
	cmd.Flags().BoolP("all", "a", false, "Remove every installed package")
	return cmd
}
