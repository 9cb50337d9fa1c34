package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/devd/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [name[@version]]",
		Short: "Install a plugin, or the core with --core",
		Long: `Install a plugin, or the core with --core.

The version may be an exact version, a range or a dist-tag. Without a version the
newest version compatible with the host is installed. With --from the package is
installed from a local directory or .tgz archive instead of the registry.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, _ := cmd.Flags().GetBool("core")
			from, _ := cmd.Flags().GetString("from")

			var spec string
			if len(args) == 1 {
				spec = args[0]
			}
			if !core && spec == "" {
				return errors.New("a plugin name is required unless --core is set")
			}

			return c.app.Install(cmd.Context(), app.InstallOptions{
				Dir:  c.dir,
				Spec: spec,
				Core: core,
				From: from,
			})
		},
	}
	cmd.Flags().Bool("core", false, "Install the core; the argument is the version")
	cmd.Flags().String("from", "", "Install from a local directory or .tgz archive")
	return cmd
}
