// Package commands implements the CLI commands for devd.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/devd/internal/app"
	"go.trai.ch/devd/internal/build"
)

// CLI represents the command line interface for devd.
type CLI struct {
	app      Application
	settings app.LogSettings
	rootCmd  *cobra.Command
	dir      string
}

// Application represents the application logic interface.
type Application interface {
	Load(ctx context.Context, opts app.LoadOptions) error
	Install(ctx context.Context, opts app.InstallOptions) error
	List(ctx context.Context, opts app.ListOptions) error
	Remove(ctx context.Context, opts app.RemoveOptions) error
	Watch(ctx context.Context, opts app.WatchOptions) error
	RunWorker(ctx context.Context, in io.Reader, out io.Writer) error
}

// New creates a new CLI instance with the given app. settings may be nil.
func New(a Application, settings app.LogSettings) *CLI {
	rootCmd := &cobra.Command{
		Use:           "devd",
		Short:         "Resolve, install and load the dev server core and its plugins",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:      a,
		settings: settings,
		rootCmd:  rootCmd,
	}

	rootCmd.PersistentFlags().StringVarP(&c.dir, "dir", "C", ".", "Project directory to look for devd.yaml in")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if c.settings == nil {
			return
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		c.settings.SetVerbose(verbose)
		c.settings.SetJSON(jsonLogs)
	}

	rootCmd.AddCommand(c.newLoadCmd())
	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newRemoveCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newWorkerCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the input stream for the root command. Used for testing.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}
