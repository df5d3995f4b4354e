// Package commands implements the CLI commands for cplan.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/cplan/internal/app"
	"go.trai.ch/cplan/internal/build"
	"go.trai.ch/cplan/internal/core/domain"
	"go.trai.ch/cplan/internal/core/ports"
)

// CLI represents the command line interface for cplan.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	SetConfigPath(path string)
	Plan(ctx context.Context) (*domain.Config, domain.Sequence, error)
	Script(ctx context.Context, out string) (string, error)
	Compile(ctx context.Context, opts app.CompileOptions) (string, error)
	Build(ctx context.Context, opts app.BuildOptions) error
	Watch(ctx context.Context, out string) error
	Config(ctx context.Context) error
}

// Option configures the CLI.
type Option func(*CLI)

// WithLogger lets the --log-json flag switch the logger to JSON output.
func WithLogger(l ports.Logger) Option {
	return func(c *CLI) {
		c.logger = l
	}
}

type jsonSwitcher interface {
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "cplan",
		Short:         "Plan and run dependency-ordered C builds",
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
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentFlags().StringP("config", "C", "",
		"Path to build.toml or build.yaml, or a directory to search from")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write log messages as JSON")
	rootCmd.PersistentPreRunE = c.preRun

	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newScriptCmd())
	rootCmd.AddCommand(c.newCompileCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newConfigCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) preRun(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if path != "" {
		c.app.SetConfigPath(path)
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	if s, ok := c.logger.(jsonSwitcher); ok && logJSON {
		s.SetJSON(true)
	}
	return nil
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
