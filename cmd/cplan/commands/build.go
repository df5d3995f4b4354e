package commands

import (
	"runtime"

	"github.com/spf13/cobra"
	"go.trai.ch/cplan/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the plan for the root binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobs, _ := cmd.Flags().GetInt("jobs")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			return c.app.Build(cmd.Context(), app.BuildOptions{
				Parallelism: jobs,
				DryRun:      dryRun,
			})
		},
	}
	cmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "Number of commands to run in parallel")
	cmd.Flags().BoolP("dry-run", "n", false, "Print the commands instead of running them")
	return cmd
}

func (c *CLI) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration, defaults included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Config(cmd.Context())
		},
	}
}
