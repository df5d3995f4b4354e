package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Write a standalone build.sh for the root binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")
			_, err := c.app.Script(cmd.Context(), out)
			return err
		},
	}
	cmd.Flags().StringP("output", "o", "", "Script path (default build.sh next to the configuration)")
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rewrite build.sh whenever the configuration changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")
			return c.app.Watch(cmd.Context(), out)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Script path (default build.sh next to the configuration)")
	return cmd
}
