package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/cplan/internal/app"
)

func (c *CLI) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [inputs...]",
		Short: "Render a single compiler, archiver or linker command",
		Long: "Render a single command for the given inputs using the project's compile settings.\n" +
			"With --kind bin the whole project body is printed instead.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			output, _ := cmd.Flags().GetString("output")
			compileOnly, _ := cmd.Flags().GetBool("compile-only")
			libs, _ := cmd.Flags().GetStringSlice("lib")

			text, err := c.app.Compile(cmd.Context(), app.CompileOptions{
				Kind:        kind,
				Output:      output,
				CompileOnly: compileOnly,
				Libraries:   libs,
				Inputs:      args,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringP("kind", "k", "exe", "Artifact kind: obj, exe, static, shared or bin")
	cmd.Flags().StringP("output", "o", "", "Output name, placed under the project output directory")
	cmd.Flags().BoolP("compile-only", "c", false, "Compile without linking")
	cmd.Flags().StringSliceP("lib", "l", nil, "Library to link against (repeatable)")
	return cmd
}
