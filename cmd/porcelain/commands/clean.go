package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/porcelain/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the metadata store, sandboxes and toolchains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := workingDir(cmd)
			if err != nil {
				return err
			}

			toolchains, _ := cmd.Flags().GetBool("toolchains")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.CleanOptions{}
			switch {
			case all:
				opts.Metadata = true
				opts.Sandboxes = true
				opts.Toolchains = true
			case toolchains:
				opts.Toolchains = true
			default:
				// Default behavior: clean derived state, keep downloads
				opts.Metadata = true
				opts.Sandboxes = true
			}

			return c.app.Clean(cmd.Context(), cwd, opts)
		},
	}

	cmd.Flags().BoolP("toolchains", "t", false, "Clean installed toolchains, helper tools and downloads")
	cmd.Flags().BoolP("all", "a", false, "Clean all caches")

	return cmd
}
