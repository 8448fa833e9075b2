package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newTailorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tailor",
		Short: "Show the workspaces and packages discovered from Cargo manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := workingDir(cmd)
			if err != nil {
				return err
			}
			return c.app.Tailor(cmd.Context(), cwd)
		},
	}
}

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every entity in dependency order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := workingDir(cmd)
			if err != nil {
				return err
			}
			return c.app.List(cmd.Context(), cwd)
		},
	}
}

func (c *CLI) newDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps <address>...",
		Short: "Show the dependencies of entities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir(cmd)
			if err != nil {
				return err
			}
			transitive, _ := cmd.Flags().GetBool("transitive")
			return c.app.Deps(cmd.Context(), cwd, args, transitive)
		},
	}
	cmd.Flags().BoolP("transitive", "t", false, "Include transitive dependencies")
	return cmd
}
