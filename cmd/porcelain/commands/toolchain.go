package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newToolchainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolchain",
		Short: "Manage the Rust toolchain",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Install the configured toolchain and helper tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := workingDir(cmd)
			if err != nil {
				return err
			}
			return c.app.InstallToolchain(cmd.Context(), cwd)
		},
	})

	return cmd
}
