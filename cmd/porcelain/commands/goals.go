package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// goalCmd builds a command that runs one goal over the given target specs.
func (c *CLI) goalCmd(use, short string, run func(ctx context.Context, cwd string, specs []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [targets...]",
		Short: short,
		Long: short + `.

Targets select packages: a package directory (crates/a), the address of an
entity owned by a package (crates/a:bin-a), or every package below a directory
(crates:: or ::). Without targets every package is selected.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cwd, args)
		},
	}
}

func (c *CLI) newFmtCmd() *cobra.Command {
	var check bool
	cmd := c.goalCmd("fmt", "Format Rust sources", func(ctx context.Context, cwd string, specs []string) error {
		return c.app.Fmt(ctx, cwd, specs, check)
	})
	cmd.Flags().BoolVar(&check, "check", false, "Report unformatted sources without rewriting them")
	return cmd
}

func (c *CLI) newLintCmd() *cobra.Command {
	return c.goalCmd("lint", "Lint packages with clippy", c.app.Lint)
}

func (c *CLI) newTestCmd() *cobra.Command {
	return c.goalCmd("test", "Run unit, binary and integration test harnesses", c.app.Test)
}

func (c *CLI) newPackageCmd() *cobra.Command {
	return c.goalCmd("package", "Build package binaries", c.app.Package)
}

func (c *CLI) newGenerateLockfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-lockfiles",
		Short: "Regenerate Cargo.lock for every workspace and loose package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := workingDir(cmd)
			if err != nil {
				return err
			}
			return c.app.GenerateLockfiles(cmd.Context(), cwd)
		},
	}
}
