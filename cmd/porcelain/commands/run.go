package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <address> [-- args...]",
		Short: "Build a binary and run it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := workingDir(cmd)
			if err != nil {
				return err
			}

			var passthrough []string
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				if dash != 1 {
					_ = cmd.Help()
					return nil
				}
				passthrough = args[dash:]
			} else if len(args) > 1 {
				passthrough = args[1:]
			}
			return c.app.Run(cmd.Context(), cwd, args[0], passthrough)
		},
	}
}
