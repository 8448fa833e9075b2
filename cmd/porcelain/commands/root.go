// Package commands implements the CLI commands for porcelain.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/porcelain/internal/app"
	"go.trai.ch/porcelain/internal/build"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for porcelain.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Tailor(ctx context.Context, cwd string) error
	List(ctx context.Context, cwd string) error
	Deps(ctx context.Context, cwd string, addresses []string, transitive bool) error
	Fmt(ctx context.Context, cwd string, specs []string, check bool) error
	Lint(ctx context.Context, cwd string, specs []string) error
	Test(ctx context.Context, cwd string, specs []string) error
	Package(ctx context.Context, cwd string, specs []string) error
	Run(ctx context.Context, cwd, address string, args []string) error
	GenerateLockfiles(ctx context.Context, cwd string) error
	InstallToolchain(ctx context.Context, cwd string) error
	Clean(ctx context.Context, cwd string, opts app.CleanOptions) error
}

// Globals are the persistent flags shared by every command.
type Globals struct {
	JSON        bool
	MetricsFile string
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "porcelain",
		Short:         "Hermetic fmt, lint, test and packaging for Cargo workspaces",
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

	rootCmd.PersistentFlags().StringP("chdir", "C", "", "Run as if started in this directory")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write metrics in the Prometheus text format to this file")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newTailorCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newDepsCmd())
	rootCmd.AddCommand(c.newFmtCmd())
	rootCmd.AddCommand(c.newLintCmd())
	rootCmd.AddCommand(c.newTestCmd())
	rootCmd.AddCommand(c.newPackageCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newGenerateLockfilesCmd())
	rootCmd.AddCommand(c.newToolchainCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetGlobalsHook sets up a PersistentPreRun function that reads the global flags
// and calls the provided callback with them before any command runs.
func (c *CLI) SetGlobalsHook(fn func(Globals)) {
	c.rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		jsonLogs, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		metricsFile, err := cmd.Flags().GetString("metrics-file")
		if err != nil {
			return err
		}
		fn(Globals{JSON: jsonLogs, MetricsFile: metricsFile})
		return nil
	}
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

// workingDir resolves the --chdir flag to an absolute directory.
func workingDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("chdir")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to get working directory")
		}
		return cwd, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve directory"), "path", dir)
	}
	return abs, nil
}
