// Package main is the entry point for the porcelain build tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/porcelain/cmd/porcelain/commands"
	"go.trai.ch/porcelain/internal/app"
	"go.trai.ch/porcelain/internal/core/domain"
	_ "go.trai.ch/porcelain/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.App.Close() }, nil
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	// 2. Interface - CLI
	var globals commands.Globals
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)
	cli.SetGlobalsHook(func(g commands.Globals) {
		globals = g
		if l, ok := components.Logger.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(g.JSON)
		}
	})

	// 3. Execution
	err = cli.Execute(ctx)

	if globals.MetricsFile != "" {
		if werr := components.App.WriteMetrics(globals.MetricsFile); werr != nil {
			components.Logger.Error(werr)
		}
	}

	if err != nil {
		// Failed partitions were already reported with their output.
		if errors.Is(err, domain.ErrGoalFailed) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
