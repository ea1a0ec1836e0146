// Package main is the entry point for the ferry release pipeline controller.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/cmd/ferry/commands"
	"go.trai.ch/ferry/internal/app"
	_ "go.trai.ch/ferry/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run(opts ...func(*app.App)) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return app.ExitCodeError
	}
	defer func() {
		if closeErr := components.Telemetry.Close(); closeErr != nil {
			components.Logger.Error(closeErr)
		}
	}()

	// Apply options
	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App, commands.WithJSONLogs(components.SetJSON))

	// 3. Execution
	err = cli.Execute(ctx)
	code := app.ExitCode(err)
	if code == app.ExitCodeConfig || code == app.ExitCodeError {
		// Stage, service and deploy failures are reported per environment.
		components.Logger.Error(err)
	}
	return code
}
