// Package main is the entry point for the cplan build planner.
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
	"go.trai.ch/cplan/cmd/cplan/commands"
	"go.trai.ch/cplan/internal/app"
	"go.trai.ch/cplan/internal/core/domain"
	_ "go.trai.ch/cplan/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// The logger is not available yet.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	cli := commands.New(components.App, commands.WithLogger(components.Logger))
	cli.SetArgs(args)
	cli.SetOutput(components.App.Stdout(), stderr)

	if err := cli.Execute(ctx); err != nil {
		switch {
		case errors.Is(err, domain.ErrBuildExecutionFailed):
			// The renderer already reported the failed steps.
		case errors.Is(err, domain.ErrUnknownKind):
			kind, _ := metadataValue(err, "kind")
			_, _ = fmt.Fprintf(stderr, "error: %s %v\n", domain.ErrUnknownKind.Error(), kind)
		default:
			components.Logger.Error(err)
		}
		return 1
	}
	return 0
}

// metadataValue returns the first value stored under key along the error chain.
func metadataValue(err error, key string) (any, bool) {
	type metadataer interface {
		Metadata() map[string]any
	}

	for err != nil {
		if m, ok := err.(metadataer); ok {
			if v, ok := m.Metadata()[key]; ok {
				return v, true
			}
		}
		err = errors.Unwrap(err)
	}
	return nil, false
}
