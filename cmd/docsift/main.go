package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/docsift/docsift/internal/adapters/driving/cli"
	"github.com/docsift/docsift/internal/core/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error categories onto stable process exit codes so
// scripts can branch on failure class.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return 2
	case errors.Is(err, domain.ErrInvalidArgument):
		return 3
	case errors.Is(err, domain.ErrNotFound):
		return 4
	case errors.Is(err, domain.ErrDimensionMismatch):
		return 5
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return 6
	default:
		return 1
	}
}
