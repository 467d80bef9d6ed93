// Package main is the entry point for the jenkins-utils CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApp()).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(toolerrors.ExitCode(err))
	}
}
