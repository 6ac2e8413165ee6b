// Package main provides the entry point for the temples CLI.
package main

import (
	"context"
	"os"

	"github.com/keith-mcqueen/Temples/internal/cli"
)

// Version information populated at build time.
var version = "dev"

func main() {
	ctx, cancel := cli.ContextWithSignals(context.Background())
	defer cancel()

	if err := cli.New(version).Execute(ctx, os.Args[1:]); err != nil {
		cancel()
		cli.ExitOnError(err)
	}
}
