package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/klauern/amt/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Run(ctx, os.Args)
	stop()
	os.Exit(cli.ExitCode(os.Stderr, err))
}
