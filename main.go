package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/BishopFox/orgtree/cli"
	"github.com/BishopFox/orgtree/globals"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:     os.Args[0],
		Version: globals.CLOUDFOX_VERSION,
	}
)

func main() {
	// cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(cli.AWSCommands)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
