// Package main provides the entry point for the lorestate CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	globalGame string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lorestate",
		Short:         "Tracks the items and characters of an interactive story across turns",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalGame, "game", "g", "", "Game to operate on (required)")

	rootCmd.AddCommand(
		newInitCmd(),
		newProcessCmd(),
		newDeclareCmd(),
		newItemsCmd(),
		newCharactersCmd(),
		newMentionsCmd(),
		newIdentityCmd(),
	)

	return rootCmd
}
