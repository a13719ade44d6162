package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-state/internal/application/handlers"
	"github.com/ersonp/lore-state/internal/domain/ports"
	"github.com/ersonp/lore-state/internal/infrastructure/config"
	"github.com/ersonp/lore-state/internal/infrastructure/relationaldb/sqlite"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new world database",
		Long:  "Creates a .lorestate directory with default configuration and sets up the SQLite schema.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	handler := handlers.NewInitHandler(openSQLite)
	result, err := handler.Handle(cmd.Context(), cwd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", result.ConfigPath)
	fmt.Fprintf(out, "Created world database: %s\n", result.DatabasePath)
	fmt.Fprintln(out, "lorestate initialized successfully!")
	return nil
}

func openSQLite(cfg config.SQLiteConfig) (ports.WorldStore, error) {
	return sqlite.NewRepository(cfg)
}
