package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeclareCmd() *cobra.Command {
	var turn int

	cmd := &cobra.Command{
		Use:   "declare <file>",
		Short: "Record the items and characters a generator declared",
		Long: `Reads the generator's structured output for a turn and adds the declared
items and characters to the roster.

JSON files hold {"segmentId", "newItems", "newCharacters"}; CSV files use the
columns kind,name,description,relationship. Descriptions may carry
ITEM_UPDATE: name | STATE | reason and CHARACTER_UPDATE: name | trueName | reason
lines.

Examples:
  lorestate declare --game 1 --turn 5 turn5.json
  lorestate declare -g 1 -t 6 roster.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeclare(cmd, args[0], turn)
		},
	}

	cmd.Flags().IntVarP(&turn, "turn", "t", 0, "Turn number the declarations belong to")

	return cmd
}

func runDeclare(cmd *cobra.Command, path string, turn int) error {
	ctx := cmd.Context()
	return withDeps(ctx, func(d *Deps) error {
		result, err := d.SegmentHandler.HandleDeclarations(ctx, globalGame, turn, path)
		if err != nil {
			return fmt.Errorf("declaring: %w", err)
		}

		displayResult(cmd.OutOrStdout(), result)
		return nil
	})
}
