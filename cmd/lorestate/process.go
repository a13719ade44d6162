package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-state/internal/infrastructure/parsers"
)

func newProcessCmd() *cobra.Command {
	var (
		segmentID string
		turn      int
	)

	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Extract items and characters from a narrative segment",
		Long: `Reads one segment of narrative text, resolves every item and character it
mentions against the game's roster, and records state changes and identity reveals.

Reads from standard input when no file is given or the file is "-".

Examples:
  lorestate process --game 1 --segment 12 --turn 5 chapter.txt
  echo "The sword shattered." | lorestate process -g 1 -s 13 -t 6`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args, segmentID, turn)
		},
	}

	cmd.Flags().StringVarP(&segmentID, "segment", "s", "", "Segment ID (required)")
	cmd.Flags().IntVarP(&turn, "turn", "t", 0, "Turn number the segment belongs to")
	_ = cmd.MarkFlagRequired("segment")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string, segmentID string, turn int) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withDeps(ctx, func(d *Deps) error {
		result, err := d.SegmentHandler.HandleSegment(ctx, globalGame, segmentID, turn, text)
		if err != nil {
			return fmt.Errorf("processing segment: %w", err)
		}

		displayResult(cmd.OutOrStdout(), result)
		return nil
	})
}

// readInput reads the segment text from the named file or standard input.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("opening file: %w", err)
		}
		defer file.Close()
		r = file
	}
	return parsers.ReadSegment(r)
}
