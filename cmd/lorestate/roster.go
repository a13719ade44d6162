package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newItemsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List the items of a game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				items, err := d.RosterHandler.HandleItems(ctx, globalGame)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				displayItems(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newCharactersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "characters",
		Short: "List the characters of a game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				characters, err := d.RosterHandler.HandleCharacters(ctx, globalGame)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), characters)
				}
				displayCharacters(cmd.OutOrStdout(), characters)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newMentionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "mentions <item|character> <id>",
		Short: "Show every recorded mention of an item or character",
		Example: `  lorestate mentions --game 1 item 3
  lorestate mentions -g 1 character 7 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				mentions, err := d.RosterHandler.HandleMentions(ctx, globalGame, args[0], args[1])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), mentions)
				}
				displayMentions(cmd.OutOrStdout(), mentions)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newIdentityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identity <character-id>",
		Short: "Show who a character was revealed to be",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				view, err := d.RosterHandler.HandleIdentity(ctx, globalGame, args[0])
				if err != nil {
					return fmt.Errorf("resolving identity: %w", err)
				}
				displayIdentity(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
}
