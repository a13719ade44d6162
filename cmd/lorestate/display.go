package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/lore-state/internal/application/handlers"
	"github.com/ersonp/lore-state/internal/domain/entities"
	"github.com/ersonp/lore-state/internal/domain/services"
)

func displayResult(w io.Writer, result *services.SegmentResult) {
	if result.Extracted != nil {
		fmt.Fprintf(w, "Strategy: %s\n", result.Extracted.Strategy)
	}
	if len(result.Items) == 0 && len(result.Characters) == 0 {
		fmt.Fprintln(w, "Nothing to record.")
		return
	}

	if len(result.Items) > 0 {
		fmt.Fprintf(w, "Items (%d):\n", len(result.Items))
		for _, item := range result.Items {
			fmt.Fprintf(w, "  %d. %s [%s]\n", item.ID, item.Name, item.CurrentState)
		}
	}
	if len(result.Characters) > 0 {
		fmt.Fprintf(w, "Characters (%d):\n", len(result.Characters))
		for _, c := range result.Characters {
			fmt.Fprintf(w, "  %d. %s\n", c.ID, c.Name)
		}
	}
}

func displayItems(w io.Writer, items []*entities.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items found.")
		return
	}

	fmt.Fprintf(w, "Items (%d total):\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(w, "ID: %d\n", item.ID)
		fmt.Fprintf(w, "  %s [%s]\n", item.Name, item.CurrentState)
		if len(item.Aliases) > 0 {
			fmt.Fprintf(w, "  Aliases: %s\n", strings.Join(item.Aliases, ", "))
		}
		if item.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", item.Description)
		}
		fmt.Fprintf(w, "  Acquired: turn %d, last mentioned: turn %d\n", item.AcquiredAt, item.LastMentionedAt)
		if item.LostAt != nil {
			fmt.Fprintf(w, "  Lost: turn %d\n", *item.LostAt)
		}
		fmt.Fprintln(w)
	}
}

func displayCharacters(w io.Writer, characters []*entities.Character) {
	if len(characters) == 0 {
		fmt.Fprintln(w, "No characters found.")
		return
	}

	fmt.Fprintf(w, "Characters (%d total):\n\n", len(characters))
	for _, c := range characters {
		fmt.Fprintf(w, "ID: %d\n", c.ID)
		fmt.Fprintf(w, "  %s\n", c.Name)
		if len(c.Aliases) > 0 {
			fmt.Fprintf(w, "  Aliases: %s\n", strings.Join(c.Aliases, ", "))
		}
		if c.Relationship != "" {
			fmt.Fprintf(w, "  Relationship: %s\n", c.Relationship)
		}
		if c.OriginalCharacterID != nil {
			fmt.Fprintf(w, "  Revealed as: #%d\n", *c.OriginalCharacterID)
		}
		fmt.Fprintf(w, "  Appeared: turns %d-%d\n", c.FirstAppearedAt, c.LastAppearedAt)
		fmt.Fprintln(w)
	}
}

func displayMentions(w io.Writer, mentions []entities.Mention) {
	if len(mentions) == 0 {
		fmt.Fprintln(w, "No mentions found.")
		return
	}

	for _, m := range mentions {
		line := fmt.Sprintf("segment %d", m.SegmentID)
		if m.StateChange {
			line += " -> " + m.NewState
		}
		fmt.Fprintf(w, "  %s\n", line)
		if m.Context != "" {
			fmt.Fprintf(w, "    %q\n", m.Context)
		}
	}
}

func displayIdentity(w io.Writer, view *handlers.IdentityView) {
	fmt.Fprintf(w, "%s (#%d)\n", view.Character.Name, view.Character.ID)
	if view.Original != nil {
		fmt.Fprintf(w, "  Revealed as: %s (#%d)\n", view.Original.Name, view.Original.ID)
	}

	revealed := false
	for _, h := range view.Character.StateHistory {
		if h.Type != entities.HistoryEventIdentityRevealed {
			continue
		}
		revealed = true
		line := fmt.Sprintf("  Turn %d: %s", h.Turn, h.NewIdentity)
		if h.Reason != "" {
			line += " (" + h.Reason + ")"
		}
		fmt.Fprintln(w, line)
	}
	if !revealed && view.Original == nil {
		fmt.Fprintln(w, "  No identity revealed.")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
