package services

import (
	"regexp"
	"strings"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// declarationTagRegex matches one explicit update tag per line:
//
//	ITEM_UPDATE: name | STATE | reason
//	CHARACTER_UPDATE: name | trueName | reason
var declarationTagRegex = regexp.MustCompile(`(?i)\b(?P<kind>item_update|character_update)\s*:\s*(?P<name>[^|]+)\|(?P<value>[^|]+)(?:\|(?P<reason>.*))?`)

// ItemUpdateTag is an explicit state change declared by the generator.
type ItemUpdateTag struct {
	Name   string
	State  entities.ItemState
	Reason string
}

// CharacterUpdateTag is an explicit identity reveal declared by the generator.
type CharacterUpdateTag struct {
	Name     string
	TrueName string
	Reason   string
}

// DeclarationTags holds the tags found in a generator description.
type DeclarationTags struct {
	Items      []ItemUpdateTag
	Characters []CharacterUpdateTag
}

// IsEmpty reports whether no tags were found.
func (d DeclarationTags) IsEmpty() bool {
	return len(d.Items) == 0 && len(d.Characters) == 0
}

// ParseDeclarationTags extracts update tags from text. The keyword is
// case-insensitive; lines with an unknown state or an empty field are skipped.
func ParseDeclarationTags(text string) DeclarationTags {
	var tags DeclarationTags
	for _, line := range strings.Split(text, "\n") {
		m := declarationTagRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind := strings.ToUpper(m[declarationTagRegex.SubexpIndex("kind")])
		name := strings.TrimSpace(m[declarationTagRegex.SubexpIndex("name")])
		value := strings.TrimSpace(m[declarationTagRegex.SubexpIndex("value")])
		reason := strings.TrimSpace(m[declarationTagRegex.SubexpIndex("reason")])
		if name == "" || value == "" {
			continue
		}

		switch kind {
		case "ITEM_UPDATE":
			state, ok := entities.ParseItemState(value)
			if !ok {
				continue
			}
			tags.Items = append(tags.Items, ItemUpdateTag{Name: name, State: state, Reason: reason})
		case "CHARACTER_UPDATE":
			tags.Characters = append(tags.Characters, CharacterUpdateTag{Name: name, TrueName: value, Reason: reason})
		}
	}
	return tags
}
