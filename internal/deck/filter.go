package deck

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/lingua/internal/model"
)

// Direction selects which side of an entry is prompted.
type Direction string

// Supported directions.
const (
	Forward Direction = "forward"
	Reverse Direction = "reverse"
)

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Forward, "":
		return Forward, nil
	case Reverse:
		return Reverse, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want forward or reverse)", s)
	}
}

// Levels returns the distinct levels present in the deck, in file order.
func (d Deck) Levels() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, e := range d.Entries {
		if e.Level == "" {
			continue
		}
		if _, ok := seen[e.Level]; ok {
			continue
		}
		seen[e.Level] = struct{}{}
		out = append(out, e.Level)
	}
	return out
}

// Items converts entries into practice items. Forward prompts with the
// source and expects the target; Reverse swaps them. A non-empty level keeps
// only entries with that level.
func (d Deck) Items(dir Direction, level string) []model.PracticeItem {
	level = strings.ToUpper(strings.TrimSpace(level))
	items := make([]model.PracticeItem, 0, len(d.Entries))
	for _, e := range d.Entries {
		if level != "" && e.Level != level {
			continue
		}
		it := model.PracticeItem{ID: e.ID, Prompt: e.Src, Expected: e.Dst, Level: e.Level, POS: e.POS}
		if dir == Reverse {
			it.Prompt, it.Expected = e.Dst, e.Src
		}
		items = append(items, it)
	}
	return items
}

// AnswerLabel names the language answers are given in.
func (d Deck) AnswerLabel(dir Direction) string {
	if dir == Reverse {
		return d.SourceLabel
	}
	return d.TargetLabel
}

// filePrefix keeps file decks out of the built-in datasets' scopes.
const filePrefix = "file:"

// Scope returns the tracking scope of the deck for level and dir.
func (d Deck) Scope(level string, dir Direction) string {
	name := d.Name
	if d.FromFile {
		name = filePrefix + name
	}
	return Scope(name, level, dir)
}

// Scope builds the tracking scope for a dataset, level, and direction.
func Scope(dataset, level string, dir Direction) string {
	parts := []string{"lingua", "srs", dataset}
	if level = strings.ToUpper(strings.TrimSpace(level)); level != "" {
		parts = append(parts, level)
	}
	if dir == "" {
		dir = Forward
	}
	parts = append(parts, string(dir))
	return strings.Join(parts, ".")
}
