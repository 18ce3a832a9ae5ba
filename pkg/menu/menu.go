// Package menu holds the list of follow-up actions offered to the user
// after each narrative reply, along with its parser and state codec.
package menu

import (
	"encoding/json"
	"slices"
	"strings"
)

// MaxEntries is the most actions a menu will ever hold.
const MaxEntries = 6

// NoActionsAdvisory is shown to the user when a reply produced no actions.
const NoActionsAdvisory = "Failed to generate actions; consider retrying or writing your own."

// Menu is an ordered, de-duplicated list of at most MaxEntries actions.
// The zero value is an empty menu.
type Menu struct {
	choices []string
}

// New builds a menu from the given entries. Entries are trimmed; empty
// entries and repeats are dropped and the result is capped at MaxEntries.
func New(entries ...string) Menu {
	return Menu{choices: normalize(entries)}
}

// Len returns the number of actions in the menu.
func (m Menu) Len() int {
	return len(m.choices)
}

// Empty reports whether the menu has no actions.
func (m Menu) Empty() bool {
	return len(m.choices) == 0
}

// At returns the action at the 0-based index i.
func (m Menu) At(i int) (string, bool) {
	if i < 0 || i >= len(m.choices) {
		return "", false
	}
	return m.choices[i], true
}

// Choices returns a copy of the actions in display order.
func (m Menu) Choices() []string {
	return append([]string{}, m.choices...)
}

// Equal reports whether both menus list the same actions in the same order.
func (m Menu) Equal(other Menu) bool {
	return slices.Equal(m.choices, other.choices)
}

func (m Menu) MarshalJSON() ([]byte, error) {
	if m.choices == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.choices)
}

func (m *Menu) UnmarshalJSON(data []byte) error {
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	m.choices = normalize(entries)
	return nil
}

func normalize(entries []string) []string {
	out := make([]string, 0, min(len(entries), MaxEntries))
	for _, entry := range entries {
		if len(out) == MaxEntries {
			break
		}
		entry = strings.TrimSpace(entry)
		if entry == "" || slices.Contains(out, entry) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
