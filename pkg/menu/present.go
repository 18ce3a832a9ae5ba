package menu

import (
	"fmt"
	"strings"
)

const presentHeader = "---\nChoose an action:\n"

// Present renders the menu as a numbered list for the user. It returns
// false when there is nothing to show.
func Present(m Menu) (string, bool) {
	if m.Empty() {
		return "", false
	}

	lines := make([]string, len(m.choices))
	for i, choice := range m.choices {
		lines[i] = fmt.Sprintf("%d. %s", i+1, choice)
	}
	return presentHeader + strings.Join(lines, "\n"), true
}
