// Package choice matches a user's reply against the current menu and
// rewrites it into a directive for the narrative engine.
package choice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jwebster45206/action-stage/pkg/menu"
	"github.com/jwebster45206/action-stage/pkg/prompts"
)

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

// Resolution is the outcome of matching a reply against a menu.
type Resolution struct {
	Index *int   `json:"index"` // 0-based menu index; nil for ad-lib input
	Text  string `json:"text"`
}

// AdLib reports whether the reply matched no menu entry.
func (r Resolution) AdLib() bool {
	return r.Index == nil
}

// Directive is the guidance handed to the narrative engine for a turn.
type Directive struct {
	StageDirections string `json:"stage_directions"`
	ModifiedMessage string `json:"modified_message"`
}

// Resolve decides which menu entry, if any, the reply refers to.
//
// A content match (the folded reply contains an entry or is contained by
// one) beats a leading 1-based number, because a number at the start of a
// reply may belong to free-form text. The first matching entry wins. With
// neither, the reply is ad-lib and returned unchanged.
func Resolve(raw string, m menu.Menu) Resolution {
	if i, ok := matchContent(raw, m); ok {
		return resolved(i, m)
	}
	if i, ok := matchNumber(raw, m); ok {
		return resolved(i, m)
	}
	return Resolution{Text: raw}
}

// BuildDirective produces the stage directions and rewritten message for a
// resolution. Indexed choices are shown as "(n. text)" and ad-lib input as
// "(Ad-lib Action: text)".
func BuildDirective(res Resolution) Directive {
	modified := "(Ad-lib Action: " + res.Text + ")"
	if res.Index != nil {
		modified = fmt.Sprintf("(%d. %s)", *res.Index+1, res.Text)
	}
	return Directive{
		StageDirections: prompts.StageDirections(res.Text),
		ModifiedMessage: modified,
	}
}

func resolved(i int, m menu.Menu) Resolution {
	text, _ := m.At(i)
	return Resolution{Index: &i, Text: text}
}

func matchNumber(raw string, m menu.Menu) (int, bool) {
	firstLine, _, _ := strings.Cut(raw, "\n")
	match := leadingNumber.FindStringSubmatch(firstLine)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	if n < 1 || n > m.Len() {
		return 0, false
	}
	return n - 1, true
}

func matchContent(raw string, m menu.Menu) (int, bool) {
	// Casers carry state, so each call gets its own.
	fold := cases.Fold()
	msg := fold.String(strings.TrimSpace(raw))
	if msg == "" {
		return 0, false
	}
	for i, entry := range m.Choices() {
		e := fold.String(entry)
		if strings.Contains(e, msg) || strings.Contains(msg, e) {
			return i, true
		}
	}
	return 0, false
}
