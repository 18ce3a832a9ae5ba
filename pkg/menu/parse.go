package menu

import (
	"regexp"
	"strings"
)

var (
	numberedLine = regexp.MustCompile(`^\d+\.`)
	lineMarker   = regexp.MustCompile(`^[-\d]+\.?\s*`)
)

// Parse extracts a menu from raw generator output.
//
// Only lines that start with a dash or a "<number>." marker are kept; the
// marker is stripped. Options that wrap across lines, or that carry no
// line-anchored marker, are not recovered.
func Parse(raw string) Menu {
	var entries []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !isCandidate(line) {
			continue
		}
		entries = append(entries, lineMarker.ReplaceAllString(line, ""))
	}
	return New(entries...)
}

func isCandidate(line string) bool {
	return strings.HasPrefix(line, "-") || numberedLine.MatchString(line)
}
