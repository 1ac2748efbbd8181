package textutil

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// Truncate collapses whitespace runs and shortens s to at most max bytes,
// cutting on a rune boundary and marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return ellipsis[:max]
	}
	cut := max - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
