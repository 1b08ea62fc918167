// Package textutil normalizes free text typed by staff.
package textutil

import "strings"

// Sanitize trims surrounding whitespace and keeps at most maxRunes runes.
func Sanitize(value string, maxRunes int) string {
	trimmed := strings.TrimSpace(value)
	if maxRunes <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxRunes {
		return trimmed
	}
	return string(runes[:maxRunes])
}

// CollapseSpaces replaces every whitespace run with a single space.
func CollapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Ellipsize cuts value to maxRunes runes, marking the cut with "…".
func Ellipsize(value string, maxRunes int) string {
	runes := []rune(value)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return value
	}
	return string(runes[:maxRunes]) + "…"
}
