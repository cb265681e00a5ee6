package executor

import "strings"

// containsText reports whether expected appears in text once runs of
// whitespace in both are collapsed to single spaces.
func containsText(text, expected string) bool {
	return strings.Contains(normalizeSpace(text), normalizeSpace(expected))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
