package logger

import "strings"

// Preview flattens s onto one line and shortens it to at most maxLen runes,
// marking a cut with "...". Multi-byte characters are never split.
func Preview(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
