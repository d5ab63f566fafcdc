// Package checkers decides whether a program's output answers a test.
package checkers

import (
	"strings"
	"unicode"
)

// Normalize trims trailing whitespace from every line and leading or trailing
// blank space from the whole text. A trailing "\r" counts as whitespace, so
// CRLF and LF outputs normalize the same.
func Normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Equal reports whether actual matches expected after normalizing both.
func Equal(expected, actual string) bool {
	return Normalize(expected) == Normalize(actual)
}
