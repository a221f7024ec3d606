// Package texts has small string helpers for SQL source text.
package texts

import (
	"math"
	"strings"
	"unicode"
)

// Dedent removes the common leading whitespace of the non-blank lines in text,
// so SQL in tests can be indented with the surrounding Go code.
//
// A blank first or last line is dropped. Trailing whitespace is trimmed from
// every line and blank lines in between become empty.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")
	if isBlank(lines[0]) {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && isBlank(lines[n-1]) {
		lines = lines[:n-1]
	}

	indent := math.MaxInt32
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		if n := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace)); n < indent {
			indent = n
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if line = strings.TrimRightFunc(line, unicode.IsSpace); line != "" {
			out[i] = line[indent:]
		}
	}
	return strings.Join(out, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
