package texts

import "strings"

// OneLine collapses each run of whitespace in text, including newlines, into a
// single space and trims the ends.
func OneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
