/*
Package sanitize strips markup from free-form client input.

Participant names and message fields are display strings relayed verbatim to
other clients, so anything that looks like an HTML tag is removed before the
value reaches validation or storage.
*/
package sanitize

import "strings"

// StripTags removes every <...> tag span from s. An unterminated tag swallows
// the remainder of the string.
func StripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Clean strips markup and trims surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(StripTags(s))
}
