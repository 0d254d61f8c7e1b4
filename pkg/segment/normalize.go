package segment

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InAlphabet reports whether r is one of the characters the corpus was
// built from: a-z and 0-9.
func InAlphabet(r rune) bool {
	return ('a' <= r && r <= 'z') || ('0' <= r && r <= '9')
}

// Clean lower-cases text and drops every character outside a-z and 0-9.
func Clean(text string) string {
	// cases.Caser keeps state and is not safe for concurrent use.
	lower := cases.Lower(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if InAlphabet(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
