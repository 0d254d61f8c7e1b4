package segment

import (
	"iter"
	"unicode/utf8"
)

// DefaultLimit is the longest word, in runes, the search will produce.
const DefaultLimit = 24

// Divide yields every (prefix, suffix) split of text whose prefix holds
// 1..min(len(text), limit) runes, shortest prefix first.
func Divide(text string, limit int) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		pos := 0
		for n := 1; n <= limit && pos < len(text); n++ {
			_, size := utf8.DecodeRuneInString(text[pos:])
			pos += size
			if !yield(text[:pos], text[pos:]) {
				return
			}
		}
	}
}

// boundaries returns the byte offset of every rune start in text followed
// by len(text), so rune i spans text[b[i]:b[i+1]].
func boundaries(text string) []int {
	b := make([]int, 0, len(text)+1)
	for i := range text {
		b = append(b, i)
	}
	return append(b, len(text))
}
