package segment

import (
	"testing"
	"unicode/utf8"
)

func TestDivide(t *testing.T) {
	testCases := []struct {
		text  string
		limit int
		want  int
	}{
		{"thisisatest", 24, 11},
		{"thisisatest", 4, 4},
		{"a", 24, 1},
		{"", 24, 0},
		{"abc", 0, 0},
		{"héllo", 3, 3},
	}

	for _, tc := range testCases {
		count := 0
		for prefix, suffix := range Divide(tc.text, tc.limit) {
			count++
			if prefix+suffix != tc.text {
				t.Errorf("Divide(%q, %d): %q + %q does not rebuild the text", tc.text, tc.limit, prefix, suffix)
			}
			if n := utf8.RuneCountInString(prefix); n != count || n < 1 || n > tc.limit {
				t.Errorf("Divide(%q, %d): pair %d has prefix %q of %d runes", tc.text, tc.limit, count, prefix, n)
			}
		}
		if count != tc.want {
			t.Errorf("Divide(%q, %d) yielded %d pairs, want %d", tc.text, tc.limit, count, tc.want)
		}
	}
}

func TestDivideIsRestartable(t *testing.T) {
	seq := Divide("abcdef", 3)

	collect := func() []string {
		var prefixes []string
		for prefix := range seq {
			prefixes = append(prefixes, prefix)
		}
		return prefixes
	}

	first, second := collect(), collect()
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("got %v and %v, want 3 prefixes each", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("enumeration %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestDivideStopsEarly(t *testing.T) {
	count := 0
	for range Divide("abcdef", 6) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("loop ran %d times after break", count)
	}
}
