package segment

// memoEntry is the solved state for one (position, previous word) pair:
// the best total log10 score of the remaining text and the rune length of
// the first word on that best path.
type memoEntry struct {
	score float64
	next  int32
}

// memoTable holds the solved subproblems of a single search call. A state is
// the rune position of the remaining suffix plus the rune length of the word
// ending there; length 0 stands for the caller-supplied previous word at the
// start of the text. Every previous word is a substring of the input, so the
// pair identifies the (suffix, previous word) key without storing strings.
type memoTable struct {
	n       int
	stride  int
	entries []memoEntry
}

func newMemoTable(n, limit int) *memoTable {
	stride := limit + 1
	return &memoTable{
		n:       n,
		stride:  stride,
		entries: make([]memoEntry, n*stride),
	}
}

// score returns the best suffix score from pos after a word of prevLen runes.
// The empty suffix scores zero.
func (m *memoTable) score(pos, prevLen int) float64 {
	if pos == m.n {
		return 0
	}
	return m.entries[pos*m.stride+prevLen].score
}

func (m *memoTable) next(pos, prevLen int) int {
	return int(m.entries[pos*m.stride+prevLen].next)
}

func (m *memoTable) put(pos, prevLen int, e memoEntry) {
	m.entries[pos*m.stride+prevLen] = e
}

// path follows the best choices from the start state.
func (m *memoTable) path(text string, bounds []int) []string {
	var words []string
	pos, prevLen := 0, 0
	for pos < m.n {
		size := m.next(pos, prevLen)
		words = append(words, text[bounds[pos]:bounds[pos+size]])
		pos, prevLen = pos+size, size
	}
	return words
}
