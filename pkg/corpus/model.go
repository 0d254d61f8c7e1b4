// Package corpus holds the word frequency tables the segmenter scores against.
//
// A Model is built once, from TSV resources, a binary snapshot or in-memory
// maps, and is never mutated afterwards. Any number of goroutines may read
// it without synchronization once the constructor has returned.
package corpus

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"
)

// TotalTokens is the number of tokens in the reference corpus. Every
// probability estimate uses it as the denominator.
const TotalTokens = 1024908267229.0

// Model is an immutable unigram/bigram count table.
type Model struct {
	unigrams   *patricia.Trie
	bigrams    map[string]float64
	numWords   int
	maxWordLen int
}

// Entry is a dictionary word together with its unigram count.
type Entry struct {
	Word  string
	Count float64
}

// Stats describes the size of a loaded model.
type Stats struct {
	Unigrams   int
	Bigrams    int
	MaxWordLen int
	Total      float64
}

// NewModel builds a model from unigram counts keyed by word and bigram counts
// keyed by "word1 word2". The maps are copied; the caller may reuse them.
func NewModel(unigrams, bigrams map[string]float64) (*Model, error) {
	m := &Model{
		unigrams: patricia.NewTrie(),
		bigrams:  make(map[string]float64, len(bigrams)),
	}

	for word, count := range unigrams {
		if err := checkCount(word, count); err != nil {
			return nil, fmt.Errorf("unigram table: %w", err)
		}
		m.unigrams.Set(patricia.Prefix(word), count)
		m.numWords++
		if n := utf8.RuneCountInString(word); n > m.maxWordLen {
			m.maxWordLen = n
		}
	}

	for pair, count := range bigrams {
		if err := checkCount(pair, count); err != nil {
			return nil, fmt.Errorf("bigram table: %w", err)
		}
		m.bigrams[pair] = count
	}

	return m, nil
}

func checkCount(key string, count float64) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if math.IsNaN(count) || math.IsInf(count, 0) || count < 0 {
		return fmt.Errorf("invalid count %v for %q", count, key)
	}
	return nil
}

// Unigram returns the observed count of word.
func (m *Model) Unigram(word string) (float64, bool) {
	if word == "" {
		return 0, false
	}
	item := m.unigrams.Get(patricia.Prefix(word))
	if item == nil {
		return 0, false
	}
	return item.(float64), true
}

// Bigram returns the observed count of word2 following word1.
func (m *Model) Bigram(word1, word2 string) (float64, bool) {
	count, ok := m.bigrams[BigramKey(word1, word2)]
	return count, ok
}

// Total returns the corpus size used as probability denominator.
func (m *Model) Total() float64 {
	return TotalTokens
}

// Prefixes returns the dictionary words that are prefixes of text, shortest
// first, skipping words longer than limit runes. A limit < 1 disables the cap.
func (m *Model) Prefixes(text string, limit int) []Entry {
	if text == "" {
		return nil
	}

	var entries []Entry
	err := m.unigrams.VisitPrefixes(patricia.Prefix(text), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == "" {
			return nil
		}
		if limit > 0 && utf8.RuneCountInString(word) > limit {
			return nil
		}
		entries = append(entries, Entry{Word: word, Count: item.(float64)})
		return nil
	})
	if err != nil {
		return nil
	}
	return entries
}

// Stats reports table sizes.
func (m *Model) Stats() Stats {
	return Stats{
		Unigrams:   m.numWords,
		Bigrams:    len(m.bigrams),
		MaxWordLen: m.maxWordLen,
		Total:      TotalTokens,
	}
}

// BigramKey is the canonical bigram table key for an ordered word pair.
func BigramKey(word1, word2 string) string {
	return word1 + " " + word2
}

// tables exports copies of the count maps, used when writing snapshots.
func (m *Model) tables() (map[string]float64, map[string]float64) {
	unigrams := make(map[string]float64, m.numWords)
	m.unigrams.Visit(func(p patricia.Prefix, item patricia.Item) error {
		unigrams[string(p)] = item.(float64)
		return nil
	})

	bigrams := make(map[string]float64, len(m.bigrams))
	for k, v := range m.bigrams {
		bigrams[k] = v
	}
	return unigrams, bigrams
}
