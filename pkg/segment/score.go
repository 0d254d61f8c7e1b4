package segment

import (
	"math"
	"unicode/utf8"

	"github.com/bastiangx/wordsplit/pkg/corpus"
)

// Scorer rates candidate words against a corpus model.
type Scorer struct {
	model *corpus.Model
}

// NewScorer returns a scorer backed by model.
func NewScorer(model *corpus.Model) *Scorer {
	return &Scorer{model: model}
}

// Score returns the goodness of word following prev. An empty prev means no
// context. Known bigrams use a one-level stupid back-off,
//
//	bigram(prev, word) / total / Score(prev)
//
// which is a monotone heuristic, not a conditional probability. Everything
// else falls back to the unigram estimate, and unseen words are penalized
// by a factor of ten per rune. The result is always > 0.
func (s *Scorer) Score(word, prev string) float64 {
	total := s.model.Total()

	if prev != "" {
		if pair, ok := s.model.Bigram(prev, word); ok {
			if _, known := s.model.Unigram(prev); known {
				return positive(pair / total / s.Score(prev, ""))
			}
		}
	}

	if count, ok := s.model.Unigram(word); ok {
		return positive(count / total)
	}
	return positive(10.0 / (total * math.Pow10(utf8.RuneCountInString(word))))
}

// positive clamps underflowed or zero scores so their logarithm stays finite.
func positive(v float64) float64 {
	if v > 0 && !math.IsInf(v, 0) {
		return v
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return math.SmallestNonzeroFloat64
}
