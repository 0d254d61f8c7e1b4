package segment

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bastiangx/wordsplit/pkg/corpus"
)

var (
	fixtureOnce  sync.Once
	fixtureModel *corpus.Model
	fixtureErr   error
)

// loadFixture returns the small English corpus under testdata, loaded once.
func loadFixture(t testing.TB) *corpus.Model {
	t.Helper()
	fixtureOnce.Do(func() {
		fixtureModel, fixtureErr = corpus.Load(context.Background(),
			filepath.Join("testdata", "unigrams.txt"),
			filepath.Join("testdata", "bigrams.txt"))
	})
	if fixtureErr != nil {
		t.Fatalf("failed to load fixture corpus: %v", fixtureErr)
	}
	return fixtureModel
}

func mustModel(t testing.TB, unigrams, bigrams map[string]float64) *corpus.Model {
	t.Helper()
	m, err := corpus.NewModel(unigrams, bigrams)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

type refKey struct {
	text, prev string
}

// referenceSearch is the plain recursive definition of the search, used to
// check the iterative sweep.
func referenceSearch(sc *Scorer, text, prev string, limit int, memo map[refKey]Result) Result {
	if text == "" {
		return Result{Score: 0, Words: []string{}}
	}

	var best Result
	first := true
	for prefix, suffix := range Divide(text, limit) {
		key := refKey{suffix, prefix}
		sub, ok := memo[key]
		if !ok {
			sub = referenceSearch(sc, suffix, prefix, limit, memo)
			memo[key] = sub
		}

		total := math.Log10(sc.Score(prefix, prev)) + sub.Score
		if first || total > best.Score {
			best = Result{Score: total, Words: append([]string{prefix}, sub.Words...)}
			first = false
		}
	}
	return best
}

// expectedSteps counts score evaluations of a full sweep over n runes.
func expectedSteps(n, limit int) int {
	steps := 0
	for pos := 0; pos < n; pos++ {
		states := min(pos, limit)
		if pos == 0 {
			states = 1
		}
		steps += states * min(limit, n-pos)
	}
	return steps
}
