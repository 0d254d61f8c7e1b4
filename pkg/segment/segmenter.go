/*
Package segment splits text without word boundaries into the most likely
sequence of words.

	model, _ := corpus.Open(ctx, "data/", corpus.DefaultFiles())
	seg := segment.New(model)
	words, _ := seg.Segment("thisisatest") // [this is a test]

Input is first reduced to a-z and 0-9 by Clean. Every way of splitting the
cleaned text is then scored by summing the log10 of each word's Score given
the word before it, and the best split wins. Words are at most Limit runes
long, so each position has at most Limit candidate next words.

# Search

The search is a dynamic program over (suffix position, previous word)
states. States are solved right to left, each one consulting at most Limit
already-solved shorter suffixes, so the work is bounded by
len(text) * Limit * Limit score evaluations and there is no recursion.

When several candidates reach exactly the same total score the first one
enumerated wins, which is the one with the shortest first word.

# Budgets

A Segmenter may carry a step budget, a timeout and an input cap. When one
of them fires the call fails with a *BudgetExceededError; partial results
are never returned. A Segmenter is safe for concurrent use; every call owns
its memo table.
*/
package segment

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/charmbracelet/log"
)

// DefaultStartMarker is the previous word used at the start of the text.
const DefaultStartMarker = "<s>"

// Options configures a Segmenter. Zero budgets mean unlimited.
type Options struct {
	Limit       int
	StartMarker string
	MaxSteps    int
	Timeout     time.Duration
	MaxInput    int
}

// DefaultOptions returns the options used by New without arguments.
func DefaultOptions() Options {
	return Options{
		Limit:       DefaultLimit,
		StartMarker: DefaultStartMarker,
	}
}

type Option func(*Options)

// WithLimit sets the longest word in runes. Values < 1 keep the default.
func WithLimit(limit int) Option {
	return func(o *Options) {
		if limit >= 1 {
			o.Limit = limit
		}
	}
}

func WithStartMarker(marker string) Option {
	return func(o *Options) {
		o.StartMarker = marker
	}
}

// WithMaxSteps caps the number of score evaluations per call.
func WithMaxSteps(steps int) Option {
	return func(o *Options) {
		o.MaxSteps = steps
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithMaxInput rejects cleaned input longer than n runes.
func WithMaxInput(n int) Option {
	return func(o *Options) {
		o.MaxInput = n
	}
}

// Result is a segmentation together with its aggregate log10 score.
type Result struct {
	Words []string
	Score float64
	Steps int
}

// Segmenter finds the best word sequence for a string.
type Segmenter struct {
	scorer *Scorer
	opts   Options
}

// New creates a segmenter scoring against model.
func New(model *corpus.Model, opts ...Option) *Segmenter {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Segmenter{
		scorer: NewScorer(model),
		opts:   options,
	}
}

// Options returns the effective options.
func (s *Segmenter) Options() Options {
	return s.opts
}

// Scorer returns the scorer used by the search.
func (s *Segmenter) Scorer() *Scorer {
	return s.scorer
}

// Segment cleans text and returns its best word sequence.
func (s *Segmenter) Segment(text string) ([]string, error) {
	result, err := s.SegmentContext(context.Background(), text)
	if err != nil {
		return nil, err
	}
	return result.Words, nil
}

// SegmentContext is Segment with cancellation, keeping the aggregate score.
func (s *Segmenter) SegmentContext(ctx context.Context, text string) (Result, error) {
	result, err := s.Search(ctx, Clean(text), s.opts.StartMarker)
	if err != nil {
		log.Debugf("Segmentation of %d bytes failed: %v", len(text), err)
		return Result{}, err
	}
	return result, nil
}

// Search returns the best split of text, which should already be cleaned,
// given the word that precedes it. An empty prev means no context.
func (s *Segmenter) Search(ctx context.Context, text, prev string) (Result, error) {
	if text == "" {
		return Result{Words: []string{}}, nil
	}

	n := utf8.RuneCountInString(text)
	if s.opts.MaxInput > 0 && n > s.opts.MaxInput {
		return Result{}, &BudgetExceededError{InputLen: n, MaxInput: s.opts.MaxInput}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	b := newBudget(ctx, s.opts.MaxSteps)
	if err := b.check(); err != nil {
		return Result{}, err
	}

	bounds := boundaries(text)
	// no word can be longer than the text; this also bounds the memo table
	limit := min(s.opts.Limit, n)
	memo := newMemoTable(n, limit)

	for pos := n - 1; pos >= 0; pos-- {
		minPrev, maxPrev := 1, min(pos, limit)
		if pos == 0 {
			minPrev, maxPrev = 0, 0
		}

		for prevLen := minPrev; prevLen <= maxPrev; prevLen++ {
			before := prev
			if prevLen > 0 {
				before = text[bounds[pos-prevLen]:bounds[pos]]
			}

			best := memoEntry{score: math.Inf(-1)}
			found := false
			size := 0
			for word := range Divide(text[bounds[pos]:], limit) {
				size++
				if err := b.spend(); err != nil {
					return Result{}, err
				}

				total := math.Log10(s.scorer.Score(word, before)) + memo.score(pos+size, size)

				// Strict comparison keeps the earliest, shortest candidate on ties.
				if !found || total > best.score {
					best = memoEntry{score: total, next: int32(size)}
					found = true
				}
			}
			memo.put(pos, prevLen, best)
		}
	}

	return Result{
		Words: memo.path(text, bounds),
		Score: memo.score(0, 0),
		Steps: b.steps,
	}, nil
}

// Join segments text and joins the words with single spaces.
func (s *Segmenter) Join(text string) (string, error) {
	words, err := s.Segment(text)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}
