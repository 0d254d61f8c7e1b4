package segment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSegment(t *testing.T) {
	seg := New(loadFixture(t))

	testCases := []struct {
		input    string
		expected []string
	}{
		{"thisisatest", []string{"this", "is", "a", "test"}},
		{"This is a test.", []string{"this", "is", "a", "test"}},
		{"choosespain", []string{"choose", "spain"}},
		{"nowhere", []string{"now", "here"}},
		{"wheninthecourseofhumaneventsitbecomesnecessary",
			[]string{"when", "in", "the", "course", "of", "human", "events", "it", "becomes", "necessary"}},
		{"itwasabrightcolddayinaprilandtheclockswerestrikingthirteen",
			[]string{"it", "was", "a", "bright", "cold", "day", "in", "april", "and", "the", "clocks", "were", "striking", "thirteen"}},
		{"wordsegmentation", []string{"word", "segment", "ation"}},
		{"Hello, World!", []string{"helloworld"}},
		{"12ab", []string{"12ab"}},
	}

	for _, tc := range testCases {
		got, err := seg.Segment(tc.input)
		if err != nil {
			t.Errorf("Segment(%q): %v", tc.input, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("Segment(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestSegmentEmpty(t *testing.T) {
	seg := New(loadFixture(t))

	for _, input := range []string{"", "   ", "!!! ...", "ÀÉÎ"} {
		got, err := seg.Segment(input)
		if err != nil {
			t.Fatalf("Segment(%q): %v", input, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Segment(%q) = %#v, want empty non-nil slice", input, got)
		}
	}

	result, err := seg.SegmentContext(context.Background(), "")
	if err != nil || result.Score != 0 || result.Steps != 0 {
		t.Errorf("SegmentContext(\"\") = %+v, %v", result, err)
	}
}

func TestSegmentKeepsScore(t *testing.T) {
	seg := New(loadFixture(t))

	result, err := seg.SegmentContext(context.Background(), "thisisatest")
	if err != nil {
		t.Fatal(err)
	}
	if result.Score >= 0 {
		t.Errorf("aggregate log score should be negative, got %v", result.Score)
	}
	if result.Steps != expectedSteps(11, DefaultLimit) {
		t.Errorf("Steps = %d, want %d", result.Steps, expectedSteps(11, DefaultLimit))
	}

	split, err := seg.SegmentContext(context.Background(), "this is a test")
	if err != nil {
		t.Fatal(err)
	}
	if split.Score != result.Score {
		t.Errorf("whitespace should not change the score: %v vs %v", split.Score, result.Score)
	}
}

func randomText(r *rand.Rand, alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

func TestSegmentIsLosslessAndStable(t *testing.T) {
	seg := New(loadFixture(t))
	r := rand.New(rand.NewSource(7))

	inputs := []string{
		"Hello, World!",
		"The clocks were striking THIRTEEN!!",
		"when-in_the/course",
		"0123456789",
	}
	for i := 0; i < 40; i++ {
		inputs = append(inputs, randomText(r, "thisatenowhr- ,!01", 1+r.Intn(40)))
	}

	for _, input := range inputs {
		words, err := seg.Segment(input)
		if err != nil {
			t.Fatalf("Segment(%q): %v", input, err)
		}
		if got, want := strings.Join(words, ""), Clean(input); got != want {
			t.Errorf("Segment(%q) rebuilt %q, want %q", input, got, want)
		}
		for _, w := range words {
			if w == "" || len(w) > DefaultLimit {
				t.Errorf("Segment(%q) produced invalid word %q", input, w)
			}
		}

		again, err := seg.Segment(strings.Join(words, " "))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(again, words) {
			t.Errorf("re-segmenting %v gave %v", words, again)
		}
	}
}

func TestSearchMatchesRecursiveDefinition(t *testing.T) {
	model := loadFixture(t)
	r := rand.New(rand.NewSource(42))

	for _, limit := range []int{1, 3, 7, DefaultLimit} {
		seg := New(model, WithLimit(limit))

		inputs := []string{"thisisatest", "nowhere", "choosespain", "aaaa"}
		for i := 0; i < 25; i++ {
			inputs = append(inputs, randomText(r, "thisaeonwr", 1+r.Intn(18)))
		}

		for _, input := range inputs {
			got, err := seg.Search(context.Background(), input, DefaultStartMarker)
			if err != nil {
				t.Fatal(err)
			}
			want := referenceSearch(seg.Scorer(), input, DefaultStartMarker, limit, map[refKey]Result{})

			if got.Score != want.Score || !reflect.DeepEqual(got.Words, want.Words) {
				t.Errorf("limit %d, %q: sweep = (%v, %v), recursion = (%v, %v)",
					limit, input, got.Score, got.Words, want.Score, want.Words)
			}
			if got.Steps != expectedSteps(len(input), limit) {
				t.Errorf("limit %d, %q: %d steps, want %d", limit, input, got.Steps, expectedSteps(len(input), limit))
			}
		}
	}
}

func TestSearchTieBreakPrefersShortestPrefix(t *testing.T) {
	// Every word has the same count and there are no bigrams, so
	// [a bc] and [ab c] score exactly the same.
	seg := New(mustModel(t, map[string]float64{
		"a": 1e9, "b": 1e9, "c": 1e9, "ab": 1e9, "bc": 1e9,
	}, nil))

	result, err := seg.Search(context.Background(), "abc", DefaultStartMarker)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "bc"}; !reflect.DeepEqual(result.Words, want) {
		t.Errorf("tie resolved to %v, want %v", result.Words, want)
	}

	alt := logScore(seg, "ab") + logScore(seg, "c")
	if alt != result.Score {
		t.Fatalf("fixture is not a tie: %v vs %v", alt, result.Score)
	}
}

func logScore(seg *Segmenter, word string) float64 {
	r, _ := seg.Search(context.Background(), word, "")
	return r.Score
}

func TestSearchLimitBoundsWords(t *testing.T) {
	seg := New(mustModel(t, map[string]float64{"abcdef": 1e11}, nil), WithLimit(4))

	result, err := seg.Search(context.Background(), "abcdef", DefaultStartMarker)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range result.Words {
		if len(w) > 4 {
			t.Errorf("word %q longer than limit", w)
		}
	}
	if strings.Join(result.Words, "") != "abcdef" {
		t.Errorf("words %v do not rebuild the input", result.Words)
	}
}

func TestSearchHugeLimit(t *testing.T) {
	model := loadFixture(t)
	want := []string{"this", "is", "a", "test"}

	for _, limit := range []int{1 << 34, math.MaxInt} {
		seg := New(model, WithLimit(limit))
		result, err := seg.Search(context.Background(), "thisisatest", DefaultStartMarker)
		if err != nil {
			t.Fatalf("limit %d: %v", limit, err)
		}
		if !reflect.DeepEqual(result.Words, want) {
			t.Errorf("limit %d: got %v, want %v", limit, result.Words, want)
		}

		ref, err := New(model, WithLimit(len("thisisatest"))).Search(context.Background(), "thisisatest", DefaultStartMarker)
		if err != nil {
			t.Fatal(err)
		}
		if result.Score != ref.Score || result.Steps != ref.Steps {
			t.Errorf("limit %d: (%v, %d steps), want (%v, %d steps)", limit, result.Score, result.Steps, ref.Score, ref.Steps)
		}
	}
}

func TestSearchUsesPreviousWord(t *testing.T) {
	model := mustModel(t,
		map[string]float64{"new": 1e9, "york": 1e6, "yo": 1e8, "rk": 1e8},
		map[string]float64{"new york": 9e8})
	seg := New(model)

	withContext, err := seg.Search(context.Background(), "york", "new")
	if err != nil {
		t.Fatal(err)
	}
	plain, err := seg.Search(context.Background(), "york", "")
	if err != nil {
		t.Fatal(err)
	}
	if !(withContext.Score > plain.Score) {
		t.Errorf("bigram context should raise the score: %v <= %v", withContext.Score, plain.Score)
	}
}

func TestSearchBudgetSteps(t *testing.T) {
	model := loadFixture(t)
	need := expectedSteps(len("thisisatest"), DefaultLimit)

	ok := New(model, WithMaxSteps(need))
	if _, err := ok.Segment("thisisatest"); err != nil {
		t.Fatalf("budget of exactly %d steps should suffice: %v", need, err)
	}

	tight := New(model, WithMaxSteps(need-1))
	words, err := tight.Segment("thisisatest")
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if words != nil {
		t.Errorf("no partial result expected, got %v", words)
	}

	var budgetErr *BudgetExceededError
	if !errors.As(err, &budgetErr) || budgetErr.MaxSteps != need-1 {
		t.Errorf("unexpected error detail: %#v", err)
	}
}

func TestSearchBudgetInput(t *testing.T) {
	seg := New(loadFixture(t), WithMaxInput(8))

	if _, err := seg.Segment("nowhere!"); err != nil {
		t.Errorf("7 runes should fit: %v", err)
	}
	_, err := seg.Segment("thisisatest")
	var budgetErr *BudgetExceededError
	if !errors.As(err, &budgetErr) || budgetErr.InputLen != 11 || budgetErr.MaxInput != 8 {
		t.Errorf("expected input budget error, got %v", err)
	}
}

func TestSearchCancelled(t *testing.T) {
	seg := New(loadFixture(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := seg.SegmentContext(ctx, "thisisatest")
	if !errors.Is(err, ErrBudgetExceeded) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation wrapped in budget error, got %v", err)
	}
}

func TestSearchTimeout(t *testing.T) {
	seg := New(loadFixture(t), WithTimeout(time.Nanosecond))
	text := strings.Repeat("thisisatest", 200)

	_, err := seg.Segment(text)
	if !errors.Is(err, ErrBudgetExceeded) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline wrapped in budget error, got %v", err)
	}
}

func TestSearchLongInput(t *testing.T) {
	seg := New(loadFixture(t))

	text := strings.Repeat("thisisatest", 400)
	words, err := seg.Segment(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 1600 {
		t.Errorf("got %d words, want 1600", len(words))
	}
	if strings.Join(words, "") != text {
		t.Error("long input not rebuilt exactly")
	}
}

func TestSegmenterConcurrentUse(t *testing.T) {
	seg := New(loadFixture(t))
	want := []string{"this", "is", "a", "test"}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				got, err := seg.Segment("thisisatest")
				if err != nil {
					errs <- err
					return
				}
				if !reflect.DeepEqual(got, want) {
					errs <- fmt.Errorf("worker %d: got %v", i, got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestJoin(t *testing.T) {
	seg := New(loadFixture(t))
	got, err := seg.Join("ThisIsATest")
	if err != nil {
		t.Fatal(err)
	}
	if got != "this is a test" {
		t.Errorf("Join = %q", got)
	}
}
