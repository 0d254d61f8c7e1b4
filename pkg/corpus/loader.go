package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Files names the corpus resources inside a data directory.
type Files struct {
	Unigrams string
	Bigrams  string
	Snapshot string
}

// DefaultFiles returns the conventional resource names.
func DefaultFiles() Files {
	return Files{
		Unigrams: "unigrams.txt",
		Bigrams:  "bigrams.txt",
		Snapshot: "corpus.bin",
	}
}

// LoadError reports a corpus resource that could not be parsed.
type LoadError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("load %s:%d: %v (line %q)", e.Source, e.Line, e.Err, e.Text)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// maxLineSize bounds a single TSV line.
const maxLineSize = 1 << 20

// ParseCounts reads "<key>\t<count>" lines from r. Blank lines are skipped,
// anything else that does not hold exactly one tab and a finite non-negative
// count is a *LoadError. Later duplicates overwrite earlier ones.
func ParseCounts(r io.Reader, source string) (map[string]float64, error) {
	counts := make(map[string]float64)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, &LoadError{Source: source, Line: lineNo, Text: line,
				Err: fmt.Errorf("expected 2 tab-separated fields, got %d", len(fields))}
		}

		key := fields[0]
		if key == "" {
			return nil, &LoadError{Source: source, Line: lineNo, Text: line,
				Err: fmt.Errorf("empty key")}
		}

		count, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, &LoadError{Source: source, Line: lineNo, Text: line, Err: err}
		}
		if math.IsNaN(count) || math.IsInf(count, 0) || count < 0 {
			return nil, &LoadError{Source: source, Line: lineNo, Text: line,
				Err: fmt.Errorf("count %v is not a finite non-negative number", count)}
		}

		counts[key] = count
	}

	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Source: source, Line: lineNo + 1, Err: err}
	}
	return counts, nil
}

// parseFile opens and parses one TSV resource.
func parseFile(path string) (map[string]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer file.Close()

	return ParseCounts(file, path)
}

// Load reads the unigram and bigram TSV resources concurrently and builds a
// model. Any failure aborts the load; no partial model is returned.
func Load(ctx context.Context, unigramPath, bigramPath string) (*Model, error) {
	start := time.Now()

	var unigrams, bigrams map[string]float64
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := parseFile(unigramPath)
		if err != nil {
			return err
		}
		unigrams = counts
		return ctx.Err()
	})
	g.Go(func() error {
		counts, err := parseFile(bigramPath)
		if err != nil {
			return err
		}
		bigrams = counts
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	model, err := NewModel(unigrams, bigrams)
	if err != nil {
		return nil, fmt.Errorf("failed to build corpus model: %w", err)
	}

	stats := model.Stats()
	log.Debugf("Corpus loaded in %v: %d unigrams, %d bigrams",
		time.Since(start), stats.Unigrams, stats.Bigrams)
	return model, nil
}

// Open loads the corpus found in dir. A valid snapshot is preferred over the
// TSV pair; a snapshot that fails validation falls back to the TSV files.
func Open(ctx context.Context, dir string, files Files) (*Model, error) {
	if files.Snapshot != "" {
		snapshotPath := filepath.Join(dir, files.Snapshot)
		if format, err := DetectFormat(snapshotPath); err == nil && format == FormatSnapshot {
			model, err := ReadSnapshotFile(snapshotPath)
			if err == nil {
				return model, nil
			}
			log.Warnf("Ignoring corpus snapshot %s: %v", snapshotPath, err)
		}
	}

	unigramPath := filepath.Join(dir, files.Unigrams)
	bigramPath := filepath.Join(dir, files.Bigrams)
	for _, path := range []string{unigramPath, bigramPath} {
		if err := ValidateFormat(path, FormatText); err != nil {
			return nil, &LoadError{Source: path, Err: err}
		}
	}

	return Load(ctx, unigramPath, bigramPath)
}
