// Package cli runs wordsplit over line oriented text streams.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/wordsplit/internal/logger"
	"github.com/bastiangx/wordsplit/pkg/segment"
	"github.com/charmbracelet/log"
)

const maxLineSize = 1 << 20

// Runner segments every input line and writes the words of each line
// separated by single spaces.
type Runner struct {
	segmenter *segment.Segmenter
	showScore bool
	logger    *log.Logger
}

// NewRunner creates a Runner. With showScore the aggregate log10 score is
// appended to each output line after a tab.
func NewRunner(seg *segment.Segmenter, showScore bool) *Runner {
	return &Runner{
		segmenter: seg,
		showScore: showScore,
		logger:    logger.New("cli"),
	}
}

// Run reads lines from in until EOF. It stops at the first failed line,
// returning the error with its line number; lines before it are already
// written to out.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	w := bufio.NewWriter(out)
	defer w.Flush()

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		start := time.Now()
		result, err := r.segmenter.SegmentContext(ctx, line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		r.logger.Debugf("Took %v for line %d (%d words, %d steps)", time.Since(start), lineNum, len(result.Words), result.Steps)

		if _, err := w.WriteString(strings.Join(result.Words, " ")); err != nil {
			return err
		}
		if r.showScore {
			fmt.Fprintf(w, "\t%.6f", result.Score)
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return w.Flush()
}

// RunFiles runs over the named files. An empty name or "-" selects stdin
// for input and stdout for output. A failed close of the output file is
// reported like a failed write.
func (r *Runner) RunFiles(ctx context.Context, inPath, outPath string) (err error) {
	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout

	if inPath != "" && inPath != "-" {
		inFile, openErr := os.Open(inPath)
		if openErr != nil {
			return openErr
		}
		defer inFile.Close()
		in = inFile
	}
	if outPath != "" && outPath != "-" {
		outFile, createErr := os.Create(outPath)
		if createErr != nil {
			return createErr
		}
		defer closeOutput(outFile, &err)
		out = outFile
	}
	return r.Run(ctx, in, out)
}

// closeOutput closes c, keeping the first error
func closeOutput(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing output: %w", cerr)
	}
}
