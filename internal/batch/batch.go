// Package batch decodes line-delimited streams where each non-blank line is
// an independent terse document.
package batch

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/models"
	"github.com/mcncl/terse/internal/parser"
)

// DefaultMaxLineBytes bounds a single line.
const DefaultMaxLineBytes = 1 << 20

// Options configures a batch run.
type Options struct {
	// MaxLineBytes bounds a single line; zero means DefaultMaxLineBytes.
	MaxLineBytes int
	// StopOnError ends the run after the first failing line.
	StopOnError bool
	// Parse is applied to every line.
	Parse parser.Options
}

// Result is the outcome for one line.
type Result struct {
	// Line is the 1-based line number in the input.
	Line int
	// Offset is the byte offset of the line's first character in the input.
	Offset int
	Value  *models.Value
	Err    error
}

// OK reports whether the line decoded cleanly.
func (r Result) OK() bool {
	return r.Err == nil
}

// Report collects the per-line results of a run.
type Report struct {
	Results []Result
	// Lines counts every line read, blank ones included.
	Lines int
	// Stopped is set when StopOnError ended the run early.
	Stopped bool
}

// Failures returns the results that carry an error.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Values returns the decoded values of the successful lines in order.
func (r *Report) Values() []*models.Value {
	var values []*models.Value
	for _, res := range r.Results {
		if res.OK() {
			values = append(values, res.Value)
		}
	}
	return values
}

// Process decodes every non-blank line of r. Per-line failures are recorded
// in the report; the returned error is reserved for read failures such as a
// line exceeding MaxLineBytes.
func Process(r io.Reader, opts Options) (*Report, error) {
	maxLine := opts.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(maxLine, 64*1024)), maxLine)

	var consumed, lineStart int
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		if token != nil {
			lineStart = consumed
		}
		consumed += advance
		return advance, token, err
	})

	report := &Report{}
	for scanner.Scan() {
		report.Lines++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		v, err := parser.Decode(line, opts.Parse)
		report.Results = append(report.Results, Result{Line: report.Lines, Offset: lineStart, Value: v, Err: err})
		if err != nil && opts.StopOnError {
			report.Stopped = true
			return report, nil
		}
	}

	if err := scanner.Err(); err != nil {
		if stderrors.Is(err, bufio.ErrTooLong) {
			return report, errors.NewInputError(
				fmt.Sprintf("line %d exceeds %d bytes", report.Lines+1, maxLine),
				err,
			)
		}
		return report, errors.NewInputError("failed to read batch input", err)
	}
	return report, nil
}

// ProcessFile runs Process over a file, decompressing .zst and .gz input.
func ProcessFile(filePath string, opts Options) (*Report, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to open file '%s'", filePath), err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader, closeReader, err := parser.Decompress(file, filepath.Ext(filePath))
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to decompress '%s'", filePath), err)
	}
	defer closeReader()

	return Process(reader, opts)
}
