// Package parser decodes terse text into a models.Value tree.
//
// Parsing is resilient: structural and literal problems are recorded as
// diagnostics and the parser keeps going, so a single call reports every
// independent problem it can find. Lexical problems (unterminated strings or
// block comments, characters that start no token) stop the parse.
package parser

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/lexer"
	"github.com/mcncl/terse/internal/models"
)

// DefaultMaxDepth bounds container nesting.
const DefaultMaxDepth = 512

// Options configures decoding.
type Options struct {
	// PreserveComments collects comments into ParseResult.Comments. They
	// never appear in the value tree.
	PreserveComments bool
	// MaxDepth bounds container nesting; zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// ParseResult holds the recovered tree and every diagnostic recorded while
// building it.
type ParseResult struct {
	Value       *models.Value
	Diagnostics []errors.Diagnostic
	Comments    []lexer.Token
}

// HasErrors returns true if there were any diagnostics.
func (r *ParseResult) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Err returns the diagnostic batch, or nil when the document is valid.
func (r *ParseResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return errors.NewDiagnosticError(r.Diagnostics, r.Value)
}

// Parse decodes text and returns the tree alongside all diagnostics. A
// lexical error becomes the last diagnostic and leaves Value nil.
func Parse(text string, opts Options) *ParseResult {
	p := newParser(text, opts)
	v, err := p.parseDocument()

	var lexErr *errors.LexicalError
	if stderrors.As(err, &lexErr) {
		p.diags = append(p.diags, lexErr.Diagnostic)
		v = nil
	}

	return &ParseResult{Value: v, Diagnostics: p.diags, Comments: p.comments}
}

// Decode parses text and fails with a *errors.DiagnosticError holding every
// diagnostic when any was recorded.
func Decode(text string, opts ...Options) (*models.Value, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	res := Parse(text, o)
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Value, nil
}

// ParseReader decodes a whole document read from reader.
func ParseReader(reader io.Reader, opts Options) (*models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	return parseText(string(data), opts)
}

// ParseString parses a document from a string
func ParseString(text string, opts Options) (*models.Value, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return parseText(text, opts)
}

func parseText(text string, opts Options) (*models.Value, error) {
	v, err := Decode(text, opts)
	if err != nil {
		return nil, errors.NewParsingError("failed to decode document", err)
	}
	return v, nil
}

// ParseFile parses a document from a file path. Files ending in .zst or .gz
// are decompressed first.
func ParseFile(filePath string, opts Options) (*models.Value, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return parseText(string(data), opts)
}

// ReadFile reads filePath, decompressing .zst and .gz content. An empty file
// is an error.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	reader, closeReader, err := Decompress(file, filepath.Ext(filePath))
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to decompress '%s'", filePath),
			err,
		)
	}
	defer closeReader()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	return data, nil
}

// Decompress wraps r in a decompressor chosen by file extension. Unknown
// extensions pass r through unchanged.
func Decompress(r io.Reader, ext string) (io.Reader, func(), error) {
	switch strings.ToLower(ext) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case ".gz", ".gzip":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	default:
		return r, func() {}, nil
	}
}
