package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/models"
)

// Options configures tokenization.
type Options struct {
	// KeepComments emits comment tokens instead of discarding them.
	KeepComments bool
}

// Scanner walks the source one character at a time, tracking the cursor.
// A Scanner belongs to a single tokenize or parse call.
type Scanner struct {
	src  string
	cur  errors.Cursor
	opts Options
}

// NewScanner creates a scanner positioned at the start of src.
func NewScanner(src string, opts Options) *Scanner {
	return &Scanner{src: src, cur: errors.StartCursor(), opts: opts}
}

// Cursor returns a copy of the current position.
func (s *Scanner) Cursor() errors.Cursor {
	return s.cur
}

// AtEOF reports whether the whole source has been consumed.
func (s *Scanner) AtEOF() bool {
	return s.cur.Offset >= len(s.src)
}

// Peek returns the current byte, or 0 at end of input.
func (s *Scanner) Peek() byte {
	return s.PeekAt(0)
}

// PeekAt returns the byte n positions ahead, or 0 past the end.
func (s *Scanner) PeekAt(n int) byte {
	i := s.cur.Offset + n
	if i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

// PeekRune returns the current character, decoding UTF-8.
func (s *Scanner) PeekRune() rune {
	if s.AtEOF() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.cur.Offset:])
	return r
}

// Advance moves past one character.
func (s *Scanner) Advance() {
	if s.AtEOF() {
		return
	}
	r, size := utf8.DecodeRuneInString(s.src[s.cur.Offset:])
	s.cur.Offset += size
	if r == '\n' {
		s.cur.Line++
		s.cur.Column = 1
	} else {
		s.cur.Column++
	}
}

// Slice returns the source between two offsets.
func (s *Scanner) Slice(from, to int) string {
	return s.src[from:to]
}

// IsWhitespace reports whether c separates tokens.
func IsWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// IsLiteralTerminator reports whether c ends an unquoted literal run.
func IsLiteralTerminator(c byte) bool {
	switch c {
	case '{', ',', '}', ']', '"', ':', ';':
		return true
	}
	return IsWhitespace(c)
}

// IsDigit reports whether c is an ASCII digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// AtComment reports whether a line or block comment starts here.
func (s *Scanner) AtComment() bool {
	return s.Peek() == '/' && (s.PeekAt(1) == '/' || s.PeekAt(1) == '*')
}

// SkipWhitespace consumes whitespace only.
func (s *Scanner) SkipWhitespace() {
	for !s.AtEOF() && IsWhitespace(s.Peek()) {
		s.Advance()
	}
}

// SkipTrivia consumes whitespace, commas and comments and returns the
// comments it passed. Commas carry no meaning. An unterminated block comment
// is a lexical error.
func (s *Scanner) SkipTrivia() ([]Token, error) {
	var comments []Token
	for !s.AtEOF() {
		c := s.Peek()
		switch {
		case IsWhitespace(c) || c == ',':
			s.Advance()
		case s.AtComment():
			tok, err := s.ScanComment()
			if err != nil {
				return comments, err
			}
			comments = append(comments, tok)
		default:
			return comments, nil
		}
	}
	return comments, nil
}

// ScanComment reads a comment starting at "//" or "/*".
func (s *Scanner) ScanComment() (Token, error) {
	start := s.cur
	if s.PeekAt(1) == '/' {
		for !s.AtEOF() && s.Peek() != '\n' {
			s.Advance()
		}
		return s.token(TokenLineComment, start), nil
	}

	s.Advance()
	s.Advance()
	for {
		if s.AtEOF() {
			return Token{}, errors.NewLexicalError(start, "unterminated block comment")
		}
		if s.Peek() == '*' && s.PeekAt(1) == '/' {
			s.Advance()
			s.Advance()
			return s.token(TokenBlockComment, start), nil
		}
		s.Advance()
	}
}

// ScanName reads a Name. It returns "" if no name starts here.
func (s *Scanner) ScanName() string {
	if !models.IsNameStart(s.Peek()) {
		return ""
	}
	start := s.cur.Offset
	s.Advance()
	for !s.AtEOF() && models.IsNameChar(s.Peek()) {
		s.Advance()
	}
	return s.src[start:s.cur.Offset]
}

// ScanString reads a quoted string whose opening quote is the current
// character. It returns the raw lexeme and the unescaped value. Unknown
// escapes are kept with their backslash.
func (s *Scanner) ScanString() (raw string, value string, err error) {
	start := s.cur
	quote := s.Peek()
	s.Advance()

	var sb strings.Builder
	for {
		if s.AtEOF() {
			return "", "", errors.NewLexicalError(start, "unterminated string")
		}
		c := s.Peek()
		switch c {
		case quote:
			s.Advance()
			return s.src[start.Offset:s.cur.Offset], sb.String(), nil
		case '\n':
			end := s.cur
			lexErr := errors.NewLexicalError(start, "unterminated string")
			lexErr.Diagnostic.EndCursor = &end
			return "", "", lexErr
		case '\\':
			s.Advance()
			if s.AtEOF() {
				return "", "", errors.NewLexicalError(start, "unterminated string")
			}
			esc := s.Peek()
			if esc == '\n' {
				continue
			}
			if decoded, ok := unescape(esc); ok {
				sb.WriteByte(decoded)
				s.Advance()
				continue
			}
			sb.WriteByte('\\')
		default:
			from := s.cur.Offset
			s.Advance()
			sb.WriteString(s.src[from:s.cur.Offset])
		}
	}
}

func unescape(c byte) (byte, bool) {
	switch c {
	case '"', '\'', '\\':
		return c, true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	}
	return 0, false
}

// ScanNumber reads the lexical number shape -?digits(.digits)?. It returns
// "" when no digit follows the optional sign.
func (s *Scanner) ScanNumber() string {
	start := s.cur.Offset
	i := 0
	if s.PeekAt(i) == '-' {
		i++
	}
	if !IsDigit(s.PeekAt(i)) {
		return ""
	}
	for IsDigit(s.PeekAt(i)) {
		i++
	}
	if s.PeekAt(i) == '.' && IsDigit(s.PeekAt(i+1)) {
		i++
		for IsDigit(s.PeekAt(i)) {
			i++
		}
	}
	for n := 0; n < i; n++ {
		s.Advance()
	}
	return s.src[start:s.cur.Offset]
}

// ScanLiteral reads the unquoted run up to the next literal terminator.
func (s *Scanner) ScanLiteral() string {
	start := s.cur.Offset
	for !s.AtEOF() && !IsLiteralTerminator(s.Peek()) {
		s.Advance()
	}
	return s.src[start:s.cur.Offset]
}

// Next returns the next token. Comments are skipped unless KeepComments is set.
func (s *Scanner) Next() (Token, error) {
	for {
		for !s.AtEOF() && (IsWhitespace(s.Peek()) || s.Peek() == ',') {
			s.Advance()
		}
		if !s.AtComment() {
			break
		}
		tok, err := s.ScanComment()
		if err != nil {
			return Token{}, err
		}
		if s.opts.KeepComments {
			return tok, nil
		}
	}

	start := s.cur
	if s.AtEOF() {
		return s.token(TokenEOF, start), nil
	}

	c := s.Peek()
	if kind, ok := punctuation[c]; ok {
		s.Advance()
		return s.token(kind, start), nil
	}

	switch {
	case c == '"' || c == '\'':
		raw, value, err := s.ScanString()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenString, Raw: raw, Value: value, Line: start.Line, Column: start.Column, Offset: start.Offset}, nil
	case c == '-' || IsDigit(c):
		if s.ScanNumber() != "" {
			return s.token(TokenNumber, start), nil
		}
	case models.IsNameStart(c):
		name := s.ScanName()
		if kind, ok := KeywordKind(name); ok {
			return s.token(kind, start), nil
		}
		return s.token(TokenName, start), nil
	}

	return Token{}, errors.NewLexicalError(start, "unexpected character %q", s.PeekRune())
}

func (s *Scanner) token(kind TokenKind, start errors.Cursor) Token {
	return Token{
		Kind:   kind,
		Raw:    s.src[start.Offset:s.cur.Offset],
		Line:   start.Line,
		Column: start.Column,
		Offset: start.Offset,
	}
}

// Tokenize scans src into a token sequence ending with TokenEOF.
func Tokenize(src string, opts Options) ([]Token, error) {
	s := NewScanner(src, opts)
	var tokens []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}
