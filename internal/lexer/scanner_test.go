package lexer

import (
	stderrors "errors"
	"testing"

	"github.com/mcncl/terse/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenKind
	}{
		{
			name:     "named object",
			input:    `person{name"John" age#30}`,
			expected: []TokenKind{TokenName, TokenLBrace, TokenName, TokenString, TokenName, TokenHash, TokenNumber, TokenRBrace, TokenEOF},
		},
		{
			name:     "typed array",
			input:    `nums<#>[1, 2, -3.5]`,
			expected: []TokenKind{TokenName, TokenLAngle, TokenHash, TokenRAngle, TokenLBracket, TokenNumber, TokenNumber, TokenNumber, TokenRBracket, TokenEOF},
		},
		{
			name:     "prefixes",
			input:    `a?true b~ c=1.5`,
			expected: []TokenKind{TokenName, TokenQuestion, TokenTrue, TokenName, TokenTilde, TokenName, TokenEquals, TokenNumber, TokenEOF},
		},
		{
			name:     "keywords only when whole",
			input:    `true trueish null nullable false`,
			expected: []TokenKind{TokenTrue, TokenName, TokenNull, TokenName, TokenFalse, TokenEOF},
		},
		{
			name:     "commas are separators",
			input:    `,,[,],`,
			expected: []TokenKind{TokenLBracket, TokenRBracket, TokenEOF},
		},
		{
			name:     "comments skipped",
			input:    "a // trailing\n/* block\n */ b",
			expected: []TokenKind{TokenName, TokenName, TokenEOF},
		},
		{
			name:     "empty",
			input:    "",
			expected: []TokenKind{TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kinds(tokens))
		})
	}
}

func TestTokenize_KeepComments(t *testing.T) {
	tokens, err := Tokenize("a // note\n/* b */", Options{KeepComments: true})
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenLineComment, tokens[1].Kind)
	assert.Equal(t, "// note", tokens[1].Raw)
	assert.Equal(t, TokenBlockComment, tokens[2].Kind)
	assert.Equal(t, "/* b */", tokens[2].Raw)
	assert.True(t, tokens[2].Kind.IsComment())
}

func TestTokenize_Positions(t *testing.T) {
	tokens, err := Tokenize("a{\n  bx\"é\" c#1}", Options{})
	require.NoError(t, err)

	assert.Equal(t, errors.Cursor{Offset: 0, Line: 1, Column: 1}, tokens[0].Cursor())
	assert.Equal(t, errors.Cursor{Offset: 1, Line: 1, Column: 2}, tokens[1].Cursor())
	assert.Equal(t, errors.Cursor{Offset: 5, Line: 2, Column: 3}, tokens[2].Cursor())
	assert.Equal(t, TokenString, tokens[3].Kind)
	// columns count characters, offsets count bytes
	assert.Equal(t, errors.Cursor{Offset: 12, Line: 2, Column: 9}, tokens[4].Cursor())
}

func TestTokenize_Strings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value string
	}{
		{"double", `"hello"`, "hello"},
		{"single", `'hello'`, "hello"},
		{"other quote inside", `'say "hi"'`, `say "hi"`},
		{"escapes", `"a\"b\'c\\d\ne\rf\tg\bh\fi\vj"`, "a\"b'c\\d\ne\rf\tg\bh\fi\vj"},
		{"unknown escape kept", `"C:\qdir\u0041"`, `C:\qdir\u0041`},
		{"unicode", `"héllo wörld"`, "héllo wörld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input, Options{})
			require.NoError(t, err)
			require.Equal(t, TokenString, tokens[0].Kind)
			assert.Equal(t, tt.value, tokens[0].Value)
			assert.Equal(t, tt.input, tokens[0].Raw)
		})
	}
}

func TestTokenize_LexicalErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		line    int
		column  int
	}{
		{"string hits newline", "a\"abc\ndef\"", "unterminated string", 1, 2},
		{"string hits eof", `'abc`, "unterminated string", 1, 1},
		{"dangling backslash", `"abc\`, "unterminated string", 1, 1},
		{"block comment", "a /* never closed", "unterminated block comment", 1, 3},
		{"unexpected character", "a @", "unexpected character '@'", 1, 3},
		{"lone minus", "-x", "unexpected character '-'", 1, 1},
		{"colon", "a:1", "unexpected character ':'", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input, Options{})
			require.Error(t, err)
			var lexErr *errors.LexicalError
			require.True(t, stderrors.As(err, &lexErr))
			assert.Equal(t, tt.message, lexErr.Diagnostic.Message)
			assert.Equal(t, tt.line, lexErr.Diagnostic.Cursor.Line)
			assert.Equal(t, tt.column, lexErr.Diagnostic.Cursor.Column)
		})
	}
}

func TestScanner_ScanLiteral(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123 rest", "123"},
		{"1.2.3]", "1.2.3"},
		{"12abc}", "12abc"},
		{"maybe,x", "maybe"},
		{"1e+5\"s\"", "1e+5"},
		{"7:8", "7"},
		{"7;8", "7"},
		{"x{", "x"},
		{"'q'", "'q'"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := NewScanner(tt.input, Options{})
			assert.Equal(t, tt.expected, s.ScanLiteral())
		})
	}
}

func TestScanner_SkipTrivia(t *testing.T) {
	s := NewScanner(" ,\n// c\n /* d */ x", Options{})
	comments, err := s.SkipTrivia()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), s.Peek())
	assert.Equal(t, 3, s.Cursor().Line)
	require.Len(t, comments, 2)
	assert.Equal(t, "// c", comments[0].Raw)
	assert.Equal(t, "/* d */", comments[1].Raw)

	s = NewScanner("/* open", Options{})
	_, err = s.SkipTrivia()
	assert.Error(t, err)
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "{", TokenLBrace.String())
	assert.Equal(t, "NAME", TokenName.String())
	assert.Equal(t, "UNKNOWN", TokenKind(200).String())
	assert.Equal(t, `NAME("abc")`, Token{Kind: TokenName, Raw: "abc"}.String())
}
