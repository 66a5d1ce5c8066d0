// Package lexer turns terse text into tokens.
//
// The Scanner exposes the character-level primitives the parser drives
// directly (names, quoted strings, literal runs, trivia); Tokenize runs the
// same primitives to completion and returns the flat token sequence.
package lexer

import (
	"fmt"

	"github.com/mcncl/terse/internal/errors"
)

// TokenKind identifies the lexical class of a token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota

	// Structural
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenLAngle   // <
	TokenRAngle   // >

	// Scalar prefixes
	TokenHash     // # integer
	TokenEquals   // = float
	TokenQuestion // ? boolean
	TokenTilde    // ~ null

	// Literals
	TokenString
	TokenNumber
	TokenTrue
	TokenFalse
	TokenNull
	TokenName

	// Trivia
	TokenLineComment
	TokenBlockComment
)

var tokenNames = [...]string{
	TokenEOF:          "EOF",
	TokenLBrace:       "{",
	TokenRBrace:       "}",
	TokenLBracket:     "[",
	TokenRBracket:     "]",
	TokenLAngle:       "<",
	TokenRAngle:       ">",
	TokenHash:         "#",
	TokenEquals:       "=",
	TokenQuestion:     "?",
	TokenTilde:        "~",
	TokenString:       "STRING",
	TokenNumber:       "NUMBER",
	TokenTrue:         "TRUE",
	TokenFalse:        "FALSE",
	TokenNull:         "NULL",
	TokenName:         "NAME",
	TokenLineComment:  "LINE_COMMENT",
	TokenBlockComment: "BLOCK_COMMENT",
}

// String returns the token kind name.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "UNKNOWN"
}

// IsComment reports whether k is a comment kind.
func (k TokenKind) IsComment() bool {
	return k == TokenLineComment || k == TokenBlockComment
}

// Token is one lexeme. Raw is the source text exactly as written; for
// strings Value holds the unescaped content.
type Token struct {
	Kind   TokenKind
	Raw    string
	Value  string
	Line   int
	Column int
	Offset int
}

// Cursor returns the position of the token's first character.
func (t Token) Cursor() errors.Cursor {
	return errors.Cursor{Offset: t.Offset, Line: t.Line, Column: t.Column}
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Raw == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Raw)
}

var punctuation = map[byte]TokenKind{
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	'<': TokenLAngle,
	'>': TokenRAngle,
	'#': TokenHash,
	'=': TokenEquals,
	'?': TokenQuestion,
	'~': TokenTilde,
}

var keywords = map[string]TokenKind{
	"true":  TokenTrue,
	"false": TokenFalse,
	"null":  TokenNull,
}

// KeywordKind returns the keyword kind for name, if it is one.
func KeywordKind(name string) (TokenKind, bool) {
	k, ok := keywords[name]
	return k, ok
}
