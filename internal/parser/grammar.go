package parser

import (
	"fmt"

	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/lexer"
	"github.com/mcncl/terse/internal/models"
)

// hint is the element type declared by a typed array.
type hint uint8

const (
	hintNone hint = iota
	hintInt
	hintFloat
	hintBool
)

var typeSpecifiers = map[string]hint{
	"#": hintInt,
	"=": hintFloat,
	"?": hintBool,
}

// parser owns the scanning cursor and the diagnostics recorded while
// descending. Every production is a method so the pair travels together.
type parser struct {
	s        *lexer.Scanner
	diags    []errors.Diagnostic
	comments []lexer.Token
	opts     Options
	depth    int
}

func newParser(text string, opts Options) *parser {
	return &parser{
		s:    lexer.NewScanner(text, lexer.Options{KeepComments: opts.PreserveComments}),
		opts: opts,
	}
}

func (p *parser) addDiagnostic(start errors.Cursor, end *errors.Cursor, format string, args ...interface{}) {
	p.diags = append(p.diags, errors.NewDiagnostic(fmt.Sprintf(format, args...), start, end))
}

// here returns a copy of the live cursor for use as an anchor.
func (p *parser) here() *errors.Cursor {
	c := p.s.Cursor()
	return &c
}

func (p *parser) skipTrivia() error {
	comments, err := p.s.SkipTrivia()
	if p.opts.PreserveComments {
		p.comments = append(p.comments, comments...)
	}
	return err
}

// parseDocument is the root rule: an optional Name and a value suffix.
func (p *parser) parseDocument() (*models.Value, error) {
	if err := p.skipTrivia(); err != nil {
		return nil, err
	}
	if p.s.AtEOF() {
		p.addDiagnostic(p.s.Cursor(), nil, "unexpected end of input, expected a value")
		return nil, nil
	}
	if err := p.checkLexical(); err != nil {
		return nil, err
	}
	if !startsItem(p.s.Peek()) {
		p.addDiagnostic(p.s.Cursor(), nil, "unexpected %q, expected a value", p.s.PeekRune())
		return nil, nil
	}

	v, err := p.parseItem(hintNone)
	if err != nil {
		return v, err
	}

	if err := p.skipTrivia(); err != nil {
		return v, err
	}
	if !p.s.AtEOF() {
		p.addDiagnostic(p.s.Cursor(), nil, "unexpected content after document value")
	}
	return v, nil
}

// parseItem parses a possibly named value. A Name immediately followed by a
// suffix binds to it; a Name followed by anything else is a null member.
func (p *parser) parseItem(h hint) (*models.Value, error) {
	c := p.s.Peek()
	if !models.IsNameStart(c) {
		return p.parseValue(h)
	}

	name := p.s.ScanName()
	if kind, ok := lexer.KeywordKind(name); ok && !startsSuffix(p.s.Peek()) {
		return keywordValue(kind), nil
	}
	v, err := p.parseSuffix()
	return models.Named(name, v), err
}

// parseSuffix parses what follows a Name. No suffix means null.
func (p *parser) parseSuffix() (*models.Value, error) {
	if !startsSuffix(p.s.Peek()) {
		return models.Null(), nil
	}
	return p.parseValue(hintNone)
}

// parseValue dispatches on the leading character of an unnamed value.
func (p *parser) parseValue(h hint) (*models.Value, error) {
	start := p.s.Cursor()
	c := p.s.Peek()

	switch c {
	case '{':
		return p.parseObject()
	case '[':
		// Element-type hints apply only to direct items of a typed array.
		return p.parseArray(hintNone)
	case '<':
		return p.parseTypedArray()
	case '"', '\'':
		_, value, err := p.s.ScanString()
		if err != nil {
			return nil, err
		}
		return models.String(value), nil
	case '#':
		p.s.Advance()
		return p.intLiteral(p.s.ScanLiteral(), start), nil
	case '=':
		p.s.Advance()
		return p.floatLiteral(p.s.ScanLiteral(), start), nil
	case '?':
		p.s.Advance()
		return p.boolLiteral(p.s.ScanLiteral(), start), nil
	case '~':
		p.s.Advance()
		return models.Null(), nil
	}

	if c == '-' || lexer.IsDigit(c) {
		return p.unprefixedLiteral(p.s.ScanLiteral(), start, h), nil
	}

	if err := p.checkLexical(); err != nil {
		return nil, err
	}
	p.addDiagnostic(start, nil, "unexpected %q, expected a value", p.s.PeekRune())
	p.skipMalformed()
	return models.Null(), nil
}

// parseObject parses `{ (Name suffix)* }`. A missing `}` is reported at the
// opening brace and the members read so far are kept.
func (p *parser) parseObject() (*models.Value, error) {
	open := p.s.Cursor()
	if p.enter() {
		return p.skipTooDeep(open)
	}
	defer p.leave()
	p.s.Advance()

	obj := models.NewObject()
	v := models.ObjectValue(obj)
	for {
		if err := p.skipTrivia(); err != nil {
			return v, err
		}
		c := p.s.Peek()
		switch {
		case p.s.AtEOF():
			p.addDiagnostic(open, p.here(), "missing closing '}'")
			return v, nil
		case c == '}':
			p.s.Advance()
			return v, nil
		case c == ']':
			p.addDiagnostic(open, p.here(), "missing closing '}'")
			return v, nil
		case models.IsNameStart(c):
			name := p.s.ScanName()
			member, err := p.parseSuffix()
			obj.Set(name, member)
			if err != nil {
				return v, err
			}
		case startsValue(c):
			p.addDiagnostic(p.s.Cursor(), nil, "missing property name")
			if _, err := p.parseValue(hintNone); err != nil {
				return v, err
			}
		default:
			if err := p.checkLexical(); err != nil {
				return v, err
			}
			p.addDiagnostic(p.s.Cursor(), nil, "unexpected %q in object, expected a property name", p.s.PeekRune())
			p.skipMalformed()
		}
	}
}

// parseArray parses `[ item* ]` where each item may be named.
func (p *parser) parseArray(h hint) (*models.Value, error) {
	open := p.s.Cursor()
	if p.enter() {
		return p.skipTooDeep(open)
	}
	defer p.leave()
	p.s.Advance()

	arr := models.Array()
	for {
		if err := p.skipTrivia(); err != nil {
			return arr, err
		}
		c := p.s.Peek()
		switch {
		case p.s.AtEOF():
			p.addDiagnostic(open, p.here(), "missing closing ']'")
			return arr, nil
		case c == ']':
			p.s.Advance()
			return arr, nil
		case c == '}':
			p.addDiagnostic(open, p.here(), "missing closing ']'")
			return arr, nil
		case startsItem(c):
			item, err := p.parseItem(h)
			if item != nil {
				arr.Append(item)
			}
			if err != nil {
				return arr, err
			}
		default:
			if err := p.checkLexical(); err != nil {
				return arr, err
			}
			p.addDiagnostic(p.s.Cursor(), nil, "unexpected %q in array", p.s.PeekRune())
			p.skipMalformed()
		}
	}
}

// parseTypedArray parses `<T>[ ... ]`.
func (p *parser) parseTypedArray() (*models.Value, error) {
	p.s.Advance()
	specStart := p.s.Cursor()
	spec := p.scanTypeSpecifier()

	h, ok := typeSpecifiers[spec]
	switch {
	case spec == "":
		p.addDiagnostic(specStart, nil, "missing array type specifier")
	case !ok:
		p.addDiagnostic(specStart, p.here(), "invalid array type specifier %q", spec)
	}

	if p.s.Peek() == '>' {
		p.s.Advance()
	} else {
		p.addDiagnostic(p.s.Cursor(), nil, "expected '>' after array type specifier")
	}

	if p.s.Peek() != '[' {
		p.addDiagnostic(p.s.Cursor(), nil, "expected '[' after array type specifier")
		return models.Array(), nil
	}
	return p.parseArray(h)
}

func (p *parser) scanTypeSpecifier() string {
	start := p.s.Cursor().Offset
	for !p.s.AtEOF() {
		c := p.s.Peek()
		if c == '>' || c == '[' || lexer.IsLiteralTerminator(c) {
			break
		}
		p.s.Advance()
	}
	return p.s.Slice(start, p.s.Cursor().Offset)
}

// skipMalformed moves past an unparseable run, stopping at whitespace, a
// comma or a closing bracket. It always consumes at least one character.
func (p *parser) skipMalformed() {
	p.s.Advance()
	for !p.s.AtEOF() {
		c := p.s.Peek()
		if lexer.IsWhitespace(c) || c == ',' || c == '}' || c == ']' {
			return
		}
		p.s.Advance()
	}
}

// checkLexical fails when the current character cannot start any token.
func (p *parser) checkLexical() error {
	c := p.s.Peek()
	if p.s.AtEOF() || startsItem(c) || c == '}' || c == ']' || c == '>' || p.s.AtComment() ||
		lexer.IsWhitespace(c) || c == ',' {
		return nil
	}
	return errors.NewLexicalError(p.s.Cursor(), "unexpected character %q", p.s.PeekRune())
}

// enter increments the nesting depth and reports whether it is exceeded.
func (p *parser) enter() bool {
	p.depth++
	return p.depth > p.opts.maxDepth()
}

func (p *parser) leave() {
	p.depth--
}

// skipTooDeep records the depth diagnostic and skips the container that
// starts at open without building it.
func (p *parser) skipTooDeep(open errors.Cursor) (*models.Value, error) {
	defer p.leave()
	p.addDiagnostic(open, nil, "maximum nesting depth %d exceeded", p.opts.maxDepth())

	level := 0
	for !p.s.AtEOF() {
		switch c := p.s.Peek(); c {
		case '"', '\'':
			if _, _, err := p.s.ScanString(); err != nil {
				return nil, err
			}
			continue
		case '/':
			if p.s.AtComment() {
				if _, err := p.s.ScanComment(); err != nil {
					return nil, err
				}
				continue
			}
		case '{', '[':
			level++
		case '}', ']':
			level--
		}
		p.s.Advance()
		if level == 0 {
			break
		}
	}
	return models.Null(), nil
}

func keywordValue(kind lexer.TokenKind) *models.Value {
	switch kind {
	case lexer.TokenTrue:
		return models.Bool(true)
	case lexer.TokenFalse:
		return models.Bool(false)
	default:
		return models.Null()
	}
}

// startsSuffix reports whether c begins a value suffix attached to a Name.
func startsSuffix(c byte) bool {
	switch c {
	case '{', '[', '<', '"', '\'', '#', '=', '?', '~':
		return true
	}
	return false
}

// startsValue reports whether c begins an unnamed value.
func startsValue(c byte) bool {
	return startsSuffix(c) || c == '-' || lexer.IsDigit(c)
}

// startsItem reports whether c begins a possibly named value.
func startsItem(c byte) bool {
	return startsValue(c) || models.IsNameStart(c)
}
