package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/models"
)

var (
	intPattern              = regexp.MustCompile(`^[+-]?[0-9]+$`)
	intPrefixPattern        = regexp.MustCompile(`^[+-]?[0-9]+`)
	floatPattern            = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
	floatPrefixPattern      = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?`)
	danglingExponentPattern = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)[eE][+-]?$`)
)

// intLiteral interprets lit as an Integer. On a malformed literal it records
// a diagnostic and keeps the leading signed digits, or zero.
func (p *parser) intLiteral(lit string, start errors.Cursor) *models.Value {
	end := p.here()
	if !intPattern.MatchString(lit) {
		p.addDiagnostic(start, end, "invalid integer value %q", lit)
		n, _ := parseIntClamped(intPrefixPattern.FindString(lit))
		return models.Int(n)
	}
	n, err := parseIntClamped(lit)
	if err != nil {
		p.addDiagnostic(start, end, "integer value %q out of range", lit)
	}
	return models.Int(n)
}

// floatLiteral interprets lit as a Float. On a malformed literal it records
// a diagnostic and keeps the longest valid numeric prefix, or zero.
func (p *parser) floatLiteral(lit string, start errors.Cursor) *models.Value {
	end := p.here()
	if floatPattern.MatchString(lit) {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil && math.IsInf(f, 0) {
			p.addDiagnostic(start, end, "float value %q out of range", lit)
		}
		return models.Float(f)
	}

	switch {
	case lit == "":
		p.addDiagnostic(start, end, "missing float value")
	case strings.Count(lit, ".") > 1:
		p.addDiagnostic(start, end, "invalid float value %q: multiple decimal points", lit)
	case danglingExponentPattern.MatchString(lit):
		p.addDiagnostic(start, end, "invalid float value %q: exponent has no digits", lit)
	default:
		p.addDiagnostic(start, end, "invalid float value %q", lit)
	}
	f, _ := strconv.ParseFloat(floatPrefixPattern.FindString(lit), 64)
	return models.Float(f)
}

// boolLiteral interprets lit as a Boolean, falling back to false.
func (p *parser) boolLiteral(lit string, start errors.Cursor) *models.Value {
	switch lit {
	case "true":
		return models.Bool(true)
	case "false":
		return models.Bool(false)
	}
	p.addDiagnostic(start, p.here(), "invalid boolean value %q", lit)
	return models.Bool(false)
}

// unprefixedLiteral interprets a bare numeric run under the element-type
// hint of the enclosing typed array. Without a hint the literal is an
// Integer when it has the integer shape and a Float otherwise.
func (p *parser) unprefixedLiteral(lit string, start errors.Cursor, h hint) *models.Value {
	switch h {
	case hintInt:
		return p.intLiteral(lit, start)
	case hintFloat:
		return p.floatLiteral(lit, start)
	case hintBool:
		return p.boolLiteral(lit, start)
	}
	if intPattern.MatchString(lit) {
		return p.intLiteral(lit, start)
	}
	return p.floatLiteral(lit, start)
}

// parseIntClamped parses s as int64, saturating on overflow. An empty
// string is zero.
func parseIntClamped(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	// ParseInt returns the saturated value alongside ErrRange.
	return strconv.ParseInt(s, 10, 64)
}
