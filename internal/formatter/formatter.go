// Package formatter serializes a models.Value tree back to terse text.
//
// Encoding is total: every tree produces text. The output decodes to an
// equal tree for any value whose object keys are valid Names.
package formatter

import (
	"math"
	"strconv"
	"strings"

	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/models"
	"github.com/mcncl/terse/internal/parser"
)

// DefaultIndent is the number of spaces per nesting level in pretty output.
const DefaultIndent = 2

// Options controls the layout of encoded text.
type Options struct {
	// Pretty puts each member and item on its own line.
	Pretty bool
	// Indent is the number of spaces per level in pretty mode.
	Indent int
}

// DefaultOptions returns compact output with the default indent.
func DefaultOptions() Options {
	return Options{Pretty: false, Indent: DefaultIndent}
}

// Formatter encodes values and reformats documents.
type Formatter struct {
	opts Options
}

// NewFormatter creates a new Formatter instance
func NewFormatter(opts Options) *Formatter {
	if opts.Indent < 0 {
		opts.Indent = DefaultIndent
	}
	return &Formatter{opts: opts}
}

// Encode serializes v.
func (f *Formatter) Encode(v *models.Value) string {
	e := &emitter{opts: f.opts, indent: strings.Repeat(" ", f.opts.Indent)}
	e.writeValue(v, 0, false)
	return e.sb.String()
}

// Format decodes a document and re-emits it in canonical form. Comments are
// dropped. Whitespace-only input formats to "".
func (f *Formatter) Format(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	v, err := parser.Decode(text)
	if err != nil {
		return "", errors.NewParsingError("failed to decode document", err)
	}
	return f.Encode(v), nil
}

// Encode serializes v with the given layout.
func Encode(v *models.Value, pretty bool, indentWidth int) string {
	return NewFormatter(Options{Pretty: pretty, Indent: indentWidth}).Encode(v)
}

type emitter struct {
	sb     strings.Builder
	opts   Options
	indent string
}

// writeValue emits v at nesting depth. asProperty is true when v is the
// value of an object member, which keeps single-entry objects in braces.
func (e *emitter) writeValue(v *models.Value, depth int, asProperty bool) {
	switch v.Kind() {
	case models.KindNull:
		e.sb.WriteString("~")
	case models.KindBool:
		b, _ := v.AsBool()
		if b {
			e.sb.WriteString("?true")
		} else {
			e.sb.WriteString("?false")
		}
	case models.KindInt:
		i, _ := v.AsInt()
		e.sb.WriteByte('#')
		e.sb.WriteString(strconv.FormatInt(i, 10))
	case models.KindFloat:
		f, _ := v.AsFloat()
		e.sb.WriteByte('=')
		e.sb.WriteString(FormatFloat(f))
	case models.KindString:
		s, _ := v.AsString()
		e.sb.WriteString(Quote(s))
	case models.KindArray:
		e.writeArray(v.Items(), depth)
	case models.KindObject:
		obj := v.Object()
		if !asProperty {
			if key, ok := flattenKey(obj); ok {
				member, _ := obj.Get(key)
				e.sb.WriteString(key)
				e.writeValue(member, depth, true)
				return
			}
		}
		e.writeObject(obj, depth)
	default:
		e.sb.WriteString(Quote(v.Kind().String()))
	}
}

func (e *emitter) writeArray(items []*models.Value, depth int) {
	if len(items) == 0 {
		e.sb.WriteString("[]")
		return
	}
	e.sb.WriteByte('[')
	for i, item := range items {
		e.separate(i, depth+1)
		e.writeValue(item, depth+1, false)
	}
	e.close(']', depth)
}

func (e *emitter) writeObject(obj *models.Object, depth int) {
	entries := obj.Entries()
	if len(entries) == 0 {
		e.sb.WriteString("{}")
		return
	}
	e.sb.WriteByte('{')
	for i, entry := range entries {
		e.separate(i, depth+1)
		e.sb.WriteString(entry.Key)
		e.writeValue(entry.Value, depth+1, true)
	}
	e.close('}', depth)
}

// separate writes what precedes the i-th member or item.
func (e *emitter) separate(i, depth int) {
	if e.opts.Pretty {
		e.sb.WriteByte('\n')
		e.writeIndent(depth)
		return
	}
	if i > 0 {
		e.sb.WriteByte(' ')
	}
}

func (e *emitter) close(bracket byte, depth int) {
	if e.opts.Pretty {
		e.sb.WriteByte('\n')
		e.writeIndent(depth)
	}
	e.sb.WriteByte(bracket)
}

func (e *emitter) writeIndent(depth int) {
	for i := 0; i < depth; i++ {
		e.sb.WriteString(e.indent)
	}
}

// flattenKey returns the sole key of obj when it can be written as
// `name<suffix>` without braces.
func flattenKey(obj *models.Object) (string, bool) {
	if obj.Len() != 1 {
		return "", false
	}
	key := obj.Keys()[0]
	if models.IsReservedKey(key) || !models.IsName(key) {
		return "", false
	}
	return key, true
}

// FormatFloat renders f in its shortest round-tripping decimal form, using
// exponent notation outside [1e-6, 1e21).
func FormatFloat(f float64) string {
	abs := math.Abs(f)
	if abs == 0 || math.IsNaN(f) || math.IsInf(f, 0) || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'e', -1, 64)
}

// Quote wraps s in the quote that needs the least escaping: double quotes
// unless s contains a double quote and no single quote.
func Quote(s string) string {
	quote := '"'
	if strings.ContainsRune(s, '"') && !strings.ContainsRune(s, '\'') {
		quote = '\''
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteRune(quote)
	// Bytes are copied as-is so strings that are not valid UTF-8 survive.
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case byte(quote):
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteRune(quote)
	return sb.String()
}
