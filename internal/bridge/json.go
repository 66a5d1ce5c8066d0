// Package bridge converts between terse value trees and JSON or CBOR.
package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/formatter"
	"github.com/mcncl/terse/internal/models"
	"github.com/tidwall/jsonc"
)

// KeyStyle selects how JSON object keys are rewritten on import.
type KeyStyle string

const (
	KeyStylePreserve KeyStyle = "preserve"
	KeyStyleCamel    KeyStyle = "camel"
	KeyStylePascal   KeyStyle = "pascal"
	KeyStyleSnake    KeyStyle = "snake"
	KeyStyleKebab    KeyStyle = "kebab"
)

// KeyStyles lists the accepted key styles.
var KeyStyles = []KeyStyle{KeyStylePreserve, KeyStyleCamel, KeyStylePascal, KeyStyleSnake, KeyStyleKebab}

// IsKeyStyle reports whether s names a known key style. Empty means preserve.
func IsKeyStyle(s string) bool {
	if s == "" {
		return true
	}
	for _, style := range KeyStyles {
		if string(style) == s {
			return true
		}
	}
	return false
}

// Options configures JSON import.
type Options struct {
	// AllowComments accepts JSONC: comments and trailing commas.
	AllowComments bool
	// KeyStyle rewrites every object key. Any style other than preserve
	// also turns the result into a valid Name.
	KeyStyle KeyStyle
}

// FromJSON converts a JSON document into a value tree. Member order is kept.
// Numbers containing '.', 'e' or 'E' become floats; other numbers become
// integers unless they overflow int64.
func FromJSON(data []byte, opts Options) (*models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewInputError("JSON input is empty", errors.ErrEmptyInput)
	}
	if opts.AllowComments {
		data = jsonc.ToJSON(data)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSONValue(dec, opts)
	if err != nil {
		return nil, errors.NewConversionError("failed to convert JSON", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return nil, errors.NewConversionError("failed to convert JSON", err)
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder, opts Options) (*models.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readJSONObject(dec, opts)
		case '[':
			return readJSONArray(dec, opts)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return models.String(t), nil
	case json.Number:
		return numberValue(t)
	case bool:
		return models.Bool(t), nil
	case nil:
		return models.Null(), nil
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

func readJSONObject(dec *json.Decoder, opts Options) (*models.Value, error) {
	obj := models.NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		member, err := readJSONValue(dec, opts)
		if err != nil {
			return nil, err
		}
		obj.Set(NormalizeKey(key, opts.KeyStyle), member)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return models.ObjectValue(obj), nil
}

func readJSONArray(dec *json.Decoder, opts Options) (*models.Value, error) {
	arr := models.Array()
	for dec.More() {
		item, err := readJSONValue(dec, opts)
		if err != nil {
			return nil, err
		}
		arr.Append(item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func numberValue(n json.Number) (*models.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return models.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("number %s: %w", s, err)
	}
	return models.Float(f), nil
}

// NormalizeKey rewrites key in the given style. Styled keys that are still
// not valid Names have their invalid characters replaced with '_'.
func NormalizeKey(key string, style KeyStyle) string {
	switch style {
	case KeyStyleCamel:
		key = strcase.ToLowerCamel(key)
	case KeyStylePascal:
		key = strcase.ToCamel(key)
	case KeyStyleSnake:
		key = strcase.ToSnake(key)
	case KeyStyleKebab:
		key = strcase.ToKebab(key)
	default:
		return key
	}
	return SanitizeName(key)
}

// SanitizeName turns s into a valid Name.
func SanitizeName(s string) string {
	if models.IsName(s) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case i == 0 && !models.IsNameStart(c):
			sb.WriteByte('_')
			if models.IsNameChar(c) {
				sb.WriteByte(c)
			}
		case models.IsNameChar(c):
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

// ToJSON renders v as JSON. Object order is kept and whole floats are
// written with a trailing ".0" so they read back as floats. indent > 0
// pretty-prints with that many spaces. NaN and infinities are rejected.
func ToJSON(v *models.Value, indent int) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, errors.NewConversionError("failed to render JSON", err)
	}
	if indent <= 0 {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", strings.Repeat(" ", indent)); err != nil {
		return nil, errors.NewConversionError("failed to indent JSON", err)
	}
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v *models.Value) error {
	switch v.Kind() {
	case models.KindNull:
		buf.WriteString("null")
	case models.KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case models.KindInt:
		i, _ := v.AsInt()
		buf.WriteString(strconv.FormatInt(i, 10))
	case models.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("float %v: %w", f, errors.ErrUnsupportedValue)
		}
		s := formatter.FormatFloat(f)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		buf.WriteString(s)
	case models.KindString:
		s, _ := v.AsString()
		writeJSONString(buf, s)
	case models.KindArray:
		buf.WriteByte('[')
		for i, item := range v.Items() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case models.KindObject:
		buf.WriteByte('{')
		for i, entry := range v.Object().Entries() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, entry.Key)
			buf.WriteByte(':')
			if err := writeJSON(buf, entry.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("kind %s: %w", v.Kind(), errors.ErrUnsupportedValue)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
}
