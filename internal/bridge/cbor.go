package bridge

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/models"
)

// cborEncMode uses Core Deterministic Encoding: map keys are sorted, so the
// same tree always produces the same bytes. Object order is not kept.
var cborEncMode cbor.EncMode

// cborDecMode decodes maps into map[string]any.
var cborDecMode cbor.DecMode

func init() {
	var err error

	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bridge: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("bridge: CBOR decoder initialization failed: " + err.Error())
	}
}

// ToCBOR encodes v as deterministic CBOR. Integers and floats keep their
// distinct major types.
func ToCBOR(v *models.Value) ([]byte, error) {
	data, err := cborEncMode.Marshal(v.Native())
	if err != nil {
		return nil, errors.NewConversionError("failed to encode CBOR", err)
	}
	return data, nil
}

// FromCBOR decodes a CBOR item into a value tree. Map keys come back in
// sorted order. Byte strings, tags and integers beyond int64 are rejected.
func FromCBOR(data []byte) (*models.Value, error) {
	if len(data) == 0 {
		return nil, errors.NewInputError("CBOR input is empty", errors.ErrEmptyInput)
	}
	var native any
	if err := cborDecMode.Unmarshal(data, &native); err != nil {
		return nil, errors.NewConversionError("failed to decode CBOR", err)
	}
	v, err := FromNative(native)
	if err != nil {
		return nil, errors.NewConversionError("failed to decode CBOR", err)
	}
	return v, nil
}

// FromNative converts a generic Go value, as produced by Value.Native or a
// JSON or CBOR decoder targeting any, into a value tree.
func FromNative(native any) (*models.Value, error) {
	switch t := native.(type) {
	case nil:
		return models.Null(), nil
	case bool:
		return models.Bool(t), nil
	case int64:
		return models.Int(t), nil
	case int:
		return models.Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d: %w", t, errors.ErrUnsupportedValue)
		}
		return models.Int(int64(t)), nil
	case float64:
		return models.Float(t), nil
	case float32:
		return models.Float(float64(t)), nil
	case string:
		return models.String(t), nil
	case []any:
		arr := models.Array()
		for _, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return nil, err
			}
			arr.Append(v)
		}
		return arr, nil
	case map[string]any:
		obj := models.NewObject()
		for _, key := range slices.Sorted(maps.Keys(t)) {
			v, err := FromNative(t[key])
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return models.ObjectValue(obj), nil
	}
	return nil, fmt.Errorf("%T: %w", native, errors.ErrUnsupportedValue)
}
