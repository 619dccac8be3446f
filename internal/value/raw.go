package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Raw is a sealed interface over the shapes an untyped filter payload may
// contain. Only RawString, RawInt, RawFloat, RawBool, RawNull, RawList and
// RawMap implement it. Deciding the shape once at the boundary lets every
// downstream consumer switch exhaustively instead of casting.
type Raw interface {
	rawValue() // Sealed - only types in this package implement it
}

// RawString is a string value in a raw payload.
type RawString string

func (RawString) rawValue() {}

// RawInt is an integral number. Decoding distinguishes integers from floats
// via json.Number; the two never collapse into one another.
type RawInt int64

func (RawInt) rawValue() {}

// RawFloat is a non-integral number.
type RawFloat float64

func (RawFloat) rawValue() {}

// RawBool is a boolean value.
type RawBool bool

func (RawBool) rawValue() {}

// RawNull is an explicit null. Presence of null is distinct from absence of
// the key, which is represented by the key simply not being in the RawMap.
type RawNull struct{}

func (RawNull) rawValue() {}

// MarshalJSON implements json.Marshaler for RawNull.
func (RawNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// RawList is an ordered sequence of raw values.
type RawList []Raw

func (RawList) rawValue() {}

// RawMap is a string-keyed mapping of raw values. Filter payloads arrive as
// a RawMap at the top level.
type RawMap map[string]Raw

func (RawMap) rawValue() {}

// DecodeJSON decodes a JSON document into the Raw union. Numbers are decoded
// through json.Number so integers stay RawInt and only genuine fractional or
// exponent forms become RawFloat.
func DecodeJSON(data []byte) (Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return FromAny(v)
}

// DecodeJSONMap decodes a JSON document that must be an object.
func DecodeJSONMap(data []byte) (RawMap, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(RawMap)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return m, nil
}

// FromAny converts a decoded Go value into the Raw union.
// Accepts the types produced by encoding/json with UseNumber plus native
// Go primitives for programmatic construction.
func FromAny(v any) (Raw, error) {
	switch val := v.(type) {
	case nil:
		return RawNull{}, nil
	case Raw:
		return val, nil
	case bool:
		return RawBool(val), nil
	case string:
		return RawString(val), nil
	case int:
		return RawInt(val), nil
	case int64:
		return RawInt(val), nil
	case float64:
		return RawFloat(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			f, err := val.Float64()
			if err != nil {
				return nil, fmt.Errorf("number out of float64 range: %s", s)
			}
			return RawFloat(f), nil
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return RawInt(n), nil
	case []any:
		list := make(RawList, len(val))
		for i, elem := range val {
			r, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = r
		}
		return list, nil
	case map[string]any:
		m := make(RawMap, len(val))
		for k, elem := range val {
			r, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			m[k] = r
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported raw value type: %T", v)
	}
}

// MarshalJSON implements json.Marshaler for RawMap.
func (m RawMap) MarshalJSON() ([]byte, error) {
	plain := make(map[string]any, len(m))
	for k, v := range m {
		plain[k] = rawToAny(v)
	}
	return json.Marshal(plain)
}

// ToAny converts a Raw back to plain Go values, for JSON output and logging.
func ToAny(v Raw) any {
	return rawToAny(v)
}

func rawToAny(v Raw) any {
	switch val := v.(type) {
	case RawString:
		return string(val)
	case RawInt:
		return int64(val)
	case RawFloat:
		return float64(val)
	case RawBool:
		return bool(val)
	case RawNull:
		return nil
	case RawList:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = rawToAny(elem)
		}
		return out
	case RawMap:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = rawToAny(elem)
		}
		return out
	default:
		return nil
	}
}
