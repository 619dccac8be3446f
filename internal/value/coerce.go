package value

import (
	"fmt"
	"time"
)

// CoercionError reports a raw value that cannot convert to a field's
// declared scalar type. Coercion never truncates or guesses: anything
// outside the accepted shapes for a type fails with this error.
type CoercionError struct {
	Field    string // Field name the value was destined for
	Expected Type   // Declared scalar type
	Raw      Raw    // Offending raw value
	Reason   string
}

// Error implements the error interface.
func (e *CoercionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("cannot coerce value for field %q to %s: %s", e.Field, e.Expected, e.Reason)
	}
	return fmt.Sprintf("cannot coerce value to %s: %s", e.Expected, e.Reason)
}

// Coerce converts a raw value to the typed representation of a scalar type.
// When isList is set the raw value must be a RawList and elements coerce
// individually, producing a TypedList.
//
// Accepted shapes per type:
//   - String, ID, Enum: RawString only (enum membership is the caller's check)
//   - Int: RawInt only - numeric strings and floats are rejected
//   - Float: RawFloat or RawInt (widening, exact)
//   - Boolean: RawBool only
//   - DateTime: RawString in RFC 3339 form
//   - Json: any raw shape, preserved as-is
//   - RawNull: TypedNull for any type (nullability is the caller's check)
//
// Pure function of its inputs.
func Coerce(field string, raw Raw, t Type, isList bool) (Typed, error) {
	if isList {
		list, ok := raw.(RawList)
		if !ok {
			return nil, &CoercionError{Field: field, Expected: t, Raw: raw,
				Reason: fmt.Sprintf("expected a list, got %s", shapeName(raw))}
		}
		out := make(TypedList, len(list))
		for i, elem := range list {
			tv, err := Coerce(field, elem, t, false)
			if err != nil {
				return nil, err
			}
			out[i] = tv
		}
		return out, nil
	}

	if _, ok := raw.(RawNull); ok {
		return TypedNull{}, nil
	}

	switch t {
	case TypeString:
		if s, ok := raw.(RawString); ok {
			return TypedString(s), nil
		}
	case TypeID:
		if s, ok := raw.(RawString); ok {
			return TypedID(s), nil
		}
	case TypeEnum:
		if s, ok := raw.(RawString); ok {
			return TypedEnum(s), nil
		}
	case TypeInt:
		if n, ok := raw.(RawInt); ok {
			return TypedInt(n), nil
		}
	case TypeFloat:
		switch n := raw.(type) {
		case RawFloat:
			return TypedFloat(n), nil
		case RawInt:
			return TypedFloat(float64(n)), nil
		}
	case TypeBoolean:
		if b, ok := raw.(RawBool); ok {
			return TypedBool(b), nil
		}
	case TypeDateTime:
		s, ok := raw.(RawString)
		if !ok {
			break
		}
		ts, err := time.Parse(time.RFC3339Nano, string(s))
		if err != nil {
			return nil, &CoercionError{Field: field, Expected: t, Raw: raw,
				Reason: fmt.Sprintf("invalid RFC 3339 timestamp: %v", err)}
		}
		return TypedDateTime(ts), nil
	case TypeJSON:
		return TypedJSON{Value: raw}, nil
	default:
		return nil, &CoercionError{Field: field, Expected: t, Raw: raw,
			Reason: fmt.Sprintf("unknown scalar type %q", t)}
	}

	return nil, &CoercionError{Field: field, Expected: t, Raw: raw,
		Reason: fmt.Sprintf("%s is not convertible to %s", shapeName(raw), t)}
}

// shapeName names a raw shape for error messages.
func shapeName(v Raw) string {
	switch v.(type) {
	case RawString:
		return "string"
	case RawInt:
		return "int"
	case RawFloat:
		return "float"
	case RawBool:
		return "bool"
	case RawNull:
		return "null"
	case RawList:
		return "list"
	case RawMap:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
