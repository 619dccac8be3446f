package value

import (
	"strconv"
	"time"
)

// Type tags the scalar types a schema field may declare.
type Type string

// Scalar type tags.
const (
	TypeString   Type = "String"
	TypeInt      Type = "Int"
	TypeFloat    Type = "Float"
	TypeBoolean  Type = "Boolean"
	TypeID       Type = "ID"
	TypeDateTime Type = "DateTime"
	TypeJSON     Type = "Json"
	TypeEnum     Type = "Enum"
)

// ValidTypes enumerates the allowed scalar type tags.
var ValidTypes = map[Type]bool{
	TypeString:   true,
	TypeInt:      true,
	TypeFloat:    true,
	TypeBoolean:  true,
	TypeID:       true,
	TypeDateTime: true,
	TypeJSON:     true,
	TypeEnum:     true,
}

// Typed is a sealed interface over schema-typed values. Only the coercion
// engine constructs Typed values; nothing else builds them from raw input.
type Typed interface {
	typedValue() // Sealed - only types in this package implement it
}

// TypedString is a coerced String value.
type TypedString string

func (TypedString) typedValue() {}

// TypedInt is a coerced Int value.
type TypedInt int64

func (TypedInt) typedValue() {}

// TypedFloat is a coerced Float value.
type TypedFloat float64

func (TypedFloat) typedValue() {}

// TypedBool is a coerced Boolean value.
type TypedBool bool

func (TypedBool) typedValue() {}

// TypedID is a coerced ID value.
type TypedID string

func (TypedID) typedValue() {}

// TypedDateTime is a coerced DateTime value.
type TypedDateTime time.Time

func (TypedDateTime) typedValue() {}

// TypedEnum is a coerced enum member.
type TypedEnum string

func (TypedEnum) typedValue() {}

// TypedJSON carries an arbitrary raw document for Json-typed fields.
// The raw shape is preserved as-is; Json fields place no constraint on it.
type TypedJSON struct {
	Value Raw
}

func (TypedJSON) typedValue() {}

// TypedNull is a typed null, produced when raw null coerces against a
// nullable field.
type TypedNull struct{}

func (TypedNull) typedValue() {}

// TypedList is an element-wise coerced list.
type TypedList []Typed

func (TypedList) typedValue() {}

// ToRaw converts a Typed value back into the Raw union. Used when
// re-serializing a compiled expression into its raw input form.
func ToRaw(v Typed) Raw {
	switch val := v.(type) {
	case TypedString:
		return RawString(val)
	case TypedInt:
		return RawInt(val)
	case TypedFloat:
		return RawFloat(val)
	case TypedBool:
		return RawBool(val)
	case TypedID:
		return RawString(val)
	case TypedEnum:
		return RawString(val)
	case TypedDateTime:
		return RawString(time.Time(val).UTC().Format(time.RFC3339Nano))
	case TypedJSON:
		return val.Value
	case TypedNull:
		return RawNull{}
	case TypedList:
		out := make(RawList, len(val))
		for i, elem := range val {
			out[i] = ToRaw(elem)
		}
		return out
	default:
		return RawNull{}
	}
}

// SQLParam converts a Typed value to a Go native type suitable as a SQL
// parameter. Lists and Json documents are not direct parameters; callers
// expand lists into placeholder sets and serialize Json themselves.
func SQLParam(v Typed) (any, bool) {
	switch val := v.(type) {
	case TypedString:
		return string(val), true
	case TypedInt:
		return int64(val), true
	case TypedFloat:
		return float64(val), true
	case TypedBool:
		return bool(val), true
	case TypedID:
		return string(val), true
	case TypedEnum:
		return string(val), true
	case TypedDateTime:
		return time.Time(val).UTC().Format(time.RFC3339Nano), true
	case TypedNull:
		return nil, true
	default:
		return nil, false
	}
}

// GoString renders a Typed value for diagnostics.
func GoString(v Typed) string {
	switch val := v.(type) {
	case TypedString:
		return strconv.Quote(string(val))
	case TypedInt:
		return strconv.FormatInt(int64(val), 10)
	case TypedFloat:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case TypedBool:
		return strconv.FormatBool(bool(val))
	case TypedID:
		return strconv.Quote(string(val))
	case TypedEnum:
		return string(val)
	case TypedDateTime:
		return time.Time(val).UTC().Format(time.RFC3339Nano)
	case TypedNull:
		return "null"
	case TypedList:
		s := "["
		for i, elem := range val {
			if i > 0 {
				s += ", "
			}
			s += GoString(elem)
		}
		return s + "]"
	case TypedJSON:
		return "<json>"
	default:
		return "<unknown>"
	}
}
