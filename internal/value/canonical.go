package value

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for identity computation, per
// RFC 8785: object keys sorted by UTF-16 code units, strings NFC normalized,
// no HTML escaping, shortest round-trip number forms. This is the only
// serialization used for batch group keys, so two payloads with the same
// content always hash identically regardless of map iteration order.
func MarshalCanonical(v Raw) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("nil Raw cannot be canonicalized")
	case RawNull:
		return []byte("null"), nil
	case RawString:
		return canonicalString(string(val)), nil
	case RawInt:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case RawFloat:
		return strconv.AppendFloat(nil, float64(val), 'g', -1, 64), nil
	case RawBool:
		return strconv.AppendBool(nil, bool(val)), nil
	case RawList:
		return canonicalList(val)
	case RawMap:
		return canonicalMap(val)
	default:
		return nil, fmt.Errorf("unsupported raw value type: %T", v)
	}
}

func canonicalList(list RawList) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func canonicalMap(m RawMap) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(canonicalString(k))
		buf.WriteByte(':')
		b, err := MarshalCanonical(m[k])
		if err != nil {
			return nil, fmt.Errorf("map[%q]: %w", k, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// canonicalString encodes a string as a JSON literal without HTML escaping.
// The string is NFC normalized first so visually identical keys and values
// share one canonical form.
func canonicalString(s string) []byte {
	s = norm.NFC.String(s)
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, []byte(fmt.Sprintf(`\u%04x`, r))...)
			} else {
				buf = utf8.AppendRune(buf, r)
			}
		}
	}
	return append(buf, '"')
}

// compareKeysUTF16 compares strings by UTF-16 code units as RFC 8785
// requires. Go's native string comparison is UTF-8 byte order, which
// disagrees for characters outside the BMP.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
