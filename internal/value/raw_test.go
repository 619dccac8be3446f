package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_Shapes(t *testing.T) {
	raw, err := DecodeJSON([]byte(`{"name": "ada", "age": 36, "score": 1.5, "active": true, "bio": null, "tags": ["a", "b"]}`))
	require.NoError(t, err)

	m, ok := raw.(RawMap)
	require.True(t, ok)

	assert.Equal(t, RawString("ada"), m["name"])
	assert.Equal(t, RawInt(36), m["age"])
	assert.Equal(t, RawFloat(1.5), m["score"])
	assert.Equal(t, RawBool(true), m["active"])
	assert.Equal(t, RawNull{}, m["bio"])
	assert.Equal(t, RawList{RawString("a"), RawString("b")}, m["tags"])
}

func TestDecodeJSON_IntStaysInt(t *testing.T) {
	raw, err := DecodeJSON([]byte(`36`))
	require.NoError(t, err)
	assert.Equal(t, RawInt(36), raw)
}

func TestDecodeJSON_ExponentIsFloat(t *testing.T) {
	raw, err := DecodeJSON([]byte(`1e3`))
	require.NoError(t, err)
	assert.Equal(t, RawFloat(1000), raw)
}

func TestDecodeJSON_NestedMaps(t *testing.T) {
	raw, err := DecodeJSON([]byte(`{"posts_some": {"title": "x"}}`))
	require.NoError(t, err)

	m := raw.(RawMap)
	nested, ok := m["posts_some"].(RawMap)
	require.True(t, ok)
	assert.Equal(t, RawString("x"), nested["title"])
}

func TestDecodeJSONMap_RejectsNonObject(t *testing.T) {
	_, err := DecodeJSONMap([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestFromAny_RejectsUnsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.Error(t, err)
}

func TestToAny_RoundTrip(t *testing.T) {
	m := RawMap{
		"n":    RawInt(1),
		"list": RawList{RawBool(false), RawNull{}},
	}
	back, err := FromAny(ToAny(m))
	require.NoError(t, err)
	assert.Equal(t, m, back)
}
