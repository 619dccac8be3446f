package compiler_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/compiler"
	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/testutil"
	"github.com/quarrydb/quarry/internal/value"
)

// Golden files pin the compiled tree shape for representative filters.
// Canonical serialization keeps the bytes stable across runs.
func TestCompile_Golden(t *testing.T) {
	s := testutil.BlogSchema(t)
	c := compiler.New(s)

	cases := []struct {
		name  string
		model string
		input value.RawMap
	}{
		{
			name:  "logical_and",
			model: "User",
			input: value.RawMap{
				"age_gt":  value.RawInt(5),
				"age_lte": value.RawInt(10),
			},
		},
		{
			name:  "relation_some",
			model: "User",
			input: value.RawMap{
				"posts_some": value.RawMap{
					"published":      value.RawBool(true),
					"title_contains": value.RawString("go"),
				},
			},
		},
		{
			name:  "scalar_list_in",
			model: "User",
			input: value.RawMap{
				"tags_in": value.RawList{value.RawString("go"), value.RawString("db")},
			},
		},
		{
			name:  "relation_null",
			model: "User",
			input: value.RawMap{"manager": value.RawNull{}},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := c.Compile(s.Model(tc.model), tc.input, compiler.ModeDefault)
			require.NoError(t, err)

			raw, err := value.FromAny(filterir.ToJSON(expr))
			require.NoError(t, err)
			out, err := value.MarshalCanonical(raw)
			require.NoError(t, err)

			g.Assert(t, tc.name, out)
		})
	}
}
