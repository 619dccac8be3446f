package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/value"
)

func userModel() *Model {
	return &Model{
		Name: "User",
		Fields: []Field{
			{Name: "id", Kind: KindScalar, Type: value.TypeID, IsID: true},
			{Name: "name", Kind: KindScalar, Type: value.TypeString},
			{Name: "posts", Kind: KindRelation, RelatedModel: "Post", IsList: true},
		},
	}
}

func postModel() *Model {
	return &Model{
		Name: "Post",
		Fields: []Field{
			{Name: "id", Kind: KindScalar, Type: value.TypeID, IsID: true},
			{Name: "title", Kind: KindScalar, Type: value.TypeString},
		},
	}
}

func TestNew_Valid(t *testing.T) {
	s, err := New(userModel(), postModel())
	require.NoError(t, err)

	m := s.Model("User")
	require.NotNil(t, m)
	assert.Equal(t, "User", m.Name)
	assert.Nil(t, s.Model("Account"))

	names := make([]string, 0)
	for _, m := range s.Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Post", "User"}, names)
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		models  []*Model
		wantErr string
	}{
		{
			"duplicate model",
			[]*Model{postModel(), postModel()},
			"duplicate model",
		},
		{
			"duplicate field",
			[]*Model{{Name: "M", Fields: []Field{
				{Name: "a", Kind: KindScalar, Type: value.TypeString},
				{Name: "a", Kind: KindScalar, Type: value.TypeInt},
			}}},
			"duplicate field",
		},
		{
			"multiple identity fields",
			[]*Model{{Name: "M", Fields: []Field{
				{Name: "a", Kind: KindScalar, Type: value.TypeID, IsID: true},
				{Name: "b", Kind: KindScalar, Type: value.TypeID, IsID: true},
			}}},
			"multiple identity fields",
		},
		{
			"relation to unknown model",
			[]*Model{{Name: "M", Fields: []Field{
				{Name: "r", Kind: KindRelation, RelatedModel: "Ghost"},
			}}},
			"unknown model",
		},
		{
			"unknown scalar type",
			[]*Model{{Name: "M", Fields: []Field{
				{Name: "a", Kind: KindScalar, Type: "Decimal"},
			}}},
			"unknown scalar type",
		},
		{
			"enum without members",
			[]*Model{{Name: "M", Fields: []Field{
				{Name: "a", Kind: KindScalar, Type: value.TypeEnum},
			}}},
			"enum field without members",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.models...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestModel_Lookups(t *testing.T) {
	m := userModel()

	f := m.Field("posts")
	require.NotNil(t, f)
	assert.True(t, f.IsRelation())
	assert.True(t, f.IsVisible())
	assert.Nil(t, m.Field("ghost"))

	id := m.IDField()
	require.NotNil(t, id)
	assert.Equal(t, "id", id.Name)

	scalars := m.ScalarFields()
	require.Len(t, scalars, 2)
	assert.Equal(t, "id", scalars[0].Name)
	assert.Equal(t, "name", scalars[1].Name)
}
