package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/value"
)

const blogCUE = `
models: {
	User: fields: {
		id:    {type: "ID", id: true, unique: true}
		name:  {type: "String", required: true}
		role:  {type: "Enum", values: ["ADMIN", "MEMBER"]}
		posts: {relation: "Post", relationName: "UserPosts", list: true}
	}
	Post: fields: {
		id:     {type: "ID", id: true}
		title:  {type: "String"}
		author: {relation: "User", relationName: "PostAuthor"}
	}
}
`

func TestLoadCUE(t *testing.T) {
	s, err := LoadCUE([]byte(blogCUE))
	require.NoError(t, err)

	user := s.Model("User")
	require.NotNil(t, user)

	id := user.Field("id")
	require.NotNil(t, id)
	assert.True(t, id.IsID)
	assert.True(t, id.IsUnique)

	role := user.Field("role")
	require.NotNil(t, role)
	assert.Equal(t, value.TypeEnum, role.Type)
	assert.Equal(t, []string{"ADMIN", "MEMBER"}, role.EnumValues)

	posts := user.Field("posts")
	require.NotNil(t, posts)
	assert.True(t, posts.IsRelation())
	assert.True(t, posts.IsList)
	assert.Equal(t, "Post", posts.RelatedModel)

	assert.True(t, s.Model("Post").Field("name") == nil)
	require.NotNil(t, s.Model("Post").Field("author"))
}

func TestLoadCUE_MissingModels(t *testing.T) {
	_, err := LoadCUE([]byte(`other: 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models")
}

func TestLoadCUE_MissingFields(t *testing.T) {
	_, err := LoadCUE([]byte(`models: User: {}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing fields")
}

func TestLoadCUE_CompileError(t *testing.T) {
	_, err := LoadCUE([]byte(`models: {`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema cue")
}

func TestLoadCUE_BothTypeAndRelation(t *testing.T) {
	_, err := LoadCUE([]byte(`models: M: fields: f: {type: "String", relation: "M"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both type and relation")
}
