package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/value"
)

const blogYAML = `
models:
  - name: User
    fields:
      - {name: id, type: ID, id: true, unique: true, required: true}
      - {name: name, type: String, required: true}
      - {name: role, type: Enum, values: [ADMIN, MEMBER]}
      - {name: password_hash, type: String, hidden: true}
      - {name: tags, type: String, list: true}
      - {name: posts, relation: Post, relationName: UserPosts, list: true}
  - name: Post
    fields:
      - {name: id, type: ID, id: true}
      - {name: title, type: String}
      - {name: author, relation: User, relationName: PostAuthor}
`

func TestLoadYAML(t *testing.T) {
	s, err := LoadYAML([]byte(blogYAML))
	require.NoError(t, err)

	user := s.Model("User")
	require.NotNil(t, user)

	id := user.Field("id")
	require.NotNil(t, id)
	assert.True(t, id.IsID)
	assert.True(t, id.IsUnique)
	assert.True(t, id.IsRequired)
	assert.Equal(t, value.TypeID, id.Type)

	role := user.Field("role")
	require.NotNil(t, role)
	assert.Equal(t, value.TypeEnum, role.Type)
	assert.Equal(t, []string{"ADMIN", "MEMBER"}, role.EnumValues)

	assert.True(t, user.Field("password_hash").IsHidden)
	assert.True(t, user.Field("tags").IsList)

	posts := user.Field("posts")
	require.NotNil(t, posts)
	assert.True(t, posts.IsRelation())
	assert.True(t, posts.IsList)
	assert.Equal(t, "Post", posts.RelatedModel)
	assert.Equal(t, "UserPosts", posts.RelationName)

	author := s.Model("Post").Field("author")
	require.NotNil(t, author)
	assert.False(t, author.IsList)
	assert.Equal(t, "User", author.RelatedModel)
}

func TestLoadYAML_Errors(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"empty document", `{}`, "no models"},
		{"nameless field", "models:\n  - name: M\n    fields:\n      - {type: String}\n", "without a name"},
		{"type and relation", "models:\n  - name: M\n    fields:\n      - {name: f, type: String, relation: M}\n", "both type and relation"},
		{"neither type nor relation", "models:\n  - name: M\n    fields:\n      - {name: f}\n", "neither type nor relation"},
		{"not yaml", `: [`, "parse schema yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadYAML([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
