// Package testutil provides the shared schema fixture used across package
// tests.
package testutil

import (
	"testing"

	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// BlogSchema returns a small blog-shaped schema exercising every field
// shape: scalars of each type, a scalar list, enum members, hidden fields,
// to-one and to-many relations.
func BlogSchema(t testing.TB) *schema.Schema {
	t.Helper()

	user := &schema.Model{
		Name: "User",
		Fields: []schema.Field{
			{Name: "id", Kind: schema.KindScalar, Type: value.TypeID, IsID: true, IsUnique: true, IsRequired: true},
			{Name: "name", Kind: schema.KindScalar, Type: value.TypeString, IsRequired: true},
			{Name: "email", Kind: schema.KindScalar, Type: value.TypeString, IsUnique: true},
			{Name: "age", Kind: schema.KindScalar, Type: value.TypeInt},
			{Name: "score", Kind: schema.KindScalar, Type: value.TypeFloat},
			{Name: "active", Kind: schema.KindScalar, Type: value.TypeBoolean},
			{Name: "role", Kind: schema.KindScalar, Type: value.TypeEnum, EnumValues: []string{"ADMIN", "MEMBER"}},
			{Name: "signed_up", Kind: schema.KindScalar, Type: value.TypeDateTime},
			{Name: "settings", Kind: schema.KindScalar, Type: value.TypeJSON},
			{Name: "password_hash", Kind: schema.KindScalar, Type: value.TypeString, IsHidden: true},
			{Name: "tags", Kind: schema.KindScalar, Type: value.TypeString, IsList: true},
			{Name: "posts", Kind: schema.KindRelation, RelatedModel: "Post", RelationName: "UserPosts", IsList: true},
			{Name: "manager", Kind: schema.KindRelation, RelatedModel: "User", RelationName: "UserManager"},
		},
	}

	post := &schema.Model{
		Name: "Post",
		Fields: []schema.Field{
			{Name: "id", Kind: schema.KindScalar, Type: value.TypeID, IsID: true, IsUnique: true, IsRequired: true},
			{Name: "title", Kind: schema.KindScalar, Type: value.TypeString, IsRequired: true},
			{Name: "views", Kind: schema.KindScalar, Type: value.TypeInt},
			{Name: "published", Kind: schema.KindScalar, Type: value.TypeBoolean},
			{Name: "author", Kind: schema.KindRelation, RelatedModel: "User", RelationName: "PostAuthor"},
			{Name: "comments", Kind: schema.KindRelation, RelatedModel: "Comment", RelationName: "PostComments", IsList: true},
		},
	}

	comment := &schema.Model{
		Name: "Comment",
		Fields: []schema.Field{
			{Name: "id", Kind: schema.KindScalar, Type: value.TypeID, IsID: true, IsUnique: true, IsRequired: true},
			{Name: "body", Kind: schema.KindScalar, Type: value.TypeString},
			{Name: "post", Kind: schema.KindRelation, RelatedModel: "Post", RelationName: "CommentPost"},
		},
	}

	s, err := schema.New(user, post, comment)
	if err != nil {
		t.Fatalf("build fixture schema: %v", err)
	}
	return s
}
