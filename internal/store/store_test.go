package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/internal/batch"
	"github.com/quarrydb/quarry/internal/compiler"
	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/resolve"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/store"
	"github.com/quarrydb/quarry/internal/testutil"
	"github.com/quarrydb/quarry/internal/value"
)

func openStore(t *testing.T, s *schema.Schema) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "quarry.db"), s)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func insertUser(t *testing.T, st *store.Store, s *schema.Schema, data value.RawMap) string {
	t.Helper()
	id, err := st.InsertRecord(context.Background(), s.Model("User"), data)
	require.NoError(t, err)
	return id
}

func TestOpen_Reopen(t *testing.T) {
	s := testutil.BlogSchema(t)
	path := filepath.Join(t.TempDir(), "quarry.db")

	st, err := store.Open(path, s)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Reopening an existing database recreates nothing and loses nothing.
	st, err = store.Open(path, s)
	require.NoError(t, err)
	require.NotNil(t, st.DB())
	require.NoError(t, st.Close())
}

func TestInsertRecord_GeneratesIdentity(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)

	id := insertUser(t, st, s, value.RawMap{"name": value.RawString("ada")})
	assert.Len(t, id, 36) // uuid string form

	explicit := insertUser(t, st, s, value.RawMap{
		"id":   value.RawString("u1"),
		"name": value.RawString("grace"),
	})
	assert.Equal(t, "u1", explicit)
}

func TestInsertRecord_Rejections(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	user := s.Model("User")

	_, err := st.InsertRecord(ctx, user, value.RawMap{"ghost": value.RawString("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")

	_, err = st.InsertRecord(ctx, user, value.RawMap{
		"name": value.RawString("ada"),
		"age":  value.RawString("36"),
	})
	var ce *value.CoercionError
	require.ErrorAs(t, err, &ce)

	_, err = st.InsertRecord(ctx, user, value.RawMap{
		"name": value.RawString("ada"),
		"tags": value.RawString("go"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects a list")
}

func TestQueryRecords_Filtered(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	user := s.Model("User")

	insertUser(t, st, s, value.RawMap{
		"id": value.RawString("u1"), "name": value.RawString("ada"), "age": value.RawInt(36),
	})
	insertUser(t, st, s, value.RawMap{
		"id": value.RawString("u2"), "name": value.RawString("grace"), "age": value.RawInt(45),
	})
	insertUser(t, st, s, value.RawMap{
		"id": value.RawString("u3"), "name": value.RawString("alan"),
	})

	expr, err := compiler.New(s).Compile(user, value.RawMap{"age_gt": value.RawInt(40)}, compiler.ModeDefault)
	require.NoError(t, err)

	records, err := st.QueryRecords(ctx, user, expr, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u2", records[0].ID)
	assert.Equal(t, value.TypedString("grace"), records[0].Data["name"])
	assert.Equal(t, value.TypedInt(45), records[0].Data["age"])

	// Unset columns come back as typed nulls.
	expr, err = compiler.New(s).Compile(user, value.RawMap{"age": value.RawNull{}}, compiler.ModeDefault)
	require.NoError(t, err)
	records, err = st.QueryRecords(ctx, user, expr, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u3", records[0].ID)
	assert.Equal(t, value.TypedNull{}, records[0].Data["age"])

	// No matches returns an empty slice, not nil.
	expr, err = compiler.New(s).Compile(user, value.RawMap{"age_gt": value.RawInt(99)}, compiler.ModeDefault)
	require.NoError(t, err)
	records, err = st.QueryRecords(ctx, user, expr, nil)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestQueryRecords_OrderAndPagination(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	user := s.Model("User")

	for _, u := range []struct {
		id  string
		age int64
	}{{"u1", 30}, {"u2", 20}, {"u3", 40}} {
		insertUser(t, st, s, value.RawMap{
			"id": value.RawString(u.id), "name": value.RawString(u.id), "age": value.RawInt(u.age),
		})
	}

	records, err := st.QueryRecords(ctx, user, nil, &filterir.QueryArgs{OrderBy: "age"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "u2", records[0].ID)
	assert.Equal(t, "u1", records[1].ID)
	assert.Equal(t, "u3", records[2].ID)

	records, err = st.QueryRecords(ctx, user, nil, &filterir.QueryArgs{OrderBy: "age", Descending: true, First: 1})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u3", records[0].ID)

	records, err = st.QueryRecords(ctx, user, nil, &filterir.QueryArgs{Skip: 1, After: "u1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u3", records[0].ID)
}

func TestQueryRecords_RelationFilter(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	user := s.Model("User")
	post := s.Model("Post")

	insertUser(t, st, s, value.RawMap{"id": value.RawString("u1"), "name": value.RawString("ada")})
	insertUser(t, st, s, value.RawMap{"id": value.RawString("u2"), "name": value.RawString("grace")})

	_, err := st.InsertRecord(ctx, post, value.RawMap{
		"id": value.RawString("p1"), "title": value.RawString("go tips"), "published": value.RawBool(true),
	})
	require.NoError(t, err)
	require.NoError(t, st.Link(ctx, user, user.Field("posts"), "u1", "p1"))

	expr, err := compiler.New(s).Compile(user, value.RawMap{
		"posts_some": value.RawMap{"published": value.RawBool(true)},
	}, compiler.ModeDefault)
	require.NoError(t, err)

	records, err := st.QueryRecords(ctx, user, expr, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].ID)

	expr, err = compiler.New(s).Compile(user, value.RawMap{
		"posts_none": value.RawMap{"published": value.RawBool(true)},
	}, compiler.ModeDefault)
	require.NoError(t, err)
	records, err = st.QueryRecords(ctx, user, expr, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u2", records[0].ID)
}

func TestQueryRecords_ListElementFilter(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	user := s.Model("User")

	insertUser(t, st, s, value.RawMap{
		"id": value.RawString("u1"), "name": value.RawString("ada"),
		"tags": value.RawList{value.RawString("go"), value.RawString("db")},
	})
	insertUser(t, st, s, value.RawMap{
		"id": value.RawString("u2"), "name": value.RawString("grace"),
		"tags": value.RawList{value.RawString("ml")},
	})

	expr, err := compiler.New(s).Compile(user, value.RawMap{"tags": value.RawString("db")}, compiler.ModeDefault)
	require.NoError(t, err)

	records, err := st.QueryRecords(ctx, user, expr, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].ID)
}

func flushOne(t *testing.T, st *store.Store, d *resolve.Deferred) batch.Result {
	t.Helper()
	c := batch.NewCollector(nil)
	p, err := c.Enqueue(d)
	require.NoError(t, err)
	require.NoError(t, c.Flush(context.Background(), st))
	r, err := p.Wait(context.Background())
	require.NoError(t, err)
	return r
}

func TestFetchGroup_ScalarList(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	user := s.Model("User")
	dispatcher := resolve.NewDispatcher(s)

	insertUser(t, st, s, value.RawMap{
		"id": value.RawString("u1"), "name": value.RawString("ada"),
		"tags": value.RawList{value.RawString("go"), value.RawString("db"), value.RawString("sql")},
	})

	rec := &resolve.Record{Model: "User", ID: "u1", Data: map[string]value.Typed{}}
	res, err := dispatcher.Resolve(rec, user, user.Field("tags"), nil)
	require.NoError(t, err)

	r := flushOne(t, st, res.(*resolve.Deferred))
	// Elements come back in stored position order.
	assert.Equal(t, []value.Typed{
		value.TypedString("go"), value.TypedString("db"), value.TypedString("sql"),
	}, r.Values)
}

func TestFetchGroup_RelationsDemuxByParent(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	user := s.Model("User")
	post := s.Model("Post")
	dispatcher := resolve.NewDispatcher(s)

	insertUser(t, st, s, value.RawMap{"id": value.RawString("u1"), "name": value.RawString("ada")})
	insertUser(t, st, s, value.RawMap{"id": value.RawString("u2"), "name": value.RawString("grace")})

	for _, p := range []struct {
		id, owner string
		views     int64
	}{{"p1", "u1", 10}, {"p2", "u1", 30}, {"p3", "u2", 20}} {
		_, err := st.InsertRecord(ctx, post, value.RawMap{
			"id": value.RawString(p.id), "title": value.RawString(p.id), "views": value.RawInt(p.views),
		})
		require.NoError(t, err)
		require.NoError(t, st.Link(ctx, user, user.Field("posts"), p.owner, p.id))
	}

	c := batch.NewCollector(nil)
	var pendings []*batch.Pending
	for _, id := range []string{"u1", "u2"} {
		rec := &resolve.Record{Model: "User", ID: id, Data: map[string]value.Typed{}}
		res, err := dispatcher.Resolve(rec, user, user.Field("posts"), nil)
		require.NoError(t, err)
		p, err := c.Enqueue(res.(*resolve.Deferred))
		require.NoError(t, err)
		pendings = append(pendings, p)
	}
	require.Equal(t, 1, c.GroupCount())
	require.NoError(t, c.Flush(ctx, st))

	r, err := pendings[0].Wait(ctx)
	require.NoError(t, err)
	require.Len(t, r.Records, 2)
	assert.Equal(t, "p1", r.Records[0].ID)
	assert.Equal(t, "p2", r.Records[1].ID)
	assert.Equal(t, value.TypedInt(10), r.Records[0].Data["views"])

	r, err = pendings[1].Wait(ctx)
	require.NoError(t, err)
	require.Len(t, r.Records, 1)
	assert.Equal(t, "p3", r.Records[0].ID)
}

func TestFetchGroup_ArgsApplyPerParent(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	user := s.Model("User")
	post := s.Model("Post")
	dispatcher := resolve.NewDispatcher(s)

	insertUser(t, st, s, value.RawMap{"id": value.RawString("u1"), "name": value.RawString("ada")})
	insertUser(t, st, s, value.RawMap{"id": value.RawString("u2"), "name": value.RawString("grace")})

	for _, p := range []struct {
		id, owner string
		views     int64
	}{{"p1", "u1", 10}, {"p2", "u1", 30}, {"p3", "u2", 20}, {"p4", "u2", 5}} {
		_, err := st.InsertRecord(ctx, post, value.RawMap{
			"id": value.RawString(p.id), "title": value.RawString(p.id), "views": value.RawInt(p.views),
		})
		require.NoError(t, err)
		require.NoError(t, st.Link(ctx, user, user.Field("posts"), p.owner, p.id))
	}

	args := &filterir.QueryArgs{OrderBy: "views", Descending: true, First: 1}

	c := batch.NewCollector(nil)
	var pendings []*batch.Pending
	for _, id := range []string{"u1", "u2"} {
		rec := &resolve.Record{Model: "User", ID: id, Data: map[string]value.Typed{}}
		res, err := dispatcher.Resolve(rec, user, user.Field("posts"), args)
		require.NoError(t, err)
		p, err := c.Enqueue(res.(*resolve.Deferred))
		require.NoError(t, err)
		pendings = append(pendings, p)
	}
	require.NoError(t, c.Flush(ctx, st))

	// First applies per parent: each gets its own highest-viewed post.
	r, err := pendings[0].Wait(ctx)
	require.NoError(t, err)
	require.Len(t, r.Records, 1)
	assert.Equal(t, "p2", r.Records[0].ID)

	r, err = pendings[1].Wait(ctx)
	require.NoError(t, err)
	require.Len(t, r.Records, 1)
	assert.Equal(t, "p3", r.Records[0].ID)
}

func TestFetchGroup_FilteredFetch(t *testing.T) {
	s := testutil.BlogSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	user := s.Model("User")
	post := s.Model("Post")
	dispatcher := resolve.NewDispatcher(s)

	insertUser(t, st, s, value.RawMap{"id": value.RawString("u1"), "name": value.RawString("ada")})
	for _, p := range []struct {
		id        string
		published bool
	}{{"p1", true}, {"p2", false}} {
		_, err := st.InsertRecord(ctx, post, value.RawMap{
			"id": value.RawString(p.id), "title": value.RawString(p.id), "published": value.RawBool(p.published),
		})
		require.NoError(t, err)
		require.NoError(t, st.Link(ctx, user, user.Field("posts"), "u1", p.id))
	}

	where, err := compiler.New(s).Compile(post, value.RawMap{"published": value.RawBool(true)}, compiler.ModeDefault)
	require.NoError(t, err)

	rec := &resolve.Record{Model: "User", ID: "u1", Data: map[string]value.Typed{}}
	res, err := dispatcher.Resolve(rec, user, user.Field("posts"), &filterir.QueryArgs{Where: where})
	require.NoError(t, err)

	r := flushOne(t, st, res.(*resolve.Deferred))
	require.Len(t, r.Records, 1)
	assert.Equal(t, "p1", r.Records[0].ID)
}
