package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/internal/batch"
	"github.com/quarrydb/quarry/internal/filtersql"
	"github.com/quarrydb/quarry/internal/resolve"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// FetchGroup implements batch.Source: one grouped backend query per
// coalesced fetch, results demultiplexed by parent id.
func (s *Store) FetchGroup(ctx context.Context, g *batch.Group) (map[string]batch.Result, error) {
	if len(g.ParentIDs) == 0 {
		return map[string]batch.Result{}, nil
	}

	switch g.Kind {
	case resolve.FetchScalarList:
		return s.fetchScalarLists(ctx, g)
	case resolve.FetchRelationOne, resolve.FetchRelationMany:
		return s.fetchRelations(ctx, g)
	default:
		return nil, fmt.Errorf("unknown fetch kind %q", g.Kind)
	}
}

func (s *Store) fetchScalarLists(ctx context.Context, g *batch.Group) (map[string]batch.Result, error) {
	parent := s.schema.Model(g.ParentModel)
	if parent == nil {
		return nil, fmt.Errorf("unknown model %q", g.ParentModel)
	}

	stmt := fmt.Sprintf(
		"SELECT parent_id, value FROM %s WHERE parent_id IN (%s) ORDER BY parent_id ASC, position ASC",
		filtersql.ListTableName(parent, g.Field), placeholders(len(g.ParentIDs)))

	rows, err := s.db.QueryContext(ctx, stmt, idParams(g.ParentIDs)...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s elements: %w", g.Field.Name, err)
	}
	defer rows.Close()

	results := make(map[string]batch.Result, len(g.ParentIDs))
	for rows.Next() {
		var parentID string
		var raw any
		if err := rows.Scan(&parentID, &raw); err != nil {
			return nil, fmt.Errorf("scan %s element: %w", g.Field.Name, err)
		}
		tv, err := typedFromSQL(g.Field.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", g.Field.Name, err)
		}
		r := results[parentID]
		r.Values = append(r.Values, tv)
		results[parentID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s elements: %w", g.Field.Name, err)
	}
	return results, nil
}

func (s *Store) fetchRelations(ctx context.Context, g *batch.Group) (map[string]batch.Result, error) {
	parent := s.schema.Model(g.ParentModel)
	related := s.schema.Model(g.Model)
	if parent == nil || related == nil {
		return nil, fmt.Errorf("unknown model in fetch group %s -> %s", g.ParentModel, g.Model)
	}

	relID := filtersql.IDColumn(related)
	cols, fields := childColumns(related)

	var sb strings.Builder
	params := idParams(g.ParentIDs)

	fmt.Fprintf(&sb, "SELECT l.parent_id, %s FROM %s l JOIN %s c ON c.%s = l.child_id WHERE l.parent_id IN (%s)",
		strings.Join(cols, ", "),
		filtersql.LinkTableName(parent, g.Field), filtersql.TableName(related),
		relID, placeholders(len(g.ParentIDs)))

	if g.Args != nil {
		if g.Args.Where != nil {
			cond, p, err := filtersql.New(s.schema).CompileWhere(related, "c", g.Args.Where)
			if err != nil {
				return nil, fmt.Errorf("compile fetch filter: %w", err)
			}
			if cond != "" {
				sb.WriteString(" AND (" + cond + ")")
				params = append(params, p...)
			}
		}
		if g.Args.After != "" {
			fmt.Fprintf(&sb, " AND c.%s > ?", relID)
			params = append(params, g.Args.After)
		}
		if g.Args.Before != "" {
			fmt.Fprintf(&sb, " AND c.%s < ?", relID)
			params = append(params, g.Args.Before)
		}
	}

	sb.WriteString(" ORDER BY l.parent_id ASC")
	if g.Args != nil && g.Args.OrderBy != "" {
		dir := "ASC"
		if g.Args.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, ", c.%s %s", g.Args.OrderBy, dir)
	}
	fmt.Fprintf(&sb, ", c.%s ASC", relID)

	rows, err := s.db.QueryContext(ctx, sb.String(), params...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s relations: %w", g.Field.Name, err)
	}
	defer rows.Close()

	results := make(map[string]batch.Result, len(g.ParentIDs))
	for rows.Next() {
		values := make([]any, len(cols)+1)
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s relation: %w", g.Field.Name, err)
		}

		parentID, ok := sqlText(values[0])
		if !ok {
			return nil, fmt.Errorf("link parent_id is not text")
		}
		rec, err := childRecord(related, fields, values[1:])
		if err != nil {
			return nil, err
		}

		r := results[parentID]
		r.Records = append(r.Records, rec)
		results[parentID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s relations: %w", g.Field.Name, err)
	}

	// Skip/first bounds apply per parent, not to the grouped result set.
	if g.Args != nil && (g.Args.Skip > 0 || g.Args.First > 0) {
		for parentID, r := range results {
			r.Records = window(r.Records, g.Args.Skip, g.Args.First)
			results[parentID] = r
		}
	}
	return results, nil
}

// childColumns returns the qualified select list for a related model's
// inline columns and the fields they map to, identity first.
func childColumns(m *schema.Model) ([]string, []*schema.Field) {
	idCol := filtersql.IDColumn(m)
	cols := []string{"c." + idCol}
	fields := []*schema.Field{nil} // identity handled specially

	for i := range m.Fields {
		f := &m.Fields[i]
		if !f.IsScalar() || f.IsList || f.IsID {
			continue
		}
		cols = append(cols, "c."+filtersql.ColumnName(f))
		fields = append(fields, f)
	}
	return cols, fields
}

func childRecord(m *schema.Model, fields []*schema.Field, values []any) (*resolve.Record, error) {
	rec := &resolve.Record{Model: m.Name, Data: make(map[string]value.Typed, len(fields))}
	for i, f := range fields {
		if f == nil {
			id, ok := sqlText(values[i])
			if !ok {
				return nil, fmt.Errorf("model %s: identity column is not text", m.Name)
			}
			rec.ID = id
			if idField := m.IDField(); idField != nil {
				rec.Data[idField.Name] = value.TypedID(id)
			}
			continue
		}
		tv, err := typedFromSQL(f.Type, values[i])
		if err != nil {
			return nil, fmt.Errorf("model %s: field %s: %w", m.Name, f.Name, err)
		}
		rec.Data[f.Name] = tv
	}
	return rec, nil
}

func window(records []*resolve.Record, skip, first int) []*resolve.Record {
	if skip > 0 {
		if skip >= len(records) {
			return nil
		}
		records = records[skip:]
	}
	if first > 0 && first < len(records) {
		records = records[:first]
	}
	return records
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idParams(ids []string) []any {
	params := make([]any, len(ids))
	for i, id := range ids {
		params[i] = id
	}
	return params
}
