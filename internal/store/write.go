package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/quarrydb/quarry/internal/filtersql"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// InsertRecord writes one record from a raw mapping. Scalar values coerce
// through the value package before touching SQL; list fields go to their
// side tables; relation fields accept a child id or list of child ids and
// become link rows. Returns the record's identity, generating a uuid when
// the input carries none.
func (s *Store) InsertRecord(ctx context.Context, model *schema.Model, data value.RawMap) (string, error) {
	idCol := filtersql.IDColumn(model)

	id := uuid.NewString()
	if raw, ok := data[idCol]; ok {
		rs, ok := raw.(value.RawString)
		if !ok {
			return "", fmt.Errorf("model %s: identity must be a string", model.Name)
		}
		id = string(rs)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	cols := []string{idCol}
	params := []any{id}

	// Deterministic column order keeps statements cacheable and tests stable.
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	type listWrite struct {
		field *schema.Field
		list  value.RawList
	}
	type linkWrite struct {
		field    *schema.Field
		childIDs []string
	}
	var lists []listWrite
	var links []linkWrite

	for _, name := range names {
		if name == idCol {
			continue
		}
		field := model.Field(name)
		if field == nil {
			return "", fmt.Errorf("model %s: unknown field %q", model.Name, name)
		}
		raw := data[name]

		switch {
		case field.IsRelation():
			ids, err := childIDs(model, field, raw)
			if err != nil {
				return "", err
			}
			links = append(links, linkWrite{field: field, childIDs: ids})

		case field.IsList:
			list, ok := raw.(value.RawList)
			if !ok {
				return "", fmt.Errorf("model %s: field %s expects a list", model.Name, name)
			}
			if _, err := value.Coerce(name, list, field.Type, true); err != nil {
				return "", err
			}
			lists = append(lists, listWrite{field: field, list: list})

		default:
			tv, err := value.Coerce(name, raw, field.Type, false)
			if err != nil {
				return "", err
			}
			param, ok := value.SQLParam(tv)
			if !ok {
				return "", fmt.Errorf("model %s: field %s has no SQL parameter form", model.Name, name)
			}
			cols = append(cols, filtersql.ColumnName(field))
			params = append(params, param)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		filtersql.TableName(model), strings.Join(cols, ", "), placeholders)
	if _, err := tx.ExecContext(ctx, stmt, params...); err != nil {
		return "", fmt.Errorf("insert %s: %w", model.Name, err)
	}

	for _, lw := range lists {
		table := filtersql.ListTableName(model, lw.field)
		for pos, elem := range lw.list {
			tv, err := value.Coerce(lw.field.Name, elem, lw.field.Type, false)
			if err != nil {
				return "", err
			}
			param, _ := value.SQLParam(tv)
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("INSERT INTO %s (parent_id, position, value) VALUES (?, ?, ?)", table),
				id, pos, param); err != nil {
				return "", fmt.Errorf("insert %s elements: %w", lw.field.Name, err)
			}
		}
	}

	for _, lk := range links {
		table := filtersql.LinkTableName(model, lk.field)
		for _, childID := range lk.childIDs {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("INSERT INTO %s (parent_id, child_id) VALUES (?, ?)", table),
				id, childID); err != nil {
				return "", fmt.Errorf("link %s: %w", lk.field.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit insert: %w", err)
	}
	return id, nil
}

// Link records an existing parent/child relation row.
func (s *Store) Link(ctx context.Context, model *schema.Model, field *schema.Field, parentID, childID string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s (parent_id, child_id) VALUES (?, ?)",
			filtersql.LinkTableName(model, field)),
		parentID, childID)
	return err
}

func childIDs(model *schema.Model, field *schema.Field, raw value.Raw) ([]string, error) {
	switch v := raw.(type) {
	case value.RawString:
		return []string{string(v)}, nil
	case value.RawList:
		ids := make([]string, len(v))
		for i, elem := range v {
			rs, ok := elem.(value.RawString)
			if !ok {
				return nil, fmt.Errorf("model %s: field %s expects child id strings", model.Name, field.Name)
			}
			ids[i] = string(rs)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("model %s: field %s expects a child id or list of child ids", model.Name, field.Name)
	}
}
