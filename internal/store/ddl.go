package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/internal/filtersql"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// ensureTables creates the tables backing every model: one record table per
// model, a side table per scalar list field, a link table per relation
// field. All statements are CREATE TABLE IF NOT EXISTS so reopening an
// existing database is a no-op.
func (s *Store) ensureTables(ctx context.Context) error {
	for _, m := range s.schema.Models() {
		for _, stmt := range modelDDL(m) {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("model %s: %w", m.Name, err)
			}
		}
	}
	return nil
}

func modelDDL(m *schema.Model) []string {
	idCol := filtersql.IDColumn(m)

	cols := []string{fmt.Sprintf("%s TEXT PRIMARY KEY", idCol)}
	for _, f := range m.Fields {
		if !f.IsScalar() || f.IsList || f.IsID {
			continue
		}
		col := fmt.Sprintf("%s %s", filtersql.ColumnName(&f), columnAffinity(f.Type))
		if f.IsRequired {
			col += " NOT NULL"
		}
		if f.IsUnique {
			col += " UNIQUE"
		}
		cols = append(cols, col)
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		filtersql.TableName(m), strings.Join(cols, ", "))}

	for i := range m.Fields {
		f := &m.Fields[i]
		switch {
		case f.IsScalar() && f.IsList:
			stmts = append(stmts, fmt.Sprintf(
				"CREATE TABLE IF NOT EXISTS %s (parent_id TEXT NOT NULL, position INTEGER NOT NULL, value %s, PRIMARY KEY (parent_id, position))",
				filtersql.ListTableName(m, f), columnAffinity(f.Type)))
		case f.IsRelation():
			stmts = append(stmts, fmt.Sprintf(
				"CREATE TABLE IF NOT EXISTS %s (parent_id TEXT NOT NULL, child_id TEXT NOT NULL, PRIMARY KEY (parent_id, child_id))",
				filtersql.LinkTableName(m, f)))
		}
	}
	return stmts
}

func columnAffinity(t value.Type) string {
	switch t {
	case value.TypeInt, value.TypeBoolean:
		return "INTEGER"
	case value.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}
