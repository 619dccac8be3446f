package filtersql

import "github.com/quarrydb/quarry/internal/schema"

// Naming conventions shared by the SQL compiler and the store's DDL
// generator. Every model gets one table; scalar list fields live in
// out-of-line side tables; every relation field gets a link table keyed by
// parent and child ids.

// TableName returns the table holding a model's records.
func TableName(m *schema.Model) string {
	return m.Name
}

// ColumnName returns the column holding a scalar non-list field.
func ColumnName(f *schema.Field) string {
	return f.Name
}

// ListTableName returns the side table holding a scalar list field's
// elements, columns (parent_id, position, value).
func ListTableName(m *schema.Model, f *schema.Field) string {
	return m.Name + "_" + f.Name + "_items"
}

// LinkTableName returns the link table for a relation field, columns
// (parent_id, child_id).
func LinkTableName(m *schema.Model, f *schema.Field) string {
	if f.RelationName != "" {
		return "rel_" + f.RelationName
	}
	return "rel_" + m.Name + "_" + f.Name
}

// IDColumn returns the identity column of a model. Models without a
// declared identity field fall back to "id", which the DDL generator also
// synthesizes.
func IDColumn(m *schema.Model) string {
	if f := m.IDField(); f != nil {
		return f.Name
	}
	return "id"
}
