package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/filtersql"
	"github.com/quarrydb/quarry/internal/resolve"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// QueryRecords executes a compiled filter against a model's table and
// returns matching records in deterministic order.
func (s *Store) QueryRecords(ctx context.Context, model *schema.Model, expr filterir.Expr, args *filterir.QueryArgs) ([]*resolve.Record, error) {
	sqlStr, params, err := filtersql.New(s.schema).BuildQuery(model, expr, args)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", model.Name, err)
	}
	defer rows.Close()

	records := []*resolve.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, model)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", model.Name, err)
	}
	return records, nil
}

// scanRecord scans the current row into a Record, mapping columns back to
// schema fields by name.
func scanRecord(rows *sql.Rows, model *schema.Model) (*resolve.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan %s: %w", model.Name, err)
	}

	idCol := filtersql.IDColumn(model)
	rec := &resolve.Record{Model: model.Name, Data: make(map[string]value.Typed, len(columns))}
	for i, col := range columns {
		if col == idCol {
			switch v := values[i].(type) {
			case string:
				rec.ID = v
			case []byte:
				rec.ID = string(v)
			default:
				return nil, fmt.Errorf("model %s: identity column is not text", model.Name)
			}
			if f := model.IDField(); f != nil {
				rec.Data[f.Name] = value.TypedID(rec.ID)
			}
			continue
		}
		field := model.Field(col)
		if field == nil {
			continue
		}
		tv, err := typedFromSQL(field.Type, values[i])
		if err != nil {
			return nil, fmt.Errorf("model %s: field %s: %w", model.Name, field.Name, err)
		}
		rec.Data[field.Name] = tv
	}
	return rec, nil
}

// typedFromSQL converts a database/sql value into the typed union for a
// scalar type.
func typedFromSQL(t value.Type, v any) (value.Typed, error) {
	if v == nil {
		return value.TypedNull{}, nil
	}

	switch t {
	case value.TypeInt:
		if n, ok := v.(int64); ok {
			return value.TypedInt(n), nil
		}
	case value.TypeBoolean:
		switch b := v.(type) {
		case bool:
			return value.TypedBool(b), nil
		case int64:
			return value.TypedBool(b != 0), nil
		}
	case value.TypeFloat:
		switch f := v.(type) {
		case float64:
			return value.TypedFloat(f), nil
		case int64:
			return value.TypedFloat(float64(f)), nil
		}
	case value.TypeString:
		if s, ok := sqlText(v); ok {
			return value.TypedString(s), nil
		}
	case value.TypeID:
		if s, ok := sqlText(v); ok {
			return value.TypedID(s), nil
		}
	case value.TypeEnum:
		if s, ok := sqlText(v); ok {
			return value.TypedEnum(s), nil
		}
	case value.TypeDateTime:
		if s, ok := sqlText(v); ok {
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("stored timestamp %q: %w", s, err)
			}
			return value.TypedDateTime(ts), nil
		}
	case value.TypeJSON:
		if s, ok := sqlText(v); ok {
			raw, err := value.DecodeJSON([]byte(s))
			if err != nil {
				return nil, fmt.Errorf("stored json: %w", err)
			}
			return value.TypedJSON{Value: raw}, nil
		}
	}
	return nil, fmt.Errorf("unsupported SQL value %T for %s", v, t)
}

func sqlText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}
