package schema

import (
	"fmt"
	"sort"

	"github.com/quarrydb/quarry/internal/value"
)

// FieldKind distinguishes scalar fields from relation fields.
type FieldKind int

const (
	// KindScalar is a field holding a primitive value.
	KindScalar FieldKind = iota
	// KindRelation is a field referencing another model.
	KindRelation
)

// Field describes one field of a model.
//
// Scalar fields carry a scalar type tag; relation fields reference a target
// model by name plus a relation descriptor used when traversing filters and
// fetches. Exactly one of the two shapes applies, selected by Kind.
type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`

	// Scalar shape
	Type       value.Type `json:"type,omitempty"`
	EnumValues []string   `json:"enum_values,omitempty"` // Enum fields only

	// Relation shape
	RelatedModel string `json:"related_model,omitempty"`
	RelationName string `json:"relation_name,omitempty"` // Disambiguates multiple relations between the same pair

	IsList     bool `json:"is_list"`
	IsRequired bool `json:"is_required"`
	IsUnique   bool `json:"is_unique"`
	IsHidden   bool `json:"is_hidden"`
	IsID       bool `json:"is_id"`
}

// IsScalar reports whether the field holds a primitive value.
func (f *Field) IsScalar() bool { return f.Kind == KindScalar }

// IsRelation reports whether the field references another model.
func (f *Field) IsRelation() bool { return f.Kind == KindRelation }

// IsVisible reports the inverse of IsHidden.
func (f *Field) IsVisible() bool { return !f.IsHidden }

// Model is a named schema entity with an ordered set of fields and at most
// one identity field.
type Model struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field returns the field with the given name, or nil.
func (m *Model) Field(name string) *Field {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}

// IDField returns the model's identity field, or nil when the model has none.
func (m *Model) IDField() *Field {
	for i := range m.Fields {
		if m.Fields[i].IsID {
			return &m.Fields[i]
		}
	}
	return nil
}

// ScalarFields returns the model's scalar fields in declaration order.
func (m *Model) ScalarFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.IsScalar() {
			out = append(out, f)
		}
	}
	return out
}

// Schema is an immutable registry of models.
type Schema struct {
	models map[string]*Model
}

// New builds a Schema from models and validates it. Validation failures:
// duplicate model or field names, more than one identity field, relations
// to unknown models, scalar fields with an unknown type tag, enum fields
// without members.
func New(models ...*Model) (*Schema, error) {
	s := &Schema{models: make(map[string]*Model, len(models))}
	for _, m := range models {
		if _, dup := s.models[m.Name]; dup {
			return nil, fmt.Errorf("duplicate model %q", m.Name)
		}
		s.models[m.Name] = m
	}
	for _, m := range models {
		if err := s.validateModel(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) validateModel(m *Model) error {
	seen := make(map[string]bool, len(m.Fields))
	idCount := 0
	for i := range m.Fields {
		f := &m.Fields[i]
		if seen[f.Name] {
			return fmt.Errorf("model %s: duplicate field %q", m.Name, f.Name)
		}
		seen[f.Name] = true

		if f.IsID {
			idCount++
			if idCount > 1 {
				return fmt.Errorf("model %s: multiple identity fields", m.Name)
			}
		}

		switch f.Kind {
		case KindScalar:
			if !value.ValidTypes[f.Type] {
				return fmt.Errorf("model %s: field %s: unknown scalar type %q", m.Name, f.Name, f.Type)
			}
			if f.Type == value.TypeEnum && len(f.EnumValues) == 0 {
				return fmt.Errorf("model %s: field %s: enum field without members", m.Name, f.Name)
			}
		case KindRelation:
			if f.RelatedModel == "" {
				return fmt.Errorf("model %s: field %s: relation without target model", m.Name, f.Name)
			}
			if _, ok := s.models[f.RelatedModel]; !ok {
				return fmt.Errorf("model %s: field %s: relation to unknown model %q", m.Name, f.Name, f.RelatedModel)
			}
		default:
			return fmt.Errorf("model %s: field %s: unknown field kind %d", m.Name, f.Name, f.Kind)
		}
	}
	return nil
}

// Model returns the model with the given name, or nil.
func (s *Schema) Model(name string) *Model {
	return s.models[name]
}

// Models returns all models sorted by name.
func (s *Schema) Models() []*Model {
	out := make([]*Model, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
