package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/quarrydb/quarry/internal/value"
)

// yamlSchema mirrors the YAML schema file layout.
//
//	models:
//	  - name: User
//	    fields:
//	      - {name: id, type: ID, id: true, unique: true}
//	      - {name: posts, relation: Post, list: true}
type yamlSchema struct {
	Models []yamlModel `yaml:"models"`
}

type yamlModel struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Relation string   `yaml:"relation"`
	RelName  string   `yaml:"relationName"`
	Values   []string `yaml:"values"`
	List     bool     `yaml:"list"`
	Required bool     `yaml:"required"`
	Unique   bool     `yaml:"unique"`
	Hidden   bool     `yaml:"hidden"`
	ID       bool     `yaml:"id"`
}

// LoadYAML parses a YAML schema document into a validated Schema.
func LoadYAML(data []byte) (*Schema, error) {
	var doc yamlSchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}
	if len(doc.Models) == 0 {
		return nil, fmt.Errorf("schema defines no models")
	}

	models := make([]*Model, 0, len(doc.Models))
	for _, ym := range doc.Models {
		m := &Model{Name: ym.Name}
		for _, yf := range ym.Fields {
			f, err := yf.toField(ym.Name)
			if err != nil {
				return nil, err
			}
			m.Fields = append(m.Fields, f)
		}
		models = append(models, m)
	}
	return New(models...)
}

func (yf yamlField) toField(model string) (Field, error) {
	if yf.Name == "" {
		return Field{}, fmt.Errorf("model %s: field without a name", model)
	}
	if yf.Type != "" && yf.Relation != "" {
		return Field{}, fmt.Errorf("model %s: field %s: both type and relation set", model, yf.Name)
	}

	f := Field{
		Name:       yf.Name,
		IsList:     yf.List,
		IsRequired: yf.Required,
		IsUnique:   yf.Unique,
		IsHidden:   yf.Hidden,
		IsID:       yf.ID,
	}
	switch {
	case yf.Relation != "":
		f.Kind = KindRelation
		f.RelatedModel = yf.Relation
		f.RelationName = yf.RelName
	case yf.Type != "":
		f.Kind = KindScalar
		f.Type = value.Type(yf.Type)
		f.EnumValues = yf.Values
	default:
		return Field{}, fmt.Errorf("model %s: field %s: neither type nor relation set", model, yf.Name)
	}
	return f, nil
}
