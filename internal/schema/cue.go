package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/quarrydb/quarry/internal/value"
)

// LoadCUE parses a CUE schema document into a validated Schema.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// Expected layout:
//
//	models: User: fields: {
//		id:    {type: "ID", id: true, unique: true}
//		name:  {type: "String", required: true}
//		posts: {relation: "Post", list: true}
//	}
func LoadCUE(data []byte) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modelsVal := v.LookupPath(cue.ParsePath("models"))
	if !modelsVal.Exists() {
		return nil, fmt.Errorf("schema cue: missing top-level \"models\" struct")
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var models []*Model
	for iter.Next() {
		m, err := parseCUEModel(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("schema cue: no models defined")
	}
	return New(models...)
}

func parseCUEModel(name string, v cue.Value) (*Model, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, fmt.Errorf("model %s: missing fields", name)
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	m := &Model{Name: name}
	for iter.Next() {
		f, err := parseCUEField(name, iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		m.Fields = append(m.Fields, f)
	}
	return m, nil
}

func parseCUEField(model, name string, v cue.Value) (Field, error) {
	f := Field{Name: name}

	typeStr, _ := cueString(v, "type")
	relation, _ := cueString(v, "relation")
	if typeStr != "" && relation != "" {
		return Field{}, fmt.Errorf("model %s: field %s: both type and relation set", model, name)
	}

	switch {
	case relation != "":
		f.Kind = KindRelation
		f.RelatedModel = relation
		f.RelationName, _ = cueString(v, "relationName")
	case typeStr != "":
		f.Kind = KindScalar
		f.Type = value.Type(typeStr)
		f.EnumValues = cueStrings(v, "values")
	default:
		return Field{}, fmt.Errorf("model %s: field %s: neither type nor relation set", model, name)
	}

	f.IsList = cueBool(v, "list")
	f.IsRequired = cueBool(v, "required")
	f.IsUnique = cueBool(v, "unique")
	f.IsHidden = cueBool(v, "hidden")
	f.IsID = cueBool(v, "id")
	return f, nil
}

func cueString(v cue.Value, path string) (string, bool) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", false
	}
	s, err := fv.String()
	if err != nil {
		return "", false
	}
	return s, true
}

func cueStrings(v cue.Value, path string) []string {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil
	}
	var out []string
	for iter.Next() {
		if s, err := iter.Value().String(); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func cueBool(v cue.Value, path string) bool {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return false
	}
	b, err := fv.Bool()
	if err != nil {
		return false
	}
	return b
}

// formatCUEError flattens a CUE error list into a single error with
// positions, keeping the first few entries.
func formatCUEError(err error) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err
	}
	msg := cueerrors.Details(list[0], nil)
	if len(list) > 1 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, len(list)-1)
	}
	return fmt.Errorf("schema cue: %s", msg)
}
