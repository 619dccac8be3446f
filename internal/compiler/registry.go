package compiler

import (
	"strings"

	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/schema"
)

// lookupField resolves a raw filter key against a model, returning the
// target field and the operator the key denotes.
//
// Keys are either a bare field name (equality, or the default relation
// operator) or fieldName + "_" + operatorSuffix. Field names may themselves
// contain underscores, so resolution tries every field and keeps the
// longest field-name match; this makes the result deterministic regardless
// of declaration order.
func lookupField(model *schema.Model, key string) (*schema.Field, filterir.Operator, error) {
	var (
		best    *schema.Field
		bestOp  filterir.Operator
		bestLen = -1
	)

	for i := range model.Fields {
		f := &model.Fields[i]
		if f.IsHidden {
			continue
		}
		op, ok := matchKey(f, key)
		if !ok {
			continue
		}
		if len(f.Name) > bestLen {
			best, bestOp, bestLen = f, op, len(f.Name)
		}
	}

	if best == nil {
		return nil, "", &UnknownKeyError{Key: key, Model: model.Name}
	}
	return best, bestOp, nil
}

// matchKey checks whether key addresses field f, either bare or with a
// legal operator suffix for f's shape.
func matchKey(f *schema.Field, key string) (filterir.Operator, bool) {
	var suffix string
	switch {
	case key == f.Name:
		suffix = ""
	case strings.HasPrefix(key, f.Name+"_"):
		suffix = key[len(f.Name)+1:]
	default:
		return "", false
	}

	if f.IsRelation() {
		return filterir.RelationOperatorForSuffix(f, suffix)
	}
	return filterir.ScalarOperatorForSuffix(f, suffix)
}
