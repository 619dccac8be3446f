package compiler

import (
	"fmt"
	"sort"

	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// Mode selects the compile dialect.
type Mode int

const (
	// ModeDefault compiles plain where-filters.
	ModeDefault Mode = iota
	// ModeScoped additionally recognizes the nested-scope key, which
	// recurses against the same model. Used for event-scoped filters
	// whose payload nests the record filter one level down.
	ModeScoped
)

// ScopedKey is the designated nested-scope key recognized in ModeScoped.
const ScopedKey = "node"

// Compiler compiles raw filter payloads against a schema. Compilation is
// pure and reentrant: the schema is read-only and no state accumulates
// between calls, so one Compiler may serve concurrent compiles.
type Compiler struct {
	schema *schema.Schema
}

// New creates a Compiler over the given schema.
func New(s *schema.Schema) *Compiler {
	return &Compiler{schema: s}
}

// Compile turns a raw filter mapping into a filter expression tree rooted
// at model. An empty mapping compiles to match-everything. Any coercion or
// key-resolution failure aborts the whole compile.
func (c *Compiler) Compile(model *schema.Model, input value.RawMap, mode Mode) (filterir.Expr, error) {
	if model == nil {
		return nil, fmt.Errorf("compile: nil model")
	}
	return c.compileMap(model, input, mode)
}

func (c *Compiler) compileMap(model *schema.Model, input value.RawMap, mode Mode) (filterir.Expr, error) {
	// Sorted keys keep sibling order deterministic across compiles.
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	exprs := make([]filterir.Expr, 0, len(keys))
	for _, key := range keys {
		expr, err := c.compileKey(model, key, input[key], mode)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}

	switch len(exprs) {
	case 0:
		return filterir.MatchAll(), nil
	case 1:
		return exprs[0], nil
	default:
		return filterir.Logical{Op: filterir.OpAnd, Children: exprs}, nil
	}
}

func (c *Compiler) compileKey(model *schema.Model, key string, raw value.Raw, mode Mode) (filterir.Expr, error) {
	// Logical combinators are intercepted before any field lookup.
	switch key {
	case string(filterir.OpAnd), string(filterir.OpOr), string(filterir.OpNot):
		return c.compileLogical(model, filterir.LogicalOp(key), raw, mode)
	case ScopedKey:
		if mode == ModeScoped {
			nested, ok := raw.(value.RawMap)
			if !ok {
				return nil, &MalformedShapeError{Key: key,
					Reason: "nested-scope key requires a mapping"}
			}
			return c.compileMap(model, nested, mode)
		}
	}

	field, op, err := lookupField(model, key)
	if err != nil {
		return nil, err
	}

	if field.IsRelation() {
		return c.compileRelation(model, key, field, op, raw, mode)
	}
	return c.compileScalar(model, key, field, op, raw, mode)
}

// compileLogical compiles AND/OR/NOT. The value is either one nested
// mapping or a sequence of mappings; children recurse against the same
// model.
func (c *Compiler) compileLogical(model *schema.Model, op filterir.LogicalOp, raw value.Raw, mode Mode) (filterir.Expr, error) {
	var children []filterir.Expr

	switch v := raw.(type) {
	case value.RawMap:
		child, err := c.compileMap(model, v, mode)
		if err != nil {
			return nil, err
		}
		children = []filterir.Expr{child}
	case value.RawList:
		children = make([]filterir.Expr, len(v))
		for i, elem := range v {
			m, ok := elem.(value.RawMap)
			if !ok {
				return nil, &MalformedShapeError{Key: string(op),
					Reason: fmt.Sprintf("element %d of %s list is not a mapping", i, op)}
			}
			child, err := c.compileMap(model, m, mode)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
	default:
		return nil, &MalformedShapeError{Key: string(op),
			Reason: fmt.Sprintf("%s requires a mapping or a list of mappings", op)}
	}

	return filterir.Logical{Op: op, Children: children}, nil
}

// compileRelation compiles a key addressing a relation field. Nested
// mappings and list alternatives recurse against the related model, never
// the parent.
func (c *Compiler) compileRelation(model *schema.Model, key string, field *schema.Field, op filterir.Operator, raw value.Raw, mode Mode) (filterir.Expr, error) {
	related := c.schema.Model(field.RelatedModel)
	if related == nil {
		return nil, fmt.Errorf("model %s: field %s references unknown model %q",
			model.Name, field.Name, field.RelatedModel)
	}

	switch v := raw.(type) {
	case value.RawMap:
		nested, err := c.compileMap(related, v, mode)
		if err != nil {
			return nil, err
		}
		return filterir.RelationFilter{Field: field, Op: op, Nested: nested}, nil

	case value.RawList:
		alternatives, ok, err := c.compileAlternatives(related, key, v, mode)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		return filterir.RelationListFilter{Field: field, Alternatives: alternatives}, nil

	case value.RawNull:
		// Null addresses relation existence: posts_some: null / author: null.
		return filterir.RelationFilter{Field: field, Op: op, Nested: nil}, nil

	case value.RawString, value.RawInt, value.RawFloat, value.RawBool:
		// A primitive addresses the related entity by identity.
		idField := related.IDField()
		if idField == nil {
			return nil, &MalformedShapeError{Key: key,
				Reason: fmt.Sprintf("model %s has no identity field to match a primitive against", related.Name)}
		}
		tv, err := value.Coerce(idField.Name, raw, idField.Type, false)
		if err != nil {
			return nil, err
		}
		nested := filterir.ScalarValue{Field: idField, Op: filterir.OpEquals, Value: tv}
		return filterir.RelationFilter{Field: field, Op: op, Nested: nested}, nil
	}

	// Unrecognized shape: near-error passthrough. See filterir.Raw.
	return filterir.Raw{Key: key, Value: raw, Field: field, Op: op}, nil
}

// compileScalar compiles a key addressing a scalar field.
func (c *Compiler) compileScalar(model *schema.Model, key string, field *schema.Field, op filterir.Operator, raw value.Raw, mode Mode) (filterir.Expr, error) {
	switch v := raw.(type) {
	case value.RawList:
		// A list of mappings holds alternative whole-filter shapes for
		// this model, semantically OR'd.
		alternatives, ok, err := c.compileAlternatives(model, key, v, mode)
		if err != nil {
			return nil, err
		}
		if ok {
			return filterir.RelationListFilter{Field: field, Alternatives: alternatives}, nil
		}

		// Otherwise it is a list of primitives: in/not_in, or any
		// operator against a list-typed field.
		tv, err := value.Coerce(field.Name, raw, field.Type, true)
		if err != nil {
			return nil, err
		}
		values := tv.(value.TypedList)
		if err := c.checkEnumList(field, values); err != nil {
			return nil, err
		}
		return filterir.ScalarList{Field: field, Op: op, Values: values}, nil

	case value.RawMap:
		// The one shape no scalar branch claims. Kept as a passthrough so
		// the caller can log it as a compiler defect.
		return filterir.Raw{Key: key, Value: raw, Field: field, Op: op}, nil

	default:
		if filterir.IsListValued(op) {
			return nil, &MalformedShapeError{Key: key,
				Reason: fmt.Sprintf("operator %s requires a list of values", op)}
		}
		tv, err := value.Coerce(field.Name, raw, field.Type, false)
		if err != nil {
			return nil, err
		}
		if _, isNull := tv.(value.TypedNull); isNull && field.IsRequired {
			return nil, &value.CoercionError{Field: field.Name, Expected: field.Type, Raw: raw,
				Reason: "field is not nullable"}
		}
		if err := c.checkEnum(field, tv); err != nil {
			return nil, err
		}
		return filterir.ScalarValue{Field: field, Op: op, Value: tv}, nil
	}
}

// compileAlternatives compiles a list whose elements are all mappings into
// alternative expressions against model. Returns ok=false when the list is
// empty or holds any non-mapping element, leaving the caller to try other
// branches.
func (c *Compiler) compileAlternatives(model *schema.Model, key string, list value.RawList, mode Mode) ([]filterir.Expr, bool, error) {
	if len(list) == 0 {
		return nil, false, nil
	}
	for _, elem := range list {
		if _, ok := elem.(value.RawMap); !ok {
			return nil, false, nil
		}
	}
	alternatives := make([]filterir.Expr, len(list))
	for i, elem := range list {
		alt, err := c.compileMap(model, elem.(value.RawMap), mode)
		if err != nil {
			return nil, false, err
		}
		alternatives[i] = alt
	}
	return alternatives, true, nil
}

func (c *Compiler) checkEnum(field *schema.Field, tv value.Typed) error {
	ev, ok := tv.(value.TypedEnum)
	if !ok {
		return nil
	}
	for _, member := range field.EnumValues {
		if string(ev) == member {
			return nil
		}
	}
	return &value.CoercionError{Field: field.Name, Expected: field.Type,
		Raw: value.RawString(ev), Reason: fmt.Sprintf("%q is not a member of the enum", string(ev))}
}

func (c *Compiler) checkEnumList(field *schema.Field, values value.TypedList) error {
	for _, tv := range values {
		if err := c.checkEnum(field, tv); err != nil {
			return err
		}
	}
	return nil
}
