package filterir

import (
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// Operator qualifies how a field is compared or how a relation is
// quantified.
type Operator string

// Scalar operators.
const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
)

// Relation operators.
const (
	OpSome  Operator = "some"
	OpEvery Operator = "every"
	OpNone  Operator = "none"
	OpIs    Operator = "is"
	OpIsNot Operator = "is_not"
)

// scalarSuffixes maps key suffixes to scalar operators. The bare field name
// (no suffix) means OpEquals.
var scalarSuffixes = map[string]Operator{
	"not":          OpNotEquals,
	"in":           OpIn,
	"not_in":       OpNotIn,
	"lt":           OpLt,
	"lte":          OpLte,
	"gt":           OpGt,
	"gte":          OpGte,
	"contains":     OpContains,
	"not_contains": OpNotContains,
	"starts_with":  OpStartsWith,
	"ends_with":    OpEndsWith,
}

// relationSuffixes maps key suffixes to relation operators.
var relationSuffixes = map[string]Operator{
	"some":   OpSome,
	"every":  OpEvery,
	"none":   OpNone,
	"is":     OpIs,
	"is_not": OpIsNot,
}

// stringOnly marks scalar operators legal only on text-shaped types.
var stringOnly = map[Operator]bool{
	OpContains:    true,
	OpNotContains: true,
	OpStartsWith:  true,
	OpEndsWith:    true,
}

// listValued marks scalar operators whose value is a list.
var listValued = map[Operator]bool{
	OpIn:    true,
	OpNotIn: true,
}

// ScalarOperatorForSuffix resolves a key suffix against the operators legal
// for the given field. The empty suffix resolves to OpEquals.
func ScalarOperatorForSuffix(f *schema.Field, suffix string) (Operator, bool) {
	if suffix == "" {
		return OpEquals, true
	}
	op, ok := scalarSuffixes[suffix]
	if !ok {
		return "", false
	}
	if stringOnly[op] && !isTextType(f) {
		return "", false
	}
	return op, true
}

// RelationOperatorForSuffix resolves a key suffix against the operators
// legal for the given relation field. The empty suffix resolves to the
// field's default relation operator: Some for to-many, Is for to-one.
func RelationOperatorForSuffix(f *schema.Field, suffix string) (Operator, bool) {
	if suffix == "" {
		return DefaultRelationOperator(f), true
	}
	op, ok := relationSuffixes[suffix]
	if !ok {
		return "", false
	}
	// Quantifiers apply to to-many relations, is/is_not to to-one.
	switch op {
	case OpSome, OpEvery, OpNone:
		if !f.IsList {
			return "", false
		}
	case OpIs, OpIsNot:
		if f.IsList {
			return "", false
		}
	}
	return op, true
}

// DefaultRelationOperator returns the operator a bare relation field name
// denotes.
func DefaultRelationOperator(f *schema.Field) Operator {
	if f.IsList {
		return OpSome
	}
	return OpIs
}

// SuffixForOperator returns the key suffix that denotes op, and whether the
// operator needs a suffix at all. Used when re-serializing expressions.
func SuffixForOperator(f *schema.Field, op Operator) (string, bool) {
	if op == OpEquals {
		return "", false
	}
	if f != nil && f.IsRelation() && op == DefaultRelationOperator(f) {
		return "", false
	}
	for suffix, o := range scalarSuffixes {
		if o == op {
			return suffix, true
		}
	}
	for suffix, o := range relationSuffixes {
		if o == op {
			return suffix, true
		}
	}
	return "", false
}

// IsListValued reports whether the operator takes a list of values.
func IsListValued(op Operator) bool { return listValued[op] }

func isTextType(f *schema.Field) bool {
	switch f.Type {
	case value.TypeString, value.TypeID:
		return true
	}
	return false
}
