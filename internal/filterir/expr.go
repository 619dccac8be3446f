package filterir

import (
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// Expr represents a node of a compiled filter expression.
//
// This is a sealed interface - only types in this package implement it.
// Variants:
//   - Logical: AND/OR/NOT over child expressions
//   - ScalarValue: a single-value comparison on a scalar field
//   - ScalarList: a list-valued comparison on a scalar field (in / not_in)
//   - RelationFilter: a quantified filter over a relation, nested expression
//     compiled against the related model
//   - RelationListFilter: OR'd alternative filters for one relation field
//   - Raw: last-resort passthrough for a shape no other branch classified
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// LogicalOp is a logical combinator.
type LogicalOp string

// Logical combinators. The compiler intercepts these keys before field
// lookup, so no field may shadow them.
const (
	OpAnd LogicalOp = "AND"
	OpOr  LogicalOp = "OR"
	OpNot LogicalOp = "NOT"
)

// Logical combines child expressions under one combinator.
// An And with no children matches everything.
type Logical struct {
	Op       LogicalOp
	Children []Expr
}

func (Logical) exprNode() {}

// ScalarValue compares a scalar field against one typed value.
type ScalarValue struct {
	Field *schema.Field
	Op    Operator
	Value value.Typed
}

func (ScalarValue) exprNode() {}

// ScalarList compares a scalar field against a list of typed values.
type ScalarList struct {
	Field  *schema.Field
	Op     Operator
	Values []value.Typed
}

func (ScalarList) exprNode() {}

// RelationFilter applies a nested expression over a relation field. The
// nested expression was compiled against the related model, never the
// parent. Op selects the quantifier (some/every/none) or the to-one form
// (is/is_not).
type RelationFilter struct {
	Field  *schema.Field
	Op     Operator
	Nested Expr
}

func (RelationFilter) exprNode() {}

// RelationListFilter holds alternative whole-filter shapes for one relation
// field; semantically the alternatives are OR'd.
type RelationListFilter struct {
	Field        *schema.Field
	Alternatives []Expr
}

func (RelationListFilter) exprNode() {}

// Raw is the fallback for input the compiler could not classify. A Raw node
// reaching a backend signals a compiler defect and should be logged, not
// silently executed.
type Raw struct {
	Key   string
	Value value.Raw
	Field *schema.Field // may be nil when even field resolution failed
	Op    Operator
}

func (Raw) exprNode() {}

// MatchAll returns the expression equivalent to "match everything".
func MatchAll() Expr {
	return Logical{Op: OpAnd}
}

// HasRaw reports whether any Raw fallback node occurs in the tree.
// Callers use it to log unclassified filter shapes as defects.
func HasRaw(e Expr) bool {
	switch node := e.(type) {
	case Logical:
		for _, c := range node.Children {
			if HasRaw(c) {
				return true
			}
		}
	case RelationFilter:
		if node.Nested != nil {
			return HasRaw(node.Nested)
		}
	case RelationListFilter:
		for _, alt := range node.Alternatives {
			if HasRaw(alt) {
				return true
			}
		}
	case Raw:
		return true
	}
	return false
}
