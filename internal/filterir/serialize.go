package filterir

import (
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// Serialize reconstructs a raw filter input equivalent to the expression.
// Only the unambiguous subset round-trips: Raw nodes are emitted as-is, and
// an And of sibling keys serializes through an explicit AND list, which the
// compiler accepts back into the same tree.
func Serialize(e Expr) value.RawMap {
	switch node := e.(type) {
	case Logical:
		if len(node.Children) == 0 && node.Op == OpAnd {
			return value.RawMap{}
		}
		if node.Op == OpAnd && len(node.Children) == 1 {
			return Serialize(node.Children[0])
		}
		list := make(value.RawList, len(node.Children))
		for i, c := range node.Children {
			list[i] = Serialize(c)
		}
		return value.RawMap{string(node.Op): list}

	case ScalarValue:
		return value.RawMap{serializeKey(node.Field, node.Op): value.ToRaw(node.Value)}

	case ScalarList:
		list := make(value.RawList, len(node.Values))
		for i, v := range node.Values {
			list[i] = value.ToRaw(v)
		}
		return value.RawMap{serializeKey(node.Field, node.Op): list}

	case RelationFilter:
		var nested value.Raw
		if node.Nested == nil {
			nested = value.RawNull{}
		} else {
			nested = Serialize(node.Nested)
		}
		return value.RawMap{serializeKey(node.Field, node.Op): nested}

	case RelationListFilter:
		list := make(value.RawList, len(node.Alternatives))
		for i, alt := range node.Alternatives {
			list[i] = Serialize(alt)
		}
		return value.RawMap{node.Field.Name: list}

	case Raw:
		return value.RawMap{node.Key: node.Value}

	default:
		return value.RawMap{}
	}
}

func serializeKey(f *schema.Field, op Operator) string {
	suffix, needed := SuffixForOperator(f, op)
	if !needed {
		return f.Name
	}
	return f.Name + "_" + suffix
}
