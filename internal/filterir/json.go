package filterir

import (
	"github.com/quarrydb/quarry/internal/value"
)

// ToJSON renders an expression as plain Go values for JSON output. Each
// node carries a "kind" tag; field references render by name only. Meant
// for CLI output and golden files, not for machine round-trips (Serialize
// covers that).
func ToJSON(e Expr) any {
	switch node := e.(type) {
	case Logical:
		children := make([]any, len(node.Children))
		for i, c := range node.Children {
			children[i] = ToJSON(c)
		}
		return map[string]any{
			"kind":     "logical",
			"op":       string(node.Op),
			"children": children,
		}
	case ScalarValue:
		return map[string]any{
			"kind":     "scalar",
			"field":    node.Field.Name,
			"operator": string(node.Op),
			"value":    value.ToAny(value.ToRaw(node.Value)),
		}
	case ScalarList:
		vals := make([]any, len(node.Values))
		for i, v := range node.Values {
			vals[i] = value.ToAny(value.ToRaw(v))
		}
		return map[string]any{
			"kind":     "scalar_list",
			"field":    node.Field.Name,
			"operator": string(node.Op),
			"values":   vals,
		}
	case RelationFilter:
		out := map[string]any{
			"kind":     "relation",
			"field":    node.Field.Name,
			"operator": string(node.Op),
			"model":    node.Field.RelatedModel,
		}
		if node.Nested != nil {
			out["nested"] = ToJSON(node.Nested)
		}
		return out
	case RelationListFilter:
		alts := make([]any, len(node.Alternatives))
		for i, alt := range node.Alternatives {
			alts[i] = ToJSON(alt)
		}
		return map[string]any{
			"kind":         "relation_list",
			"field":        node.Field.Name,
			"alternatives": alts,
		}
	case Raw:
		out := map[string]any{
			"kind":  "raw",
			"key":   node.Key,
			"value": value.ToAny(node.Value),
		}
		if node.Field != nil {
			out["field"] = node.Field.Name
		}
		if node.Op != "" {
			out["operator"] = string(node.Op)
		}
		return out
	default:
		return nil
	}
}
