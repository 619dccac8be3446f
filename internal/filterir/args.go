package filterir

import "github.com/quarrydb/quarry/internal/value"

// QueryArgs carries the selection arguments attached to a relation or list
// fetch: a compiled filter plus ordering and pagination bounds. A nil
// *QueryArgs means "all related records in default order".
type QueryArgs struct {
	Where      Expr   // nil = no filter
	OrderBy    string // field name; empty = identity order
	Descending bool
	Skip       int
	First      int    // 0 = no limit
	After      string // cursor: identity value, exclusive lower bound
	Before     string // cursor: identity value, exclusive upper bound
}

// RawForm renders the arguments as a raw mapping with fully deterministic
// content. Batch group identity hashes this form, so two argument sets that
// mean the same thing always produce the same bytes.
func (a *QueryArgs) RawForm() value.RawMap {
	m := value.RawMap{}
	if a == nil {
		return m
	}
	if a.Where != nil {
		m["where"] = Serialize(a.Where)
	}
	if a.OrderBy != "" {
		m["order_by"] = value.RawString(a.OrderBy)
		m["descending"] = value.RawBool(a.Descending)
	}
	if a.Skip != 0 {
		m["skip"] = value.RawInt(a.Skip)
	}
	if a.First != 0 {
		m["first"] = value.RawInt(a.First)
	}
	if a.After != "" {
		m["after"] = value.RawString(a.After)
	}
	if a.Before != "" {
		m["before"] = value.RawString(a.Before)
	}
	return m
}
