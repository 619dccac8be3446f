package resolve

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// FetchKind classifies what a deferred fetch retrieves.
type FetchKind string

const (
	// FetchScalarList retrieves the out-of-line elements of a scalar list
	// field, keyed by parent id.
	FetchScalarList FetchKind = "scalar_list"
	// FetchRelationOne retrieves at most one related record per parent.
	FetchRelationOne FetchKind = "relation_one"
	// FetchRelationMany retrieves zero or more related records per parent.
	FetchRelationMany FetchKind = "relation_many"
)

// Domain prefix for fetch group identity hashing. The version suffix
// enables future key-shape migration without colliding with old keys.
const fetchKeyDomain = "quarry/fetch/v1"

// Deferred describes a relation or list fetch that has not executed yet.
// Descriptors sharing a GroupKey are coalesced by the batch collector into
// one backend call over the distinct parent ids.
type Deferred struct {
	Kind        FetchKind
	Model       string // target model of the fetch
	ParentModel string
	Field       *schema.Field
	ParentID    string
	Args        *filterir.QueryArgs // relation fetches only
}

func (*Deferred) resolutionNode() {}

// GroupKey computes the batching identity: a domain-separated SHA-256 over
// the canonical JSON of (kind, model, field, args). ParentID is deliberately
// excluded - parents sharing a key are grouped, and the key is independent
// of resolution order, so concurrent producers group correctly regardless
// of interleaving.
func (d *Deferred) GroupKey() (string, error) {
	form := value.RawMap{
		"kind":   value.RawString(d.Kind),
		"model":  value.RawString(d.Model),
		"parent": value.RawString(d.ParentModel),
		"field":  value.RawString(d.Field.Name),
		"args":   d.Args.RawForm(),
	}
	canonical, err := value.MarshalCanonical(form)
	if err != nil {
		return "", fmt.Errorf("group key for %s.%s: %w", d.ParentModel, d.Field.Name, err)
	}

	h := sha256.New()
	h.Write([]byte(fetchKeyDomain))
	h.Write([]byte{0x00}) // null separator keeps domain/data boundary unambiguous
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
