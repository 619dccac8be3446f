package resolve

import (
	"errors"
	"fmt"

	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// Record is an already-fetched record: its model, identity, and the scalar
// non-list values stored inline with it. The dispatcher only reads it.
type Record struct {
	Model string
	ID    string
	Data  map[string]value.Typed
}

// Resolution is the outcome of resolving one field.
//
// This is a sealed interface - only Resolved and Deferred implement it.
type Resolution interface {
	resolutionNode() // Marker method - seals interface to this package
}

// Resolved carries an immediately available value.
type Resolved struct {
	Value value.Typed
}

func (Resolved) resolutionNode() {}

// InvariantError reports a record missing data the schema guarantees is
// present. It marks a defect in the fetch layer, not a user-facing error.
type InvariantError struct {
	Model  string
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("schema invariant violated on %s.%s: %s", e.Model, e.Field, e.Reason)
}

// IsInvariant reports whether err is an InvariantError.
// Uses errors.As to handle wrapped errors.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// Dispatcher decides, per schema field, whether a value is already
// available on the record or must be fetched via a batched request.
// Stateless and safe for concurrent use.
type Dispatcher struct {
	schema *schema.Schema
}

// NewDispatcher creates a Dispatcher over the given schema.
func NewDispatcher(s *schema.Schema) *Dispatcher {
	return &Dispatcher{schema: s}
}

// Resolve returns either the field's value from the record or a deferred
// fetch descriptor for the batch collector. args carries any nested
// selection filter/order/pagination present at the call site; it applies
// only to relation fetches.
func (d *Dispatcher) Resolve(rec *Record, model *schema.Model, field *schema.Field, args *filterir.QueryArgs) (Resolution, error) {
	if model.Field(field.Name) == nil {
		return nil, &InvariantError{Model: model.Name, Field: field.Name,
			Reason: "field is not declared on the model"}
	}

	if field.IsScalar() && !field.IsList {
		v, ok := rec.Data[field.Name]
		if !ok {
			// Inline scalars are always fetched with the record; a missing
			// key means the fetch layer broke the schema contract.
			return nil, &InvariantError{Model: model.Name, Field: field.Name,
				Reason: "stored record is missing an inline scalar"}
		}
		return Resolved{Value: v}, nil
	}

	if field.IsScalar() {
		// Scalar list: elements live out-of-line, batched per (model, field).
		return &Deferred{
			Kind:        FetchScalarList,
			Model:       model.Name,
			ParentModel: model.Name,
			Field:       field,
			ParentID:    rec.ID,
		}, nil
	}

	kind := FetchRelationOne
	if field.IsList {
		kind = FetchRelationMany
	}
	return &Deferred{
		Kind:        kind,
		Model:       field.RelatedModel,
		ParentModel: model.Name,
		Field:       field,
		ParentID:    rec.ID,
		Args:        args,
	}, nil
}
