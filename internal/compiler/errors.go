package compiler

import (
	"errors"
	"fmt"
)

// UnknownKeyError reports a filter key that resolves to no field/operator
// combination on the target model.
type UnknownKeyError struct {
	Key   string
	Model string
}

// Error implements the error interface.
func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown filter key %q on model %s", e.Key, e.Model)
}

// MalformedShapeError reports a value whose shape matches no recognized
// compile branch for its key.
type MalformedShapeError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *MalformedShapeError) Error() string {
	return fmt.Sprintf("malformed filter value for key %q: %s", e.Key, e.Reason)
}

// IsUnknownKey reports whether err is an UnknownKeyError.
// Uses errors.As to handle wrapped errors.
func IsUnknownKey(err error) bool {
	var ue *UnknownKeyError
	return errors.As(err, &ue)
}

// IsMalformedShape reports whether err is a MalformedShapeError.
// Uses errors.As to handle wrapped errors.
func IsMalformedShape(err error) bool {
	var me *MalformedShapeError
	return errors.As(err, &me)
}
