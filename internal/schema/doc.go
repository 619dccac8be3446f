// Package schema defines the model registry the filter compiler and field
// resolution dispatcher operate against.
//
// A Schema is immutable after construction and is passed explicitly into
// every compile and resolve call; there is no ambient registry. Schemas are
// built programmatically, or loaded from YAML or CUE definition files which
// both produce the same validated registry.
package schema
