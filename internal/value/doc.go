// Package value defines the closed value unions used across quarry.
//
// Raw is the untyped input union, decided once at the API boundary when a
// filter payload is decoded. Typed is the schema-typed union produced only
// by the coercion engine. All other packages consume these types; value
// imports nothing internal, keeping it the foundational layer.
package value
