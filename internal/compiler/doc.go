// Package compiler turns an untyped, nested filter payload into a typed
// filter expression tree.
//
// Compilation is a pure recursive descent over the raw mapping: logical
// keys recurse against the same model, relation keys recurse against the
// related model, scalar keys coerce their values through the value package.
// Any error aborts the whole compile; no partial trees are ever returned,
// since executing a partially-wrong filter would silently return wrong
// result sets.
package compiler
