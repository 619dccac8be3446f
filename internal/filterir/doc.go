// Package filterir defines the typed filter expression tree produced by the
// compiler and consumed by execution backends.
//
// Expr is a sealed interface; the closed variant set enables exhaustive type
// switches in backends. Trees are immutable once built and owned by the
// caller that requested the compile.
package filterir
