// Package graph implements the IndexedFile data model — entity records,
// the USR-interning store that owns them, and the relationship wiring
// between them — described in spec.md §3-§4.3, §4.4, §4.6.
package graph

import "cxxindex/pkg/location"

// TypeKind, FuncKind and VarKind are phantom type parameters that give
// LocalId and Ref compile-time-distinct handles per entity kind, without
// needing a runtime-dispatched common base type across Type/Func/Var.
type TypeKind struct{}
type FuncKind struct{}
type VarKind struct{}

// LocalId is a per-IndexedFile typed handle: a zero-based index into the
// record vector of the owning IndexedFile for kind K. Zero is a valid id;
// absence is represented by the containing field being a nil pointer, not
// by a sentinel LocalId value.
type LocalId[K any] int

// TypeId, FuncId and VarId are the three concrete LocalId instantiations
// spec.md names.
type (
	TypeId = LocalId[TypeKind]
	FuncId = LocalId[FuncKind]
	VarId  = LocalId[VarKind]
)

// Ref pairs a LocalId with the source Location the reference was found
// at. FuncRef is used for both the caller->callee (callees) and
// callee->caller (callers) mirror edges.
type Ref[K any] struct {
	ID  LocalId[K]        `json:"id"`
	Loc location.Location `json:"loc"`
}

// TypeRef, FuncRef and VarRef are the three concrete Ref instantiations.
type (
	TypeRef = Ref[TypeKind]
	FuncRef = Ref[FuncKind]
	VarRef  = Ref[VarKind]
)
