// Package frontend defines the interface the C/C++ frontend collaborator
// must satisfy (spec.md §1, §4.5, §6): given a translation unit, produce a
// stream of declaration/reference events that an IndexBuilder can consume.
// The frontend itself — a real libclang binding, a tree-sitter based
// approximation, or a test double — lives outside this package; only the
// event shape and the Parse contract live here.
package frontend

import (
	"context"

	"cxxindex/pkg/location"
)

// Kind identifies which of the eight dispatch cases of spec.md §4.5 an
// Event belongs to.
type Kind int

const (
	// KindTypeDecl is a type declaration or definition, with the base
	// specifiers (if any) already resolved by the frontend.
	KindTypeDecl Kind = iota
	// KindTypeAlias is a `using X = ...` / `typedef` style alias.
	KindTypeAlias
	// KindFuncDecl is a forward function/method declaration.
	KindFuncDecl
	// KindFuncDef is a function/method definition.
	KindFuncDef
	// KindFuncRef is a reference to, or call of, a function/method.
	KindFuncRef
	// KindVarDeclDef is a variable declaration and/or definition.
	KindVarDeclDef
	// KindVarRef is a reference to a variable.
	KindVarRef
	// KindTypeRef is a bare reference to a type by name (a name token,
	// not a declaration site).
	KindTypeRef
)

// Event is the single, flattened shape every frontend callback collapses
// to before it reaches an IndexBuilder. Only the fields relevant to Kind
// are populated; the rest are zero values.
type Event struct {
	Kind Kind

	// Loc is this event's primary source location, already resolved to
	// a FrontendLocation (spec.md §4.2 — "all collapse to the same
	// path"). The builder is responsible for interning it into a
	// Location via the IndexedFile's FileIdTable.
	Loc location.FrontendLocation

	USR            string
	ShortName      string
	QualifiedName  string
	IsSystemHeader bool

	// KindTypeDecl
	BaseUSRs []string // immediate base specifiers, declaration order

	// KindTypeAlias
	AliasedUSR string

	// KindTypeDecl / KindTypeAlias / KindFuncDecl / KindFuncDef / KindVarDeclDef
	DeclaringTypeUSR string // enclosing class/struct, if this is a member or a nested type

	// KindFuncDef
	OverrideUSRs []string // methods this overrides, frontend order

	// KindVarDeclDef
	EnclosingFuncUSR string // enclosing function, for locals
	IsDeclaration    bool
	IsDefinition     bool
	VariableTypeUSR  string

	// KindFuncRef
	CallerUSR string // resolved from semantic context; empty if unresolvable
	CalleeUSR string
	IsCall    bool

	// KindVarRef / KindTypeRef
	IsDeclSite bool // true when this reference IS the declaration/definition site
}

// Frontend produces a stream of Events for one translation unit. emit is
// called synchronously, once per event, in source order; a non-nil error
// from emit (e.g. the builder observed cancellation) must stop the parse
// and be returned from Parse unchanged.
//
// Parse must return an error satisfying errors.Is(err, errs.ErrFrontendFailed)
// when it could not produce any events at all (missing file, frontend
// initialization error); it must not return that error after having
// emitted at least one event; a partial parse with diagnostics still
// completes normally.
type Frontend interface {
	Parse(ctx context.Context, filename string, compilerArgs []string, emit func(Event) error) error
}
