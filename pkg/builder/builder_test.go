package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxxindex/pkg/frontend"
	"cxxindex/pkg/location"
)

func loc(file string, line, col uint32) location.FrontendLocation {
	return location.FrontendLocation{File: file, Line: line, Column: col}
}

// S1 — single function.
func TestSingleFunction(t *testing.T) {
	b := New(nil, nil)
	ctx := context.Background()

	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind:          frontend.KindFuncDef,
		Loc:           loc("f.cc", 1, 5),
		USR:           "c:@F@f#",
		ShortName:     "f",
		QualifiedName: "f",
	}))

	f := b.IndexedFile()
	require.Len(t, f.Funcs, 1)
	fn := f.Funcs[0]
	assert.Equal(t, "f", fn.ShortName)
	assert.Equal(t, "f", fn.QualifiedName)
	require.NotNil(t, fn.Definition)
	assert.True(t, fn.Definition.Interesting())
	assert.Empty(t, fn.Callers)
	assert.Empty(t, fn.Callees)
}

// S2 — call graph.
func TestCallGraph(t *testing.T) {
	b := New(nil, nil)
	ctx := context.Background()

	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncDef, Loc: loc("f.cc", 1, 6),
		USR: "c:@F@a#", ShortName: "a",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncDef, Loc: loc("f.cc", 2, 6),
		USR: "c:@F@b#", ShortName: "b",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncRef, Loc: loc("f.cc", 2, 15),
		CallerUSR: "c:@F@b#", CalleeUSR: "c:@F@a#", IsCall: true,
	}))

	f := b.IndexedFile()
	af, err := f.ResolveFunc(0)
	require.NoError(t, err)
	bf, err := f.ResolveFunc(1)
	require.NoError(t, err)

	require.Len(t, bf.Callees, 1)
	assert.Equal(t, af.ID, bf.Callees[0].ID)
	require.Len(t, af.Callers, 1)
	assert.Equal(t, bf.ID, af.Callers[0].ID)
	require.Len(t, af.Uses, 1)
	assert.True(t, af.Uses[0].Interesting())
}

// S3 — inheritance.
func TestInheritance(t *testing.T) {
	b := New(nil, nil)
	ctx := context.Background()

	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindTypeDecl, Loc: loc("f.cc", 1, 8),
		USR: "c:@S@A", ShortName: "A",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindTypeDecl, Loc: loc("f.cc", 2, 8),
		USR: "c:@S@B", ShortName: "B", BaseUSRs: []string{"c:@S@A"},
	}))

	f := b.IndexedFile()
	a, err := f.ResolveType(0)
	require.NoError(t, err)
	bt, err := f.ResolveType(1)
	require.NoError(t, err)

	require.NotNil(t, a.Definition)
	require.NotNil(t, bt.Definition)
	assert.Contains(t, a.Derived, bt.ID)
	assert.Contains(t, bt.Parents, a.ID)
}

// S4 — override.
func TestOverride(t *testing.T) {
	b := New(nil, nil)
	ctx := context.Background()

	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindTypeDecl, Loc: loc("f.cc", 1, 8), USR: "c:@S@A", ShortName: "A",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncDecl, Loc: loc("f.cc", 1, 20),
		USR: "c:@S@A@F@m#", ShortName: "m", DeclaringTypeUSR: "c:@S@A",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindTypeDecl, Loc: loc("f.cc", 2, 8), USR: "c:@S@B",
		ShortName: "B", BaseUSRs: []string{"c:@S@A"},
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncDef, Loc: loc("f.cc", 2, 20),
		USR: "c:@S@B@F@m#", ShortName: "m", DeclaringTypeUSR: "c:@S@B",
		OverrideUSRs: []string{"c:@S@A@F@m#"},
	}))

	f := b.IndexedFile()
	baseID, err := f.ToFuncId("c:@S@A@F@m#")
	require.NoError(t, err)
	derivedID, err := f.ToFuncId("c:@S@B@F@m#")
	require.NoError(t, err)

	base, err := f.ResolveFunc(baseID)
	require.NoError(t, err)
	derived, err := f.ResolveFunc(derivedID)
	require.NoError(t, err)

	require.NotNil(t, derived.Base)
	assert.Equal(t, baseID, *derived.Base)
	assert.Contains(t, base.Derived, derivedID)

	aID := f.ToTypeId("c:@S@A")
	a, err := f.ResolveType(aID)
	require.NoError(t, err)
	assert.Contains(t, a.Funcs, baseID)

	bID := f.ToTypeId("c:@S@B")
	bt, err := f.ResolveType(bID)
	require.NoError(t, err)
	assert.Contains(t, bt.Funcs, derivedID)
}

// Containment: a nested type, a method and a member variable all show up
// in their declaring type's Types/Funcs/Vars lists (spec.md §3,
// "containment: types, funcs, vars declared lexically inside").
func TestContainment(t *testing.T) {
	b := New(nil, nil)
	ctx := context.Background()

	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindTypeDecl, Loc: loc("f.cc", 1, 8), USR: "c:@S@Outer", ShortName: "Outer",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindTypeDecl, Loc: loc("f.cc", 2, 12), USR: "c:@S@Outer@S@Inner",
		ShortName: "Inner", DeclaringTypeUSR: "c:@S@Outer",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncDef, Loc: loc("f.cc", 3, 10), USR: "c:@S@Outer@F@m#",
		ShortName: "m", DeclaringTypeUSR: "c:@S@Outer",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindVarDeclDef, Loc: loc("f.cc", 4, 9), USR: "c:@S@Outer@field",
		ShortName: "field", DeclaringTypeUSR: "c:@S@Outer",
		IsDeclaration: true, IsDefinition: true,
	}))

	f := b.IndexedFile()
	outerID := f.ToTypeId("c:@S@Outer")
	outer, err := f.ResolveType(outerID)
	require.NoError(t, err)

	innerID := f.ToTypeId("c:@S@Outer@S@Inner")
	assert.Contains(t, outer.Types, innerID)

	mID, err := f.ToFuncId("c:@S@Outer@F@m#")
	require.NoError(t, err)
	assert.Contains(t, outer.Funcs, mID)

	fieldID, err := f.ToVarId("c:@S@Outer@field")
	require.NoError(t, err)
	assert.Contains(t, outer.Vars, fieldID)

	// A repeated event for the same member must not duplicate the
	// containment entry.
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncDecl, Loc: loc("f.cc", 3, 10), USR: "c:@S@Outer@F@m#",
		ShortName: "m", DeclaringTypeUSR: "c:@S@Outer",
	}))
	assert.Len(t, outer.Funcs, 1)
}

// S5 — typedef alias.
func TestTypedefAlias(t *testing.T) {
	b := New(nil, nil)
	ctx := context.Background()

	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindTypeAlias, Loc: loc("f.cc", 1, 7),
		USR: "c:@X", ShortName: "X", AliasedUSR: "c:builtin@int",
	}))

	f := b.IndexedFile()
	xID := f.ToTypeId("c:@X")
	x, err := f.ResolveType(xID)
	require.NoError(t, err)
	require.NotNil(t, x.AliasOf)

	intID := f.ToTypeId("c:builtin@int")
	assert.Equal(t, intID, *x.AliasOf)
}

// S6 — repeated reference dedup.
func TestRepeatedReferenceDedup(t *testing.T) {
	b := New(nil, nil)
	ctx := context.Background()

	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindVarDeclDef, Loc: loc("f.cc", 1, 5),
		USR: "c:@x", ShortName: "x", IsDeclaration: true, IsDefinition: true,
	}))
	ref := frontend.Event{
		Kind: frontend.KindVarRef, Loc: loc("f.cc", 3, 2), USR: "c:@x",
	}
	require.NoError(t, b.HandleEvent(ctx, ref))
	require.NoError(t, b.HandleEvent(ctx, ref))

	f := b.IndexedFile()
	v, err := f.ResolveVar(0)
	require.NoError(t, err)
	assert.Len(t, v.Uses, 1)
}

func TestFuncRefWithUnresolvableCallerOmitsCallerEdge(t *testing.T) {
	b := New(nil, nil)
	ctx := context.Background()

	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncDef, Loc: loc("f.cc", 1, 6), USR: "c:@F@a#", ShortName: "a",
	}))
	require.NoError(t, b.HandleEvent(ctx, frontend.Event{
		Kind: frontend.KindFuncRef, Loc: loc("f.cc", 5, 10), CalleeUSR: "c:@F@a#",
	}))

	f := b.IndexedFile()
	a, err := f.ResolveFunc(0)
	require.NoError(t, err)
	assert.Empty(t, a.Callers)
	require.Len(t, a.Uses, 1)
	assert.True(t, a.Uses[0].Interesting())
}

func TestCancellationAbortsHandling(t *testing.T) {
	b := New(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.HandleEvent(ctx, frontend.Event{Kind: frontend.KindTypeRef, USR: "c:@S@A"})
	assert.Error(t, err)
}
