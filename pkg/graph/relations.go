package graph

import "cxxindex/pkg/location"

// AddParent wires an immediate base specifier: child.Parents gets base
// appended in declaration order, and base.Derived gets child appended if
// not already present (spec.md §3 invariant 2, §4.5).
func (f *IndexedFile) AddParent(child, base TypeId) error {
	c, err := f.ResolveType(child)
	if err != nil {
		return err
	}
	b, err := f.ResolveType(base)
	if err != nil {
		return err
	}
	c.Parents = append(c.Parents, base)
	if !containsTypeId(b.Derived, child) {
		b.Derived = append(b.Derived, child)
	}
	return nil
}

// SetOverride wires an override-of link: derived.Base is set to base only
// if unset (spec.md §4.5, "set this func's base to the first such link"),
// and base.Derived gets derived appended if not already present.
func (f *IndexedFile) SetOverride(derived, base FuncId) error {
	d, err := f.ResolveFunc(derived)
	if err != nil {
		return err
	}
	b, err := f.ResolveFunc(base)
	if err != nil {
		return err
	}
	if d.Base == nil {
		baseCopy := base
		d.Base = &baseCopy
	}
	if !containsFuncId(b.Derived, derived) {
		b.Derived = append(b.Derived, derived)
	}
	return nil
}

// AddContainedType wires a nested-type containment edge: parent's Types
// gets child appended if not already present (spec.md §3, "containment:
// types, funcs, vars declared lexically inside").
func (f *IndexedFile) AddContainedType(parent, child TypeId) error {
	p, err := f.ResolveType(parent)
	if err != nil {
		return err
	}
	if !containsTypeId(p.Types, child) {
		p.Types = append(p.Types, child)
	}
	return nil
}

// AddContainedFunc wires a member-function containment edge: parent's
// Funcs gets child appended if not already present (spec.md §3).
func (f *IndexedFile) AddContainedFunc(parent TypeId, child FuncId) error {
	p, err := f.ResolveType(parent)
	if err != nil {
		return err
	}
	if !containsFuncId(p.Funcs, child) {
		p.Funcs = append(p.Funcs, child)
	}
	return nil
}

// AddContainedVar wires a member-variable containment edge: parent's Vars
// gets child appended if not already present (spec.md §3).
func (f *IndexedFile) AddContainedVar(parent TypeId, child VarId) error {
	p, err := f.ResolveType(parent)
	if err != nil {
		return err
	}
	if !containsVarId(p.Vars, child) {
		p.Vars = append(p.Vars, child)
	}
	return nil
}

// AddCall wires a call-site edge: FuncRef(callee, loc) is appended to
// caller.Callees and the mirror FuncRef(caller, loc) is appended to
// callee.Callers (spec.md §3 invariants 3-4, §4.5).
func (f *IndexedFile) AddCall(caller, callee FuncId, loc location.Location) error {
	c, err := f.ResolveFunc(caller)
	if err != nil {
		return err
	}
	g, err := f.ResolveFunc(callee)
	if err != nil {
		return err
	}
	c.Callees = append(c.Callees, FuncRef{ID: callee, Loc: loc})
	g.Callers = append(g.Callers, FuncRef{ID: caller, Loc: loc})
	return nil
}
