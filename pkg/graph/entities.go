package graph

import "cxxindex/pkg/location"

// TypeRecord is a class/struct/union/enum/typedef declaration site.
// Only declaration sites are captured for types: a forward declaration is
// never recorded separately (spec.md §3, "Only declaration sites...").
type TypeRecord struct {
	ID            TypeId              `json:"id"`
	USR           string              `json:"usr"`
	ShortName     string              `json:"shortName,omitempty"`
	QualifiedName string              `json:"qualifiedName,omitempty"`
	Definition    *location.Location  `json:"definition,omitempty"`
	AliasOf       *TypeId             `json:"aliasOf,omitempty"`
	Parents       []TypeId            `json:"parents,omitempty"`
	Derived       []TypeId            `json:"derived,omitempty"`
	Types         []TypeId            `json:"types,omitempty"`
	Funcs         []FuncId            `json:"funcs,omitempty"`
	Vars          []VarId             `json:"vars,omitempty"`
	Uses          []location.Location `json:"uses,omitempty"`
	IsSystemDef   bool                `json:"isSystemDef,omitempty"`
}

// AddUsage implements the §4.4 usage-insertion policy: dedup by
// location-ignoring-interesting, promote to interesting monotonically,
// insert only when insertIfNotPresent is set and no match was found.
func (t *TypeRecord) AddUsage(loc location.Location, insertIfNotPresent bool) {
	t.Uses = addUsage(t.Uses, loc, insertIfNotPresent)
}

// FuncRecord is a function or method declaration/definition.
type FuncRecord struct {
	ID            FuncId              `json:"id"`
	USR           string              `json:"usr"`
	ShortName     string              `json:"shortName,omitempty"`
	QualifiedName string              `json:"qualifiedName,omitempty"`
	Definition    *location.Location  `json:"definition,omitempty"`
	Declarations  []location.Location `json:"declarations,omitempty"`
	DeclaringType *TypeId             `json:"declaringType,omitempty"`
	Base          *FuncId             `json:"base,omitempty"`
	Derived       []FuncId            `json:"derived,omitempty"`
	Locals        []VarId             `json:"locals,omitempty"`
	Callees       []FuncRef           `json:"callees,omitempty"`
	Callers       []FuncRef           `json:"callers,omitempty"`
	Uses          []location.Location `json:"uses,omitempty"`
	IsSystemDef   bool                `json:"isSystemDef,omitempty"`
}

// AddUsage implements the §4.4 usage-insertion policy for functions.
func (f *FuncRecord) AddUsage(loc location.Location, insertIfNotPresent bool) {
	f.Uses = addUsage(f.Uses, loc, insertIfNotPresent)
}

// VarRecord is a global, local or member variable declaration/definition.
type VarRecord struct {
	ID            VarId               `json:"id"`
	USR           string              `json:"usr"`
	ShortName     string              `json:"shortName,omitempty"`
	QualifiedName string              `json:"qualifiedName,omitempty"`
	Declaration   *location.Location  `json:"declaration,omitempty"`
	Definition    *location.Location  `json:"definition,omitempty"`
	VariableType  *TypeId             `json:"variableType,omitempty"`
	DeclaringType *TypeId             `json:"declaringType,omitempty"`
	Uses          []location.Location `json:"uses,omitempty"`
	IsSystemDef   bool                `json:"isSystemDef,omitempty"`
}

// AddUsage implements the §4.4 usage-insertion policy for variables.
func (v *VarRecord) AddUsage(loc location.Location, insertIfNotPresent bool) {
	v.Uses = addUsage(v.Uses, loc, insertIfNotPresent)
}

// addUsage is the one place the §4.4 promotion rule is implemented; every
// entity kind's AddUsage delegates to it so the rule cannot drift between
// Type/Func/Var.
func addUsage(uses []location.Location, loc location.Location, insertIfNotPresent bool) []location.Location {
	for i, u := range uses {
		if u.EqualsIgnoringInteresting(loc) {
			if !u.Interesting() && loc.Interesting() {
				uses[i] = u.WithInteresting(true)
			}
			return uses
		}
	}
	if insertIfNotPresent {
		return append(uses, loc)
	}
	return uses
}

// containsTypeId reports whether id is already present in ids, used to
// keep `derived` and nested-type containment insertion idempotent per
// spec.md §4.5 ("skip if already present"); `parents` is appended to
// without this check.
func containsTypeId(ids []TypeId, id TypeId) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func containsFuncId(ids []FuncId, id FuncId) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func containsVarId(ids []VarId, id VarId) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
