package graph

import (
	"encoding/json"

	"github.com/pkg/errors"

	"cxxindex/pkg/errs"
	"cxxindex/pkg/location"
)

// IndexedFile owns the three entity record vectors for one parsed
// translation unit plus the USR->LocalId intern tables that are the sole
// source of entity identity (spec.md §3, §4.3). It is populated
// monotonically by an IndexBuilder during one parse and is safe to read
// concurrently once handed off; it must not be mutated by more than one
// goroutine at a time during the parse.
type IndexedFile struct {
	Files *location.FileIdTable

	Types []*TypeRecord
	Funcs []*FuncRecord
	Vars  []*VarRecord

	typeByUSR map[string]TypeId
	funcByUSR map[string]FuncId
	varByUSR  map[string]VarId
}

// New returns an empty IndexedFile, with its FileIdTable seeded so the
// empty path maps to file id 0 (spec.md §3, Lifecycle).
func New() *IndexedFile {
	return &IndexedFile{
		Files:     location.NewFileIdTable(),
		typeByUSR: make(map[string]TypeId),
		funcByUSR: make(map[string]FuncId),
		varByUSR:  make(map[string]VarId),
	}
}

// ToTypeId interns usr, appending a fresh TypeRecord if it has not been
// seen before. Type accepts anonymous types (an empty usr), but the
// frontend is responsible for making every usr it passes here unique
// within the Type kind (spec.md §4.3).
func (f *IndexedFile) ToTypeId(usr string) TypeId {
	if id, ok := f.typeByUSR[usr]; ok {
		return id
	}
	id := TypeId(len(f.Types))
	f.Types = append(f.Types, &TypeRecord{ID: id, USR: usr})
	f.typeByUSR[usr] = id
	return id
}

// ToFuncId interns usr, appending a fresh FuncRecord if it has not been
// seen before. usr must be non-empty; an empty usr is an
// ErrInvariantViolated (spec.md §4.3, §4.5, §7).
func (f *IndexedFile) ToFuncId(usr string) (FuncId, error) {
	if usr == "" {
		return 0, errors.Wrap(errs.ErrInvariantViolated, "func usr must not be empty")
	}
	if id, ok := f.funcByUSR[usr]; ok {
		return id, nil
	}
	id := FuncId(len(f.Funcs))
	f.Funcs = append(f.Funcs, &FuncRecord{ID: id, USR: usr})
	f.funcByUSR[usr] = id
	return id, nil
}

// ToVarId interns usr, appending a fresh VarRecord if it has not been
// seen before. usr must be non-empty; an empty usr is an
// ErrInvariantViolated (spec.md §4.3, §4.5, §7).
func (f *IndexedFile) ToVarId(usr string) (VarId, error) {
	if usr == "" {
		return 0, errors.Wrap(errs.ErrInvariantViolated, "var usr must not be empty")
	}
	if id, ok := f.varByUSR[usr]; ok {
		return id, nil
	}
	id := VarId(len(f.Vars))
	f.Vars = append(f.Vars, &VarRecord{ID: id, USR: usr})
	f.varByUSR[usr] = id
	return id, nil
}

// ResolveType is a bounds-checked dereference of a TypeId into this
// file's Types vector.
func (f *IndexedFile) ResolveType(id TypeId) (*TypeRecord, error) {
	if int(id) < 0 || int(id) >= len(f.Types) {
		return nil, errors.Wrapf(errs.ErrInvariantViolated, "type id %d out of range [0,%d)", id, len(f.Types))
	}
	return f.Types[id], nil
}

// ResolveFunc is a bounds-checked dereference of a FuncId into this
// file's Funcs vector.
func (f *IndexedFile) ResolveFunc(id FuncId) (*FuncRecord, error) {
	if int(id) < 0 || int(id) >= len(f.Funcs) {
		return nil, errors.Wrapf(errs.ErrInvariantViolated, "func id %d out of range [0,%d)", id, len(f.Funcs))
	}
	return f.Funcs[id], nil
}

// ResolveVar is a bounds-checked dereference of a VarId into this file's
// Vars vector.
func (f *IndexedFile) ResolveVar(id VarId) (*VarRecord, error) {
	if int(id) < 0 || int(id) >= len(f.Vars) {
		return nil, errors.Wrapf(errs.ErrInvariantViolated, "var id %d out of range [0,%d)", id, len(f.Vars))
	}
	return f.Vars[id], nil
}

// serializedIndexedFile is the on-the-wire tree shape spec.md §6 requires:
// three record arrays in id order plus the FileIdTable path array.
type serializedIndexedFile struct {
	Files []string      `json:"files"`
	Types []*TypeRecord `json:"types"`
	Funcs []*FuncRecord `json:"funcs"`
	Vars  []*VarRecord  `json:"vars"`
}

// MarshalJSON renders the serialized tree shape of spec.md §6.
func (f *IndexedFile) MarshalJSON() ([]byte, error) {
	s := serializedIndexedFile{
		Files: f.Files.Paths(),
		Types: f.Types,
		Funcs: f.Funcs,
		Vars:  f.Vars,
	}
	if s.Types == nil {
		s.Types = []*TypeRecord{}
	}
	if s.Funcs == nil {
		s.Funcs = []*FuncRecord{}
	}
	if s.Vars == nil {
		s.Vars = []*VarRecord{}
	}
	return json.Marshal(s)
}

// UnmarshalJSON rebuilds an IndexedFile from the serialized tree shape.
// deserialize(serialize(x)) is structurally equal to x, as required by
// spec.md §6.
func (f *IndexedFile) UnmarshalJSON(data []byte) error {
	var s serializedIndexedFile
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	files, err := location.FromPaths(s.Files)
	if err != nil {
		return err
	}
	f.Files = files
	f.Types = s.Types
	f.Funcs = s.Funcs
	f.Vars = s.Vars
	f.typeByUSR = make(map[string]TypeId, len(f.Types))
	for _, t := range f.Types {
		f.typeByUSR[t.USR] = t.ID
	}
	f.funcByUSR = make(map[string]FuncId, len(f.Funcs))
	for _, fn := range f.Funcs {
		f.funcByUSR[fn.USR] = fn.ID
	}
	f.varByUSR = make(map[string]VarId, len(f.Vars))
	for _, v := range f.Vars {
		f.varByUSR[v.USR] = v.ID
	}
	return nil
}
