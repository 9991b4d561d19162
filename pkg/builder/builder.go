// Package builder implements the IndexBuilder of spec.md §4.5: it
// consumes the event stream a frontend.Frontend produces for one
// translation unit and drives a graph.IndexedFile's interning,
// usage-insertion and relationship-wiring rules.
package builder

import (
	"context"

	"github.com/pkg/errors"

	"cxxindex/pkg/errs"
	"cxxindex/pkg/frontend"
	"cxxindex/pkg/graph"
	"cxxindex/pkg/location"
	"cxxindex/pkg/logger"
	"cxxindex/pkg/metrics"
)

// Builder drives one IndexedFile's population from a single frontend's
// event stream. A Builder is used for exactly one parse and is not safe
// for concurrent use (spec.md §5, "one IndexedFile is built by exactly
// one thread").
type Builder struct {
	file *graph.IndexedFile
	log  logger.Logger
	rec  *metrics.Recorder
}

// New returns a Builder wrapping a freshly-created, empty IndexedFile.
// log and rec may be nil-safe zero values (logger.NewNop(), a nil
// *metrics.Recorder) when the caller doesn't care about diagnostics.
func New(log logger.Logger, rec *metrics.Recorder) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{file: graph.New(), log: log, rec: rec}
}

// IndexedFile returns the file being built. It is only safe to read
// concurrently once the parse that owns this Builder has completed.
func (b *Builder) IndexedFile() *graph.IndexedFile {
	return b.file
}

// HandleEvent checks cooperative cancellation and, if not cancelled,
// dispatches ev by its Kind. It is the single point spec.md §5 describes
// as "the builder checks a cooperative cancellation signal between
// top-level events". A returned error satisfying errs.IsFatal must abort
// the parse; any other error has already been absorbed and logged.
func (b *Builder) HandleEvent(ctx context.Context, ev frontend.Event) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(errs.ErrCancelled, ctx.Err().Error())
	default:
	}

	var err error
	switch ev.Kind {
	case frontend.KindTypeDecl:
		err = b.dispatchTypeDecl(ev)
	case frontend.KindTypeAlias:
		err = b.dispatchTypeAlias(ev)
	case frontend.KindFuncDecl:
		err = b.dispatchFuncDecl(ev)
	case frontend.KindFuncDef:
		err = b.dispatchFuncDef(ev)
	case frontend.KindFuncRef:
		err = b.dispatchFuncRef(ev)
	case frontend.KindVarDeclDef:
		err = b.dispatchVarDeclDef(ev)
	case frontend.KindVarRef:
		err = b.dispatchVarRef(ev)
	case frontend.KindTypeRef:
		err = b.dispatchTypeRef(ev)
	default:
		// Unknown event kinds are frontend-version drift, not bugs in
		// this builder: ignore them (spec.md §7).
		b.log.Debug("builder: ignoring unknown event kind %d", ev.Kind)
		return nil
	}

	if err == nil {
		return nil
	}
	if errs.IsFatal(err) {
		return err
	}
	b.log.Warn("builder: absorbing non-fatal error for event kind %d: %v", ev.Kind, err)
	return nil
}

func (b *Builder) resolveLoc(ev frontend.Event, interesting bool) (location.Location, error) {
	return b.file.Files.Resolve(ev.Loc, interesting)
}

func (b *Builder) dispatchTypeDecl(ev frontend.Event) error {
	before := len(b.file.Types)
	id := b.file.ToTypeId(ev.USR)
	if b.rec != nil && len(b.file.Types) > before {
		b.rec.ObserveEntityInterned("type")
	}
	t, err := b.file.ResolveType(id)
	if err != nil {
		return err
	}
	fillTypeNames(t, ev.ShortName, ev.QualifiedName)

	if t.Definition == nil {
		loc, err := b.resolveLoc(ev, true)
		if err != nil {
			return err
		}
		t.Definition = &loc
		t.IsSystemDef = ev.IsSystemHeader
	}

	for _, baseUSR := range ev.BaseUSRs {
		baseID := b.file.ToTypeId(baseUSR)
		if err := b.file.AddParent(id, baseID); err != nil {
			return err
		}
	}

	if ev.DeclaringTypeUSR != "" {
		parentID := b.file.ToTypeId(ev.DeclaringTypeUSR)
		if err := b.file.AddContainedType(parentID, id); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) dispatchTypeAlias(ev frontend.Event) error {
	id := b.file.ToTypeId(ev.USR)
	t, err := b.file.ResolveType(id)
	if err != nil {
		return err
	}
	fillTypeNames(t, ev.ShortName, ev.QualifiedName)

	if t.Definition == nil {
		loc, err := b.resolveLoc(ev, true)
		if err != nil {
			return err
		}
		t.Definition = &loc
		t.IsSystemDef = ev.IsSystemHeader
	}

	if t.AliasOf == nil && ev.AliasedUSR != "" {
		aliased := b.file.ToTypeId(ev.AliasedUSR)
		t.AliasOf = &aliased
	}

	if ev.DeclaringTypeUSR != "" {
		parentID := b.file.ToTypeId(ev.DeclaringTypeUSR)
		if err := b.file.AddContainedType(parentID, id); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) dispatchFuncDecl(ev frontend.Event) error {
	before := len(b.file.Funcs)
	id, err := b.file.ToFuncId(ev.USR)
	if err != nil {
		return err
	}
	if b.rec != nil && len(b.file.Funcs) > before {
		b.rec.ObserveEntityInterned("func")
	}
	f, err := b.file.ResolveFunc(id)
	if err != nil {
		return err
	}
	fillFuncNames(f, ev.ShortName, ev.QualifiedName)

	loc, err := b.resolveLoc(ev, true)
	if err != nil {
		return err
	}
	f.Declarations = append(f.Declarations, loc)

	if ev.DeclaringTypeUSR != "" {
		dt := b.file.ToTypeId(ev.DeclaringTypeUSR)
		if f.DeclaringType == nil {
			f.DeclaringType = &dt
		}
		if err := b.file.AddContainedFunc(dt, id); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) dispatchFuncDef(ev frontend.Event) error {
	id, err := b.file.ToFuncId(ev.USR)
	if err != nil {
		return err
	}
	f, err := b.file.ResolveFunc(id)
	if err != nil {
		return err
	}
	fillFuncNames(f, ev.ShortName, ev.QualifiedName)

	if f.Definition == nil {
		loc, err := b.resolveLoc(ev, true)
		if err != nil {
			return err
		}
		f.Definition = &loc
		f.IsSystemDef = ev.IsSystemHeader
	}

	if ev.DeclaringTypeUSR != "" {
		dt := b.file.ToTypeId(ev.DeclaringTypeUSR)
		if f.DeclaringType == nil {
			f.DeclaringType = &dt
		}
		if err := b.file.AddContainedFunc(dt, id); err != nil {
			return err
		}
	}

	for _, overrideUSR := range ev.OverrideUSRs {
		baseID, err := b.file.ToFuncId(overrideUSR)
		if err != nil {
			return err
		}
		if err := b.file.SetOverride(id, baseID); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) dispatchFuncRef(ev frontend.Event) error {
	calleeID, err := b.file.ToFuncId(ev.CalleeUSR)
	if err != nil {
		return err
	}
	loc, err := b.resolveLoc(ev, true)
	if err != nil {
		return err
	}
	callee, err := b.file.ResolveFunc(calleeID)
	if err != nil {
		return err
	}
	callee.AddUsage(loc, true)

	// §9 open question 1: when the semantic parent isn't a resolvable
	// func (static initializers, default member initializers), record
	// the use on the callee but omit the caller edge.
	if ev.CallerUSR == "" {
		return nil
	}
	callerID, err := b.file.ToFuncId(ev.CallerUSR)
	if err != nil {
		return err
	}
	return b.file.AddCall(callerID, calleeID, loc)
}

func (b *Builder) dispatchVarDeclDef(ev frontend.Event) error {
	before := len(b.file.Vars)
	id, err := b.file.ToVarId(ev.USR)
	if err != nil {
		return err
	}
	if b.rec != nil && len(b.file.Vars) > before {
		b.rec.ObserveEntityInterned("var")
	}
	v, err := b.file.ResolveVar(id)
	if err != nil {
		return err
	}
	fillVarNames(v, ev.ShortName, ev.QualifiedName)

	if ev.IsDeclaration && v.Declaration == nil {
		loc, err := b.resolveLoc(ev, true)
		if err != nil {
			return err
		}
		v.Declaration = &loc
	}
	if ev.IsDefinition && v.Definition == nil {
		loc, err := b.resolveLoc(ev, true)
		if err != nil {
			return err
		}
		v.Definition = &loc
		v.IsSystemDef = ev.IsSystemHeader
	}

	if v.VariableType == nil && ev.VariableTypeUSR != "" {
		vt := b.file.ToTypeId(ev.VariableTypeUSR)
		v.VariableType = &vt
	}
	if ev.DeclaringTypeUSR != "" {
		dt := b.file.ToTypeId(ev.DeclaringTypeUSR)
		if v.DeclaringType == nil {
			v.DeclaringType = &dt
		}
		if err := b.file.AddContainedVar(dt, id); err != nil {
			return err
		}
	}

	if ev.EnclosingFuncUSR != "" {
		fnID, err := b.file.ToFuncId(ev.EnclosingFuncUSR)
		if err != nil {
			return err
		}
		fn, err := b.file.ResolveFunc(fnID)
		if err != nil {
			return err
		}
		if !containsVarId(fn.Locals, id) {
			fn.Locals = append(fn.Locals, id)
		}
	}
	return nil
}

func (b *Builder) dispatchVarRef(ev frontend.Event) error {
	id, err := b.file.ToVarId(ev.USR)
	if err != nil {
		return err
	}
	v, err := b.file.ResolveVar(id)
	if err != nil {
		return err
	}
	loc, err := b.resolveLoc(ev, ev.IsDeclSite)
	if err != nil {
		return err
	}
	v.AddUsage(loc, true)
	return nil
}

func (b *Builder) dispatchTypeRef(ev frontend.Event) error {
	id := b.file.ToTypeId(ev.USR)
	t, err := b.file.ResolveType(id)
	if err != nil {
		return err
	}
	loc, err := b.resolveLoc(ev, false)
	if err != nil {
		return err
	}
	t.AddUsage(loc, true)
	return nil
}

func containsVarId(ids []graph.VarId, id graph.VarId) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func fillTypeNames(t *graph.TypeRecord, short, qualified string) {
	if t.ShortName == "" {
		t.ShortName = short
	}
	if t.QualifiedName == "" {
		t.QualifiedName = qualified
	}
}

func fillFuncNames(f *graph.FuncRecord, short, qualified string) {
	if f.ShortName == "" {
		f.ShortName = short
	}
	if f.QualifiedName == "" {
		f.QualifiedName = qualified
	}
}

func fillVarNames(v *graph.VarRecord, short, qualified string) {
	if v.ShortName == "" {
		v.ShortName = short
	}
	if v.QualifiedName == "" {
		v.QualifiedName = qualified
	}
}
