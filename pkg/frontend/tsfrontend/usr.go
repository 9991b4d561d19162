package tsfrontend

import (
	"fmt"
	"strings"

	"cxxindex/pkg/location"
)

// primitiveTypes are the built-in type keywords tree-sitter's C/C++
// grammars surface as `primitive_type` nodes. They never get a
// declaration site, only a synthesized USR every reference shares.
var primitiveTypes = map[string]bool{
	"void": true, "bool": true, "char": true, "char8_t": true, "char16_t": true,
	"char32_t": true, "wchar_t": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"size_t": true, "ssize_t": true, "int8_t": true, "int16_t": true,
	"int32_t": true, "int64_t": true, "uint8_t": true, "uint16_t": true,
	"uint32_t": true, "uint64_t": true, "auto": true,
}

func primitiveTypeUSR(name string) (string, bool) {
	if primitiveTypes[name] {
		return "c:builtin@" + name, true
	}
	return "", false
}

// typeUSRForScope synthesizes the USR a type named name would get if
// declared directly inside the type nesting described by stack (outermost
// first, own USRs already resolved).
func typeUSRForScope(stack []string, name string) string {
	if len(stack) == 0 {
		return "c:@S@" + name
	}
	return stack[len(stack)-1] + "@S@" + name
}

func funcUSRForScope(declaringTypeUSR, name string) string {
	if declaringTypeUSR == "" {
		return "c:@F@" + name + "#"
	}
	return declaringTypeUSR + "@F@" + name + "#"
}

func varUSRForScope(enclosingFuncUSR, declaringTypeUSR, name string) string {
	switch {
	case enclosingFuncUSR != "":
		return enclosingFuncUSR + "@" + name
	case declaringTypeUSR != "":
		return declaringTypeUSR + "@" + name
	default:
		return "c:@" + name
	}
}

// stripQualifiers drops leading `struct `/`class `/`enum `/`union ` and any
// `::` scope qualification tree-sitter left inline in an identifier's text,
// e.g. "struct Foo" -> "Foo", "ns::Outer::Inner" -> "Inner".
func stripQualifiers(name string) string {
	for _, kw := range []string{"struct ", "class ", "enum ", "union "} {
		name = strings.TrimPrefix(name, kw)
	}
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		name = name[idx+2:]
	}
	return strings.TrimSpace(name)
}

// registry tracks the lexical facts a single-pass syntax walk can recover
// without semantic resolution: every type's USR by its bare name (last
// declaration wins, matching how a later redeclaration shadows an earlier
// forward reference in one translation unit), each type's immediate base
// USRs in declaration order, and each type's own methods by name so an
// override in a derived class can be linked to the base method it hides.
type registry struct {
	typeByName  map[string]string
	typeBases   map[string][]string
	typeMethods map[string]map[string]string
	funcByName  map[string]string
}

func newRegistry() *registry {
	return &registry{
		typeByName:  make(map[string]string),
		typeBases:   make(map[string][]string),
		typeMethods: make(map[string]map[string]string),
		funcByName:  make(map[string]string),
	}
}

func (r *registry) resolveTypeUSR(stack []string, name string) string {
	name = stripQualifiers(name)
	if name == "" {
		return ""
	}
	if usr, ok := primitiveTypeUSR(name); ok {
		return usr
	}
	if usr, ok := r.typeByName[name]; ok {
		return usr
	}
	// Unseen name: assume it names a type at the innermost enclosing
	// scope rather than at file scope, since that's the common case for
	// forward-declared nested types and template parameters we can't
	// otherwise resolve.
	usr := typeUSRForScope(stack, name)
	r.typeByName[name] = usr
	return usr
}

// declareType synthesizes and interns the USR for a type declaration site.
// graph.IndexedFile.ToTypeId requires every USR passed to it to be unique
// within the Type kind (spec.md §4.3): an anonymous struct/union/enum has
// no name to key on, so its USR is instead derived from its declaration
// site, which is unique within one translation unit.
func (r *registry) declareType(stack []string, name string, bases []string, loc location.FrontendLocation) string {
	if name == "" {
		usr := typeUSRForScope(stack, "") + fmt.Sprintf("@anon@%s:%d:%d", loc.File, loc.Line, loc.Column)
		if len(bases) > 0 {
			r.typeBases[usr] = bases
		}
		return usr
	}
	usr := typeUSRForScope(stack, name)
	r.typeByName[name] = usr
	if len(bases) > 0 {
		r.typeBases[usr] = bases
	}
	return usr
}

func (r *registry) registerMethod(declaringTypeUSR, name, funcUSR string) {
	if declaringTypeUSR == "" {
		return
	}
	m, ok := r.typeMethods[declaringTypeUSR]
	if !ok {
		m = make(map[string]string)
		r.typeMethods[declaringTypeUSR] = m
	}
	m[name] = funcUSR
}

// findOverrides walks the base chain of declaringTypeUSR depth-first in
// declaration order, collecting every same-named method it finds. The
// builder resolves the deterministic "first override wins" rule
// (spec.md §9); this only needs to offer candidates in a stable order.
func (r *registry) findOverrides(declaringTypeUSR, name string) []string {
	var out []string
	visited := make(map[string]bool)
	var walk func(typeUSR string)
	walk = func(typeUSR string) {
		if visited[typeUSR] {
			return
		}
		visited[typeUSR] = true
		for _, base := range r.typeBases[typeUSR] {
			if methods, ok := r.typeMethods[base]; ok {
				if usr, ok := methods[name]; ok {
					out = append(out, usr)
				}
			}
			walk(base)
		}
	}
	walk(declaringTypeUSR)
	return out
}

func (r *registry) resolveCallUSR(name string) (string, bool) {
	usr, ok := r.funcByName[name]
	return usr, ok
}
