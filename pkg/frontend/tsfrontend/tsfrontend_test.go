package tsfrontend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxxindex/pkg/frontend"
)

func parseSource(t *testing.T, ext, src string) []frontend.Event {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input"+ext)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	var events []frontend.Event
	fe := New()
	err := fe.Parse(context.Background(), path, nil, func(ev frontend.Event) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	return events
}

func findEvent(events []frontend.Event, kind frontend.Kind, shortName string) (frontend.Event, bool) {
	for _, ev := range events {
		if ev.Kind == kind && ev.ShortName == shortName {
			return ev, true
		}
	}
	return frontend.Event{}, false
}

func TestParseFreeFunctionDefinition(t *testing.T) {
	events := parseSource(t, ".cc", `
int add(int a, int b) {
    return a;
}
`)
	ev, ok := findEvent(events, frontend.KindFuncDef, "add")
	require.True(t, ok, "expected a FuncDef event for add, got %+v", events)
	assert.Equal(t, "c:@F@add#", ev.USR)
	assert.Empty(t, ev.DeclaringTypeUSR)
}

func TestParseCallGraph(t *testing.T) {
	events := parseSource(t, ".cc", `
void helper() {}

void caller() {
    helper();
}
`)
	helperDef, ok := findEvent(events, frontend.KindFuncDef, "helper")
	require.True(t, ok)
	callerDef, ok := findEvent(events, frontend.KindFuncDef, "caller")
	require.True(t, ok)

	var ref frontend.Event
	found := false
	for _, ev := range events {
		if ev.Kind == frontend.KindFuncRef {
			ref = ev
			found = true
		}
	}
	require.True(t, found, "expected a FuncRef event, got %+v", events)
	assert.Equal(t, callerDef.USR, ref.CallerUSR)
	assert.Equal(t, helperDef.USR, ref.CalleeUSR)
	assert.True(t, ref.IsCall)
}

func TestParseInheritanceAndOverride(t *testing.T) {
	events := parseSource(t, ".cc", `
class Base {
public:
    virtual void speak() {}
};

class Derived : public Base {
public:
    void speak() override {}
};
`)
	base, ok := findEvent(events, frontend.KindTypeDecl, "Base")
	require.True(t, ok)
	derived, ok := findEvent(events, frontend.KindTypeDecl, "Derived")
	require.True(t, ok)
	require.Contains(t, derived.BaseUSRs, base.USR)

	baseSpeak, ok := findEvent(events, frontend.KindFuncDef, "speak")
	require.True(t, ok)
	assert.Equal(t, base.USR, baseSpeak.DeclaringTypeUSR)

	var derivedSpeak frontend.Event
	found := false
	for _, ev := range events {
		if ev.Kind == frontend.KindFuncDef && ev.ShortName == "speak" && ev.DeclaringTypeUSR == derived.USR {
			derivedSpeak = ev
			found = true
		}
	}
	require.True(t, found)
	require.Contains(t, derivedSpeak.OverrideUSRs, baseSpeak.USR)
}

func TestParseTypedefAlias(t *testing.T) {
	events := parseSource(t, ".cc", `
typedef int MyInt;
`)
	ev, ok := findEvent(events, frontend.KindTypeAlias, "MyInt")
	require.True(t, ok, "expected a TypeAlias event, got %+v", events)
	assert.Equal(t, "c:builtin@int", ev.AliasedUSR)
}

func TestParseGlobalVariable(t *testing.T) {
	events := parseSource(t, ".cc", `
int counter = 0;
`)
	ev, ok := findEvent(events, frontend.KindVarDeclDef, "counter")
	require.True(t, ok, "expected a VarDeclDef event, got %+v", events)
	assert.Equal(t, "c:@counter", ev.USR)
	assert.Equal(t, "c:builtin@int", ev.VariableTypeUSR)
}

func TestParseAnonymousTypesGetDistinctUSRs(t *testing.T) {
	events := parseSource(t, ".cc", `
struct { int a; } first;
struct { int b; } second;
`)
	var anonUSRs []string
	for _, ev := range events {
		if ev.Kind == frontend.KindTypeDecl && ev.ShortName == "" {
			anonUSRs = append(anonUSRs, ev.USR)
		}
	}
	require.Len(t, anonUSRs, 2, "expected two anonymous TypeDecl events, got %+v", events)
	assert.NotEmpty(t, anonUSRs[0])
	assert.NotEmpty(t, anonUSRs[1])
	assert.NotEqual(t, anonUSRs[0], anonUSRs[1])
}

func TestParseNestedTypeReportsDeclaringType(t *testing.T) {
	events := parseSource(t, ".cc", `
struct Outer {
    struct Inner { int x; };
    int field;
    void method() {}
};
`)
	outer, ok := findEvent(events, frontend.KindTypeDecl, "Outer")
	require.True(t, ok)
	inner, ok := findEvent(events, frontend.KindTypeDecl, "Inner")
	require.True(t, ok)
	assert.Equal(t, outer.USR, inner.DeclaringTypeUSR)

	method, ok := findEvent(events, frontend.KindFuncDef, "method")
	require.True(t, ok)
	assert.Equal(t, outer.USR, method.DeclaringTypeUSR)
}

func TestParseSelectsCGrammarForDotC(t *testing.T) {
	events := parseSource(t, ".c", `
struct Point { int x; int y; };
`)
	_, ok := findEvent(events, frontend.KindTypeDecl, "Point")
	assert.True(t, ok, "expected a TypeDecl event for a plain C struct, got %+v", events)
}
