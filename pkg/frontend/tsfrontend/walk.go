package tsfrontend

import (
	"context"

	"github.com/pkg/errors"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"cxxindex/pkg/errs"
	"cxxindex/pkg/frontend"
	"cxxindex/pkg/location"
)

// walker drives one translation unit's syntax tree through emit, tracking
// just enough lexical context (enclosing types, enclosing function) to
// synthesize USRs and wire caller/callee and derived/base relationships.
type walker struct {
	filename string
	content  []byte
	emit     func(frontend.Event) error
	reg      *registry

	typeStack []string
	funcStack []string
}

func newWalker(filename string, content []byte, emit func(frontend.Event) error) *walker {
	return &walker{
		filename: filename,
		content:  content,
		emit:     emit,
		reg:      newRegistry(),
	}
}

func (w *walker) text(n *sitter.Node) string {
	return n.Utf8Text(w.content)
}

func (w *walker) locOf(n *sitter.Node) location.FrontendLocation {
	p := n.StartPosition()
	return location.FrontendLocation{File: w.filename, Line: uint32(p.Row) + 1, Column: uint32(p.Column) + 1}
}

func (w *walker) currentType() string {
	if len(w.typeStack) == 0 {
		return ""
	}
	return w.typeStack[len(w.typeStack)-1]
}

func (w *walker) currentFunc() string {
	if len(w.funcStack) == 0 {
		return ""
	}
	return w.funcStack[len(w.funcStack)-1]
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(errs.ErrCancelled, ctx.Err().Error())
	default:
		return nil
	}
}

func (w *walker) walkTranslationUnit(ctx context.Context, root *sitter.Node) error {
	return w.walkChildren(ctx, root)
}

// walkChildren dispatches every named child of n through walkNode.
func (w *walker) walkChildren(ctx context.Context, n *sitter.Node) error {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.IsMissing() || child.IsError() {
			continue
		}
		if err := w.walkNode(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkNode(ctx context.Context, n *sitter.Node) error {
	if err := checkCancelled(ctx); err != nil {
		return err
	}

	switch n.Kind() {
	case "struct_specifier", "class_specifier", "union_specifier":
		return w.walkClassLike(ctx, n)
	case "enum_specifier":
		return w.walkEnum(ctx, n)
	case "alias_declaration":
		return w.walkAliasDeclaration(n)
	case "type_definition":
		return w.walkTypedef(n)
	case "function_definition":
		return w.walkFunctionDefinition(ctx, n)
	case "field_declaration":
		return w.walkFieldDeclaration(ctx, n)
	case "declaration":
		return w.walkDeclaration(ctx, n)
	case "namespace_definition", "linkage_specification", "preproc_ifdef", "preproc_if",
		"declaration_list", "extern_c_block":
		return w.walkChildren(ctx, n)
	case "template_declaration":
		return w.walkChildren(ctx, n)
	default:
		// Anything else at this level (using_declaration, static_assert,
		// preproc directives, comments...) carries no entity this index
		// tracks.
		return nil
	}
}

// walkClassLike handles struct/class/union declarations, wiring immediate
// base specifiers and recursing into the member list.
func (w *walker) walkClassLike(ctx context.Context, n *sitter.Node) error {
	nameNode := n.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = stripQualifiers(w.text(nameNode))
	}

	var baseUSRs []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.IsMissing() || child.IsError() {
			continue
		}
		if child.Kind() == "base_class_clause" {
			for _, baseName := range findAllTypeIdentifiers(child, w.content) {
				baseUSRs = append(baseUSRs, w.reg.resolveTypeUSR(w.typeStack, baseName))
			}
		}
	}

	loc := w.locOf(n)
	usr := w.reg.declareType(w.typeStack, name, baseUSRs, loc)
	declaringTypeUSR := w.currentType()

	if err := w.emit(frontend.Event{
		Kind:             frontend.KindTypeDecl,
		Loc:              loc,
		USR:              usr,
		ShortName:        name,
		BaseUSRs:         baseUSRs,
		DeclaringTypeUSR: declaringTypeUSR,
	}); err != nil {
		return err
	}

	w.typeStack = append(w.typeStack, usr)
	defer func() { w.typeStack = w.typeStack[:len(w.typeStack)-1] }()

	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	return w.walkChildren(ctx, body)
}

// walkEnum handles enum/enum class declarations; enumerators are recorded
// as variables owned by the enum type, since spec.md has no separate
// enumerator kind.
func (w *walker) walkEnum(ctx context.Context, n *sitter.Node) error {
	nameNode := n.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = stripQualifiers(w.text(nameNode))
	}
	loc := w.locOf(n)
	usr := w.reg.declareType(w.typeStack, name, nil, loc)

	if err := w.emit(frontend.Event{
		Kind: frontend.KindTypeDecl, Loc: loc, USR: usr, ShortName: name,
		DeclaringTypeUSR: w.currentType(),
	}); err != nil {
		return err
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		enumerator := body.NamedChild(i)
		if enumerator == nil || enumerator.Kind() != "enumerator" {
			continue
		}
		nameNode := enumerator.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		enumName := w.text(nameNode)
		varUSR := varUSRForScope("", usr, enumName)
		if err := w.emit(frontend.Event{
			Kind: frontend.KindVarDeclDef, Loc: w.locOf(enumerator), USR: varUSR,
			ShortName: enumName, IsDeclaration: true, IsDefinition: true,
			DeclaringTypeUSR: usr, VariableTypeUSR: usr,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkAliasDeclaration(n *sitter.Node) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := w.text(nameNode)
	usr := w.reg.declareType(w.typeStack, name, nil, w.locOf(n))

	var aliasedUSR string
	typeNode := n.ChildByFieldName("type")
	if typeNode != nil {
		if names := findAllTypeIdentifiers(typeNode, w.content); len(names) > 0 {
			aliasedUSR = w.reg.resolveTypeUSR(w.typeStack, names[0])
		} else if prim := findPrimitiveType(typeNode, w.content); prim != "" {
			aliasedUSR, _ = primitiveTypeUSR(prim)
		}
	}

	return w.emit(frontend.Event{
		Kind: frontend.KindTypeAlias, Loc: w.locOf(n), USR: usr, ShortName: name,
		AliasedUSR: aliasedUSR, DeclaringTypeUSR: w.currentType(),
	})
}

func (w *walker) walkTypedef(n *sitter.Node) error {
	declaratorNode := n.ChildByFieldName("declarator")
	if declaratorNode == nil {
		return nil
	}
	name := declaratorName(declaratorNode, w.content)
	if name == "" {
		idents := findAllIdentifiers(declaratorNode, w.content)
		if len(idents) == 0 {
			return nil
		}
		name = idents[len(idents)-1]
	}
	usr := w.reg.declareType(w.typeStack, name, nil, w.locOf(n))

	var aliasedUSR string
	typeNode := n.ChildByFieldName("type")
	if typeNode != nil {
		if names := findAllTypeIdentifiers(typeNode, w.content); len(names) > 0 {
			aliasedUSR = w.reg.resolveTypeUSR(w.typeStack, names[0])
		} else if prim := findPrimitiveType(typeNode, w.content); prim != "" {
			aliasedUSR, _ = primitiveTypeUSR(prim)
		}
	}

	return w.emit(frontend.Event{
		Kind: frontend.KindTypeAlias, Loc: w.locOf(n), USR: usr, ShortName: name,
		AliasedUSR: aliasedUSR, DeclaringTypeUSR: w.currentType(),
	})
}

// walkFunctionDefinition handles a function or method with a body. The
// override candidates it emits are name-based approximations of a real
// vtable lookup: any same-named method reachable through the declaring
// type's base chain.
func (w *walker) walkFunctionDefinition(ctx context.Context, n *sitter.Node) error {
	declarator := n.ChildByFieldName("declarator")
	fnDeclarator, name := findFunctionDeclarator(declarator, w.content)
	if fnDeclarator == nil || name == "" {
		return nil
	}

	declaringTypeUSR := w.currentType()
	usr := funcUSRForScope(declaringTypeUSR, name)
	w.reg.funcByName[name] = usr
	w.reg.registerMethod(declaringTypeUSR, name, usr)

	var overrides []string
	if declaringTypeUSR != "" {
		overrides = w.reg.findOverrides(declaringTypeUSR, name)
	}

	if err := w.emit(frontend.Event{
		Kind: frontend.KindFuncDef, Loc: w.locOf(n), USR: usr, ShortName: name,
		DeclaringTypeUSR: declaringTypeUSR, OverrideUSRs: overrides,
	}); err != nil {
		return err
	}

	w.funcStack = append(w.funcStack, usr)
	defer func() { w.funcStack = w.funcStack[:len(w.funcStack)-1] }()

	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	return w.walkStatement(ctx, body)
}

// walkFieldDeclaration handles data members, method prototypes and nested
// type declarations found inside a class/struct/union body — the same
// three shapes walkDeclaration handles at file/block scope, just folded by
// the grammar into a `field_declaration` node instead of a `declaration`
// one.
func (w *walker) walkFieldDeclaration(ctx context.Context, n *sitter.Node) error {
	declaringTypeUSR := w.currentType()
	declarator := n.ChildByFieldName("declarator")

	if typeNode := n.ChildByFieldName("type"); typeNode != nil && declarator == nil {
		switch typeNode.Kind() {
		case "struct_specifier", "class_specifier", "union_specifier":
			if typeNode.ChildByFieldName("body") != nil {
				return w.walkClassLike(ctx, typeNode)
			}
		case "enum_specifier":
			if typeNode.ChildByFieldName("body") != nil {
				return w.walkEnum(ctx, typeNode)
			}
		}
	}

	if fnDeclarator, name := findFunctionDeclarator(declarator, w.content); fnDeclarator != nil {
		usr := funcUSRForScope(declaringTypeUSR, name)
		w.reg.funcByName[name] = usr
		w.reg.registerMethod(declaringTypeUSR, name, usr)
		return w.emit(frontend.Event{
			Kind: frontend.KindFuncDecl, Loc: w.locOf(n), USR: usr, ShortName: name,
			DeclaringTypeUSR: declaringTypeUSR,
		})
	}

	name := declaratorName(declarator, w.content)
	if name == "" {
		return nil
	}
	varUSR := varUSRForScope("", declaringTypeUSR, name)

	var varTypeUSR string
	typeNode := n.ChildByFieldName("type")
	if typeNode != nil {
		varTypeUSR = w.resolveDeclaredTypeUSR(typeNode)
	}

	return w.emit(frontend.Event{
		Kind: frontend.KindVarDeclDef, Loc: w.locOf(n), USR: varUSR, ShortName: name,
		IsDeclaration: true, IsDefinition: true,
		DeclaringTypeUSR: declaringTypeUSR, VariableTypeUSR: varTypeUSR,
	})
}

// walkDeclaration handles a top-level (or block-scope) `declaration` node:
// a class/struct/union/enum definition with no declarator (`struct Foo {
// ... };`), a function prototype, or one or more variable declarators —
// the C/C++ grammars fold all of these into the same `declaration`
// production.
func (w *walker) walkDeclaration(ctx context.Context, n *sitter.Node) error {
	declaringTypeUSR := w.currentType()
	enclosingFuncUSR := w.currentFunc()

	typeNode := n.ChildByFieldName("type")
	if typeNode != nil {
		switch typeNode.Kind() {
		case "struct_specifier", "class_specifier", "union_specifier":
			if typeNode.ChildByFieldName("body") != nil {
				if err := w.walkClassLike(ctx, typeNode); err != nil {
					return err
				}
			}
		case "enum_specifier":
			if typeNode.ChildByFieldName("body") != nil {
				if err := w.walkEnum(ctx, typeNode); err != nil {
					return err
				}
			}
		}
	}

	var varTypeUSR string
	if typeNode != nil {
		varTypeUSR = w.resolveDeclaredTypeUSR(typeNode)
	}

	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_declarator":
			_, name := findFunctionDeclarator(child, w.content)
			if name == "" {
				continue
			}
			usr := funcUSRForScope(declaringTypeUSR, name)
			w.reg.funcByName[name] = usr
			w.reg.registerMethod(declaringTypeUSR, name, usr)
			if err := w.emit(frontend.Event{
				Kind: frontend.KindFuncDecl, Loc: w.locOf(n), USR: usr, ShortName: name,
				DeclaringTypeUSR: declaringTypeUSR,
			}); err != nil {
				return err
			}
		case "init_declarator", "identifier", "pointer_declarator", "reference_declarator", "array_declarator":
			name := declaratorName(child, w.content)
			if name == "" {
				continue
			}
			usr := varUSRForScope(enclosingFuncUSR, declaringTypeUSR, name)
			if err := w.emit(frontend.Event{
				Kind: frontend.KindVarDeclDef, Loc: w.locOf(n), USR: usr, ShortName: name,
				IsDeclaration: true, IsDefinition: true,
				DeclaringTypeUSR: declaringTypeUSR, VariableTypeUSR: varTypeUSR,
				EnclosingFuncUSR: enclosingFuncUSR,
			}); err != nil {
				return err
			}
			if initExpr := child.ChildByFieldName("value"); initExpr != nil {
				if err := w.walkExpression(initExpr); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// resolveDeclaredTypeUSR reads the type identifier(s) out of a
// declaration's `type` field, falling back to a primitive keyword.
func (w *walker) resolveDeclaredTypeUSR(typeNode *sitter.Node) string {
	if names := findAllTypeIdentifiers(typeNode, w.content); len(names) > 0 {
		return w.reg.resolveTypeUSR(w.typeStack, names[0])
	}
	if prim := findPrimitiveType(typeNode, w.content); prim != "" {
		usr, _ := primitiveTypeUSR(prim)
		return usr
	}
	return ""
}

// walkStatement recurses through a function body looking for calls, local
// declarations and bare references; it does not model control flow, only
// syntactic containment.
func (w *walker) walkStatement(ctx context.Context, n *sitter.Node) error {
	if err := checkCancelled(ctx); err != nil {
		return err
	}
	switch n.Kind() {
	case "declaration":
		return w.walkDeclaration(ctx, n)
	case "call_expression":
		return w.walkCall(n)
	default:
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child == nil || child.IsMissing() || child.IsError() {
				continue
			}
			if err := w.walkStatement(ctx, child); err != nil {
				return err
			}
		}
		return nil
	}
}

// walkExpression is walkStatement's non-cancellable counterpart for
// sub-expressions reached outside the per-statement loop (initializers).
func (w *walker) walkExpression(n *sitter.Node) error {
	if n.Kind() == "call_expression" {
		return w.walkCall(n)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.IsMissing() || child.IsError() {
			continue
		}
		if err := w.walkExpression(child); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkCall(n *sitter.Node) error {
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil {
		return nil
	}
	name := callTargetName(fnNode, w.content)
	if name == "" {
		return nil
	}

	calleeUSR, ok := w.reg.resolveCallUSR(name)
	if !ok {
		calleeUSR = "c:@F@" + name + "#"
		w.reg.funcByName[name] = calleeUSR
	}

	if err := w.emit(frontend.Event{
		Kind: frontend.KindFuncRef, Loc: w.locOf(n), CallerUSR: w.currentFunc(),
		CalleeUSR: calleeUSR, IsCall: true,
	}); err != nil {
		return err
	}

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	return w.walkExpression(args)
}

// callTargetName extracts the callee's bare name from the `function`
// field of a call_expression: a plain identifier, or the right-hand side
// of a `.`/`->`/`::` access.
func callTargetName(n *sitter.Node, content []byte) string {
	switch n.Kind() {
	case "identifier", "field_identifier":
		return n.Utf8Text(content)
	case "field_expression":
		if field := n.ChildByFieldName("field"); field != nil {
			return field.Utf8Text(content)
		}
	case "qualified_identifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return callTargetName(name, content)
		}
	}
	idents := findAllIdentifiers(n, content)
	if len(idents) > 0 {
		return idents[len(idents)-1]
	}
	return ""
}

// declaratorName descends through pointer/reference/array/init wrapping to
// find the identifier a declarator ultimately names.
func declaratorName(n *sitter.Node, content []byte) string {
	for n != nil {
		switch n.Kind() {
		case "identifier", "field_identifier", "type_identifier", "destructor_name", "operator_name":
			return n.Utf8Text(content)
		case "pointer_declarator", "reference_declarator", "array_declarator",
			"init_declarator", "parenthesized_declarator", "qualified_identifier":
			next := n.ChildByFieldName("declarator")
			if next == nil {
				next = n.ChildByFieldName("name")
			}
			n = next
		default:
			return ""
		}
	}
	return ""
}

// findPrimitiveType returns the text of the first primitive_type or
// sized_type_specifier node found under n, or "" if none.
func findPrimitiveType(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "primitive_type", "sized_type_specifier":
		return n.Utf8Text(content)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.IsMissing() || child.IsError() {
			continue
		}
		if found := findPrimitiveType(child, content); found != "" {
			return found
		}
	}
	return ""
}

// findAllTypeIdentifiers recursively collects every type_identifier node's
// text under n.
func findAllTypeIdentifiers(n *sitter.Node, content []byte) []string {
	if n == nil {
		return nil
	}
	var out []string
	var walk func(*sitter.Node)
	walk = func(cur *sitter.Node) {
		if cur.Kind() == "type_identifier" {
			out = append(out, cur.Utf8Text(content))
			return
		}
		for i := uint(0); i < cur.NamedChildCount(); i++ {
			child := cur.NamedChild(i)
			if child == nil || child.IsMissing() || child.IsError() {
				continue
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// findAllIdentifiers recursively collects every identifier/field_identifier
// node's text under n.
func findAllIdentifiers(n *sitter.Node, content []byte) []string {
	if n == nil {
		return nil
	}
	var out []string
	var walk func(*sitter.Node)
	walk = func(cur *sitter.Node) {
		switch cur.Kind() {
		case "identifier", "field_identifier":
			out = append(out, cur.Utf8Text(content))
			return
		}
		for i := uint(0); i < cur.NamedChildCount(); i++ {
			child := cur.NamedChild(i)
			if child == nil || child.IsMissing() || child.IsError() {
				continue
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// findFunctionDeclarator descends through pointer/reference wrapping
// looking for a function_declarator, returning it and the name it
// declares.
func findFunctionDeclarator(n *sitter.Node, content []byte) (*sitter.Node, string) {
	for n != nil {
		switch n.Kind() {
		case "function_declarator":
			declNode := n.ChildByFieldName("declarator")
			return n, declaratorLeafName(declNode, content)
		case "pointer_declarator", "reference_declarator", "qualified_identifier":
			n = n.ChildByFieldName("declarator")
		default:
			return nil, ""
		}
	}
	return nil, ""
}

// declaratorLeafName reads the identifier text out of a simple, qualified,
// destructor or operator-overload declarator.
func declaratorLeafName(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "identifier", "field_identifier", "type_identifier", "operator_name", "destructor_name":
		return n.Utf8Text(content)
	case "qualified_identifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return declaratorLeafName(name, content)
		}
	}
	return ""
}
