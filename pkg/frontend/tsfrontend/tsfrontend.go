// Package tsfrontend implements frontend.Frontend on top of tree-sitter's
// C and C++ grammars. Unlike a libclang binding it has no semantic model —
// no template instantiation, no overload resolution, no macro expansion —
// so it approximates spec.md's frontend contract with a direct syntax-tree
// walk: USRs are synthesized from lexical nesting (enclosing
// class/namespace/function) rather than mangled from a real AST, and
// name-based lookups stand in for semantic resolution. This trades
// precision for being buildable without a C++ compiler in the loop, the
// same trade the tree-sitter-based resolvers in the wider corpus make.
package tsfrontend

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	sitter "github.com/tree-sitter/go-tree-sitter"
	sitterc "github.com/tree-sitter/tree-sitter-c/bindings/go"
	sittercpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"cxxindex/pkg/errs"
	"cxxindex/pkg/frontend"
)

// cExtensions holds the file extensions parsed with the C grammar; every
// other extension this Frontend accepts is parsed as C++.
var cExtensions = map[string]bool{
	".c": true,
	".h": true,
}

func languageFor(filename string) *sitter.Language {
	ext := strings.ToLower(filepath.Ext(filename))
	if cExtensions[ext] {
		return sitter.NewLanguage(sitterc.Language())
	}
	return sitter.NewLanguage(sittercpp.Language())
}

// Frontend parses a single C/C++ translation unit with tree-sitter and
// emits the frontend.Event stream a builder.Builder consumes. compilerArgs
// is accepted for interface compatibility with a real libclang frontend
// but is unused here: tree-sitter parses lexically and needs no include
// paths or macro definitions.
type Frontend struct{}

// New returns a ready-to-use tree-sitter frontend.
func New() *Frontend {
	return &Frontend{}
}

// Parse implements frontend.Frontend.
func (fe *Frontend) Parse(ctx context.Context, filename string, compilerArgs []string, emit func(frontend.Event) error) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(errs.ErrFrontendFailed, "tsfrontend: reading %s: %v", filename, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()

	lang := languageFor(filename)
	if err := parser.SetLanguage(lang); err != nil {
		return errors.Wrapf(errs.ErrFrontendFailed, "tsfrontend: setting language for %s: %v", filename, err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return errors.Wrapf(errs.ErrFrontendFailed, "tsfrontend: failed to parse %s", filename)
	}
	defer tree.Close()

	w := newWalker(filename, content, emit)
	if err := w.walkTranslationUnit(ctx, tree.RootNode()); err != nil {
		return err
	}
	return nil
}
