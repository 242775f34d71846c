//go:build cgo

// Package ast turns source files into flat structural extracts: declarations,
// imports, and call sites. Syntax errors degrade a file to a partial result
// rather than failing the build; declarations that parsed cleanly are kept.
package ast

import (
	"context"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"codemap/internal/lang"
	"codemap/internal/logging"
	"codemap/internal/model"
)

// Builder parses files of the supported languages. It owns one tree-sitter
// parser per language and is not safe for concurrent use; the build pipeline
// gives each worker its own Builder.
type Builder struct {
	parsers map[string]*sitter.Parser
	logger  *logging.Logger
}

func NewBuilder(logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Builder{
		parsers: make(map[string]*sitter.Parser),
		logger:  logger,
	}
}

// ParseFile extracts the structure of a single source file. It never returns
// an error: unparseable files come back with Status failed so they stay
// visible in the tree as opaque leaves.
func (b *Builder) ParseFile(ctx context.Context, path string, source []byte) model.FileResult {
	langName := lang.ForExtension(filepath.Ext(path))
	result := model.FileResult{
		Path:     path,
		Language: langName,
		Source:   string(source),
		Status:   model.ParseFailed,
	}
	if langName == "" {
		return result
	}

	parser, ok := b.parsers[langName]
	if !ok {
		parser, ok = lang.NewParser(langName)
		if !ok {
			return result
		}
		b.parsers[langName] = parser
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil || tree == nil {
		b.logger.Debug("parse failed", map[string]interface{}{"path": path, "language": langName})
		return result
	}
	defer tree.Close()

	root := tree.RootNode()
	result.Status = model.ParseOK
	if root.HasError() {
		result.Status = model.ParsePartial
		b.logger.Debug("recovering around syntax errors", map[string]interface{}{"path": path})
	}

	result.Doc = lang.ModuleDoc(langName, root, source)
	b.walk(langName, root, source, &result)
	return result
}

// walk collects declarations, imports, and call sites in one pass. Nodes that
// contain a syntax error are skipped at declaration granularity: the rest of
// the file still contributes.
func (b *Builder) walk(langName string, root *sitter.Node, src []byte, out *model.FileResult) {
	fnTypes := lang.FunctionNodeTypes(langName)
	classTypes := lang.ClassNodeTypes(langName)
	importTypes := lang.ImportNodeTypes(langName)
	callTypes := lang.CallNodeTypes(langName)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		typ := n.Type()
		switch {
		case contains(importTypes, typ):
			out.Imports = append(out.Imports, lang.Imports(langName, n, src)...)
		case contains(fnTypes, typ):
			if decl, ok := b.extractDecl(langName, n, src, model.KindFunction); ok {
				out.Decls = append(out.Decls, decl)
			}
		case contains(classTypes, typ):
			if decl, ok := b.extractDecl(langName, n, src, model.KindClass); ok {
				out.Decls = append(out.Decls, decl)
			}
		case contains(callTypes, typ):
			if sym := lang.CallSymbol(langName, n, src); sym != "" {
				out.Calls = append(out.Calls, model.CallSite{
					Symbol:    sym,
					Enclosing: lang.EnclosingDecl(langName, n, src),
					Line:      int(n.StartPoint().Row) + 1,
				})
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
}

func (b *Builder) extractDecl(langName string, n *sitter.Node, src []byte, kind model.NodeKind) (model.Decl, bool) {
	name := lang.DeclName(langName, n, src)
	if name == "" {
		// anonymous or too broken to name
		return model.Decl{}, false
	}
	decl := model.Decl{
		Kind:      kind,
		Name:      name,
		Container: lang.Container(langName, n, src),
		Signature: lang.Signature(langName, n, src),
		Doc:       lang.DocComment(langName, n, src),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Status:    model.ParseOK,
	}
	if n.HasError() {
		decl.Status = model.ParsePartial
	}
	return decl, true
}

func contains(types []string, t string) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
