//go:build cgo

package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Available reports whether tree-sitter parsing is compiled in.
func Available() bool { return true }

// Grammar returns the tree-sitter grammar for a language name.
func Grammar(name string) (*sitter.Language, bool) {
	switch name {
	case Go:
		return golang.GetLanguage(), true
	case Python:
		return python.GetLanguage(), true
	case JavaScript:
		return javascript.GetLanguage(), true
	case TypeScript:
		return typescript.GetLanguage(), true
	default:
		return nil, false
	}
}

// NewParser creates a fresh parser for a language. Parsers are not safe for
// concurrent use; each worker needs its own.
func NewParser(name string) (*sitter.Parser, bool) {
	g, ok := Grammar(name)
	if !ok {
		return nil, false
	}
	p := sitter.NewParser()
	p.SetLanguage(g)
	return p, true
}

// FunctionNodeTypes returns the node types that declare functions or methods.
func FunctionNodeTypes(name string) []string {
	switch name {
	case Go:
		return []string{"function_declaration", "method_declaration"}
	case Python:
		return []string{"function_definition"}
	case JavaScript, TypeScript:
		return []string{"function_declaration", "generator_function_declaration", "method_definition"}
	default:
		return nil
	}
}

// ClassNodeTypes returns the node types that declare classes or named types.
func ClassNodeTypes(name string) []string {
	switch name {
	case Go:
		return []string{"type_declaration"}
	case Python:
		return []string{"class_definition"}
	case JavaScript:
		return []string{"class_declaration"}
	case TypeScript:
		return []string{"class_declaration", "interface_declaration"}
	default:
		return nil
	}
}

// ImportNodeTypes returns the node types that import other modules.
func ImportNodeTypes(name string) []string {
	switch name {
	case Go:
		return []string{"import_declaration"}
	case Python:
		return []string{"import_statement", "import_from_statement"}
	case JavaScript, TypeScript:
		// export_statement covers re-exports ("export { x } from './y'").
		return []string{"import_statement", "export_statement"}
	default:
		return nil
	}
}

// CallNodeTypes returns the node types of call expressions.
func CallNodeTypes(name string) []string {
	switch name {
	case Go:
		return []string{"call_expression"}
	case Python:
		return []string{"call"}
	case JavaScript, TypeScript:
		return []string{"call_expression", "new_expression"}
	default:
		return nil
	}
}

// ErrorRecoveryTypes returns the declaration node types at which parse errors
// can be contained: an ERROR inside one of these marks only that subtree
// partial instead of failing the file.
func ErrorRecoveryTypes(name string) []string {
	types := append([]string{}, FunctionNodeTypes(name)...)
	return append(types, ClassNodeTypes(name)...)
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}
