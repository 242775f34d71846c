//go:build cgo

package lang

import (
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"codemap/internal/model"
)

// DeclName returns the declared name of a function/class node, or "".
func DeclName(langName string, n *sitter.Node, src []byte) string {
	switch langName {
	case Go:
		if n.Type() == "type_declaration" {
			if spec := firstChildOfType(n, "type_spec"); spec != nil {
				return fieldText(spec, "name", src)
			}
			return ""
		}
		return fieldText(n, "name", src)
	case Python, JavaScript, TypeScript:
		return fieldText(n, "name", src)
	default:
		return ""
	}
}

// Container returns the enclosing class/receiver name for a declaration node,
// or "" for top-level declarations.
func Container(langName string, n *sitter.Node, src []byte) string {
	switch langName {
	case Go:
		if n.Type() == "method_declaration" {
			return goReceiverType(n, src)
		}
		return ""
	case Python:
		return pythonEnclosingClass(n, src)
	case JavaScript, TypeScript:
		return jsEnclosingClass(n, src)
	default:
		return ""
	}
}

// Signature returns a one-line signature for a declaration: everything up to
// the body, whitespace collapsed.
func Signature(langName string, n *sitter.Node, src []byte) string {
	if body := n.ChildByFieldName("body"); body != nil && body.StartByte() > n.StartByte() {
		sig := string(src[n.StartByte():body.StartByte()])
		return strings.TrimRight(CollapseWhitespace(sig), ":{ ")
	}
	text := NodeText(n, src)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimRight(CollapseWhitespace(text), ":{ ")
}

// DocComment returns the doc text attached to a declaration: the preceding
// comment block for Go/JS/TS, the leading docstring for Python. The excerpt
// is capped to its first paragraph.
func DocComment(langName string, n *sitter.Node, src []byte) string {
	var doc string
	switch langName {
	case Python:
		doc = pythonDocstring(n, src)
		if doc == "" {
			doc = precedingComments(n, src)
		}
	default:
		doc = precedingComments(n, src)
	}
	return firstParagraph(doc)
}

// ModuleDoc returns the file-level doc: a leading comment block or docstring.
func ModuleDoc(langName string, root *sitter.Node, src []byte) string {
	first := root.NamedChild(0)
	if first == nil {
		return ""
	}
	switch langName {
	case Python:
		if s := stringContent(first, src); s != "" {
			return firstParagraph(s)
		}
	default:
		if first.Type() == "comment" {
			var parts []string
			for c := first; c != nil && c.Type() == "comment"; c = c.NextNamedSibling() {
				parts = append(parts, stripCommentMarkers(NodeText(c, src)))
			}
			return firstParagraph(strings.Join(parts, "\n"))
		}
	}
	return ""
}

// Imports extracts raw imports from an import node. Conditional imports
// (inside an if/try or a function body) are tagged so the dependency graph
// can discount them.
func Imports(langName string, n *sitter.Node, src []byte) []model.Import {
	kind := model.ImportDirect
	if isConditional(n) {
		kind = model.ImportConditional
	}
	line := int(n.StartPoint().Row) + 1

	switch langName {
	case Go:
		return goImports(n, src, kind, line)
	case Python:
		return pythonImports(n, src, kind, line)
	case JavaScript, TypeScript:
		return jsImports(n, src, kind, line)
	default:
		return nil
	}
}

// CallSymbol returns the called symbol of a call expression as written,
// possibly dotted ("obj.method", "pkg.Func"). Empty for anonymous callees.
func CallSymbol(langName string, n *sitter.Node, src []byte) string {
	var fn *sitter.Node
	switch langName {
	case Go, JavaScript, TypeScript:
		fn = n.ChildByFieldName("function")
		if fn == nil && n.Type() == "new_expression" {
			fn = n.ChildByFieldName("constructor")
		}
	case Python:
		fn = n.ChildByFieldName("function")
	}
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier", "attribute", "selector_expression", "member_expression", "property_identifier":
		return CollapseWhitespace(NodeText(fn, src))
	default:
		return ""
	}
}

// EnclosingDecl walks up from a call site to the declaration containing it and
// returns its local qualified name ("Class.method" or "func"), or "" at
// module level.
func EnclosingDecl(langName string, n *sitter.Node, src []byte) string {
	fnTypes := FunctionNodeTypes(langName)
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if !containsType(fnTypes, cur.Type()) {
			continue
		}
		name := DeclName(langName, cur, src)
		if name == "" {
			return ""
		}
		if container := Container(langName, cur, src); container != "" {
			return container + "." + name
		}
		return name
	}
	return ""
}

// --- Go helpers ---

func goReceiverType(n *sitter.Node, src []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	if decl := firstChildOfType(recv, "parameter_declaration"); decl != nil {
		if t := decl.ChildByFieldName("type"); t != nil {
			return strings.TrimLeft(CollapseWhitespace(NodeText(t, src)), "*")
		}
	}
	return ""
}

func goImports(n *sitter.Node, src []byte, kind model.ImportKind, line int) []model.Import {
	var out []model.Import
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.Type() == "import_spec" {
			imp := model.Import{
				Module: strings.Trim(fieldText(node, "path", src), `"`),
				Alias:  fieldText(node, "name", src),
				Kind:   kind,
				Line:   int(node.StartPoint().Row) + 1,
			}
			if imp.Module != "" {
				out = append(out, imp)
			}
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	walk(n)
	if len(out) == 0 {
		// single-spec form without a spec list
		if path := fieldText(n, "path", src); path != "" {
			out = append(out, model.Import{Module: strings.Trim(path, `"`), Kind: kind, Line: line})
		}
	}
	return out
}

// --- Python helpers ---

func pythonEnclosingClass(n *sitter.Node, src []byte) string {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case "class_definition":
			return fieldText(cur, "name", src)
		case "function_definition":
			// nested function, not a method
			return ""
		}
	}
	return ""
}

func pythonDocstring(n *sitter.Node, src []byte) string {
	body := n.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil {
		return ""
	}
	return stringContent(first, src)
}

// stringContent returns the unquoted text when node is an expression
// statement holding a string literal, else "".
func stringContent(n *sitter.Node, src []byte) string {
	if n.Type() != "expression_statement" {
		return ""
	}
	s := n.NamedChild(0)
	if s == nil || s.Type() != "string" {
		return ""
	}
	text := NodeText(s, src)
	for _, q := range []string{`"""`, "'''", `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return strings.TrimSpace(text[len(q) : len(text)-len(q)])
		}
	}
	return strings.TrimSpace(text)
}

func pythonImports(n *sitter.Node, src []byte, kind model.ImportKind, line int) []model.Import {
	var out []model.Import
	switch n.Type() {
	case "import_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				out = append(out, model.Import{Module: NodeText(child, src), Kind: kind, Line: line})
			case "aliased_import":
				out = append(out, model.Import{
					Module: fieldText(child, "name", src),
					Alias:  fieldText(child, "alias", src),
					Kind:   kind,
					Line:   line,
				})
			}
		}
	case "import_from_statement":
		module := fieldText(n, "module_name", src)
		if module == "" {
			return nil
		}
		imp := model.Import{Module: module, Kind: kind, Line: line}
		moduleNode := n.ChildByFieldName("module_name")
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
				continue
			}
			switch child.Type() {
			case "dotted_name":
				imp.Names = append(imp.Names, NodeText(child, src))
			case "aliased_import":
				imp.Names = append(imp.Names, fieldText(child, "name", src))
			case "wildcard_import":
				imp.Names = nil
				out = append(out, imp)
				return out
			}
		}
		out = append(out, imp)
	}
	return out
}

// --- JavaScript / TypeScript helpers ---

func jsEnclosingClass(n *sitter.Node, src []byte) string {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Type() == "class_declaration" || cur.Type() == "class" {
			return fieldText(cur, "name", src)
		}
	}
	return ""
}

func jsImports(n *sitter.Node, src []byte, kind model.ImportKind, line int) []model.Import {
	source := n.ChildByFieldName("source")
	if source == nil {
		return nil // plain export without a module source
	}
	if n.Type() == "export_statement" {
		kind = model.ImportReExport
	}
	imp := model.Import{
		Module: strings.Trim(NodeText(source, src), "'\"`"),
		Kind:   kind,
		Line:   line,
	}
	collectJSBindings(n, src, &imp)
	return []model.Import{imp}
}

// collectJSBindings records the names bound by an import/export clause:
// default imports, named specifiers, and namespace aliases.
func collectJSBindings(n *sitter.Node, src []byte, imp *model.Import) {
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		switch node.Type() {
		case "import_specifier", "export_specifier":
			if name := fieldText(node, "name", src); name != "" {
				imp.Names = append(imp.Names, name)
			}
			return
		case "namespace_import":
			// import * as ns from '...'
			if id := firstChildOfType(node, "identifier"); id != nil {
				imp.Alias = NodeText(id, src)
			}
			return
		case "import_clause":
			if id := firstChildOfType(node, "identifier"); id != nil {
				// default import binds the module object
				imp.Names = append(imp.Names, NodeText(id, src))
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	walk(n)
}

// --- shared helpers ---

func fieldText(n *sitter.Node, field string, src []byte) string {
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return NodeText(c, src)
}

func firstChildOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func containsType(types []string, t string) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func isConditional(n *sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case "if_statement", "try_statement", "function_definition",
			"function_declaration", "method_declaration", "method_definition":
			return true
		}
	}
	return false
}

// precedingComments collects the run of comment siblings immediately above a
// declaration.
func precedingComments(n *sitter.Node, src []byte) string {
	// decorated/exported wrappers sit between the comment and the decl
	target := n
	if p := n.Parent(); p != nil && (p.Type() == "decorated_definition" || p.Type() == "export_statement") {
		target = p
	}

	var parts []string
	for cur := target.PrevNamedSibling(); cur != nil && cur.Type() == "comment"; cur = cur.PrevNamedSibling() {
		// only adjacent comments count as doc
		if cur.EndPoint().Row+1 < target.StartPoint().Row && len(parts) == 0 {
			break
		}
		parts = append([]string{stripCommentMarkers(NodeText(cur, src))}, parts...)
		target = cur
	}
	return strings.Join(parts, "\n")
}

func stripCommentMarkers(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimSuffix(strings.TrimPrefix(s, "/*"), "*/")
	case strings.HasPrefix(s, "//"):
		s = strings.TrimPrefix(s, "//")
	case strings.HasPrefix(s, "#"):
		s = strings.TrimPrefix(s, "#")
	}
	return strings.TrimSpace(s)
}

func firstParagraph(s string) string {
	if i := strings.Index(s, "\n\n"); i >= 0 {
		s = s[:i]
	}
	const maxDoc = 200
	if len(s) > maxDoc {
		cut := maxDoc
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return strings.TrimSpace(s)
}
