package graph

import (
	"sort"
	"strings"

	"codemap/internal/lang"
	"codemap/internal/model"
	"codemap/internal/tree"
)

// Confidence levels per resolution step. Ambiguous matches fan out into
// several low-confidence edges instead of picking one arbitrarily.
const (
	confSameFile  = 1.0
	confImported  = 0.9
	confUnique    = 0.7
	confAmbiguous = 0.3
)

const externalPrefix = "external:"

// ExternalID wraps a package name as a terminal node of the dependency graph.
func ExternalID(pkg string) model.NodeID {
	return model.NodeID(externalPrefix + pkg)
}

// IsExternal reports whether an ID names an external package rather than a
// repository node.
func IsExternal(id model.NodeID) bool {
	return strings.HasPrefix(string(id), externalPrefix)
}

// Result bundles the two derived graphs of a snapshot. The edge slices keep
// unresolved and external edges; the sparse graphs hold only edges between
// repository nodes (plus external terminals in the MDG) for ranked traversal.
type Result struct {
	Calls []model.CallEdge
	Deps  []model.DependencyEdge
	FCG   *Sparse
	MDG   *Sparse
}

// declRef locates one declaration for symbol resolution.
type declRef struct {
	id        model.NodeID
	name      string
	container string
}

type resolver struct {
	nodes map[model.NodeID]*model.CodeNode
	// file path -> decls in that file
	byFile map[string][]declRef
	// simple name -> decls repo-wide, file-sorted for determinism
	byName map[string][]declRef
	mods   *moduleIndex
}

// Build derives the function call graph and the module dependency graph from
// per-file extracts. A repository with no call or import sites yields empty
// graphs, not an error. Both graphs may contain cycles; nothing here recurses
// over edges.
func Build(nodes map[model.NodeID]*model.CodeNode, files []model.FileResult) *Result {
	sorted := make([]model.FileResult, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	r := &resolver{
		nodes:  nodes,
		byFile: make(map[string][]declRef),
		byName: make(map[string][]declRef),
		mods:   newModuleIndex(sorted),
	}
	for _, f := range sorted {
		for _, d := range f.Decls {
			ref := declRef{
				id:        tree.DeclID(f.Path, d.Container, d.Name),
				name:      d.Name,
				container: d.Container,
			}
			if _, ok := nodes[ref.id]; !ok {
				continue
			}
			r.byFile[f.Path] = append(r.byFile[f.Path], ref)
			r.byName[d.Name] = append(r.byName[d.Name], ref)
		}
	}

	res := &Result{FCG: NewSparse(), MDG: NewSparse()}
	for _, f := range sorted {
		r.resolveCalls(f, res)
		r.resolveImports(f, res)
	}
	return res
}

func (r *resolver) resolveCalls(f model.FileResult, res *Result) {
	for _, call := range f.Calls {
		caller := r.callerID(f.Path, call.Enclosing)
		for _, e := range r.resolveSymbol(f, call, caller) {
			res.Calls = append(res.Calls, e)
			if e.Resolved {
				res.FCG.AddEdge(e.Caller, e.Callee, e.Confidence)
			} else {
				res.FCG.AddNode(e.Caller)
			}
		}
	}
}

// callerID maps a call site's enclosing declaration to its node, falling back
// to the file node for module-level code.
func (r *resolver) callerID(filePath, enclosing string) model.NodeID {
	if enclosing == "" {
		return model.NodeID(filePath)
	}
	var id model.NodeID
	if i := strings.Index(enclosing, "."); i >= 0 {
		id = tree.DeclID(filePath, enclosing[:i], enclosing[i+1:])
	} else {
		id = tree.DeclID(filePath, "", enclosing)
	}
	if _, ok := r.nodes[id]; ok {
		return id
	}
	return model.NodeID(filePath)
}

// resolveSymbol applies the resolution ladder: same-file scope, imported
// symbol, repo-wide unique simple name, unresolved.
func (r *resolver) resolveSymbol(f model.FileResult, call model.CallSite, caller model.NodeID) []model.CallEdge {
	edge := model.CallEdge{Caller: caller, Symbol: call.Symbol, Line: call.Line}
	head, last := splitSymbol(call.Symbol)

	// step 1: same-file scope
	if id, conf := r.sameFile(f.Path, call, head, last); id != "" {
		edge.Callee, edge.Resolved, edge.Confidence = id, true, conf
		return []model.CallEdge{edge}
	}

	// step 2: symbol imported by this file
	if id := r.imported(f, head, last); id != "" {
		edge.Callee, edge.Resolved, edge.Confidence = id, true, confImported
		return []model.CallEdge{edge}
	}

	// step 3: repo-wide simple-name match
	if refs := r.byName[last]; len(refs) == 1 {
		edge.Callee, edge.Resolved, edge.Confidence = refs[0].id, true, confUnique
		return []model.CallEdge{edge}
	} else if n := len(refs); n > 1 {
		edges := make([]model.CallEdge, 0, n)
		for _, ref := range refs {
			e := edge
			e.Callee, e.Resolved, e.Confidence = ref.id, true, confAmbiguous
			edges = append(edges, e)
		}
		return edges
	}

	// step 4: dangling edge, calling into code we cannot see is a signal too
	return []model.CallEdge{edge}
}

func splitSymbol(sym string) (head, last string) {
	if i := strings.LastIndex(sym, "."); i >= 0 {
		return sym[:strings.Index(sym, ".")], sym[i+1:]
	}
	return "", sym
}

func (r *resolver) sameFile(filePath string, call model.CallSite, head, last string) (model.NodeID, float64) {
	refs := r.byFile[filePath]

	// self.m / this.m binds to the calling class
	if head == "self" || head == "this" {
		if cls, _ := splitEnclosing(call.Enclosing); cls != "" {
			for _, ref := range refs {
				if ref.container == cls && ref.name == last {
					return ref.id, confSameFile
				}
			}
		}
		return "", 0
	}

	// Class.method written explicitly
	if head != "" {
		for _, ref := range refs {
			if ref.container == head && ref.name == last {
				return ref.id, confSameFile
			}
		}
		return "", 0
	}

	// bare name: prefer siblings in the same class, then top level
	if cls, _ := splitEnclosing(call.Enclosing); cls != "" {
		for _, ref := range refs {
			if ref.container == cls && ref.name == last {
				return ref.id, confSameFile
			}
		}
	}
	for _, ref := range refs {
		if ref.container == "" && ref.name == last {
			return ref.id, confSameFile
		}
	}
	return "", 0
}

func splitEnclosing(enclosing string) (container, name string) {
	if i := strings.Index(enclosing, "."); i >= 0 {
		return enclosing[:i], enclosing[i+1:]
	}
	return "", enclosing
}

// imported resolves a symbol through this file's import statements: either a
// name imported directly ("from db import connect") or a member of an
// imported module ("db.connect", "np.array").
func (r *resolver) imported(f model.FileResult, head, last string) model.NodeID {
	for _, imp := range f.Imports {
		target, internal := r.mods.resolve(f.Path, imp, f.Language)

		// directly imported name
		if head == "" {
			for _, n := range imp.Names {
				if n != last {
					continue
				}
				if !internal {
					return ""
				}
				if id := r.topLevel(string(target), last); id != "" {
					return id
				}
			}
			continue
		}

		// member access through the module binding or alias
		binding := imp.Alias
		if binding == "" {
			binding = moduleBinding(imp.Module, f.Language)
		}
		if head != binding {
			continue
		}
		if !internal {
			return ""
		}
		if id := r.topLevel(string(target), last); id != "" {
			return id
		}
	}
	return ""
}

// topLevel finds a top-level declaration by name in a file, including methods
// reached through a class binding one level deep.
func (r *resolver) topLevel(filePath, name string) model.NodeID {
	for _, ref := range r.byFile[filePath] {
		if ref.container == "" && ref.name == name {
			return ref.id
		}
	}
	return ""
}

// moduleBinding is the name an unaliased import binds in the importing file:
// "import a.b" binds a, `import "x/store"` binds store.
func moduleBinding(module, langName string) string {
	switch langName {
	case lang.Python:
		if i := strings.Index(module, "."); i >= 0 {
			return module[:i]
		}
		return module
	default:
		s := module
		if i := strings.LastIndex(s, "/"); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "."); i > 0 {
			s = s[:i] // drop a file extension in JS specifiers
		}
		return s
	}
}

// resolveImports emits one dependency edge per import statement. External
// packages become terminal nodes; conditional and re-export imports carry
// reduced weight so scoring discounts them.
func (r *resolver) resolveImports(f model.FileResult, res *Result) {
	importer := model.NodeID(f.Path)
	res.MDG.AddNode(importer)
	for _, imp := range f.Imports {
		edge := model.DependencyEdge{
			Importer: importer,
			Package:  imp.Module,
			Kind:     imp.Kind,
		}
		weight := 1.0
		if imp.Kind != model.ImportDirect {
			weight = 0.5
		}
		if target, ok := r.mods.resolve(f.Path, imp, f.Language); ok && target != importer {
			edge.Imported = target
			res.MDG.AddEdge(importer, target, weight)
		} else if !ok {
			edge.External = true
			res.MDG.AddEdge(importer, ExternalID(imp.Module), weight)
		} else {
			continue // self import, drop
		}
		res.Deps = append(res.Deps, edge)
	}
}
