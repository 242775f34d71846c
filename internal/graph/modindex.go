package graph

import (
	"path"
	"strings"

	"codemap/internal/lang"
	"codemap/internal/model"
)

// moduleIndex maps import strings, as they appear in source, onto repository
// nodes. Python dotted modules and JS relative paths resolve to file nodes;
// Go import paths resolve to package directory nodes.
type moduleIndex struct {
	// dotted python module ("pkg.mod") -> file path
	python map[string]string
	// slash file path without extension ("src/util") -> file path
	stems map[string]string
	// directories containing .go files, deepest-suffix matched
	goPkgs map[string]string
}

func newModuleIndex(files []model.FileResult) *moduleIndex {
	idx := &moduleIndex{
		python: make(map[string]string),
		stems:  make(map[string]string),
		goPkgs: make(map[string]string),
	}
	for _, f := range files {
		ext := path.Ext(f.Path)
		stem := strings.TrimSuffix(f.Path, ext)
		idx.stems[stem] = f.Path

		switch ext {
		case ".py":
			if path.Base(f.Path) == "__init__.py" {
				pkg := path.Dir(f.Path)
				idx.python[strings.ReplaceAll(pkg, "/", ".")] = f.Path
			} else {
				idx.python[strings.ReplaceAll(stem, "/", ".")] = f.Path
			}
		case ".go":
			dir := path.Dir(f.Path)
			idx.goPkgs[dir] = dir
		}
	}
	return idx
}

// resolve maps one import in importer to a repository node ID, or returns
// ok=false for an external package.
func (idx *moduleIndex) resolve(importer string, imp model.Import, langName string) (model.NodeID, bool) {
	switch langName {
	case lang.Python:
		return idx.resolvePython(importer, imp.Module)
	case lang.JavaScript, lang.TypeScript:
		return idx.resolveJS(importer, imp.Module)
	case lang.Go:
		return idx.resolveGo(imp.Module)
	default:
		return "", false
	}
}

func (idx *moduleIndex) resolvePython(importer, module string) (model.NodeID, bool) {
	if strings.HasPrefix(module, ".") {
		// relative import: one dot is the importer's package, each extra dot
		// walks one package up
		dots := 0
		for dots < len(module) && module[dots] == '.' {
			dots++
		}
		base := path.Dir(importer)
		for i := 1; i < dots; i++ {
			base = path.Dir(base)
		}
		rest := module[dots:]
		var dotted string
		if base == "." {
			dotted = rest
		} else {
			dotted = strings.ReplaceAll(base, "/", ".")
			if rest != "" {
				dotted += "." + rest
			}
		}
		module = dotted
	}
	if p, ok := idx.python[module]; ok {
		return model.NodeID(p), true
	}
	return "", false
}

func (idx *moduleIndex) resolveJS(importer, module string) (model.NodeID, bool) {
	if !strings.HasPrefix(module, ".") {
		return "", false // bare specifier = package
	}
	target := path.Join(path.Dir(importer), module)
	if p, ok := idx.stems[strings.TrimSuffix(target, path.Ext(target))]; ok {
		return model.NodeID(p), true
	}
	if p, ok := idx.stems[path.Join(target, "index")]; ok {
		return model.NodeID(p), true
	}
	return "", false
}

// resolveGo matches an import path against repository package directories by
// longest path suffix, so "example.com/mod/internal/store" finds
// "internal/store" without knowing the module prefix.
func (idx *moduleIndex) resolveGo(importPath string) (model.NodeID, bool) {
	parts := strings.Split(importPath, "/")
	for i := 0; i < len(parts); i++ {
		suffix := strings.Join(parts[i:], "/")
		if dir, ok := idx.goPkgs[suffix]; ok {
			return model.NodeID(dir), true
		}
	}
	return "", false
}
