// Package tree merges per-file structural extracts into the hierarchical code
// tree: one repository root, synthetic directory nodes mirroring the
// filesystem, file nodes, and class/function nodes beneath them.
package tree

import (
	"path"
	"sort"
	"strings"

	"codemap/internal/errors"
	"codemap/internal/model"
)

// DeclID builds the qualified node ID for a declaration: the file path plus
// the local qualified name, so equal simple names in different files never
// collide.
func DeclID(filePath, container, name string) model.NodeID {
	if container != "" {
		return model.NodeID(filePath + "::" + container + "." + name)
	}
	return model.NodeID(filePath + "::" + name)
}

// Build merges file results into a single tree. File paths must be
// slash-separated and relative to the repository root. The returned map holds
// every node keyed by ID, root included.
func Build(repoRoot string, files []model.FileResult) (map[model.NodeID]*model.CodeNode, error) {
	nodes := map[model.NodeID]*model.CodeNode{
		model.RootID: {
			ID:   model.RootID,
			Kind: model.KindRepository,
			Name: path.Base(repoRoot),
			Path: ".",
		},
	}

	// deterministic shape regardless of parse completion order
	sorted := make([]model.FileResult, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, f := range sorted {
		fileNode := &model.CodeNode{
			ID:     model.NodeID(f.Path),
			Kind:   model.KindFile,
			Name:   path.Base(f.Path),
			Path:   f.Path,
			Doc:    f.Doc,
			Status: f.Status,
		}
		parent := ensureDirs(nodes, path.Dir(f.Path))
		attach(nodes, parent, fileNode)

		attachDecls(nodes, fileNode, f)
	}

	if err := verify(nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ensureDirs creates directory nodes down to dir and returns the deepest one.
func ensureDirs(nodes map[model.NodeID]*model.CodeNode, dir string) *model.CodeNode {
	if dir == "." || dir == "" {
		return nodes[model.RootID]
	}
	id := model.NodeID(dir)
	if n, ok := nodes[id]; ok {
		return n
	}
	n := &model.CodeNode{
		ID:   id,
		Kind: model.KindDirectory,
		Name: path.Base(dir),
		Path: dir,
	}
	attach(nodes, ensureDirs(nodes, path.Dir(dir)), n)
	return n
}

func attach(nodes map[model.NodeID]*model.CodeNode, parent, child *model.CodeNode) {
	child.Parent = parent.ID
	parent.Children = append(parent.Children, child.ID)
	nodes[child.ID] = child
}

// attachDecls places a file's declarations under the file node, methods under
// their class node. A redefinition of the same qualified name within one file
// replaces the earlier declaration, matching runtime rebinding semantics.
func attachDecls(nodes map[model.NodeID]*model.CodeNode, fileNode *model.CodeNode, f model.FileResult) {
	for _, d := range f.Decls {
		id := DeclID(f.Path, d.Container, d.Name)
		node := &model.CodeNode{
			ID:        id,
			Kind:      d.Kind,
			Name:      d.Name,
			Path:      f.Path,
			Signature: d.Signature,
			Doc:       d.Doc,
			StartLine: d.StartLine,
			EndLine:   d.EndLine,
			Status:    d.Status,
		}

		parent := fileNode
		if d.Container != "" {
			classID := DeclID(f.Path, "", d.Container)
			class, ok := nodes[classID]
			if !ok {
				// method seen before (or without) its class declaration
				class = &model.CodeNode{
					ID:        classID,
					Kind:      model.KindClass,
					Name:      d.Container,
					Path:      f.Path,
					StartLine: d.StartLine,
					Status:    f.Status,
				}
				attach(nodes, fileNode, class)
			}
			parent = class
		}

		if prev, ok := nodes[id]; ok {
			// redefinition, or a class decl arriving after its synthesized
			// placeholder: swap in place, keep collected children
			replace(nodes, prev, node)
			continue
		}
		attach(nodes, parent, node)
	}
}

// replace swaps a redefined declaration in place, keeping tree position.
func replace(nodes map[model.NodeID]*model.CodeNode, prev, next *model.CodeNode) {
	next.Parent = prev.Parent
	next.Children = prev.Children
	nodes[next.ID] = next
}

// verify enforces the tree invariants after merge: one root, mutual
// parent/child links, no dangling IDs. A violation is a defect in the build,
// not a property of the repository being indexed.
func verify(nodes map[model.NodeID]*model.CodeNode) error {
	for id, n := range nodes {
		if id != n.ID {
			return errors.Newf(errors.GraphDefect, "node keyed as %q carries ID %q", id, n.ID)
		}
		if id == model.RootID {
			if n.Parent != "" {
				return errors.New(errors.GraphDefect, "root node has a parent", nil)
			}
		} else {
			p, ok := nodes[n.Parent]
			if !ok {
				return errors.Newf(errors.GraphDefect, "node %q has dangling parent %q", id, n.Parent)
			}
			if !containsID(p.Children, id) {
				return errors.Newf(errors.GraphDefect, "node %q missing from children of %q", id, n.Parent)
			}
		}
		seen := make(map[model.NodeID]struct{}, len(n.Children))
		for _, c := range n.Children {
			if _, dup := seen[c]; dup {
				return errors.Newf(errors.GraphDefect, "node %q lists child %q twice", id, c)
			}
			seen[c] = struct{}{}
			child, ok := nodes[c]
			if !ok {
				return errors.Newf(errors.GraphDefect, "node %q has dangling child %q", id, c)
			}
			if child.Parent != id {
				return errors.Newf(errors.GraphDefect, "child %q of %q points back to %q", c, id, child.Parent)
			}
		}
	}
	return nil
}

func containsID(ids []model.NodeID, id model.NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Depth returns the number of edges from the root to id.
func Depth(nodes map[model.NodeID]*model.CodeNode, id model.NodeID) int {
	depth := 0
	for id != model.RootID {
		n, ok := nodes[id]
		if !ok {
			return depth
		}
		id = n.Parent
		depth++
	}
	return depth
}

// QualifiedName renders an ID for display: "dir/file.py::Class.method".
func QualifiedName(id model.NodeID) string {
	return string(id)
}

// FileOf returns the file path portion of a declaration ID, or the ID itself
// for file and directory nodes.
func FileOf(id model.NodeID) string {
	s := string(id)
	if i := strings.Index(s, "::"); i >= 0 {
		return s[:i]
	}
	return s
}

// Stats summarizes a built tree for the overview header and build report.
func Stats(nodes map[model.NodeID]*model.CodeNode) model.Stats {
	var st model.Stats
	for _, n := range nodes {
		switch n.Kind {
		case model.KindDirectory:
			st.Directories++
		case model.KindFile:
			st.Files++
			switch n.Status {
			case model.ParseFailed:
				st.FailedFiles++
			case model.ParsePartial:
				st.PartialFiles++
			}
		case model.KindClass:
			st.Classes++
		case model.KindFunction:
			st.Functions++
		}
	}
	return st
}
