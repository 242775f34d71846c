package graph

import "codemap/internal/model"

// FCGFromEdges rebuilds the sparse call graph from a snapshot's edge list,
// e.g. after loading a cached snapshot.
func FCGFromEdges(calls []model.CallEdge) *Sparse {
	g := NewSparse()
	for _, e := range calls {
		if e.Resolved {
			g.AddEdge(e.Caller, e.Callee, e.Confidence)
		} else {
			g.AddNode(e.Caller)
		}
	}
	return g
}

// MDGFromEdges rebuilds the sparse dependency graph from a snapshot's edge
// list, external terminals included.
func MDGFromEdges(deps []model.DependencyEdge) *Sparse {
	g := NewSparse()
	for _, e := range deps {
		weight := 1.0
		if e.Kind != model.ImportDirect {
			weight = 0.5
		}
		if e.External {
			g.AddEdge(e.Importer, ExternalID(e.Package), weight)
		} else {
			g.AddEdge(e.Importer, e.Imported, weight)
		}
	}
	return g
}
