// Package graph builds and queries the two derived graphs of a snapshot: the
// function call graph and the module dependency graph. Both sit on the same
// sparse adjacency representation, which also drives Personalized PageRank
// for importance scoring and focus expansion.
package graph

import (
	"sort"

	"codemap/internal/model"
)

// Sparse is a directed graph with weighted edges, indexed both ways so
// fan-in queries cost the same as fan-out.
type Sparse struct {
	nodes   []model.NodeID
	nodeIdx map[model.NodeID]int

	outEdges [][]edgeEntry
	inEdges  [][]edgeEntry
}

type edgeEntry struct {
	target int
	weight float64
}

func NewSparse() *Sparse {
	return &Sparse{nodeIdx: make(map[model.NodeID]int)}
}

// AddNode registers a node if new and returns its index.
func (g *Sparse) AddNode(id model.NodeID) int {
	if idx, ok := g.nodeIdx[id]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, id)
	g.nodeIdx[id] = idx
	g.outEdges = append(g.outEdges, nil)
	g.inEdges = append(g.inEdges, nil)
	return idx
}

func (g *Sparse) AddEdge(src, dst model.NodeID, weight float64) {
	s := g.AddNode(src)
	d := g.AddNode(dst)
	g.outEdges[s] = append(g.outEdges[s], edgeEntry{target: d, weight: weight})
	g.inEdges[d] = append(g.inEdges[d], edgeEntry{target: s, weight: weight})
}

func (g *Sparse) HasNode(id model.NodeID) bool {
	_, ok := g.nodeIdx[id]
	return ok
}

func (g *Sparse) NumNodes() int { return len(g.nodes) }

func (g *Sparse) NumEdges() int {
	total := 0
	for _, edges := range g.outEdges {
		total += len(edges)
	}
	return total
}

// FanIn returns the summed weight of incoming edges.
func (g *Sparse) FanIn(id model.NodeID) float64 {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return 0
	}
	var sum float64
	for _, e := range g.inEdges[idx] {
		sum += e.weight
	}
	return sum
}

// Successors returns outgoing neighbor IDs, sorted for stable output.
func (g *Sparse) Successors(id model.NodeID) []model.NodeID {
	return g.neighbors(id, g.outEdges)
}

// Predecessors returns incoming neighbor IDs, sorted for stable output.
func (g *Sparse) Predecessors(id model.NodeID) []model.NodeID {
	return g.neighbors(id, g.inEdges)
}

// Reversed returns a view of the graph with every edge flipped, sharing the
// underlying storage. Useful for ranking "who depends on this" by the same
// PPR walk.
func (g *Sparse) Reversed() *Sparse {
	return &Sparse{
		nodes:    g.nodes,
		nodeIdx:  g.nodeIdx,
		outEdges: g.inEdges,
		inEdges:  g.outEdges,
	}
}

func (g *Sparse) neighbors(id model.NodeID, adj [][]edgeEntry) []model.NodeID {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return nil
	}
	seen := make(map[int]struct{}, len(adj[idx]))
	out := make([]model.NodeID, 0, len(adj[idx]))
	for _, e := range adj[idx] {
		if _, dup := seen[e.target]; dup {
			continue
		}
		seen[e.target] = struct{}{}
		out = append(out, g.nodes[e.target])
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
