package graph

import (
	"sort"

	"codemap/internal/model"
)

// PPROptions configures Personalized PageRank power iteration.
type PPROptions struct {
	Damping       float64
	MaxIterations int
	Tolerance     float64
	TopK          int
}

func DefaultPPROptions() PPROptions {
	return PPROptions{
		Damping:       0.85,
		MaxIterations: 20,
		Tolerance:     1e-6,
		TopK:          20,
	}
}

// Ranked is one node with its stationary probability mass.
type Ranked struct {
	ID    model.NodeID
	Score float64
}

// PPR computes Personalized PageRank seeded at the given nodes. Seeds not in
// the graph are ignored; with no valid seed the result is empty. Cycles are
// handled by the power iteration itself, which always terminates at
// MaxIterations.
func (g *Sparse) PPR(seeds []model.NodeID, opts PPROptions) []Ranked {
	if opts.Damping <= 0 || opts.Damping >= 1 {
		opts.Damping = 0.85
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 20
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-6
	}
	if opts.TopK <= 0 {
		opts.TopK = 20
	}

	n := len(g.nodes)
	if n == 0 {
		return nil
	}
	seedIdx := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if idx, ok := g.nodeIdx[s]; ok {
			seedIdx = append(seedIdx, idx)
		}
	}
	if len(seedIdx) == 0 {
		return nil
	}

	teleport := make([]float64, n)
	w := 1.0 / float64(len(seedIdx))
	for _, idx := range seedIdx {
		teleport[idx] = w
	}

	scores := make([]float64, n)
	copy(scores, teleport)

	outDegree := make([]float64, n)
	for i, edges := range g.outEdges {
		for _, e := range edges {
			outDegree[i] += e.weight
		}
	}

	next := make([]float64, n)
	for iter := 0; iter < opts.MaxIterations; iter++ {
		for i := range next {
			next[i] = 0
		}
		for i, edges := range g.outEdges {
			if outDegree[i] == 0 {
				continue
			}
			contrib := scores[i] / outDegree[i]
			for _, e := range edges {
				next[e.target] += contrib * e.weight
			}
		}
		maxDiff := 0.0
		for i := range next {
			next[i] = opts.Damping*next[i] + (1-opts.Damping)*teleport[i]
			if d := next[i] - scores[i]; d > maxDiff {
				maxDiff = d
			} else if -d > maxDiff {
				maxDiff = -d
			}
		}
		scores, next = next, scores
		if maxDiff < opts.Tolerance {
			break
		}
	}

	ranked := make([]Ranked, 0, n)
	for i, s := range scores {
		if s > 0 {
			ranked = append(ranked, Ranked{ID: g.nodes[i], Score: s})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > opts.TopK {
		ranked = ranked[:opts.TopK]
	}
	return ranked
}
