// Package score assigns every snapshot node an importance value in [0,1]
// with a per-component breakdown. Scores drive ranking everywhere downstream:
// overview truncation, search ordering, caller lists. Identical inputs always
// produce identical scores; ties are broken by qualified name.
package score

import (
	"math"
	"sort"
	"strings"

	"codemap/internal/config"
	"codemap/internal/graph"
	"codemap/internal/model"
	"codemap/internal/tree"
)

// nameKeywords boost nodes whose names suggest load-bearing roles.
var nameKeywords = []string{
	"main", "core", "engine", "api", "service",
	"controller", "manager", "handler", "processor",
	"factory", "builder", "provider", "repository",
	"executor", "scheduler", "config", "security",
}

// specialStems are filenames that conventionally anchor a codebase.
var specialStems = map[string]struct{}{
	"__init__": {}, "__main__": {}, "app": {}, "settings": {},
	"config": {}, "utils": {}, "constants": {},
}

type Scorer struct {
	weights config.WeightsConfig
}

func NewScorer(weights config.WeightsConfig) *Scorer {
	return &Scorer{weights: weights}
}

// Compute scores every node of the tree against the two graphs and the
// entry-point hints. The result is a fresh map; nothing in the inputs is
// mutated.
func (s *Scorer) Compute(
	nodes map[model.NodeID]*model.CodeNode,
	graphs *graph.Result,
	hints EntryHints,
) map[model.NodeID]model.ImportanceScore {
	ids := make([]model.NodeID, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	callers := distinctCallers(graphs.Calls)
	callFan := make(map[model.NodeID]float64, len(callers))
	maxCall := 0.0
	for id, c := range callers {
		v := 0.0
		for _, conf := range c {
			v += conf
		}
		callFan[id] = v
		if v > maxCall {
			maxCall = v
		}
	}

	moduleFan := make(map[string]float64, len(nodes))
	maxModule := 0.0
	for _, id := range ids {
		n := nodes[id]
		if n.Kind != model.KindFile {
			continue
		}
		fan := graphs.MDG.FanIn(id)
		if n.Parent != "" {
			// Go packages are imported as directories; spread that onto files
			fan += graphs.MDG.FanIn(n.Parent)
		}
		moduleFan[n.Path] = fan
		if fan > maxModule {
			maxModule = fan
		}
	}

	maxDepth := 0
	depths := make(map[model.NodeID]int, len(nodes))
	for _, id := range ids {
		d := tree.Depth(nodes, id)
		depths[id] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	out := make(map[model.NodeID]model.ImportanceScore, len(nodes))
	for _, id := range ids {
		n := nodes[id]
		sc := model.ImportanceScore{
			CallFanIn:    logScaled(callFan[id], maxCall),
			ModuleFanIn:  normalized(moduleFan[n.Path], maxModule),
			EntryPoint:   s.entryPoint(n, hints),
			DepthPenalty: normalized(float64(depths[id]), float64(maxDepth)),
			DocBonus:     docBonus(n),
			NameHint:     nameHint(n),
		}
		total := s.weights.CallFanIn*sc.CallFanIn +
			s.weights.ModuleFanIn*sc.ModuleFanIn +
			s.weights.EntryPoint*sc.EntryPoint +
			s.weights.DocBonus*sc.DocBonus +
			s.weights.NameHint*sc.NameHint -
			s.weights.DepthPenalty*sc.DepthPenalty
		sc.Total = clamp01(total)
		out[id] = sc
	}
	return out
}

// distinctCallers maps each callee to its distinct callers at the highest
// confidence seen, so ambiguous low-confidence edges count less than a
// certain same-file call.
func distinctCallers(edges []model.CallEdge) map[model.NodeID]map[model.NodeID]float64 {
	out := make(map[model.NodeID]map[model.NodeID]float64)
	for _, e := range edges {
		if !e.Resolved || e.Caller == e.Callee {
			continue
		}
		m := out[e.Callee]
		if m == nil {
			m = make(map[model.NodeID]float64)
			out[e.Callee] = m
		}
		if e.Confidence > m[e.Caller] {
			m[e.Caller] = e.Confidence
		}
	}
	return out
}

func (s *Scorer) entryPoint(n *model.CodeNode, hints EntryHints) float64 {
	v := hints.strength(n.Path)
	if n.Kind == model.KindFunction && n.Name == "main" {
		if v < 0.9 {
			v = 0.9
		}
	}
	// decls inherit a reduced share of their file's hint
	if n.Kind == model.KindFunction || n.Kind == model.KindClass {
		return v * 0.8
	}
	return v
}

func docBonus(n *model.CodeNode) float64 {
	if n.Doc != "" {
		return 1
	}
	return 0
}

func nameHint(n *model.CodeNode) float64 {
	score := 0.0
	lower := strings.ToLower(n.Name)
	stem := lower
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	for _, kw := range nameKeywords {
		if strings.Contains(lower, kw) {
			score += 0.3
			break
		}
	}
	if stem == "main" || stem == "__main__" {
		score += 0.7
	}
	if _, ok := specialStems[stem]; ok {
		score += 0.5
	}
	if score > 1 {
		score = 1
	}
	return score
}

func logScaled(v, max float64) float64 {
	if max <= 0 || v <= 0 {
		return 0
	}
	return math.Log1p(v) / math.Log1p(max)
}

func normalized(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rank orders IDs by total score descending, qualified name ascending on
// ties, so identical snapshots always render identically.
func Rank(scores map[model.NodeID]model.ImportanceScore, ids []model.NodeID) []model.NodeID {
	out := make([]model.NodeID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool {
		a, b := scores[out[i]].Total, scores[out[j]].Total
		if a != b {
			return a > b
		}
		return out[i] < out[j]
	})
	return out
}
