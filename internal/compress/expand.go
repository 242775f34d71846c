package compress

import (
	"fmt"
	"sort"
	"strings"

	"codemap/internal/errors"
	"codemap/internal/graph"
	"codemap/internal/model"
	"codemap/internal/tree"
)

// maxExcerptLines caps the body excerpt of a single expanded item.
const maxExcerptLines = 40

// Expand renders the focus node in full detail, then pulls in the most
// related nodes (graph proximity blended with importance) until the budget
// runs out. Items are added whole; the first one that does not fit ends the
// render.
func Expand(snap *model.Snapshot, focus model.NodeID, budgetTokens int) (string, error) {
	if budgetTokens < MinViableTokens {
		return "", errors.Newf(errors.BudgetExceeded,
			"expansion needs at least %d tokens, got %d", MinViableTokens, budgetTokens)
	}
	node, ok := snap.Node(focus)
	if !ok {
		return "", errors.Newf(errors.NotFound, "node %q not in snapshot", focus)
	}

	budget := NewBudget(budgetTokens)
	var sb strings.Builder

	head := focusDetail(snap, node)
	if !budget.Spend(head) {
		return "", errors.New(errors.BudgetExceeded, "budget too small for the focus node itself", nil)
	}
	sb.WriteString(head)

	for _, id := range related(snap, focus) {
		rel, ok := snap.Node(id)
		if !ok {
			continue
		}
		item := relatedDetail(snap, rel)
		if !budget.Spend(item) {
			break
		}
		sb.WriteString(item)
	}
	return sb.String(), nil
}

// related ranks every other node by PPR proximity to the focus blended with
// its own importance score.
func related(snap *model.Snapshot, focus model.NodeID) []model.NodeID {
	fcg := graph.FCGFromEdges(snap.Calls)
	mdg := graph.MDGFromEdges(snap.Deps)

	opts := graph.DefaultPPROptions()
	opts.TopK = len(snap.Nodes)

	// walk both directions: callees and dependencies forward, callers and
	// dependents through the reversed graphs
	fileSeed := model.NodeID(tree.FileOf(focus))
	proximity := make(map[model.NodeID]float64)
	merge := func(ranked []graph.Ranked) {
		for _, r := range ranked {
			if r.Score > proximity[r.ID] {
				proximity[r.ID] = r.Score
			}
		}
	}
	merge(fcg.PPR([]model.NodeID{focus}, opts))
	merge(fcg.Reversed().PPR([]model.NodeID{focus}, opts))
	merge(mdg.PPR([]model.NodeID{fileSeed}, opts))
	merge(mdg.Reversed().PPR([]model.NodeID{fileSeed}, opts))

	maxProx := 0.0
	for _, v := range proximity {
		if v > maxProx {
			maxProx = v
		}
	}
	if maxProx == 0 {
		// focus is disconnected; fall back to plain importance order
		for id := range snap.Nodes {
			proximity[id] = 0
		}
		maxProx = 1
	}

	type cand struct {
		id    model.NodeID
		value float64
	}
	cands := make([]cand, 0, len(proximity))
	for id, v := range proximity {
		if id == focus || graph.IsExternal(id) {
			continue
		}
		n, ok := snap.Nodes[id]
		if !ok {
			continue
		}
		switch n.Kind {
		case model.KindRepository, model.KindDirectory:
			continue
		}
		norm := v / maxProx
		cands = append(cands, cand{id: id, value: 0.6*norm + 0.4*snap.Score(id).Total})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].value != cands[j].value {
			return cands[i].value > cands[j].value
		}
		return cands[i].id < cands[j].id
	})

	out := make([]model.NodeID, len(cands))
	for i, c := range cands {
		out[i] = c.id
	}
	return out
}

func focusDetail(snap *model.Snapshot, n *model.CodeNode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n", n.ID)
	if n.Signature != "" {
		fmt.Fprintf(&sb, "%s\n", n.Signature)
	}
	if n.Doc != "" {
		fmt.Fprintf(&sb, "%s\n", n.Doc)
	}
	if body := excerpt(snap, n); body != "" {
		fmt.Fprintf(&sb, "```\n%s\n```\n", body)
	}
	writeEdgeList(&sb, "callers", callersOf(snap, n.ID))
	writeEdgeList(&sb, "callees", calleesOf(snap, n.ID))
	sb.WriteString("\n")
	return sb.String()
}

func relatedDetail(snap *model.Snapshot, n *model.CodeNode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s  [%.2f]\n", n.ID, snap.Score(n.ID).Total)
	if n.Signature != "" {
		fmt.Fprintf(&sb, "%s\n", n.Signature)
	}
	if n.Doc != "" {
		fmt.Fprintf(&sb, "%s\n", firstLine(n.Doc))
	}
	sb.WriteString("\n")
	return sb.String()
}

func excerpt(snap *model.Snapshot, n *model.CodeNode) string {
	span := snap.SourceSpan(n)
	if span == "" {
		return ""
	}
	lines := strings.Split(span, "\n")
	if len(lines) > maxExcerptLines {
		lines = append(lines[:maxExcerptLines],
			fmt.Sprintf("... %d more lines", len(lines)-maxExcerptLines))
	}
	return strings.Join(lines, "\n")
}

type edgeRef struct {
	label string
	conf  float64
}

func callersOf(snap *model.Snapshot, id model.NodeID) []edgeRef {
	var out []edgeRef
	for _, e := range snap.Calls {
		if e.Resolved && e.Callee == id {
			out = append(out, edgeRef{label: string(e.Caller), conf: e.Confidence})
		}
	}
	return out
}

func calleesOf(snap *model.Snapshot, id model.NodeID) []edgeRef {
	var out []edgeRef
	for _, e := range snap.Calls {
		if e.Caller != id {
			continue
		}
		if e.Resolved {
			out = append(out, edgeRef{label: string(e.Callee), conf: e.Confidence})
		} else {
			out = append(out, edgeRef{label: e.Symbol + " (external)", conf: 0})
		}
	}
	return out
}

func writeEdgeList(sb *strings.Builder, title string, refs []edgeRef) {
	if len(refs) == 0 {
		return
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].conf != refs[j].conf {
			return refs[i].conf > refs[j].conf
		}
		return refs[i].label < refs[j].label
	})
	fmt.Fprintf(sb, "%s:", title)
	for _, r := range refs {
		fmt.Fprintf(sb, " %s", r.label)
	}
	sb.WriteString("\n")
}
