package compress

import (
	"fmt"
	"strings"

	"codemap/internal/errors"
	"codemap/internal/model"
	"codemap/internal/score"
)

// markerReserve keeps room for an omission marker so a truncated list always
// says how much it dropped.
const markerReserve = "  + 99999 lower-ranked entries omitted\n"

// Overview renders the ranked outline of a snapshot within the token budget.
// Every truncated child list carries an explicit "+N omitted" marker, so the
// reader knows more exists and can ask for it.
func Overview(snap *model.Snapshot, budgetTokens int) (string, error) {
	if budgetTokens < MinViableTokens {
		return "", errors.Newf(errors.BudgetExceeded,
			"overview needs at least %d tokens, got %d", MinViableTokens, budgetTokens)
	}

	var sb strings.Builder
	budget := NewBudget(budgetTokens)

	header := overviewHeader(snap)
	if !budget.Spend(header) {
		return "", errors.New(errors.BudgetExceeded, "budget too small for the overview header", nil)
	}
	sb.WriteString(header)

	renderChildren(&sb, budget, snap, snap.Root, 0)
	return sb.String(), nil
}

func overviewHeader(snap *model.Snapshot) string {
	var sb strings.Builder
	root, _ := snap.Node(snap.Root)
	name := "repository"
	if root != nil {
		name = root.Name
	}
	st := snap.Stats
	fmt.Fprintf(&sb, "# %s\n", name)
	fmt.Fprintf(&sb, "%d files, %d classes, %d functions\n", st.Files, st.Classes, st.Functions)
	if st.FailedFiles > 0 || st.PartialFiles > 0 {
		fmt.Fprintf(&sb, "parse coverage: %d failed, %d partial\n", st.FailedFiles, st.PartialFiles)
	}
	if !snap.Report.Complete() {
		fmt.Fprintf(&sb, "analysis is partial: %d items degraded\n", len(snap.Report.Degraded))
	}
	sb.WriteString("\n")
	return sb.String()
}

// renderChildren walks one level, highest score first, and recurses while the
// budget holds. The whole level is paid for before any child subtree spends:
// every sibling line, plus the omission marker when the level truncates, is
// reserved up front, so a deep subtree can exhaust the budget for lower levels
// but never drop a sibling or the level's marker without a trace. The
// recursion is bounded by tree depth; the tree invariants forbid cycles.
func renderChildren(sb *strings.Builder, budget *Budget, snap *model.Snapshot, parent model.NodeID, depth int) {
	node, ok := snap.Node(parent)
	if !ok || len(node.Children) == 0 {
		return
	}
	ranked := score.Rank(snap.Scores, node.Children)

	included := make([]model.NodeID, 0, len(ranked))
	lines := make([]string, 0, len(ranked))
	var marker string
	for i, childID := range ranked {
		child, ok := snap.Node(childID)
		if !ok {
			continue
		}
		line := outlineLine(snap, child, depth)
		if !budget.Fits(line + markerReserve) {
			marker = fmt.Sprintf("%s+ %d lower-ranked entries omitted\n",
				strings.Repeat("  ", depth), len(ranked)-i)
			if !budget.Spend(marker) {
				marker = ""
			}
			break
		}
		budget.Spend(line)
		included = append(included, childID)
		lines = append(lines, line)
	}

	for i, childID := range included {
		sb.WriteString(lines[i])
		renderChildren(sb, budget, snap, childID, depth+1)
	}
	sb.WriteString(marker)
}

func outlineLine(snap *model.Snapshot, n *model.CodeNode, depth int) string {
	indent := strings.Repeat("  ", depth)
	label := n.Name
	switch n.Kind {
	case model.KindDirectory:
		label += "/"
	case model.KindFile:
		if n.Status == model.ParseFailed {
			label += "  (unparsed)"
		}
	case model.KindClass, model.KindFunction:
		if n.Signature != "" {
			label = n.Signature
		}
	}
	sc := snap.Score(n.ID)
	line := fmt.Sprintf("%s%s  [%.2f]", indent, label, sc.Total)
	if n.Doc != "" && (n.Kind == model.KindClass || n.Kind == model.KindFunction || n.Kind == model.KindFile) {
		line += "  - " + firstLine(n.Doc)
	}
	return line + "\n"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
