// Package compress renders a snapshot into budgeted text: a ranked overview
// at session start, and focused expansions during exploration. Every render
// tracks its token spend exactly and stops at the ceiling instead of
// overflowing.
package compress

// MinViableTokens is the smallest budget that still produces a usable
// overview. Anything lower fails with BUDGET_EXCEEDED instead of returning a
// fragment.
const MinViableTokens = 200

// EstimateTokens approximates LLM token usage at four bytes per token, which
// overshoots slightly for dense code and keeps renders under the ceiling.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// Budget tracks cumulative token spend against a fixed ceiling.
type Budget struct {
	max  int
	used int
}

func NewBudget(maxTokens int) *Budget {
	return &Budget{max: maxTokens}
}

func (b *Budget) Remaining() int {
	return b.max - b.used
}

// Fits reports whether s can be spent without crossing the ceiling.
func (b *Budget) Fits(s string) bool {
	return b.used+EstimateTokens(s) <= b.max
}

// Spend consumes s's tokens. It returns false, spending nothing, when s does
// not fit.
func (b *Budget) Spend(s string) bool {
	t := EstimateTokens(s)
	if b.used+t > b.max {
		return false
	}
	b.used += t
	return true
}
