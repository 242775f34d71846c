package main

import (
	"github.com/spf13/cobra"

	"codemap/internal/compress"
)

var overviewBudget int

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Render a token-budgeted overview of the repository",
	Long: `Renders the repository top-down within a token budget: most important
entries first at every level, with an omission marker when the budget cuts a
level short.`,
	RunE: runOverview,
}

func init() {
	overviewCmd.Flags().IntVar(&overviewBudget, "budget", 0, "Token budget (default from config)")
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()
	if overviewBudget <= 0 {
		overviewBudget = cfg.Budget.OverviewTokens
	}

	snap, err := loadSnapshot(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	out, err := compress.Overview(snap, overviewBudget)
	if err != nil {
		return err
	}
	return emit(out, map[string]string{"overview": out})
}
