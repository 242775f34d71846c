package main

import (
	"github.com/spf13/cobra"

	"codemap/internal/compress"
	"codemap/internal/model"
)

var expandBudget int

var expandCmd = &cobra.Command{
	Use:   "expand <node>",
	Short: "Expand one node with its most related neighborhood",
	Long: `Renders a focus node in detail (signature, doc, source excerpt, callers and
callees) plus the nodes most related to it by graph proximity, within a token
budget.

Node IDs are the paths the overview prints: "src/app.py" for a file,
"src/app.py::Service.start" for a declaration.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().IntVar(&expandBudget, "budget", 0, "Token budget (default from config)")
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()
	if expandBudget <= 0 {
		expandBudget = cfg.Budget.ExpansionTokens
	}

	snap, err := loadSnapshot(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	out, err := compress.Expand(snap, model.NodeID(args[0]), expandBudget)
	if err != nil {
		return err
	}
	return emit(out, map[string]string{"expansion": out})
}
