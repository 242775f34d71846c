package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codemap/internal/explore"
	"codemap/internal/model"
)

var viewDetail string

var viewCmd = &cobra.Command{
	Use:   "view <node>",
	Short: "Show one node's source at a chosen detail level",
	Long: `Shows a single file or declaration. Detail levels:
  signature   declaration header only
  body        full source text
  full        source text plus doc comment`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewDetail, "detail", "body", "Detail level: signature, body, or full")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()

	snap, err := loadSnapshot(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	res, err := explore.View(snap, model.NodeID(args[0]), explore.DetailLevel(viewDetail))
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)", res.ID, res.Kind)
	if res.StartLine > 0 {
		fmt.Fprintf(&sb, " %s:%d-%d", res.Path, res.StartLine, res.EndLine)
	}
	if res.Status != "" && res.Status != model.ParseOK {
		fmt.Fprintf(&sb, " [%s]", res.Status)
	}
	if res.Signature != "" {
		fmt.Fprintf(&sb, "\n%s", res.Signature)
	}
	if res.Doc != "" {
		fmt.Fprintf(&sb, "\n%s", res.Doc)
	}
	if res.Text != "" {
		fmt.Fprintf(&sb, "\n%s", strings.TrimRight(res.Text, "\n"))
	}
	return emit(sb.String(), res)
}
