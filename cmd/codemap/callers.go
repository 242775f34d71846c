package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codemap/internal/explore"
	"codemap/internal/model"
)

var callersCmd = &cobra.Command{
	Use:   "callers <node>",
	Short: "List call sites that reach a declaration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCallEdges(cmd, args[0], explore.Callers)
	},
}

var calleesCmd = &cobra.Command{
	Use:   "callees <node>",
	Short: "List calls made from a declaration",
	Long: `Lists the calls a declaration makes. Unresolved calls keep the raw symbol
so external or dynamic targets stay visible.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCallEdges(cmd, args[0], explore.Callees)
	},
}

func init() {
	rootCmd.AddCommand(callersCmd)
	rootCmd.AddCommand(calleesCmd)
}

func runCallEdges(cmd *cobra.Command, id string, list func(*model.Snapshot, model.NodeID) ([]explore.EdgeInfo, error)) error {
	cfg, logger := setup()

	snap, err := loadSnapshot(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	edges, err := list(snap, model.NodeID(id))
	if err != nil {
		return err
	}

	var sb strings.Builder
	if len(edges) == 0 {
		sb.WriteString("none")
	}
	for i, e := range edges {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if e.Resolved {
			fmt.Fprintf(&sb, "%s (confidence %.1f)", e.ID, e.Confidence)
		} else {
			fmt.Fprintf(&sb, "%s (unresolved)", e.Symbol)
		}
		if e.Line > 0 {
			fmt.Fprintf(&sb, " line %d", e.Line)
		}
	}
	return emit(sb.String(), edges)
}
