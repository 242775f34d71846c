package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codemap/internal/explore"
	"codemap/internal/model"
)

var depsCmd = &cobra.Command{
	Use:   "deps <node>",
	Short: "List what a file or directory imports",
	Long: `Lists the modules a file or directory depends on. External packages are
named but carry no node ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeps(cmd, args[0], explore.Dependencies)
	},
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <node>",
	Short: "List what imports a file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeps(cmd, args[0], explore.Dependents)
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(dependentsCmd)
}

func runDeps(cmd *cobra.Command, id string, list func(*model.Snapshot, model.NodeID) ([]explore.DepInfo, error)) error {
	cfg, logger := setup()

	snap, err := loadSnapshot(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	deps, err := list(snap, model.NodeID(id))
	if err != nil {
		return err
	}

	var sb strings.Builder
	if len(deps) == 0 {
		sb.WriteString("none")
	}
	for i, d := range deps {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if d.External {
			fmt.Fprintf(&sb, "%s (external)", d.Package)
		} else {
			sb.WriteString(string(d.ID))
		}
	}
	return emit(sb.String(), deps)
}
