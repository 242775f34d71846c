package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codemap/internal/build"
	"codemap/internal/model"
	"codemap/internal/storage"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the repository model and cache the snapshot",
	Long: `Scans the repository, parses every supported source file, derives the code
tree, call graph, and module dependency graph, scores the result, and stores
the snapshot in the local cache.

Examples:
  codemap index            # Build if the cached snapshot is stale
  codemap index --force    # Rebuild even when the cache is current`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "Rebuild even if the cached snapshot is current")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()
	ctx := cmd.Context()

	var snap *model.Snapshot
	var err error
	if indexForce || !cfg.Cache.Enabled {
		opts := build.FromConfig(cfg, logger)
		snap, err = build.Run(ctx, opts)
		if err == nil && cfg.Cache.Enabled {
			if cache, cerr := storage.Open(cachePath(cfg), logger); cerr == nil {
				defer cache.Close()
				if perr := cache.Put(snap); perr != nil {
					logger.Warn("Failed to cache snapshot", map[string]interface{}{
						"error": perr.Error(),
					})
				}
			}
		}
	} else {
		snap, err = loadSnapshot(ctx, cfg, logger)
	}
	if err != nil {
		return err
	}

	return emit(indexSummary(snap), snap.Report)
}

func indexSummary(snap *model.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "snapshot %s\n", snap.ID)
	fmt.Fprintf(&sb, "  files: %d seen, %d parsed\n", snap.Report.FilesSeen, snap.Report.Parsed)
	fmt.Fprintf(&sb, "  nodes: %d (%d dirs, %d files, %d classes, %d functions)\n",
		len(snap.Nodes), snap.Stats.Directories, snap.Stats.Files, snap.Stats.Classes, snap.Stats.Functions)
	fmt.Fprintf(&sb, "  edges: %d calls, %d dependencies\n", len(snap.Calls), len(snap.Deps))
	fmt.Fprintf(&sb, "  duration: %s", snap.Report.Duration.Round(time.Millisecond))
	if !snap.Report.Complete() {
		fmt.Fprintf(&sb, "\n  degraded items: %d", len(snap.Report.Degraded))
		for _, d := range snap.Report.Degraded {
			fmt.Fprintf(&sb, "\n    %s: %s (%s)", d.Status, d.Path, d.Reason)
		}
	}
	return sb.String()
}
