package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codemap/internal/build"
	"codemap/internal/errors"
	"codemap/internal/lang"
	"codemap/internal/storage"
	"codemap/internal/version"
)

type statusReport struct {
	Version    string `json:"version"`
	RepoRoot   string `json:"repoRoot"`
	Parsers    bool   `json:"parsers"`
	Languages  string `json:"languages"`
	Cache      string `json:"cache"`
	SnapshotID string `json:"snapshotId,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show repository, parser, and cache state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()

	rep := statusReport{
		Version:   version.Info(),
		RepoRoot:  cfg.RepoRoot,
		Parsers:   lang.Available(),
		Languages: strings.Join(lang.Names(), ", "),
		Cache:     "disabled",
	}

	if cfg.Cache.Enabled {
		rep.Cache = "unreachable"
		if cache, err := storage.Open(cachePath(cfg), logger); err == nil {
			defer cache.Close()
			hash, herr := build.HashRepo(build.FromConfig(cfg, logger))
			if herr != nil {
				rep.Cache = "repository unreadable"
			} else if snap, gerr := cache.Get(cfg.RepoRoot, hash); gerr == nil {
				rep.Cache = "fresh"
				rep.SnapshotID = snap.ID
				rep.CreatedAt = snap.CreatedAt.Format("2006-01-02 15:04:05 UTC")
			} else if errors.HasCode(gerr, errors.SnapshotStale) {
				rep.Cache = "stale (run codemap index)"
			} else if errors.HasCode(gerr, errors.NotFound) {
				rep.Cache = "empty (run codemap index)"
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "codemap %s\n", rep.Version)
	fmt.Fprintf(&sb, "  repo: %s\n", rep.RepoRoot)
	fmt.Fprintf(&sb, "  languages: %s\n", rep.Languages)
	if !rep.Parsers {
		sb.WriteString("  parsers: unavailable (built without cgo)\n")
	}
	fmt.Fprintf(&sb, "  cache: %s", rep.Cache)
	if rep.SnapshotID != "" {
		fmt.Fprintf(&sb, "\n  snapshot: %s (%s)", rep.SnapshotID, rep.CreatedAt)
	}
	return emit(sb.String(), rep)
}
