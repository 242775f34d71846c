package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codemap/internal/build"
	"codemap/internal/config"
	"codemap/internal/errors"
	"codemap/internal/logging"
	"codemap/internal/model"
	"codemap/internal/storage"
	"codemap/internal/version"
)

var (
	repoFlag     string
	formatFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "codemap",
	Short: "codemap - repository code model",
	Long: `codemap builds a structural model of a repository (code tree, call graph,
module dependencies, importance scores) and serves token-budgeted views of it:
compressed overviews, focused expansions, and exploration queries.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("codemap version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".", "Repository root to analyze")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "human", "Output format: human or json")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level: debug, info, warn, error")
}

// setup loads configuration and builds the command logger. Config load
// failures fall back to defaults so queries still work in an uninitialized
// repository.
func setup() (*config.Config, *logging.Logger) {
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ParseLevel(logLevelFlag),
	})

	cfg, err := config.LoadConfig(repoFlag)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("Invalid config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		cfg = config.DefaultConfig()
	}
	cfg.RepoRoot = repoFlag
	return cfg, logger
}

func cachePath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Cache.Path) {
		return cfg.Cache.Path
	}
	return filepath.Join(cfg.RepoRoot, cfg.Cache.Path)
}

// loadSnapshot returns a current snapshot for the repository, rebuilding when
// the cache is missing, stale, or disabled. A fresh build is written back to
// the cache so the next query starts warm.
func loadSnapshot(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*model.Snapshot, error) {
	opts := build.FromConfig(cfg, logger)

	if !cfg.Cache.Enabled {
		return build.Run(ctx, opts)
	}

	cache, err := storage.Open(cachePath(cfg), logger)
	if err != nil {
		logger.Warn("Cache unavailable, building without it", map[string]interface{}{
			"error": err.Error(),
		})
		return build.Run(ctx, opts)
	}
	defer cache.Close()

	hash, err := build.HashRepo(opts)
	if err != nil {
		return nil, err
	}
	snap, err := cache.Get(cfg.RepoRoot, hash)
	if err == nil {
		logger.Debug("snapshot cache hit", map[string]interface{}{"snapshot": snap.ID})
		return snap, nil
	}
	if !errors.HasCode(err, errors.NotFound) && !errors.HasCode(err, errors.SnapshotStale) {
		return nil, err
	}

	snap, err = build.Run(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cache.Put(snap); err != nil {
		logger.Warn("Failed to cache snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return snap, nil
}

// emit writes a result to stdout in the requested format. Human output is the
// string form; JSON output wraps the typed payload.
func emit(human string, payload interface{}) error {
	if formatFlag == "json" {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}
	fmt.Fprintln(os.Stdout, human)
	return nil
}
