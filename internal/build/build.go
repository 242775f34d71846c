// Package build runs the full pipeline: scan, parse on a worker pool, merge
// into the tree, derive graphs, score, snapshot. Parsing is the only parallel
// phase; each worker owns its parsers and returns immutable results that are
// merged single-threaded.
package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"codemap/internal/ast"
	"codemap/internal/config"
	"codemap/internal/errors"
	"codemap/internal/graph"
	"codemap/internal/logging"
	"codemap/internal/model"
	"codemap/internal/scanner"
	"codemap/internal/score"
	"codemap/internal/tree"
)

// Options assembles everything one build needs. Zero values fall back to the
// config defaults.
type Options struct {
	RepoRoot string
	Scan     scanner.Rules
	Weights  config.WeightsConfig
	Workers  int
	// WallClock bounds the whole build; exceeding it aborts with
	// BUDGET_EXCEEDED rather than silently degrading.
	WallClock time.Duration
	Logger    *logging.Logger
}

// FromConfig derives build options from a loaded configuration.
func FromConfig(cfg *config.Config, logger *logging.Logger) Options {
	return Options{
		RepoRoot: cfg.RepoRoot,
		Scan: scanner.Rules{
			Include:          cfg.Scan.Include,
			Exclude:          cfg.Scan.Exclude,
			MaxFileSizeBytes: cfg.Scan.MaxFileSizeBytes,
			MaxFiles:         cfg.Scan.MaxFiles,
			UseGitignore:     cfg.Scan.UseGitignore,
		},
		Weights:   cfg.Weights,
		Workers:   cfg.Build.Workers,
		WallClock: time.Duration(cfg.Build.WallClockSeconds) * time.Second,
		Logger:    logger,
	}
}

// Run executes one build. Cancellation is cooperative at file boundaries:
// workers check the context between files, never mid-parse.
func Run(ctx context.Context, opts Options) (*model.Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.WallClock > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.WallClock)
		defer cancel()
	}
	started := time.Now()

	scanRes, err := scanner.Scan(opts.RepoRoot, opts.Scan)
	if err != nil {
		return nil, errors.New(errors.ScanFailed, "repository scan failed", err)
	}
	logger.Info("scan complete", map[string]interface{}{
		"files": len(scanRes.Files), "degraded": len(scanRes.Degraded), "capped": scanRes.Capped,
	})

	report := model.BuildReport{Degraded: scanRes.Degraded, FilesSeen: len(scanRes.Files)}
	if scanRes.Capped {
		report.Degraded = append(report.Degraded, model.ReportEntry{
			Path: ".", Status: "skipped", Reason: "file-count ceiling reached",
		})
	}

	results, err := parseAll(ctx, opts, scanRes.Files, &report, logger)
	if err != nil {
		return nil, err
	}

	nodes, err := tree.Build(opts.RepoRoot, results)
	if err != nil {
		return nil, err
	}
	graphs := graph.Build(nodes, results)
	scores := score.NewScorer(opts.Weights).
		Compute(nodes, graphs, score.DetectEntryPoints(results))

	sources := make(map[string]string, len(results))
	lines := 0
	for _, r := range results {
		sources[r.Path] = r.Source
		for i := 0; i < len(r.Source); i++ {
			if r.Source[i] == '\n' {
				lines++
			}
		}
		switch r.Status {
		case model.ParseFailed:
			// Manifests and READMEs have no parser; that is not degradation.
			if r.Language != "" {
				report.Degraded = append(report.Degraded, model.ReportEntry{
					Path: r.Path, Status: "failed", Reason: "unparseable",
				})
			}
		case model.ParsePartial:
			report.Degraded = append(report.Degraded, model.ReportEntry{
				Path: r.Path, Status: "partial", Reason: "recovered around syntax errors",
			})
		default:
			report.Parsed++
		}
	}

	stats := tree.Stats(nodes)
	stats.Lines = lines
	report.Duration = time.Since(started)

	snap := &model.Snapshot{
		ID:          uuid.NewString(),
		RepoRoot:    opts.RepoRoot,
		ContentHash: ContentHash(scanRes.Files, sources),
		CreatedAt:   time.Now().UTC(),
		Root:        model.RootID,
		Nodes:       nodes,
		Calls:       graphs.Calls,
		Deps:        graphs.Deps,
		Scores:      scores,
		Sources:     sources,
		Stats:       stats,
	}
	report.SnapshotID = snap.ID
	snap.Report = report

	logger.Info("build complete", map[string]interface{}{
		"snapshot": snap.ID, "nodes": len(nodes),
		"calls": len(graphs.Calls), "deps": len(graphs.Deps),
		"duration": report.Duration.String(),
	})
	return snap, nil
}

// parseAll fans files out to a fixed worker pool. Workers stop at the next
// file boundary once the context is done.
func parseAll(ctx context.Context, opts Options, files []model.SourceFile, report *model.BuildReport, logger *logging.Logger) ([]model.FileResult, error) {
	jobs := make(chan model.SourceFile)
	out := make(chan model.FileResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			builder := ast.NewBuilder(logger)
			for f := range jobs {
				if ctx.Err() != nil {
					return
				}
				out <- parseOne(ctx, builder, opts.RepoRoot, f)
			}
		}()
	}

feed:
	for _, f := range files {
		select {
		case jobs <- f:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(out)

	if err := ctx.Err(); err != nil {
		return nil, errors.New(errors.BudgetExceeded, "build exceeded its time ceiling", err)
	}

	results := make([]model.FileResult, 0, len(files))
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func parseOne(ctx context.Context, builder *ast.Builder, repoRoot string, f model.SourceFile) model.FileResult {
	if f.Skipped {
		return model.FileResult{Path: f.Path, Language: f.Language, Status: model.ParseSkipped}
	}
	data, err := os.ReadFile(filepath.Join(repoRoot, filepath.FromSlash(f.Path)))
	if err != nil {
		return model.FileResult{Path: f.Path, Language: f.Language, Status: model.ParseFailed}
	}
	return builder.ParseFile(ctx, f.Path, data)
}

// HashRepo computes the repository content hash without parsing anything.
// Cache lookups use it to decide whether a stored snapshot is still current.
func HashRepo(opts Options) (string, error) {
	scanRes, err := scanner.Scan(opts.RepoRoot, opts.Scan)
	if err != nil {
		return "", errors.New(errors.ScanFailed, "repository scan failed", err)
	}
	sources := make(map[string]string, len(scanRes.Files))
	for _, f := range scanRes.Files {
		if f.Skipped {
			continue
		}
		data, err := os.ReadFile(filepath.Join(opts.RepoRoot, filepath.FromSlash(f.Path)))
		if err != nil {
			continue
		}
		sources[f.Path] = string(data)
	}
	return ContentHash(scanRes.Files, sources), nil
}

// ContentHash fingerprints the scanned file set. Any content or membership
// change produces a different hash, which is what invalidates the snapshot
// cache.
func ContentHash(files []model.SourceFile, sources map[string]string) string {
	h := sha256.New()
	sorted := make([]model.SourceFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	for _, f := range sorted {
		fmt.Fprintf(h, "%s\x00%d\x00", f.Path, f.Size)
		h.Write([]byte(sources[f.Path]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
