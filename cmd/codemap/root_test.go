package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupFallsBackOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".codemap"), 0o755); err != nil {
		t.Fatal(err)
	}
	bad := []byte(`{"version": 1, "scan": {"maxFiles": -5}}`)
	if err := os.WriteFile(filepath.Join(dir, ".codemap", "config.json"), bad, 0o644); err != nil {
		t.Fatal(err)
	}

	orig := repoFlag
	defer func() { repoFlag = orig }()
	repoFlag = dir

	cfg, _ := setup()
	if cfg.Scan.MaxFiles <= 0 {
		t.Fatalf("invalid config not replaced by defaults: maxFiles = %d", cfg.Scan.MaxFiles)
	}
	if cfg.RepoRoot != dir {
		t.Errorf("repo root = %q, want %q", cfg.RepoRoot, dir)
	}
}
