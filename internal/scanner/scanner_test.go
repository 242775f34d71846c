package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.py", "x = 1\n")
	writeFile(t, root, "a.py", "y = 2\n")
	writeFile(t, root, "src/c.py", "z = 3\n")

	first, err := Scan(root, Rules{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Scan(root, Rules{})
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(first.Files))
	}
	for i := range first.Files {
		if first.Files[i].Path != second.Files[i].Path {
			t.Errorf("order differs between runs at %d: %q vs %q",
				i, first.Files[i].Path, second.Files[i].Path)
		}
	}
	for i := 1; i < len(first.Files); i++ {
		if first.Files[i-1].Path >= first.Files[i].Path {
			t.Errorf("paths not in lexical order: %q before %q",
				first.Files[i-1].Path, first.Files[i].Path)
		}
	}
}

func TestScanSkipsUnsupportedAndHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.py", "x = 1\n")
	writeFile(t, root, "notes.txt", "hello\n")
	writeFile(t, root, ".hidden.py", "x = 1\n")
	writeFile(t, root, "node_modules/dep.js", "var x\n")
	writeFile(t, root, ".git/config.py", "x = 1\n")

	res, err := Scan(root, Rules{})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Files) != 1 || res.Files[0].Path != "keep.py" {
		t.Errorf("expected only keep.py, got %v", res.Files)
	}
}

func TestScanSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.py", strings.Repeat("x = 1\n", 100))
	writeFile(t, root, "small.py", "x = 1\n")

	res, err := Scan(root, Rules{MaxFileSizeBytes: 50})
	if err != nil {
		t.Fatal(err)
	}

	var big, small *int
	for i, f := range res.Files {
		i := i
		switch f.Path {
		case "big.py":
			big = &i
		case "small.py":
			small = &i
		}
	}
	if big == nil || small == nil {
		t.Fatalf("both files should be yielded, got %v", res.Files)
	}
	if !res.Files[*big].Skipped {
		t.Error("oversized file should be marked skipped, not dropped")
	}
	if res.Files[*small].Skipped {
		t.Error("small file should not be skipped")
	}
	if len(res.Degraded) != 1 || res.Degraded[0].Path != "big.py" {
		t.Errorf("skip should be recorded in degraded entries, got %v", res.Degraded)
	}
}

func TestScanMaxFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.py", "b.py", "c.py", "d.py"} {
		writeFile(t, root, name, "x = 1\n")
	}

	res, err := Scan(root, Rules{MaxFiles: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 2 {
		t.Errorf("expected 2 files, got %d", len(res.Files))
	}
	if !res.Capped {
		t.Error("hitting MaxFiles should set Capped")
	}
}

func TestScanExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "x = 1\n")
	writeFile(t, root, "gen/out.py", "x = 1\n")
	writeFile(t, root, "testdata/top.py", "x = 1\n")
	writeFile(t, root, "pkg/testdata/f.py", "x = 1\n")
	writeFile(t, root, "a/b/testdata/deep.py", "x = 1\n")

	res, err := Scan(root, Rules{Exclude: []string{"gen/**", "**/testdata/**"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 1 || res.Files[0].Path != "main.py" {
		t.Errorf("excludes not honored, got %v", res.Files)
	}
}

func TestScanIncludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "x = 1\n")
	writeFile(t, root, "util.go", "package util\n")

	res, err := Scan(root, Rules{Include: []string{"*.py"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 1 || res.Files[0].Path != "main.py" {
		t.Errorf("includes not honored, got %v", res.Files)
	}
}

func TestScanGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "ignored.py\n")
	writeFile(t, root, "ignored.py", "x = 1\n")
	writeFile(t, root, "kept.py", "x = 1\n")

	res, err := Scan(root, Rules{UseGitignore: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 1 || res.Files[0].Path != "kept.py" {
		t.Errorf("gitignore not honored, got %v", res.Files)
	}
}

func TestScanSymlinkNotFollowed(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, outside, "secret.py", "x = 1\n")

	root := t.TempDir()
	writeFile(t, root, "ok.py", "x = 1\n")
	if err := os.Symlink(filepath.Join(outside, "secret.py"), filepath.Join(root, "link.py")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	res, err := Scan(root, Rules{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 1 || res.Files[0].Path != "ok.py" {
		t.Errorf("symlink should be ignored, got %v", res.Files)
	}
}

func TestScanYieldsManifests(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "x = 1\n")
	writeFile(t, root, "README.md", "# demo\n")
	writeFile(t, root, "package.json", "{}\n")
	writeFile(t, root, "pyproject.toml", "[project]\n")
	writeFile(t, root, "Procfile", "web: python app.py\n")
	writeFile(t, root, "docker-compose.yml", "services: {}\n")
	writeFile(t, root, "notes.txt", "hello\n")

	res, err := Scan(root, Rules{})
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]bool{}
	for _, f := range res.Files {
		got[f.Path] = true
	}
	for _, want := range []string{"app.py", "README.md", "package.json", "pyproject.toml", "Procfile", "docker-compose.yml"} {
		if !got[want] {
			t.Errorf("missing %s from scan", want)
		}
	}
	if got["notes.txt"] {
		t.Error("notes.txt should not be yielded")
	}
}
