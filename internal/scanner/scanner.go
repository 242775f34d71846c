// Package scanner walks a repository tree and yields candidate source files.
// Order is deterministic (lexical path order) so re-runs are reproducible.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"codemap/internal/lang"
	"codemap/internal/model"
)

// Rules controls which files a scan yields.
type Rules struct {
	Include          []string // glob patterns; empty means everything
	Exclude          []string // glob patterns checked before include
	MaxFileSizeBytes int64    // larger files are yielded as skipped, not parsed
	MaxFiles         int      // repository-size guard; 0 means unlimited
	UseGitignore     bool
}

// skipDirs are never descended into, independent of ignore rules.
var skipDirs = map[string]struct{}{
	".git":          {},
	".hg":           {},
	".svn":          {},
	"__pycache__":   {},
	"node_modules":  {},
	"vendor":        {},
	"venv":          {},
	".venv":         {},
	"dist":          {},
	"build":         {},
	".tox":          {},
	".mypy_cache":   {},
	".pytest_cache": {},
	".codemap":      {},
}

// isManifest reports whether a file matters to entry-point detection even
// though it is not source code. These are yielded unparsed, source retained.
func isManifest(name string) bool {
	switch name {
	case "package.json", "pyproject.toml", "Procfile":
		return true
	}
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "readme") {
		return true
	}
	return strings.HasSuffix(name, "compose.yml") || strings.HasSuffix(name, "compose.yaml")
}

// Result is the outcome of one scan: the files to parse plus everything that
// had to be skipped, so the build report can say the analysis is partial.
type Result struct {
	Files    []model.SourceFile
	Degraded []model.ReportEntry
	Capped   bool // MaxFiles was hit before the walk finished
}

// Scan walks root and returns candidate source files in lexical path order.
// Unreadable paths are recorded and skipped, never fatal. Symlinks are never
// followed, which keeps the walk inside root.
func Scan(root string, rules Rules) (*Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var gi *ignore.GitIgnore
	if rules.UseGitignore {
		gi = loadGitignore(root)
	}

	res := &Result{}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rel := relOrSelf(root, path)
			res.Degraded = append(res.Degraded, model.ReportEntry{
				Path: rel, Status: "unreadable", Reason: err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		// Never follow symlinks: a link out of root must not widen the scan.
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel := relOrSelf(root, path)
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if matchesAny(rules.Exclude, rel) {
			return nil
		}
		if len(rules.Include) > 0 && !matchesAny(rules.Include, rel) {
			return nil
		}

		language := lang.ForExtension(filepath.Ext(name))
		if language == "" && !isManifest(name) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			res.Degraded = append(res.Degraded, model.ReportEntry{
				Path: rel, Status: "unreadable", Reason: err.Error(),
			})
			return nil
		}

		sf := model.SourceFile{Path: rel, Language: language, Size: info.Size()}
		if rules.MaxFileSizeBytes > 0 && info.Size() > rules.MaxFileSizeBytes {
			sf.Skipped = true
			res.Degraded = append(res.Degraded, model.ReportEntry{
				Path: rel, Status: "skipped", Reason: "over size limit",
			})
		}
		res.Files = append(res.Files, sf)

		if rules.MaxFiles > 0 && len(res.Files) >= rules.MaxFiles {
			res.Capped = true
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	// WalkDir is already lexical per directory; sorting the flat list keeps
	// the order stable across platforms and restarts.
	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].Path < res.Files[j].Path
	})

	return res, nil
}

// matchesAny reports whether rel matches one of the glob patterns. A leading
// "**/" anchors the rest of the pattern at any directory level; a trailing
// "/**" matches everything under that directory. The two compose, so
// "**/testdata/**" hits a testdata directory at any depth. Other patterns
// match the full relative path or the base name.
func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if inner, ok := strings.CutPrefix(p, "**/"); ok {
			for rest := rel; ; {
				if matchGlob(inner, rest) {
					return true
				}
				slash := strings.IndexByte(rest, '/')
				if slash < 0 {
					break
				}
				rest = rest[slash+1:]
			}
			continue
		}
		if matchGlob(p, rel) || matchGlob(p, filepath.Base(rel)) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, s string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
		return s == dir || strings.HasPrefix(s, dir+"/")
	}
	ok, err := filepath.Match(pattern, s)
	return err == nil && ok
}

func relOrSelf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
