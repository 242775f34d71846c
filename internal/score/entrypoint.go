package score

import (
	"encoding/json"
	"path"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"codemap/internal/model"
)

// EntryHints marks the files an exploration should start from: declared
// manifest entry scripts, files a README points at, and main-like constructs.
type EntryHints struct {
	// file path -> strength in (0,1]
	Files map[string]float64
}

func (h EntryHints) strength(filePath string) float64 {
	return h.Files[filePath]
}

// DetectEntryPoints inspects manifests, README files, and the sources
// themselves. It works off the scanned file set only; nothing here touches
// the filesystem.
func DetectEntryPoints(files []model.FileResult) EntryHints {
	hints := EntryHints{Files: make(map[string]float64)}
	known := make(map[string]struct{}, len(files))
	stems := make(map[string]string, len(files))
	for _, f := range files {
		known[f.Path] = struct{}{}
		stems[strings.TrimSuffix(f.Path, path.Ext(f.Path))] = f.Path
	}

	mark := func(p string, strength float64) {
		p = strings.TrimPrefix(path.Clean(p), "./")
		target := p
		if _, ok := known[p]; !ok {
			t, ok := stems[strings.TrimSuffix(p, path.Ext(p))]
			if !ok {
				return
			}
			target = t
		}
		if strength > hints.Files[target] {
			hints.Files[target] = strength
		}
	}

	for _, f := range files {
		base := path.Base(f.Path)
		switch {
		case base == "package.json":
			markPackageJSON(f.Source, path.Dir(f.Path), mark)
		case base == "pyproject.toml":
			markPyproject(f.Source, mark)
		case base == "Procfile" || strings.HasSuffix(base, "compose.yml") || strings.HasSuffix(base, "compose.yaml"):
			markYAMLCommands(f.Source, mark)
		case strings.HasPrefix(strings.ToLower(base), "readme"):
			markReadmeMentions(f.Source, known, stems, mark)
		}
		markMainLike(f, mark)
	}
	return hints
}

func markPackageJSON(src, dir string, mark func(string, float64)) {
	var manifest struct {
		Main string            `json:"main"`
		Bin  json.RawMessage   `json:"bin"`
		Scr  map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal([]byte(src), &manifest); err != nil {
		return
	}
	if manifest.Main != "" {
		mark(path.Join(dir, manifest.Main), 1.0)
	}
	// bin is either a string or a name->path map
	var binPath string
	if json.Unmarshal(manifest.Bin, &binPath) == nil && binPath != "" {
		mark(path.Join(dir, binPath), 1.0)
	} else {
		var bins map[string]string
		if json.Unmarshal(manifest.Bin, &bins) == nil {
			for _, p := range bins {
				mark(path.Join(dir, p), 1.0)
			}
		}
	}
}

func markPyproject(src string, mark func(string, float64)) {
	var manifest struct {
		Project struct {
			Scripts map[string]string `toml:"scripts"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Scripts map[string]string `toml:"scripts"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal([]byte(src), &manifest); err != nil {
		return
	}
	scripts := manifest.Project.Scripts
	if len(scripts) == 0 {
		scripts = manifest.Tool.Poetry.Scripts
	}
	for _, ref := range scripts {
		// "pkg.mod:func" -> pkg/mod.py
		module := ref
		if i := strings.Index(module, ":"); i >= 0 {
			module = module[:i]
		}
		mark(strings.ReplaceAll(module, ".", "/")+".py", 1.0)
	}
}

// markYAMLCommands pulls file-looking tokens out of Procfile-style or compose
// command lines.
func markYAMLCommands(src string, mark func(string, float64)) {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return
	}
	var scan func(v any)
	scan = func(v any) {
		switch t := v.(type) {
		case string:
			for _, tok := range strings.Fields(t) {
				if looksLikeSourcePath(tok) {
					mark(tok, 0.8)
				}
			}
		case []any:
			for _, item := range t {
				scan(item)
			}
		case map[string]any:
			for _, item := range t {
				scan(item)
			}
		}
	}
	scan(doc)
}

func markReadmeMentions(src string, known map[string]struct{}, stems map[string]string, mark func(string, float64)) {
	for _, tok := range strings.FieldsFunc(src, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '`' || r == '(' || r == ')' ||
			r == '[' || r == ']' || r == '"' || r == '\''
	}) {
		tok = strings.TrimPrefix(tok, "./")
		if _, ok := known[tok]; ok {
			mark(tok, 0.8)
			continue
		}
		if _, ok := stems[strings.TrimSuffix(tok, path.Ext(tok))]; ok && looksLikeSourcePath(tok) {
			mark(tok, 0.8)
		}
	}
}

// markMainLike flags top-level main constructs in the sources themselves.
func markMainLike(f model.FileResult, mark func(string, float64)) {
	switch {
	case strings.HasSuffix(f.Path, ".py"):
		if strings.Contains(f.Source, "__main__") {
			mark(f.Path, 0.9)
		}
	case strings.HasSuffix(f.Path, ".go"):
		for _, d := range f.Decls {
			if d.Name == "main" && d.Container == "" && d.Kind == model.KindFunction {
				mark(f.Path, 0.9)
			}
		}
	}
	base := path.Base(f.Path)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "main" || stem == "app" || stem == "index" || stem == "cli" {
		mark(f.Path, 0.6)
	}
}

func looksLikeSourcePath(tok string) bool {
	switch path.Ext(tok) {
	case ".py", ".go", ".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx":
		return true
	}
	return false
}
