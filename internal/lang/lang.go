// Package lang maps file extensions to supported languages and provides the
// tree-sitter grammars and node-type tables the AST builder works against.
package lang

import (
	"regexp"
	"strings"
	"sync"
)

// Supported language names.
const (
	Go         = "go"
	Python     = "python"
	JavaScript = "javascript"
	TypeScript = "typescript"
)

// Info describes one supported language.
type Info struct {
	Name       string
	Extensions []string
}

// Registry of supported languages. Grammar bindings live in the cgo-gated
// files; this table is available regardless of build mode so scanning and
// reporting work even when parsing does not.
var Registry = []Info{
	{Name: Go, Extensions: []string{".go"}},
	{Name: Python, Extensions: []string{".py"}},
	{Name: JavaScript, Extensions: []string{".js", ".mjs", ".cjs", ".jsx"}},
	{Name: TypeScript, Extensions: []string{".ts", ".tsx"}},
}

var (
	extensionMap  map[string]string
	extensionOnce sync.Once
)

// ForExtension returns the language name for a file extension, or "" if
// unsupported. Unsupported files are treated like parse failures downstream.
func ForExtension(ext string) string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, info := range Registry {
			for _, e := range info.Extensions {
				extensionMap[e] = info.Name
			}
		}
	})
	return extensionMap[strings.ToLower(ext)]
}

// Names returns the supported language names in registry order.
func Names() []string {
	names := make([]string, len(Registry))
	for i, info := range Registry {
		names[i] = info.Name
	}
	return names
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
