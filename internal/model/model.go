// Package model defines the core data structures of the repository code model:
// source files, code nodes, call and dependency edges, importance scores, and
// the immutable snapshot that owns them.
package model

import (
	"time"
)

// ParseStatus describes how much of a file the AST builder recovered.
type ParseStatus string

const (
	ParseOK      ParseStatus = "ok"
	ParsePartial ParseStatus = "partial"
	ParseFailed  ParseStatus = "failed"
	ParseSkipped ParseStatus = "skipped"
)

// NodeKind is the structural kind of a node in the hierarchical code tree.
type NodeKind string

const (
	KindRepository NodeKind = "repository"
	KindDirectory  NodeKind = "directory"
	KindFile       NodeKind = "file"
	KindClass      NodeKind = "class"
	KindFunction   NodeKind = "function"
	KindVariable   NodeKind = "variable"
)

// NodeID identifies a CodeNode within one snapshot. IDs are qualified names:
// "." for the root, the relative path for directories and files, and
// "<path>::<container>.<name>" for declarations. Unique within a snapshot.
type NodeID string

// RootID is the NodeID of the repository root.
const RootID NodeID = "."

// SourceFile is a scanner-discovered candidate file.
type SourceFile struct {
	Path     string `json:"path"` // relative to repo root, slash-separated
	Language string `json:"language"`
	Size     int64  `json:"size"`
	Skipped  bool   `json:"skipped,omitempty"` // over size limit, recorded but not parsed
}

// CodeNode is one node of the hierarchical code tree. Children are owned;
// the parent reference is a plain identifier, never an owning link.
type CodeNode struct {
	ID        NodeID      `json:"id"`
	Kind      NodeKind    `json:"kind"`
	Name      string      `json:"name"`
	Path      string      `json:"path"` // file the node lives in ("" for root/directories)
	Signature string      `json:"signature,omitempty"`
	Doc       string      `json:"doc,omitempty"` // doc comment excerpt
	StartLine int         `json:"startLine,omitempty"`
	EndLine   int         `json:"endLine,omitempty"`
	Status    ParseStatus `json:"status,omitempty"`
	Parent    NodeID      `json:"parent,omitempty"`
	Children  []NodeID    `json:"children,omitempty"` // insertion order = source order
}

// ImportKind classifies how one module pulls in another.
type ImportKind string

const (
	ImportDirect      ImportKind = "direct"
	ImportReExport    ImportKind = "re-export"
	ImportConditional ImportKind = "conditional"
)

// Import is a raw import statement extracted from one file.
type Import struct {
	Module string     `json:"module"` // imported module path or package name as written
	Alias  string     `json:"alias,omitempty"`
	Names  []string   `json:"names,omitempty"` // individually imported symbols ("from m import a, b")
	Kind   ImportKind `json:"kind"`
	Line   int        `json:"line"`
}

// CallSite is a raw call expression extracted from a function body.
type CallSite struct {
	Symbol    string `json:"symbol"`              // called name, possibly dotted ("obj.method")
	Enclosing string `json:"enclosing,omitempty"` // local qualified name of the calling decl ("" = module level)
	Line      int    `json:"line"`
}

// Decl is one declaration extracted from a file, before tree merge.
type Decl struct {
	Kind      NodeKind    `json:"kind"`
	Name      string      `json:"name"`
	Container string      `json:"container,omitempty"` // enclosing class name, "" for top level
	Signature string      `json:"signature,omitempty"`
	Doc       string      `json:"doc,omitempty"`
	StartLine int         `json:"startLine"`
	EndLine   int         `json:"endLine"`
	Status    ParseStatus `json:"status,omitempty"` // partial when recovered around a syntax error
}

// FileResult is the AST builder's output for one file: a flat structural
// subset that the tree builder merges into the HCT.
type FileResult struct {
	Path     string      `json:"path"`
	Language string      `json:"language"`
	Status   ParseStatus `json:"status"`
	Doc      string      `json:"doc,omitempty"` // file/module level doc comment
	Source   string      `json:"source,omitempty"`
	Decls    []Decl      `json:"decls,omitempty"`
	Imports  []Import    `json:"imports,omitempty"`
	Calls    []CallSite  `json:"calls,omitempty"`
}

// CallEdge is one edge of the function call graph. Unresolved edges keep the
// raw symbol: calling into an external library is itself a signal.
type CallEdge struct {
	Caller     NodeID  `json:"caller"`
	Callee     NodeID  `json:"callee,omitempty"` // empty when unresolved
	Symbol     string  `json:"symbol"`           // call-site symbol as written
	Resolved   bool    `json:"resolved"`
	Confidence float64 `json:"confidence"` // <1.0 for ambiguous repo-wide matches
	Line       int     `json:"line"`
}

// DependencyEdge is one edge of the module dependency graph. External imports
// are terminal nodes identified by package name.
type DependencyEdge struct {
	Importer NodeID     `json:"importer"`
	Imported NodeID     `json:"imported,omitempty"` // empty when external
	Package  string     `json:"package"`            // import path as written
	External bool       `json:"external"`
	Kind     ImportKind `json:"kind"`
}

// ImportanceScore is a per-node score in [0,1] with its breakdown.
// Recomputed whenever the graphs change; never mutated elsewhere.
type ImportanceScore struct {
	Total        float64 `json:"total"`
	CallFanIn    float64 `json:"callFanIn"`
	ModuleFanIn  float64 `json:"moduleFanIn"`
	EntryPoint   float64 `json:"entryPoint"`
	DepthPenalty float64 `json:"depthPenalty"`
	DocBonus     float64 `json:"docBonus"`
	NameHint     float64 `json:"nameHint"`
}

// ReportEntry records one degraded item in a build.
type ReportEntry struct {
	Path   string `json:"path"`
	Status string `json:"status"` // skipped, failed, partial, unreadable
	Reason string `json:"reason,omitempty"`
}

// BuildReport records everything that was skipped or degraded so callers can
// tell the surrounding agent the analysis is partial instead of silently
// serving an incomplete model.
type BuildReport struct {
	SnapshotID string        `json:"snapshotId"`
	Degraded   []ReportEntry `json:"degraded,omitempty"`
	FilesSeen  int           `json:"filesSeen"`
	Parsed     int           `json:"parsed"`
	Duration   time.Duration `json:"duration"`
}

// Complete reports whether the model covers every scanned file.
func (r *BuildReport) Complete() bool {
	return len(r.Degraded) == 0
}

// Stats summarizes a snapshot for the overview header.
type Stats struct {
	Directories  int `json:"directories"`
	Files        int `json:"files"`
	Classes      int `json:"classes"`
	Functions    int `json:"functions"`
	Lines        int `json:"lines"`
	PartialFiles int `json:"partialFiles,omitempty"`
	FailedFiles  int `json:"failedFiles,omitempty"`
}

// Snapshot is one immutable, fully built instance of the code model. Queries
// never mutate it; re-analysis produces a brand-new snapshot.
type Snapshot struct {
	ID          string                     `json:"id"`
	RepoRoot    string                     `json:"repoRoot"`
	ContentHash string                     `json:"contentHash"`
	CreatedAt   time.Time                  `json:"createdAt"`
	Root        NodeID                     `json:"root"`
	Nodes       map[NodeID]*CodeNode       `json:"nodes"`
	Calls       []CallEdge                 `json:"calls,omitempty"`
	Deps        []DependencyEdge           `json:"deps,omitempty"`
	Scores      map[NodeID]ImportanceScore `json:"scores,omitempty"`
	Sources     map[string]string          `json:"sources,omitempty"` // path -> file text
	Stats       Stats                      `json:"stats"`
	Report      BuildReport                `json:"report"`
}

// Node looks up a node by id. The second result is false for stale ids.
func (s *Snapshot) Node(id NodeID) (*CodeNode, bool) {
	n, ok := s.Nodes[id]
	return n, ok
}

// Score returns the importance score for a node, zero-valued if absent.
func (s *Snapshot) Score(id NodeID) ImportanceScore {
	return s.Scores[id]
}

// SourceSpan returns the text of node's line span within its file.
func (s *Snapshot) SourceSpan(n *CodeNode) string {
	src, ok := s.Sources[n.Path]
	if !ok || n.StartLine <= 0 {
		return ""
	}
	return LineSpan(src, n.StartLine, n.EndLine)
}

// LineSpan extracts lines [start, end] (1-indexed, inclusive) from text.
func LineSpan(text string, start, end int) string {
	if start <= 0 || end < start {
		return ""
	}
	line := 1
	begin := -1
	for i := 0; i < len(text); i++ {
		if line == start && begin < 0 {
			begin = i
		}
		if text[i] == '\n' {
			if line == end {
				return text[begin : i+1]
			}
			line++
		}
	}
	if begin < 0 {
		if line == start {
			begin = len(text)
		} else {
			return ""
		}
	}
	return text[begin:]
}
