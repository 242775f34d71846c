// Package explore is the stateless query surface over a built snapshot:
// view, callers/callees, search, and module dependency lookups. Every
// operation is pure; concurrent queries against one snapshot need no locking.
package explore

import (
	"path"
	"sort"
	"strings"

	"codemap/internal/errors"
	"codemap/internal/graph"
	"codemap/internal/model"
)

// DetailLevel selects how much of a node View returns.
type DetailLevel string

const (
	DetailSignature DetailLevel = "signature"
	DetailBody      DetailLevel = "body"
	DetailFull      DetailLevel = "full" // body plus doc
)

// ViewResult is one node rendered at the requested granularity.
type ViewResult struct {
	ID        model.NodeID      `json:"id"`
	Kind      model.NodeKind    `json:"kind"`
	Path      string            `json:"path"`
	Signature string            `json:"signature,omitempty"`
	Doc       string            `json:"doc,omitempty"`
	StartLine int               `json:"startLine,omitempty"`
	EndLine   int               `json:"endLine,omitempty"`
	Status    model.ParseStatus `json:"status,omitempty"`
	Text      string            `json:"text,omitempty"`
}

// View returns a node's source at the requested detail level.
func View(snap *model.Snapshot, id model.NodeID, level DetailLevel) (*ViewResult, error) {
	n, ok := snap.Node(id)
	if !ok {
		return nil, errors.Newf(errors.NotFound, "node %q not in snapshot", id)
	}
	res := &ViewResult{
		ID:        n.ID,
		Kind:      n.Kind,
		Path:      n.Path,
		Signature: n.Signature,
		StartLine: n.StartLine,
		EndLine:   n.EndLine,
		Status:    n.Status,
	}
	if level == DetailFull {
		res.Doc = n.Doc
	}
	if level == DetailBody || level == DetailFull {
		if n.Kind == model.KindFile {
			res.Text = snap.Sources[n.Path]
		} else {
			res.Text = snap.SourceSpan(n)
		}
	}
	return res, nil
}

// EdgeInfo is one call edge from a node's perspective, ranked by the
// counterpart's importance. Unresolved edges keep the raw symbol and an empty
// ID.
type EdgeInfo struct {
	ID         model.NodeID `json:"id,omitempty"`
	Symbol     string       `json:"symbol"`
	Resolved   bool         `json:"resolved"`
	Confidence float64      `json:"confidence,omitempty"`
	Line       int          `json:"line,omitempty"`
	Score      float64      `json:"score"`
}

// Callers lists the edges into a node, highest-scored caller first.
func Callers(snap *model.Snapshot, id model.NodeID) ([]EdgeInfo, error) {
	if _, ok := snap.Node(id); !ok {
		return nil, errors.Newf(errors.NotFound, "node %q not in snapshot", id)
	}
	var out []EdgeInfo
	for _, e := range snap.Calls {
		if !e.Resolved || e.Callee != id {
			continue
		}
		out = append(out, EdgeInfo{
			ID:         e.Caller,
			Symbol:     e.Symbol,
			Resolved:   true,
			Confidence: e.Confidence,
			Line:       e.Line,
			Score:      snap.Score(e.Caller).Total,
		})
	}
	rankEdges(out)
	return out, nil
}

// Callees lists the edges out of a node, resolved and dangling alike.
func Callees(snap *model.Snapshot, id model.NodeID) ([]EdgeInfo, error) {
	if _, ok := snap.Node(id); !ok {
		return nil, errors.Newf(errors.NotFound, "node %q not in snapshot", id)
	}
	var out []EdgeInfo
	for _, e := range snap.Calls {
		if e.Caller != id {
			continue
		}
		info := EdgeInfo{
			Symbol:     e.Symbol,
			Resolved:   e.Resolved,
			Confidence: e.Confidence,
			Line:       e.Line,
		}
		if e.Resolved {
			info.ID = e.Callee
			info.Score = snap.Score(e.Callee).Total
		}
		out = append(out, info)
	}
	rankEdges(out)
	return out, nil
}

func rankEdges(edges []EdgeInfo) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Score != edges[j].Score {
			return edges[i].Score > edges[j].Score
		}
		if edges[i].ID != edges[j].ID {
			return edges[i].ID < edges[j].ID
		}
		return edges[i].Symbol < edges[j].Symbol
	})
}

// SearchKind selects the matching strategy.
type SearchKind string

const (
	SearchKeyword  SearchKind = "keyword"
	SearchPathGlob SearchKind = "path-glob"
)

// SearchHit is one match with its relevance (term frequency weighted by
// importance for keyword search, plain importance for glob search).
type SearchHit struct {
	ID        model.NodeID   `json:"id"`
	Kind      model.NodeKind `json:"kind"`
	Path      string         `json:"path"`
	Relevance float64        `json:"relevance"`
}

// Search matches nodes by keyword or path glob, capped at limit hits. Files
// that failed to parse are still reachable by path.
func Search(snap *model.Snapshot, query string, kind SearchKind, limit int) []SearchHit {
	if limit <= 0 {
		limit = 50
	}
	var hits []SearchHit
	switch kind {
	case SearchPathGlob:
		hits = searchGlob(snap, query)
	default:
		hits = searchKeyword(snap, query)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Relevance != hits[j].Relevance {
			return hits[i].Relevance > hits[j].Relevance
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func searchKeyword(snap *model.Snapshot, query string) []SearchHit {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}
	var hits []SearchHit
	for id, n := range snap.Nodes {
		haystack := strings.ToLower(string(id) + " " + n.Signature + " " + n.Doc)
		tf := 0
		for _, term := range terms {
			tf += strings.Count(haystack, term)
		}
		if tf == 0 {
			continue
		}
		hits = append(hits, SearchHit{
			ID:        id,
			Kind:      n.Kind,
			Path:      n.Path,
			Relevance: float64(tf) * (0.5 + snap.Score(id).Total),
		})
	}
	return hits
}

func searchGlob(snap *model.Snapshot, pattern string) []SearchHit {
	var hits []SearchHit
	for id, n := range snap.Nodes {
		if n.Kind != model.KindFile && n.Kind != model.KindDirectory {
			continue
		}
		full, _ := path.Match(pattern, n.Path)
		base, _ := path.Match(pattern, path.Base(n.Path))
		if !full && !base {
			continue
		}
		hits = append(hits, SearchHit{
			ID:        id,
			Kind:      n.Kind,
			Path:      n.Path,
			Relevance: snap.Score(id).Total,
		})
	}
	return hits
}

// DepInfo is one module dependency edge from a module's perspective.
type DepInfo struct {
	ID       model.NodeID     `json:"id,omitempty"` // empty for external packages
	Package  string           `json:"package"`
	External bool             `json:"external"`
	Kind     model.ImportKind `json:"kind"`
}

// Dependencies lists what a module imports.
func Dependencies(snap *model.Snapshot, id model.NodeID) ([]DepInfo, error) {
	if _, ok := snap.Node(id); !ok {
		return nil, errors.Newf(errors.NotFound, "module %q not in snapshot", id)
	}
	var out []DepInfo
	for _, e := range snap.Deps {
		if e.Importer != id {
			continue
		}
		out = append(out, DepInfo{ID: e.Imported, Package: e.Package, External: e.External, Kind: e.Kind})
	}
	rankDeps(out)
	return out, nil
}

// Dependents lists the modules importing this one. Package directories count
// as import targets for languages that import whole packages.
func Dependents(snap *model.Snapshot, id model.NodeID) ([]DepInfo, error) {
	if _, ok := snap.Node(id); !ok {
		return nil, errors.Newf(errors.NotFound, "module %q not in snapshot", id)
	}
	var out []DepInfo
	for _, e := range snap.Deps {
		if e.Imported != id {
			continue
		}
		out = append(out, DepInfo{ID: e.Importer, Package: e.Package, External: false, Kind: e.Kind})
	}
	rankDeps(out)
	return out, nil
}

func rankDeps(deps []DepInfo) {
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].ID != deps[j].ID {
			return deps[i].ID < deps[j].ID
		}
		return deps[i].Package < deps[j].Package
	})
}

// ExternalName unwraps a terminal external node ID to its package name.
func ExternalName(id model.NodeID) (string, bool) {
	if graph.IsExternal(id) {
		return strings.TrimPrefix(string(id), "external:"), true
	}
	return "", false
}
