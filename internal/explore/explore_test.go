package explore

import (
	"strings"
	"testing"

	"codemap/internal/config"
	"codemap/internal/errors"
	"codemap/internal/graph"
	"codemap/internal/model"
	"codemap/internal/score"
	"codemap/internal/tree"
)

func snapshotFor(t *testing.T) *model.Snapshot {
	t.Helper()
	files := []model.FileResult{
		{Path: "app.py", Language: "python", Status: model.ParseOK,
			Source:  "from lib.orders import place_order\n\ndef main():\n    place_order()\n",
			Imports: []model.Import{{Module: "lib.orders", Names: []string{"place_order"}, Kind: model.ImportDirect, Line: 1}},
			Decls:   []model.Decl{{Kind: model.KindFunction, Name: "main", Signature: "def main()", StartLine: 3, EndLine: 4}},
			Calls:   []model.CallSite{{Symbol: "place_order", Enclosing: "main", Line: 4}}},
		{Path: "lib/orders.py", Language: "python", Status: model.ParseOK,
			Source: "\"\"\"Order placement.\"\"\"\n\ndef place_order():\n    log()\n",
			Doc:    "Order placement.",
			Decls:  []model.Decl{{Kind: model.KindFunction, Name: "place_order", Signature: "def place_order()", Doc: "Places one order.", StartLine: 3, EndLine: 4}},
			Calls:  []model.CallSite{{Symbol: "log", Enclosing: "place_order", Line: 4}}},
		{Path: "lib/legacy.py", Language: "python", Status: model.ParseFailed,
			Source: "this is not python $$$"},
	}
	nodes, err := tree.Build("/repo/shop", files)
	if err != nil {
		t.Fatal(err)
	}
	graphs := graph.Build(nodes, files)
	scores := score.NewScorer(config.DefaultConfig().Weights).
		Compute(nodes, graphs, score.DetectEntryPoints(files))
	sources := make(map[string]string)
	for _, f := range files {
		sources[f.Path] = f.Source
	}
	return &model.Snapshot{
		ID: "t", RepoRoot: "/repo/shop", Root: model.RootID,
		Nodes: nodes, Calls: graphs.Calls, Deps: graphs.Deps,
		Scores: scores, Sources: sources, Stats: tree.Stats(nodes),
	}
}

func TestViewLevels(t *testing.T) {
	snap := snapshotFor(t)

	sig, err := View(snap, "lib/orders.py::place_order", DetailSignature)
	if err != nil {
		t.Fatal(err)
	}
	if sig.Signature != "def place_order()" || sig.Text != "" {
		t.Errorf("signature view = %+v", sig)
	}

	body, err := View(snap, "lib/orders.py::place_order", DetailBody)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body.Text, "log()") {
		t.Errorf("body view missing source: %+v", body)
	}
	if body.Doc != "" {
		t.Error("body view should not include doc")
	}

	full, err := View(snap, "lib/orders.py::place_order", DetailFull)
	if err != nil {
		t.Fatal(err)
	}
	if full.Doc != "Places one order." || full.Text == "" {
		t.Errorf("full view = %+v", full)
	}
}

func TestViewFileAndNotFound(t *testing.T) {
	snap := snapshotFor(t)
	file, err := View(snap, "app.py", DetailBody)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(file.Text, "def main") {
		t.Errorf("file view = %+v", file)
	}

	if _, err := View(snap, "ghost.py", DetailBody); !errors.HasCode(err, errors.NotFound) {
		t.Errorf("want NOT_FOUND, got %v", err)
	}
}

func TestCallersAndCallees(t *testing.T) {
	snap := snapshotFor(t)

	callers, err := Callers(snap, "lib/orders.py::place_order")
	if err != nil {
		t.Fatal(err)
	}
	if len(callers) != 1 || callers[0].ID != "app.py::main" {
		t.Errorf("callers = %+v", callers)
	}

	callees, err := Callees(snap, "lib/orders.py::place_order")
	if err != nil {
		t.Fatal(err)
	}
	if len(callees) != 1 {
		t.Fatalf("callees = %+v", callees)
	}
	if callees[0].Resolved || callees[0].Symbol != "log" {
		t.Errorf("unresolved callee must be marked distinctly: %+v", callees[0])
	}
}

func TestSearchKeyword(t *testing.T) {
	snap := snapshotFor(t)
	hits := Search(snap, "order", SearchKeyword, 10)
	if len(hits) == 0 {
		t.Fatal("no hits for 'order'")
	}
	found := false
	for _, h := range hits {
		if h.ID == "lib/orders.py::place_order" {
			found = true
		}
	}
	if !found {
		t.Errorf("place_order missing from hits: %+v", hits)
	}
}

func TestSearchCapped(t *testing.T) {
	snap := snapshotFor(t)
	hits := Search(snap, "order", SearchKeyword, 1)
	if len(hits) != 1 {
		t.Errorf("limit not applied: %d hits", len(hits))
	}
}

func TestFailedFileSearchableByPath(t *testing.T) {
	snap := snapshotFor(t)
	hits := Search(snap, "*legacy*", SearchPathGlob, 10)
	if len(hits) != 1 || hits[0].ID != "lib/legacy.py" {
		t.Fatalf("glob hits = %+v", hits)
	}
	view, err := View(snap, "lib/legacy.py", DetailBody)
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != model.ParseFailed {
		t.Errorf("status = %s, want failed", view.Status)
	}
	if callees, _ := Callees(snap, "lib/legacy.py"); len(callees) != 0 {
		t.Error("failed file must contribute no call edges")
	}
}

func TestDependenciesAndDependents(t *testing.T) {
	snap := snapshotFor(t)

	deps, err := Dependencies(snap, "app.py")
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 || deps[0].ID != "lib/orders.py" || deps[0].External {
		t.Errorf("deps = %+v", deps)
	}

	dependents, err := Dependents(snap, "lib/orders.py")
	if err != nil {
		t.Fatal(err)
	}
	if len(dependents) != 1 || dependents[0].ID != "app.py" {
		t.Errorf("dependents = %+v", dependents)
	}

	if _, err := Dependencies(snap, "nope"); !errors.HasCode(err, errors.NotFound) {
		t.Errorf("want NOT_FOUND, got %v", err)
	}
}

func TestExternalName(t *testing.T) {
	name, ok := ExternalName(graph.ExternalID("requests"))
	if !ok || name != "requests" {
		t.Errorf("ExternalName = %q, %v", name, ok)
	}
	if _, ok := ExternalName("app.py"); ok {
		t.Error("app.py is not external")
	}
}
