package score

import (
	"reflect"
	"testing"

	"codemap/internal/config"
	"codemap/internal/graph"
	"codemap/internal/model"
	"codemap/internal/tree"
)

func fixture(t *testing.T) (map[model.NodeID]*model.CodeNode, *graph.Result, []model.FileResult) {
	t.Helper()
	files := []model.FileResult{
		{Path: "app.py", Language: "python", Status: model.ParseOK,
			Source: "def main():\n    helper()\n\nif __name__ == '__main__':\n    main()\n",
			Decls:  []model.Decl{{Kind: model.KindFunction, Name: "main", StartLine: 1, EndLine: 2, Doc: "Entry point."}},
			Calls:  []model.CallSite{{Symbol: "helper", Enclosing: "main", Line: 2}}},
		{Path: "lib/helpers.py", Language: "python", Status: model.ParseOK,
			Source: "def helper():\n    pass\n",
			Decls:  []model.Decl{{Kind: model.KindFunction, Name: "helper", StartLine: 1, EndLine: 2}}},
		{Path: "lib/broken.py", Language: "python", Status: model.ParseFailed,
			Source: "def ???"},
	}
	nodes, err := tree.Build("/repo/demo", files)
	if err != nil {
		t.Fatal(err)
	}
	return nodes, graph.Build(nodes, files), files
}

func compute(t *testing.T) (map[model.NodeID]*model.CodeNode, map[model.NodeID]model.ImportanceScore) {
	t.Helper()
	nodes, graphs, files := fixture(t)
	scorer := NewScorer(config.DefaultConfig().Weights)
	return nodes, scorer.Compute(nodes, graphs, DetectEntryPoints(files))
}

func TestScoreRange(t *testing.T) {
	_, scores := compute(t)
	for id, sc := range scores {
		if sc.Total < 0 || sc.Total > 1 {
			t.Errorf("score for %s out of range: %v", id, sc.Total)
		}
	}
}

func TestIdempotence(t *testing.T) {
	_, first := compute(t)
	_, second := compute(t)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must yield identical scores")
	}
}

func TestCalledFunctionOutranksUncalled(t *testing.T) {
	_, scores := compute(t)
	helper := scores["lib/helpers.py::helper"]
	if helper.CallFanIn <= 0 {
		t.Errorf("helper has a caller, CallFanIn = %v", helper.CallFanIn)
	}
}

func TestEntryPointBoost(t *testing.T) {
	_, scores := compute(t)
	app := scores["app.py"]
	broken := scores["lib/broken.py"]
	if app.EntryPoint <= 0 {
		t.Errorf("app.py has a __main__ guard, EntryPoint = %v", app.EntryPoint)
	}
	if app.Total <= broken.Total {
		t.Errorf("entry file (%v) should outrank a failed leaf (%v)", app.Total, broken.Total)
	}
}

func TestFailedFileNearZero(t *testing.T) {
	_, scores := compute(t)
	broken := scores["lib/broken.py"]
	if broken.CallFanIn != 0 || broken.ModuleFanIn != 0 {
		t.Errorf("failed file contributes no edges: %+v", broken)
	}
}

func TestDepthPenalty(t *testing.T) {
	_, scores := compute(t)
	if scores["lib/helpers.py"].DepthPenalty <= scores["app.py"].DepthPenalty {
		t.Error("deeper file should carry the larger depth penalty")
	}
}

func TestDocBonus(t *testing.T) {
	_, scores := compute(t)
	if scores["app.py::main"].DocBonus != 1 {
		t.Error("documented decl should get the doc bonus")
	}
	if scores["lib/helpers.py::helper"].DocBonus != 0 {
		t.Error("undocumented decl should not")
	}
}

func TestRankDeterministicTies(t *testing.T) {
	scores := map[model.NodeID]model.ImportanceScore{
		"b": {Total: 0.5}, "a": {Total: 0.5}, "c": {Total: 0.9},
	}
	got := Rank(scores, []model.NodeID{"b", "c", "a"})
	want := []model.NodeID{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank = %v, want %v", got, want)
	}
}

func TestNameHintKeywords(t *testing.T) {
	if v := nameHint(&model.CodeNode{Name: "OrderService"}); v != 0.3 {
		t.Errorf("keyword hint = %v, want 0.3", v)
	}
	if v := nameHint(&model.CodeNode{Name: "main"}); v != 1 {
		t.Errorf("main hint = %v, want 1 (keyword + entry bonus)", v)
	}
	if v := nameHint(&model.CodeNode{Name: "frobnicate"}); v != 0 {
		t.Errorf("plain name hint = %v, want 0", v)
	}
}

func TestManifestEntryPoints(t *testing.T) {
	files := []model.FileResult{
		{Path: "package.json", Source: `{"main": "src/index.js"}`},
		{Path: "src/index.js", Language: "javascript"},
		{Path: "src/other.js", Language: "javascript"},
	}
	hints := DetectEntryPoints(files)
	if hints.strength("src/index.js") != 1.0 {
		t.Errorf("declared main not detected: %+v", hints.Files)
	}
	if hints.strength("src/other.js") != 0 {
		t.Errorf("other.js wrongly marked: %+v", hints.Files)
	}
}

func TestPyprojectScripts(t *testing.T) {
	files := []model.FileResult{
		{Path: "pyproject.toml", Source: "[project.scripts]\ncli = \"tool.cli:run\"\n"},
		{Path: "tool/cli.py", Language: "python"},
	}
	hints := DetectEntryPoints(files)
	if hints.strength("tool/cli.py") != 1.0 {
		t.Errorf("pyproject script not detected: %+v", hints.Files)
	}
}

func TestReadmeMention(t *testing.T) {
	files := []model.FileResult{
		{Path: "README.md", Source: "Run `python scripts/train.py` to start."},
		{Path: "scripts/train.py", Language: "python"},
	}
	hints := DetectEntryPoints(files)
	if hints.strength("scripts/train.py") != 0.8 {
		t.Errorf("README mention not detected: %+v", hints.Files)
	}
}
