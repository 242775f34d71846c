package main

import (
	"strings"
	"testing"
	"time"

	"codemap/internal/model"
)

func TestIndexSummary(t *testing.T) {
	snap := &model.Snapshot{
		ID: "snap-1",
		Stats: model.Stats{
			Directories: 2, Files: 5, Classes: 1, Functions: 9,
		},
		Report: model.BuildReport{
			SnapshotID: "snap-1",
			FilesSeen:  5,
			Parsed:     5,
			Duration:   1500 * time.Millisecond,
		},
	}

	out := indexSummary(snap)
	for _, want := range []string{"snap-1", "5 seen, 5 parsed", "2 dirs", "9 functions", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "degraded") {
		t.Error("complete report should not mention degraded items")
	}
}

func TestIndexSummaryDegraded(t *testing.T) {
	snap := &model.Snapshot{
		ID: "snap-2",
		Report: model.BuildReport{
			SnapshotID: "snap-2",
			FilesSeen:  3,
			Parsed:     2,
			Degraded: []model.ReportEntry{
				{Path: "bad.py", Status: "failed", Reason: "unparseable"},
			},
		},
	}

	out := indexSummary(snap)
	if !strings.Contains(out, "degraded items: 1") || !strings.Contains(out, "bad.py") {
		t.Errorf("degraded entries not reported:\n%s", out)
	}
}
