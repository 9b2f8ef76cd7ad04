package ui

import (
	"strings"
	"testing"

	"github.com/Alhassan777/arbor/pkg/model"
)

func demoTree() *model.Tree {
	return &model.Tree{
		ID:     "t1",
		Name:   "demo",
		RootID: "r",
		Nodes: map[string]*model.Node{
			"r": {ID: "r", Title: "research", Children: []string{"a", "b"}},
			"a": {ID: "a", Title: "approach one", ParentID: "r", Children: []string{"c"},
				ConnectionLabel: "first attempt"},
			"b": {ID: "b", Title: "approach two", ParentID: "r",
				ManualPosition: &model.Point{X: 1, Y: 2}},
			"c": {ID: "c", Title: "refinement", ParentID: "a"},
		},
	}
}

func TestFlattenTreeOrder(t *testing.T) {
	rows := FlattenTree(demoTree())

	wantIDs := []string{"r", "a", "c", "b"}
	if len(rows) != len(wantIDs) {
		t.Fatalf("got %d rows, want %d", len(rows), len(wantIDs))
	}
	for i, id := range wantIDs {
		if rows[i].ID != id {
			t.Errorf("row %d = %s, want %s", i, rows[i].ID, id)
		}
	}
}

func TestFlattenTreePrefixes(t *testing.T) {
	rows := FlattenTree(demoTree())
	byID := make(map[string]Row)
	for _, r := range rows {
		byID[r.ID] = r
	}

	if byID["r"].Prefix != "" {
		t.Errorf("root prefix = %q, want empty", byID["r"].Prefix)
	}
	if byID["a"].Prefix != "├─ " {
		t.Errorf("first sibling prefix = %q, want %q", byID["a"].Prefix, "├─ ")
	}
	if byID["b"].Prefix != "└─ " {
		t.Errorf("last sibling prefix = %q, want %q", byID["b"].Prefix, "└─ ")
	}
	// c hangs under a, which has a later sibling, so its guide continues.
	if !strings.HasPrefix(byID["c"].Prefix, "│  ") {
		t.Errorf("nested prefix = %q, want a continuing guide", byID["c"].Prefix)
	}
	if byID["c"].Depth != 2 {
		t.Errorf("c depth = %d, want 2", byID["c"].Depth)
	}
}

func TestFlattenTreeCarriesNodeState(t *testing.T) {
	rows := FlattenTree(demoTree())
	for _, r := range rows {
		switch r.ID {
		case "b":
			if !r.Pinned {
				t.Error("manually positioned node not flagged as pinned")
			}
		case "a":
			if r.Label != "first attempt" {
				t.Errorf("label = %q, want connection label", r.Label)
			}
		}
	}
}

func TestFlattenTreeMissingRoot(t *testing.T) {
	tr := demoTree()
	tr.RootID = "ghost"
	if rows := FlattenTree(tr); rows != nil {
		t.Errorf("got %d rows for a rootless tree, want none", len(rows))
	}
}

func TestSearchRows(t *testing.T) {
	rows := FlattenTree(demoTree())

	idxs := SearchRows(rows, "appr")
	if len(idxs) != 2 {
		t.Fatalf("got %d matches, want 2", len(idxs))
	}
	for _, i := range idxs {
		if !strings.HasPrefix(rows[i].Title, "approach") {
			t.Errorf("match %q does not fit the query", rows[i].Title)
		}
	}

	if idxs := SearchRows(rows, ""); idxs != nil {
		t.Error("empty query produced matches")
	}
	if idxs := SearchRows(rows, "zzzzzz"); len(idxs) != 0 {
		t.Error("impossible query produced matches")
	}
}
