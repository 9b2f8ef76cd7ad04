package model

import (
	"testing"
	"time"
)

func validTree() *Tree {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &Tree{
		ID:     "t1",
		Name:   "test",
		RootID: "r",
		Nodes: map[string]*Node{
			"r": {ID: "r", Title: "root", Children: []string{"a", "b"}, CreatedAt: now, UpdatedAt: now},
			"a": {ID: "a", Title: "a", ParentID: "r", Children: []string{"c"}, CreatedAt: now, UpdatedAt: now},
			"b": {ID: "b", Title: "b", ParentID: "r", CreatedAt: now, UpdatedAt: now},
			"c": {ID: "c", Title: "c", ParentID: "a", CreatedAt: now, UpdatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Tree)
		wantErr bool
	}{
		{"valid tree", func(*Tree) {}, false},
		{"single node tree", func(t *Tree) {
			t.Nodes = map[string]*Node{"r": {ID: "r", Title: "root"}}
		}, false},
		{"root has a parent", func(t *Tree) {
			t.Nodes["r"].ParentID = "a"
		}, true},
		{"second parentless node", func(t *Tree) {
			t.Nodes["b"].ParentID = ""
		}, true},
		{"unknown child reference", func(t *Tree) {
			t.Nodes["b"].Children = []string{"ghost"}
		}, true},
		{"child claimed twice", func(t *Tree) {
			t.Nodes["b"].Children = []string{"c"}
		}, true},
		{"duplicate child entry", func(t *Tree) {
			t.Nodes["a"].Children = []string{"c", "c"}
		}, true},
		{"parent child disagreement", func(t *Tree) {
			t.Nodes["c"].ParentID = "b"
		}, true},
		{"root listed as child", func(t *Tree) {
			t.Nodes["b"].Children = []string{"r"}
			t.Nodes["r"].ParentID = "" // still root by id
		}, true},
		{"orphan cycle", func(t *Tree) {
			// d and e reference each other but hang off nothing.
			t.Nodes["d"] = &Node{ID: "d", ParentID: "e", Children: []string{"e"}}
			t.Nodes["e"] = &Node{ID: "e", ParentID: "d", Children: []string{"d"}}
		}, true},
		{"map key mismatch", func(t *Tree) {
			t.Nodes["x"] = &Node{ID: "y", ParentID: "r"}
		}, true},
		{"missing root", func(t *Tree) {
			t.RootID = "ghost"
		}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := validTree()
			tc.mutate(tree)
			err := tree.Validate()
			if tc.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestTreeClone(t *testing.T) {
	orig := validTree()
	orig.Nodes["a"].ManualPosition = &Point{X: 5, Y: 7}

	clone := orig.Clone()
	clone.Nodes["a"].Title = "changed"
	clone.Nodes["a"].ManualPosition.X = 99
	clone.Nodes["r"].Children[0] = "zzz"

	if orig.Nodes["a"].Title != "a" {
		t.Error("clone shares node structs with the original")
	}
	if orig.Nodes["a"].ManualPosition.X != 5 {
		t.Error("clone shares manual position with the original")
	}
	if orig.Nodes["r"].Children[0] != "a" {
		t.Error("clone shares children slices with the original")
	}
}

func TestShapeIsValid(t *testing.T) {
	for _, s := range []Shape{"", ShapeRounded, ShapeRect, ShapePill, ShapeDiamond} {
		if !s.IsValid() {
			t.Errorf("Shape(%q).IsValid() = false, want true", s)
		}
	}
	if Shape("blob").IsValid() {
		t.Error(`Shape("blob").IsValid() = true, want false`)
	}
}
