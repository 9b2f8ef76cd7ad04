package layout

import (
	"math"
	"testing"

	"github.com/Alhassan777/arbor/pkg/model"
)

func TestRouteEndpoints(t *testing.T) {
	parent := Rect{X: 0, Y: 0, Width: 200, Height: 90}
	child := Rect{X: 300, Y: 160, Width: 180, Height: 76}

	conn := Route(parent, child)

	if conn.P0 != (model.Point{X: 100, Y: 90}) {
		t.Errorf("P0 = %+v, want parent bottom-center (100, 90)", conn.P0)
	}
	if conn.P3 != (model.Point{X: 390, Y: 160}) {
		t.Errorf("P3 = %+v, want child top-center (390, 160)", conn.P3)
	}

	// Control points drop 0.4 of the vertical distance straight down/up.
	drop := CurveTension * (160.0 - 90.0)
	if conn.P1 != (model.Point{X: 100, Y: 90 + drop}) {
		t.Errorf("P1 = %+v, want (100, %v)", conn.P1, 90+drop)
	}
	if conn.P2 != (model.Point{X: 390, Y: 160 - drop}) {
		t.Errorf("P2 = %+v, want (390, %v)", conn.P2, 160-drop)
	}
}

func TestRouteLabelAnchor(t *testing.T) {
	parent := Rect{X: 0, Y: 0, Width: 200, Height: 90}
	child := Rect{X: 300, Y: 160, Width: 180, Height: 76}

	conn := Route(parent, child)

	// The anchor is the standard cubic Bézier position at t = LabelT,
	// applied independently to x and y.
	eval := func(p0, p1, p2, p3 float64) float64 {
		u := 1 - LabelT
		return u*u*u*p0 + 3*u*u*LabelT*p1 + 3*u*LabelT*LabelT*p2 + LabelT*LabelT*LabelT*p3
	}
	wantX := eval(conn.P0.X, conn.P1.X, conn.P2.X, conn.P3.X)
	wantY := eval(conn.P0.Y, conn.P1.Y, conn.P2.Y, conn.P3.Y)

	if math.Abs(conn.LabelAnchor.X-wantX) > 1e-9 || math.Abs(conn.LabelAnchor.Y-wantY) > 1e-9 {
		t.Errorf("LabelAnchor = %+v, want (%v, %v)", conn.LabelAnchor, wantX, wantY)
	}

	// Nearer the parent than the child.
	if d0, d3 := conn.LabelAnchor.Y-conn.P0.Y, conn.P3.Y-conn.LabelAnchor.Y; d0 >= d3 {
		t.Errorf("anchor y %v is not nearer the parent (P0 %v, P3 %v)", conn.LabelAnchor.Y, conn.P0.Y, conn.P3.Y)
	}
}

func TestRouteTree(t *testing.T) {
	tree := buildTree(map[string][]string{"r": {"a", "b"}, "a": {"c"}})
	tree.Nodes["c"].ConnectionLabel = "follow-up"

	engine := NewEngine(DefaultConfig())
	positions := engine.Layout(tree)

	conns := RouteTree(tree, positions)
	if len(conns) != 3 {
		t.Fatalf("got %d connections, want 3", len(conns))
	}

	byChild := make(map[string]Connection)
	for _, c := range conns {
		byChild[c.ChildID] = c
	}
	if byChild["c"].Label != "follow-up" {
		t.Errorf("label = %q, want follow-up", byChild["c"].Label)
	}
	if byChild["a"].ParentID != "r" {
		t.Errorf("a's connection parent = %q, want r", byChild["a"].ParentID)
	}
}

func TestRouteTreeOmitsMissingEndpoints(t *testing.T) {
	tree := buildTree(map[string][]string{"r": {"a", "b"}})
	engine := NewEngine(DefaultConfig())
	positions := engine.Layout(tree)
	delete(positions, "b")

	conns := RouteTree(tree, positions)
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	if conns[0].ChildID != "a" {
		t.Errorf("surviving connection child = %q, want a", conns[0].ChildID)
	}
}

func TestRouteTreeStableOrder(t *testing.T) {
	tree := buildTree(map[string][]string{"r": {"a", "b", "c"}, "b": {"d"}})
	engine := NewEngine(DefaultConfig())
	positions := engine.Layout(tree)

	first := RouteTree(tree, positions)
	second := RouteTree(tree, positions)
	for i := range first {
		if first[i].ChildID != second[i].ChildID {
			t.Fatalf("connection order differs between calls: %v vs %v", first[i].ChildID, second[i].ChildID)
		}
	}
}
