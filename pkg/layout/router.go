package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Alhassan777/arbor/pkg/model"
)

// CurveTension controls how quickly a connector leaves vertical: the inner
// control points sit this fraction of the vertical distance away from each
// endpoint.
const CurveTension = 0.4

// LabelT is the Bézier parameter where a connection label is anchored,
// chosen so the label sits nearer the parent and clear of both node bodies.
const LabelT = 0.4

// Connection is the routed connector from a parent to one of its children.
type Connection struct {
	ParentID string
	ChildID  string

	// P0..P3 are the cubic Bézier control points. P0 is the parent's
	// bottom-center, P3 the child's top-center.
	P0, P1, P2, P3 model.Point

	// LabelAnchor is the point on the curve where an edge label is drawn.
	LabelAnchor model.Point
	Label       string
}

// Route builds the connector between a parent rectangle and a child
// rectangle.
func Route(parent, child Rect) Connection {
	p0 := r2.Vec{X: parent.X + parent.Width/2, Y: parent.Y + parent.Height}
	p3 := r2.Vec{X: child.X + child.Width/2, Y: child.Y}
	drop := CurveTension * (p3.Y - p0.Y)
	p1 := r2.Vec{X: p0.X, Y: p0.Y + drop}
	p2 := r2.Vec{X: p3.X, Y: p3.Y - drop}

	return Connection{
		P0:          point(p0),
		P1:          point(p1),
		P2:          point(p2),
		P3:          point(p3),
		LabelAnchor: point(cubicAt(p0, p1, p2, p3, LabelT)),
	}
}

// RouteTree routes a connector for every non-root node. Connections whose
// endpoints are missing from the position map are omitted: a dangling
// connector is cosmetic, never an error.
func RouteTree(t *model.Tree, positions map[string]Rect) []Connection {
	if _, ok := t.Nodes[t.RootID]; !ok {
		return nil
	}

	// Walk from the root so the output order is stable across calls.
	conns := make([]Connection, 0, len(t.Nodes))
	queue := []string{t.RootID}
	for len(queue) > 0 {
		parent := t.Nodes[queue[0]]
		queue = append(queue[1:], parent.Children...)
		parentRect, ok := positions[parent.ID]
		if !ok {
			continue
		}
		for _, childID := range parent.Children {
			childRect, ok := positions[childID]
			if !ok {
				continue
			}
			conn := Route(parentRect, childRect)
			conn.ParentID = parent.ID
			conn.ChildID = childID
			if child := t.Nodes[childID]; child != nil {
				conn.Label = child.ConnectionLabel
			}
			conns = append(conns, conn)
		}
	}
	return conns
}

// cubicAt evaluates the cubic Bézier position formula
// B(t) = (1-t)³P0 + 3(1-t)²t·P1 + 3(1-t)t²·P2 + t³P3.
func cubicAt(p0, p1, p2, p3 r2.Vec, t float64) r2.Vec {
	u := 1 - t
	v := r2.Add(r2.Scale(u*u*u, p0), r2.Scale(3*u*u*t, p1))
	v = r2.Add(v, r2.Scale(3*u*t*t, p2))
	return r2.Add(v, r2.Scale(t*t*t, p3))
}

func point(v r2.Vec) model.Point {
	return model.Point{X: v.X, Y: v.Y}
}
