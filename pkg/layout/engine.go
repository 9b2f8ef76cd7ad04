// Package layout computes 2D geometry for a tree: a deterministic top-down
// hierarchical layout and the curved connectors between parents and
// children. Everything here is a pure function of its inputs; callers may
// invoke it freely and repeatedly.
//
// The engine assumes a structurally valid tree (see model.Tree.Validate) and
// does not re-check the invariants on the hot path.
package layout

import (
	"github.com/Alhassan777/arbor/pkg/model"
	"github.com/Alhassan777/arbor/pkg/tree"
)

// Rect is an axis-aligned node footprint in diagram space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size is a width/height pair from the per-depth size table.
type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Config carries the layout constants. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// LevelHeight is the vertical distance between consecutive depths.
	LevelHeight float64 `yaml:"level_height"`
	// SiblingGap is the horizontal gap between adjacent sibling subtrees.
	SiblingGap float64 `yaml:"sibling_gap"`
	// PaddingX and PaddingY offset the whole diagram from the origin.
	PaddingX float64 `yaml:"padding_x"`
	PaddingY float64 `yaml:"padding_y"`
	// Sizes maps depth to node size; depths past the end use the last
	// entry, so nodes stop shrinking at the table's floor.
	Sizes []Size `yaml:"sizes"`
}

// DefaultConfig returns the standard layout constants: the root drawn
// largest, sizes shrinking to a floor at depth 3.
func DefaultConfig() Config {
	return Config{
		LevelHeight: 160,
		SiblingGap:  100,
		PaddingX:    80,
		PaddingY:    60,
		Sizes: []Size{
			{Width: 200, Height: 90},
			{Width: 180, Height: 76},
			{Width: 150, Height: 64},
			{Width: 120, Height: 56},
		},
	}
}

// SizeAt returns the node size for a depth, clamped to the table floor.
func (c Config) SizeAt(depth int) Size {
	if len(c.Sizes) == 0 {
		return Size{Width: 120, Height: 56}
	}
	if depth < 0 {
		depth = 0
	}
	if depth >= len(c.Sizes) {
		depth = len(c.Sizes) - 1
	}
	return c.Sizes[depth]
}

// Engine computes node positions for a tree under a fixed Config.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given config.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's layout constants.
func (e *Engine) Config() Config {
	return e.cfg
}

// Layout computes a position and size for every node in the tree.
//
// The algorithm runs in three passes, all iterative:
//
//  1. depth assignment: y = PaddingY + depth*LevelHeight, size from the
//     per-depth table
//  2. subtree widths, bottom-up: a leaf's subtree is its own width; an
//     internal node's is max(own width, sum of child subtrees + gaps)
//  3. placement, top-down left-to-right: children start at their parent's
//     starting x, each advancing by its subtree width plus the sibling
//     gap; the parent is then centered over the span of its children
//
// A node with a ManualPosition keeps that position verbatim, but still
// reserves its standard subtree width so sibling spacing is unaffected by
// manual placement.
func (e *Engine) Layout(t *model.Tree) map[string]Rect {
	out := make(map[string]Rect, len(t.Nodes))
	if _, ok := t.Nodes[t.RootID]; !ok {
		return out
	}

	depths := tree.Depths(t)

	// Reverse breadth-first order gives children before parents, which is
	// all the bottom-up width pass needs.
	order := make([]string, 0, len(t.Nodes))
	queue := []string{t.RootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		queue = append(queue, t.Nodes[id].Children...)
	}

	widths := make(map[string]float64, len(t.Nodes))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		n := t.Nodes[id]
		own := e.cfg.SizeAt(depths[id]).Width
		if len(n.Children) == 0 {
			widths[id] = own
			continue
		}
		var span float64
		for _, childID := range n.Children {
			span += widths[childID]
		}
		span += float64(len(n.Children)-1) * e.cfg.SiblingGap
		if own > span {
			span = own
		}
		widths[id] = span
	}

	// Starting x, top-down: the first child begins at its parent's starting
	// x and each sibling advances past the previous subtree.
	startX := make(map[string]float64, len(t.Nodes))
	startX[t.RootID] = e.cfg.PaddingX
	for _, id := range order {
		x := startX[id]
		for _, childID := range t.Nodes[id].Children {
			startX[childID] = x
			x += widths[childID] + e.cfg.SiblingGap
		}
	}

	// Final x, bottom-up: leaves sit at their starting x, internal nodes
	// are centered over the span from their first child to the far edge of
	// their last child. A one-child parent centers over a single subtree,
	// which keeps a long chain perfectly vertical.
	finalX := make(map[string]float64, len(t.Nodes))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		n := t.Nodes[id]
		own := e.cfg.SizeAt(depths[id])
		switch {
		case n.ManualPosition != nil:
			finalX[id] = n.ManualPosition.X
		case len(n.Children) == 0:
			finalX[id] = startX[id]
		default:
			first := finalX[n.Children[0]]
			lastID := n.Children[len(n.Children)-1]
			last := finalX[lastID]
			lastW := e.cfg.SizeAt(depths[lastID]).Width
			finalX[id] = (first+last+lastW)/2 - own.Width/2
		}
	}

	for id, n := range t.Nodes {
		size := e.cfg.SizeAt(depths[id])
		y := e.cfg.PaddingY + float64(depths[id])*e.cfg.LevelHeight
		if n.ManualPosition != nil {
			y = n.ManualPosition.Y
		}
		out[id] = Rect{X: finalX[id], Y: y, Width: size.Width, Height: size.Height}
	}
	return out
}
