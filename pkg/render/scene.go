// Package render turns a tree into a drawable scene and keeps that scene
// current as the tree changes. The scene feeds the TUI browser and the
// SVG/PNG export sinks; none of them compute geometry themselves.
package render

import (
	"github.com/Alhassan777/arbor/pkg/layout"
	"github.com/Alhassan777/arbor/pkg/model"
)

// SceneNode is one node ready to draw: its geometry plus display data.
type SceneNode struct {
	ID     string
	Title  string
	Color  string
	Shape  model.Shape
	Rect   layout.Rect
	Manual bool // position was user-pinned
	Depth  int
}

// Scene is a complete drawable snapshot of one tree.
type Scene struct {
	TreeID      string
	Name        string
	Nodes       []SceneNode // root first, then breadth-first
	Connections []layout.Connection

	// Width and Height bound the diagram including its padding margin.
	Width  float64
	Height float64
}

// Margin is the blank border added beyond the furthest node when computing
// scene bounds.
const Margin = 40

// BuildScene lays out the tree and routes its connectors. Pure: safe to
// call speculatively and from any goroutine, on a tree that is not being
// mutated concurrently.
func BuildScene(t *model.Tree, engine *layout.Engine) Scene {
	positions := engine.Layout(t)
	scene := Scene{
		TreeID:      t.ID,
		Name:        t.Name,
		Connections: layout.RouteTree(t, positions),
	}

	if _, ok := t.Nodes[t.RootID]; !ok {
		return scene
	}

	type item struct {
		id    string
		depth int
	}
	queue := []item{{t.RootID, 0}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		n := t.Nodes[it.id]
		rect := positions[it.id]
		scene.Nodes = append(scene.Nodes, SceneNode{
			ID:     n.ID,
			Title:  n.Title,
			Color:  n.Color,
			Shape:  n.Shape,
			Rect:   rect,
			Manual: n.ManualPosition != nil,
			Depth:  it.depth,
		})
		if right := rect.X + rect.Width + Margin; right > scene.Width {
			scene.Width = right
		}
		if bottom := rect.Y + rect.Height + Margin; bottom > scene.Height {
			scene.Height = bottom
		}
		for _, childID := range n.Children {
			queue = append(queue, item{childID, it.depth + 1})
		}
	}
	return scene
}
