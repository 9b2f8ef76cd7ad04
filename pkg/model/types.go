// Package model defines the tree and node entities shared by every other
// package. It contains no behavior beyond validation and deep copying; all
// structural mutation goes through pkg/tree.
package model

import (
	"fmt"
	"time"
)

// Point is a 2D coordinate in diagram space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents one tracked conversation in a tree.
type Node struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SourceURL string    `json:"source_url,omitempty"`
	ParentID  string    `json:"parent_id,omitempty"` // empty only for the root
	Children  []string  `json:"children,omitempty"`  // ordered, no duplicates
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Presentation attributes. These never affect structural invariants.
	ManualPosition  *Point `json:"manual_position,omitempty"`
	Color           string `json:"color,omitempty"`
	Shape           Shape  `json:"shape,omitempty"`
	ConnectionLabel string `json:"connection_label,omitempty"`
}

// Clone creates a deep copy of the node.
func (n Node) Clone() Node {
	clone := n

	if n.Children != nil {
		clone.Children = make([]string, len(n.Children))
		copy(clone.Children, n.Children)
	}
	if n.ManualPosition != nil {
		v := *n.ManualPosition
		clone.ManualPosition = &v
	}

	return clone
}

// IsRoot returns true if the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// Shape selects the glyph used to draw a node.
type Shape string

const (
	ShapeRounded Shape = "rounded"
	ShapeRect    Shape = "rect"
	ShapePill    Shape = "pill"
	ShapeDiamond Shape = "diamond"
)

// IsValid returns true if the shape is a recognized value. The empty shape
// is valid and renders as ShapeRounded.
func (s Shape) IsValid() bool {
	switch s {
	case "", ShapeRounded, ShapeRect, ShapePill, ShapeDiamond:
		return true
	}
	return false
}

// Tree is a named, rooted collection of nodes. The five structural
// invariants (see Validate) must hold after every mutation.
type Tree struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	RootID    string           `json:"root_id"`
	Nodes     map[string]*Node `json:"nodes"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Root returns the root node, or nil if the tree is malformed.
func (t *Tree) Root() *Node {
	return t.Nodes[t.RootID]
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Clone creates a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	clone := *t
	clone.Nodes = make(map[string]*Node, len(t.Nodes))
	for id, n := range t.Nodes {
		c := n.Clone()
		clone.Nodes[id] = &c
	}
	return &clone
}

// Validate checks the five structural invariants:
//
//  1. exactly one node has an empty ParentID, and it is RootID
//  2. every node is reachable from the root via Children edges
//  3. walking ParentID from any node terminates at the root
//  4. parent/children references agree both ways, with no duplicate
//     child entries anywhere
//  5. the root appears in no node's Children
//
// Mutations go through pkg/tree, which preserves these; Validate exists for
// tests and for guarding data loaded from storage.
func (t *Tree) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tree ID cannot be empty")
	}
	if t.RootID == "" {
		return fmt.Errorf("tree %s has no root", t.ID)
	}
	root, ok := t.Nodes[t.RootID]
	if !ok {
		return fmt.Errorf("root %s is not in the node map", t.RootID)
	}
	if root.ParentID != "" {
		return fmt.Errorf("root %s has parent %s", t.RootID, root.ParentID)
	}

	// One pass over every parent/child edge: map keys match node IDs,
	// children exist, each node is claimed by at most one parent, and the
	// root is claimed by none.
	childOf := make(map[string]string, len(t.Nodes))
	for id, n := range t.Nodes {
		if n == nil {
			return fmt.Errorf("node map entry %s is nil", id)
		}
		if n.ID != id {
			return fmt.Errorf("node map key %s does not match node ID %s", id, n.ID)
		}
		if id != t.RootID && n.ParentID == "" {
			return fmt.Errorf("node %s has no parent but is not the root", id)
		}
		for _, childID := range n.Children {
			if childID == t.RootID {
				return fmt.Errorf("root %s appears as a child of %s", t.RootID, id)
			}
			if _, ok := t.Nodes[childID]; !ok {
				return fmt.Errorf("node %s lists unknown child %s", id, childID)
			}
			if prev, claimed := childOf[childID]; claimed {
				return fmt.Errorf("node %s is a child of both %s and %s", childID, prev, id)
			}
			childOf[childID] = id
		}
	}

	// Bidirectional agreement: each non-root node's ParentID must be the
	// parent that claimed it.
	for id, n := range t.Nodes {
		if id == t.RootID {
			continue
		}
		if childOf[id] != n.ParentID {
			return fmt.Errorf("node %s has parent %s but is listed under %q", id, n.ParentID, childOf[id])
		}
	}

	// Reachability: every node is found by a walk from the root. With the
	// edge checks above this also rules out cycles, since a cycle would be
	// unreachable from the root.
	seen := make(map[string]bool, len(t.Nodes))
	queue := []string{t.RootID}
	seen[t.RootID] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, childID := range t.Nodes[id].Children {
			if !seen[childID] {
				seen[childID] = true
				queue = append(queue, childID)
			}
		}
	}
	if len(seen) != len(t.Nodes) {
		for id := range t.Nodes {
			if !seen[id] {
				return fmt.Errorf("node %s is not reachable from the root", id)
			}
		}
	}

	return nil
}
