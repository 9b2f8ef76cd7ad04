package tree

import "github.com/Alhassan777/arbor/pkg/model"

// Descendants returns the ids of nodeID and everything below it, found by an
// iterative breadth-first walk over Children edges. The result includes
// nodeID itself. Unknown ids yield an empty set.
func Descendants(t *model.Tree, nodeID string) map[string]bool {
	set := make(map[string]bool)
	if _, ok := t.Nodes[nodeID]; !ok {
		return set
	}

	queue := []string{nodeID}
	set[nodeID] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, childID := range t.Nodes[id].Children {
			if !set[childID] {
				set[childID] = true
				queue = append(queue, childID)
			}
		}
	}
	return set
}

// IsAncestor reports whether ancestorID lies on the parent chain of nodeID,
// or equals it. It walks up via ParentID, so the cost is O(depth). The walk
// is capped at the node count so a corrupted tree cannot loop forever.
func IsAncestor(t *model.Tree, ancestorID, nodeID string) bool {
	id := nodeID
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if id == ancestorID {
			return true
		}
		n, ok := t.Nodes[id]
		if !ok || n.ParentID == "" {
			return false
		}
		id = n.ParentID
	}
	return false
}

// Depths returns the depth of every node, root at 0, via an iterative
// depth-first walk. Children are visited in order so sibling order is
// preserved by callers that also iterate Children.
func Depths(t *model.Tree) map[string]int {
	depths := make(map[string]int, len(t.Nodes))
	if _, ok := t.Nodes[t.RootID]; !ok {
		return depths
	}

	type frame struct {
		id    string
		depth int
	}
	stack := []frame{{t.RootID, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := depths[f.id]; seen {
			continue
		}
		depths[f.id] = f.depth
		children := t.Nodes[f.id].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
	return depths
}
