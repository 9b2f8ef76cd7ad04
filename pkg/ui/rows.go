package ui

import (
	"github.com/sahilm/fuzzy"

	"github.com/Alhassan777/arbor/pkg/model"
)

// Row is one line of the tree listing: a node flattened with its depth and
// the guide prefix drawn before its title.
type Row struct {
	ID     string
	Title  string
	URL    string
	Depth  int
	Prefix string // branch guides, e.g. "│  ├─ "
	Pinned bool
	Label  string // connection label from the parent
}

// FlattenTree converts the tree into display rows, root first, children in
// order, using an explicit stack rather than call recursion.
func FlattenTree(t *model.Tree) []Row {
	if _, ok := t.Nodes[t.RootID]; !ok {
		return nil
	}

	type frame struct {
		id     string
		depth  int
		prefix string // guides inherited from ancestors
		last   bool
	}

	rows := make([]Row, 0, len(t.Nodes))
	stack := []frame{{id: t.RootID, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.Nodes[f.id]

		prefix := f.prefix
		childPrefix := f.prefix
		if f.depth > 0 {
			if f.last {
				prefix += "└─ "
				childPrefix += "   "
			} else {
				prefix += "├─ "
				childPrefix += "│  "
			}
		}

		rows = append(rows, Row{
			ID:     n.ID,
			Title:  n.Title,
			URL:    n.SourceURL,
			Depth:  f.depth,
			Prefix: prefix,
			Pinned: n.ManualPosition != nil,
			Label:  n.ConnectionLabel,
		})

		// Push in reverse so children pop in order.
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				id:     n.Children[i],
				depth:  f.depth + 1,
				prefix: childPrefix,
				last:   i == len(n.Children)-1,
			})
		}
	}
	return rows
}

// rowSource adapts rows for fuzzy matching on titles.
type rowSource []Row

func (s rowSource) String(i int) string { return s[i].Title }
func (s rowSource) Len() int            { return len(s) }

// SearchRows returns the indexes of rows whose titles fuzzily match the
// query, best match first. An empty query matches nothing.
func SearchRows(rows []Row, query string) []int {
	if query == "" {
		return nil
	}
	matches := fuzzy.FindFrom(query, rowSource(rows))
	idxs := make([]int, len(matches))
	for i, m := range matches {
		idxs[i] = m.Index
	}
	return idxs
}
