// Package tree implements the only code path allowed to change a tree's
// structure. Every public operation either succeeds with all structural
// invariants intact or leaves the tree exactly as it was.
package tree

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alhassan777/arbor/pkg/model"
)

// ChangeKind distinguishes edits that move geometry from edits that only
// touch display text or colors.
type ChangeKind int

const (
	// ChangeStructure covers create, delete, reparent and manual position
	// edits; the layout must be recomputed.
	ChangeStructure ChangeKind = iota
	// ChangeStyle covers rename, recolor, reshape and connection label
	// edits; positions are unaffected.
	ChangeStyle
)

// Change describes one committed mutation, delivered to subscribers after
// the tree is already in its new consistent state.
type Change struct {
	Kind    ChangeKind
	TreeID  string
	NodeIDs []string // nodes touched; for deletes, the removed subtree
}

// Journal receives records dirtied by mutations. Implementations are
// expected to be fire-and-forget: the in-memory tree is the source of truth
// for the session and the journal catches up. pkg/store provides one.
type Journal interface {
	PutTree(t *model.Tree)
	PutNode(treeID string, n *model.Node)
	DeleteNode(treeID, nodeID string)
}

// Mutator applies structural and cosmetic edits to a single tree.
//
// A Mutator is not safe for concurrent use: callers must serialize
// operations, one user-driven event at a time. Subscribers are invoked
// synchronously on the mutating goroutine.
type Mutator struct {
	tree    *model.Tree
	journal Journal
	subs    []func(Change)

	now   func() time.Time
	newID func() string
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithJournal attaches a persistence journal. A nil journal is allowed and
// means mutations are in-memory only.
func WithJournal(j Journal) Option {
	return func(m *Mutator) { m.journal = j }
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Mutator) { m.now = now }
}

// WithIDSource overrides node id minting. Used by tests.
func WithIDSource(newID func() string) Option {
	return func(m *Mutator) { m.newID = newID }
}

// NewMutator wraps an existing tree. The tree must already satisfy the
// structural invariants; trees built by NewTree or loaded through pkg/store
// always do.
func NewMutator(t *model.Tree, opts ...Option) *Mutator {
	m := &Mutator{
		tree:  t,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewTree creates a tree containing exactly one node, the root, titled after
// the tree itself.
func NewTree(name string) *model.Tree {
	now := time.Now()
	rootID := uuid.NewString()
	return &model.Tree{
		ID:     uuid.NewString(),
		Name:   name,
		RootID: rootID,
		Nodes: map[string]*model.Node{
			rootID: {
				ID:        rootID,
				Title:     name,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Tree returns the tree being mutated.
func (m *Mutator) Tree() *model.Tree {
	return m.tree
}

// Subscribe registers a callback invoked after every committed mutation.
func (m *Mutator) Subscribe(fn func(Change)) {
	m.subs = append(m.subs, fn)
}

func (m *Mutator) notify(c Change) {
	for _, fn := range m.subs {
		fn(c)
	}
}

// touch bumps the updated timestamps on a node and the owning tree and
// journals both records.
func (m *Mutator) touch(n *model.Node) {
	now := m.now()
	n.UpdatedAt = now
	m.tree.UpdatedAt = now
	if m.journal != nil {
		m.journal.PutNode(m.tree.ID, n)
		m.journal.PutTree(m.tree)
	}
}

// Create attaches a new node under parentID and returns it.
func (m *Mutator) Create(parentID, title, sourceURL string) (*model.Node, error) {
	parent, ok := m.tree.Nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("create under %s: %w", parentID, ErrParentNotFound)
	}

	now := m.now()
	node := &model.Node{
		ID:        m.newID(),
		Title:     title,
		SourceURL: sourceURL,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.tree.Nodes[node.ID] = node
	parent.Children = append(parent.Children, node.ID)
	parent.UpdatedAt = now
	m.tree.UpdatedAt = now

	if m.journal != nil {
		m.journal.PutNode(m.tree.ID, node)
		m.journal.PutNode(m.tree.ID, parent)
		m.journal.PutTree(m.tree)
	}
	m.notify(Change{Kind: ChangeStructure, TreeID: m.tree.ID, NodeIDs: []string{node.ID, parentID}})
	return node, nil
}

// Delete removes nodeID and its entire subtree and returns the removed id
// set, so callers can drop dependent state such as a selection. Deleting the
// root is rejected; destroy the whole tree instead.
func (m *Mutator) Delete(nodeID string) (map[string]bool, error) {
	if nodeID == m.tree.RootID {
		return nil, fmt.Errorf("delete %s: %w", nodeID, ErrRootDeletionForbidden)
	}
	node, ok := m.tree.Nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("delete %s: %w", nodeID, ErrNodeNotFound)
	}

	// Everything is validated; from here the operation cannot fail partway.
	removed := Descendants(m.tree, nodeID)

	parent := m.tree.Nodes[node.ParentID]
	parent.Children = removeID(parent.Children, nodeID)
	for id := range removed {
		delete(m.tree.Nodes, id)
	}

	now := m.now()
	parent.UpdatedAt = now
	m.tree.UpdatedAt = now

	if m.journal != nil {
		for id := range removed {
			m.journal.DeleteNode(m.tree.ID, id)
		}
		m.journal.PutNode(m.tree.ID, parent)
		m.journal.PutTree(m.tree)
	}

	ids := make([]string, 0, len(removed))
	for id := range removed {
		ids = append(ids, id)
	}
	m.notify(Change{Kind: ChangeStructure, TreeID: m.tree.ID, NodeIDs: ids})
	return removed, nil
}

// Reparent moves nodeID under newParentID. It returns false, mutating
// nothing, if the move is not allowed: unknown ids, moving the root, moving
// a node onto itself, or moving a node into its own subtree. The last case
// is the cycle check: without it a drag-and-drop could detach a subtree into
// a cycle with no path to the root.
//
// Moving a node under its current parent is allowed and re-appends it, so
// the node becomes the last of its siblings.
func (m *Mutator) Reparent(nodeID, newParentID string) bool {
	if nodeID == newParentID || nodeID == m.tree.RootID {
		return false
	}
	node, ok := m.tree.Nodes[nodeID]
	if !ok {
		return false
	}
	if _, ok := m.tree.Nodes[newParentID]; !ok {
		return false
	}
	// Walk up from the proposed parent; hitting nodeID means newParentID is
	// inside nodeID's subtree. O(depth).
	if IsAncestor(m.tree, nodeID, newParentID) {
		return false
	}

	oldParent := m.tree.Nodes[node.ParentID]
	newParent := m.tree.Nodes[newParentID]
	oldParent.Children = removeID(oldParent.Children, nodeID)
	newParent.Children = append(newParent.Children, nodeID)
	node.ParentID = newParentID

	now := m.now()
	node.UpdatedAt = now
	oldParent.UpdatedAt = now
	newParent.UpdatedAt = now
	m.tree.UpdatedAt = now

	if m.journal != nil {
		m.journal.PutNode(m.tree.ID, node)
		m.journal.PutNode(m.tree.ID, oldParent)
		m.journal.PutNode(m.tree.ID, newParent)
		m.journal.PutTree(m.tree)
	}
	m.notify(Change{Kind: ChangeStructure, TreeID: m.tree.ID, NodeIDs: []string{nodeID, oldParent.ID, newParentID}})
	return true
}

// Rename sets a node's title.
func (m *Mutator) Rename(nodeID, title string) error {
	return m.setStyle(nodeID, func(n *model.Node) { n.Title = title })
}

// Recolor sets a node's display color. An empty color reverts to the theme
// default.
func (m *Mutator) Recolor(nodeID, color string) error {
	return m.setStyle(nodeID, func(n *model.Node) { n.Color = color })
}

// Reshape sets a node's glyph shape.
func (m *Mutator) Reshape(nodeID string, shape model.Shape) error {
	if !shape.IsValid() {
		return fmt.Errorf("reshape %s: unknown shape %q", nodeID, shape)
	}
	return m.setStyle(nodeID, func(n *model.Node) { n.Shape = shape })
}

// SetConnectionLabel sets the label drawn on the connector from a node's
// parent. The label on the root is meaningless but harmless.
func (m *Mutator) SetConnectionLabel(nodeID, label string) error {
	return m.setStyle(nodeID, func(n *model.Node) { n.ConnectionLabel = label })
}

func (m *Mutator) setStyle(nodeID string, apply func(*model.Node)) error {
	node, ok := m.tree.Nodes[nodeID]
	if !ok {
		return fmt.Errorf("edit %s: %w", nodeID, ErrNodeNotFound)
	}
	apply(node)
	m.touch(node)
	m.notify(Change{Kind: ChangeStyle, TreeID: m.tree.ID, NodeIDs: []string{nodeID}})
	return nil
}

// SetManualPosition pins a node at a user-chosen position, overriding the
// computed layout for that node.
func (m *Mutator) SetManualPosition(nodeID string, p model.Point) error {
	return m.setGeometry(nodeID, func(n *model.Node) { n.ManualPosition = &p })
}

// ClearManualPosition returns a node to computed layout.
func (m *Mutator) ClearManualPosition(nodeID string) error {
	return m.setGeometry(nodeID, func(n *model.Node) { n.ManualPosition = nil })
}

func (m *Mutator) setGeometry(nodeID string, apply func(*model.Node)) error {
	node, ok := m.tree.Nodes[nodeID]
	if !ok {
		return fmt.Errorf("edit %s: %w", nodeID, ErrNodeNotFound)
	}
	apply(node)
	m.touch(node)
	m.notify(Change{Kind: ChangeStructure, TreeID: m.tree.ID, NodeIDs: []string{nodeID}})
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
