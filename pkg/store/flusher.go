package store

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alhassan777/arbor/pkg/model"
)

// DefaultFlushInterval is how long dirty records sit before being written.
const DefaultFlushInterval = 500 * time.Millisecond

type opKind int

const (
	opPutTree opKind = iota
	opPutNode
	opDeleteNode
)

type record struct {
	kind   opKind
	treeID string
	tree   *model.Tree // snapshot, opPutTree only
	node   *model.Node // snapshot, opPutNode only
	nodeID string
	seq    uint64
}

// Flusher batches mutations and writes them to the store in the background.
// It satisfies the mutation journal interface of pkg/tree.
//
// Records are keyed: a newer write for the same tree or node supersedes a
// pending older one, and a delete supersedes a pending put. Enqueue methods
// snapshot their argument, so the caller may keep mutating the live tree.
// Close flushes everything before returning; an unflushed mutation is never
// silently dropped.
type Flusher struct {
	store    *Store
	interval time.Duration
	onError  func(error)

	mu      sync.Mutex
	pending map[string]record
	seq     uint64

	wake chan struct{}
	stop chan struct{}
	g    errgroup.Group
}

// FlusherOption configures a Flusher.
type FlusherOption func(*Flusher)

// WithFlushInterval sets the batching window.
func WithFlushInterval(d time.Duration) FlusherOption {
	return func(f *Flusher) { f.interval = d }
}

// WithErrorHandler sets the callback invoked when a background write fails.
// The flusher keeps running after a failure; the default handler discards
// the error.
func WithErrorHandler(fn func(error)) FlusherOption {
	return func(f *Flusher) { f.onError = fn }
}

// NewFlusher starts a flusher writing to the given store.
func NewFlusher(s *Store, opts ...FlusherOption) *Flusher {
	f := &Flusher{
		store:    s,
		interval: DefaultFlushInterval,
		onError:  func(error) {},
		pending:  make(map[string]record),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.g.Go(f.run)
	return f
}

// PutTree schedules the tree's metadata row for persistence.
func (f *Flusher) PutTree(t *model.Tree) {
	snapshot := *t
	snapshot.Nodes = nil
	f.enqueue("tree/"+t.ID, record{kind: opPutTree, treeID: t.ID, tree: &snapshot})
}

// PutNode schedules one node for persistence.
func (f *Flusher) PutNode(treeID string, n *model.Node) {
	snapshot := n.Clone()
	f.enqueue("node/"+treeID+"/"+n.ID, record{kind: opPutNode, treeID: treeID, node: &snapshot, nodeID: n.ID})
}

// DeleteNode schedules one node's removal, superseding any pending put for
// the same node.
func (f *Flusher) DeleteNode(treeID, nodeID string) {
	f.enqueue("node/"+treeID+"/"+nodeID, record{kind: opDeleteNode, treeID: treeID, nodeID: nodeID})
}

func (f *Flusher) enqueue(key string, r record) {
	f.mu.Lock()
	f.seq++
	r.seq = f.seq
	f.pending[key] = r
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *Flusher) run() error {
	for {
		select {
		case <-f.stop:
			return nil
		case <-f.wake:
		}

		// Let a burst of mutations settle before touching the database.
		timer := time.NewTimer(f.interval)
		select {
		case <-f.stop:
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if err := f.Flush(); err != nil {
			f.onError(err)
		}
	}
}

// Flush synchronously writes every pending record. Safe to call at any time.
func (f *Flusher) Flush() error {
	f.mu.Lock()
	batch := f.pending
	f.pending = make(map[string]record)
	f.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	// Enqueue order, so a node's create lands before a later reparent of a
	// sibling touches the same parent row in a surprising order.
	records := make([]record, 0, len(batch))
	for _, r := range batch {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	var firstErr error
	for _, r := range records {
		var err error
		switch r.kind {
		case opPutTree:
			err = f.store.PutTreeMeta(r.tree)
		case opPutNode:
			err = f.store.PutNode(r.treeID, r.node)
		case opDeleteNode:
			err = f.store.DeleteNode(r.treeID, r.nodeID)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close flushes all pending records and stops the background writer.
func (f *Flusher) Close() error {
	close(f.stop)
	err := f.g.Wait()
	if flushErr := f.Flush(); err == nil {
		err = flushErr
	}
	return err
}
