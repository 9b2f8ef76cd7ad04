package render

import (
	"sync"
	"time"

	"github.com/Alhassan777/arbor/pkg/layout"
	"github.com/Alhassan777/arbor/pkg/model"
	"github.com/Alhassan777/arbor/pkg/tree"
	"github.com/Alhassan777/arbor/pkg/watcher"
)

// Coordinator keeps a current Scene for one tree, recomputing it after
// mutations. Bursts of changes (a drag that reparents three nodes in quick
// succession) are debounced into a single recompute, and a window with at
// least one change always produces exactly one recompute of the latest
// state.
type Coordinator struct {
	engine    *layout.Engine
	debouncer *watcher.Debouncer

	mu    sync.Mutex
	tree  *model.Tree
	scene Scene
	sinks []func(Scene)
}

// NewCoordinator builds the initial scene for the tree and starts watching
// the mutator for changes.
func NewCoordinator(m *tree.Mutator, engine *layout.Engine, debounce time.Duration) *Coordinator {
	c := &Coordinator{
		engine:    engine,
		debouncer: watcher.NewDebouncer(debounce),
		tree:      m.Tree().Clone(),
	}
	c.scene = BuildScene(c.tree, c.engine)
	m.Subscribe(func(tree.Change) {
		// Snapshot on the mutating goroutine: the debounced rebuild runs on
		// a timer goroutine, which must never read the live tree. Style-only
		// changes rebuild too, since titles and colors live in the scene.
		snapshot := m.Tree().Clone()
		c.mu.Lock()
		c.tree = snapshot
		c.mu.Unlock()
		c.debouncer.Trigger(c.rebuild)
	})
	return c
}

// Scene returns the most recently computed scene.
func (c *Coordinator) Scene() Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene
}

// AddSink registers a callback receiving every recomputed scene. Sinks run
// on the debounce goroutine and should hand off quickly.
func (c *Coordinator) AddSink(fn func(Scene)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, fn)
}

// Refresh recomputes the scene immediately, bypassing the debounce window.
func (c *Coordinator) Refresh() Scene {
	c.debouncer.Cancel()
	c.rebuild()
	return c.Scene()
}

// Close cancels any pending recompute.
func (c *Coordinator) Close() {
	c.debouncer.Cancel()
}

func (c *Coordinator) rebuild() {
	c.mu.Lock()
	snapshot := c.tree
	c.mu.Unlock()

	scene := BuildScene(snapshot, c.engine)

	c.mu.Lock()
	c.scene = scene
	sinks := make([]func(Scene), len(c.sinks))
	copy(sinks, c.sinks)
	c.mu.Unlock()

	for _, fn := range sinks {
		fn(scene)
	}
}
