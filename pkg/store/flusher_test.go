package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Alhassan777/arbor/pkg/model"
)

// A long interval keeps the background loop out of these tests; each one
// drives Flush or Close explicitly.
func newTestFlusher(t *testing.T) (*Flusher, *Store) {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "arbor.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	f := NewFlusher(s, WithFlushInterval(time.Hour))
	return f, s
}

func TestFlusherSupersedesByKey(t *testing.T) {
	f, s := newTestFlusher(t)
	defer f.Close()

	tr := sampleTree()
	if err := s.PutTree(tr); err != nil {
		t.Fatalf("seed: %v", err)
	}

	b := tr.Nodes["b"]
	b.Title = "first edit"
	f.PutNode("t1", b)
	b.Title = "second edit"
	f.PutNode("t1", b)

	if err := f.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := s.GetTree("t1")
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if got.Nodes["b"].Title != "second edit" {
		t.Errorf("title = %q, want the newer pending write", got.Nodes["b"].Title)
	}
}

func TestFlusherDeleteSupersedesPut(t *testing.T) {
	f, s := newTestFlusher(t)
	defer f.Close()

	tr := sampleTree()
	if err := s.PutTree(tr); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Edit then delete the same node before any flush: only the delete may
	// reach the database.
	b := tr.Nodes["b"]
	b.Title = "doomed edit"
	f.PutNode("t1", b)
	f.DeleteNode("t1", "b")

	// Keep the tree structurally valid for GetTree.
	r := tr.Nodes["r"]
	r.Children = []string{"a"}
	f.PutNode("t1", r)

	if err := f.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := s.GetTree("t1")
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if _, ok := got.Nodes["b"]; ok {
		t.Error("deleted node resurrected by a superseded put")
	}
}

func TestFlusherSnapshotsAtEnqueue(t *testing.T) {
	f, s := newTestFlusher(t)
	defer f.Close()

	tr := sampleTree()
	if err := s.PutTree(tr); err != nil {
		t.Fatalf("seed: %v", err)
	}

	b := tr.Nodes["b"]
	b.Title = "enqueued"
	f.PutNode("t1", b)
	b.Title = "mutated after enqueue"

	if err := f.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := s.GetTree("t1")
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if got.Nodes["b"].Title != "enqueued" {
		t.Errorf("title = %q, want the value at enqueue time", got.Nodes["b"].Title)
	}
}

func TestFlusherCloseFlushes(t *testing.T) {
	f, s := newTestFlusher(t)

	tr := sampleTree()
	f.PutTree(tr)
	for _, n := range tr.Nodes {
		f.PutNode(tr.ID, n)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := s.GetTree("t1")
	if err != nil {
		t.Fatalf("GetTree after Close: %v", err)
	}
	if len(got.Nodes) != 3 {
		t.Errorf("got %d nodes, want 3", len(got.Nodes))
	}
}

func TestFlusherBackgroundWrite(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "arbor.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	f := NewFlusher(s, WithFlushInterval(10*time.Millisecond))
	defer f.Close()

	tr := sampleTree()
	f.PutTree(tr)
	for _, n := range tr.Nodes {
		f.PutNode(tr.ID, n)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := s.GetTree("t1"); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background flush never persisted the tree")
}

func TestFlusherReportsWriteErrors(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "arbor.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	f := NewFlusher(s, WithFlushInterval(time.Hour))

	// Writes against a closed database must surface through Flush, and
	// again through Close if still pending there.
	s.Close()
	f.PutNode("t1", &model.Node{ID: "x", Title: "x"})
	if err := f.Flush(); err == nil {
		t.Fatal("Flush against a closed store returned nil")
	}
	if err := f.Close(); err != nil {
		t.Logf("Close: %v", err)
	}
}
