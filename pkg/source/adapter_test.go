package source

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Alhassan777/arbor/pkg/model"
	"github.com/Alhassan777/arbor/pkg/tree"
)

func writeExport(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func newTestMutator(t *testing.T) *tree.Mutator {
	t.Helper()
	counter := 0
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := &model.Tree{
		ID:     "t1",
		Name:   "test",
		RootID: "root",
		Nodes: map[string]*model.Node{
			"root": {ID: "root", Title: "test", CreatedAt: now, UpdatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tree.NewMutator(tr,
		tree.WithIDSource(func() string {
			counter++
			return fmt.Sprintf("n%d", counter)
		}),
	)
}

func TestFileAdapterConversations(t *testing.T) {
	path := writeExport(t, `{"id":"c1","title":"first idea","url":"https://chat.example/c1"}
{"id":"c2","title":"second idea","url":"https://chat.example/c2"}
`)

	convs, err := NewFileAdapter(path).Conversations()
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].Title != "first idea" || convs[0].URL != "https://chat.example/c1" {
		t.Errorf("first conversation = %+v", convs[0])
	}
}

func TestFileAdapterSkipsBadLines(t *testing.T) {
	path := writeExport(t, `{"id":"c1","title":"good","url":"https://chat.example/c1"}
this line is not json
{"id":"c2","title":"missing url"}

{"id":"c3","title":"also good","url":"https://chat.example/c3"}
`)

	convs, err := NewFileAdapter(path).Conversations()
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2 (bad lines skipped)", len(convs))
	}
	if convs[1].ID != "c3" {
		t.Errorf("second surviving conversation = %+v", convs[1])
	}
}

func TestFileAdapterMissingFile(t *testing.T) {
	a := NewFileAdapter(filepath.Join(t.TempDir(), "nope.jsonl"))
	if _, err := a.Conversations(); err == nil {
		t.Fatal("missing export file did not error")
	}
}

func TestSyncCreatesAndDeduplicates(t *testing.T) {
	m := newTestMutator(t)

	convs := []Conversation{
		{ID: "c1", Title: "alpha", URL: "https://chat.example/c1"},
		{ID: "c2", Title: "beta", URL: "https://chat.example/c2"},
	}
	created, err := Sync(m, "root", convs)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d nodes, want 2", len(created))
	}

	// A second sync with one old and one new conversation only adds the new.
	convs = append(convs, Conversation{ID: "c3", Title: "gamma", URL: "https://chat.example/c3"})
	created, err = Sync(m, "root", convs)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(created) != 1 || created[0].Title != "gamma" {
		t.Fatalf("resync created %d nodes (%+v), want just gamma", len(created), created)
	}
	if got := len(m.Tree().Nodes); got != 4 {
		t.Errorf("tree has %d nodes, want 4", got)
	}
	if err := m.Tree().Validate(); err != nil {
		t.Errorf("tree invalid after sync: %v", err)
	}
}

func TestSyncFallsBackToURLTitle(t *testing.T) {
	m := newTestMutator(t)
	created, err := Sync(m, "root", []Conversation{{ID: "c1", URL: "https://chat.example/c1"}})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(created) != 1 || created[0].Title != "https://chat.example/c1" {
		t.Fatalf("created = %+v, want URL used as title", created)
	}
}

func TestSyncUnknownParent(t *testing.T) {
	m := newTestMutator(t)
	_, err := Sync(m, "ghost", []Conversation{{ID: "c1", Title: "x", URL: "https://chat.example/c1"}})
	if err == nil {
		t.Fatal("sync under an unknown parent succeeded")
	}
}

func TestSyncDeduplicatesWithinBatch(t *testing.T) {
	m := newTestMutator(t)
	created, err := Sync(m, "root", []Conversation{
		{ID: "c1", Title: "dup", URL: "https://chat.example/c1"},
		{ID: "c1", Title: "dup again", URL: "https://chat.example/c1"},
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(created) != 1 {
		t.Errorf("created %d nodes from duplicate batch, want 1", len(created))
	}
}
