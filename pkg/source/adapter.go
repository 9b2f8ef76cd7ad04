// Package source supplies the conversation tuples that nodes are created
// from. The core never scrapes chat pages itself; an adapter hands it
// {id, title, url} tuples and Sync folds the new ones into a tree.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Alhassan777/arbor/pkg/model"
	"github.com/Alhassan777/arbor/pkg/tree"
)

// Conversation is one available chat conversation as reported by an
// adapter.
type Conversation struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Adapter reports the currently available conversations for the active chat
// session.
type Adapter interface {
	Conversations() ([]Conversation, error)
}

// FileAdapter reads conversations from a JSONL export file, one JSON object
// per line. Browser-side exporters append to this file as the user chats.
type FileAdapter struct {
	path string
}

// NewFileAdapter creates an adapter reading from path.
func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

// Path returns the export file path, for watching.
func (a *FileAdapter) Path() string {
	return a.path
}

// Conversations reads the export file. Malformed lines are skipped so one
// bad record cannot hide the rest of the session.
func (a *FileAdapter) Conversations() ([]Conversation, error) {
	if _, err := os.Stat(a.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no session export found at %s", a.path)
	}

	file, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("open session export: %w", err)
	}
	defer file.Close()

	var convs []Conversation
	scanner := bufio.NewScanner(file)
	// Conversation titles can be long; allow large lines.
	const maxCapacity = 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var c Conversation
		if err := json.Unmarshal(line, &c); err != nil {
			continue
		}
		if c.URL == "" {
			continue
		}
		convs = append(convs, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session export: %w", err)
	}

	return convs, nil
}

// Sync creates a node under parentID for every conversation whose URL is
// not yet present in the tree. Conversations are deduplicated by URL, the
// stable identity across page reloads. It returns the nodes created.
func Sync(m *tree.Mutator, parentID string, convs []Conversation) ([]*model.Node, error) {
	known := make(map[string]bool)
	for _, n := range m.Tree().Nodes {
		if n.SourceURL != "" {
			known[n.SourceURL] = true
		}
	}

	var created []*model.Node
	for _, c := range convs {
		if c.URL == "" || known[c.URL] {
			continue
		}
		title := c.Title
		if title == "" {
			title = c.URL
		}
		node, err := m.Create(parentID, title, c.URL)
		if err != nil {
			return created, fmt.Errorf("sync conversation %s: %w", c.ID, err)
		}
		known[c.URL] = true
		created = append(created, node)
	}
	return created, nil
}
