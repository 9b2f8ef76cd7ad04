// Package store persists trees and nodes in a local sqlite database and
// provides the write-behind flusher that keeps persistence off the
// interactive path.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Alhassan777/arbor/pkg/model"
)

// ErrTreeNotFound is returned by GetTree for an unknown tree id.
var ErrTreeNotFound = errors.New("tree not found")

// Store handles tree persistence. Records are possibly-slow and
// possibly-failing from the caller's point of view; interactive code should
// write through a Flusher rather than calling Put methods directly.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		root_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		tree_id TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		source_url TEXT NOT NULL DEFAULT '',
		parent_id TEXT NOT NULL DEFAULT '',
		children TEXT NOT NULL DEFAULT '[]',
		color TEXT NOT NULL DEFAULT '',
		shape TEXT NOT NULL DEFAULT '',
		connection_label TEXT NOT NULL DEFAULT '',
		manual_x REAL,
		manual_y REAL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (tree_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_tree ON nodes(tree_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// TreeInfo is a row from the tree listing, enough to pick a tree to open.
type TreeInfo struct {
	ID        string
	Name      string
	NodeCount int
	UpdatedAt time.Time
}

// ListTrees returns every stored tree, most recently updated first.
func (s *Store) ListTrees() ([]TreeInfo, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.updated_at, COUNT(n.id)
		FROM trees t LEFT JOIN nodes n ON n.tree_id = t.id
		GROUP BY t.id
		ORDER BY t.updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []TreeInfo
	for rows.Next() {
		var info TreeInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.UpdatedAt, &info.NodeCount); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// PutTree writes a whole tree: its metadata row and every node, atomically.
// Used when creating a tree; incremental updates go through the flusher.
func (s *Store) PutTree(t *model.Tree) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := putTreeMetaTx(tx, t); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM nodes WHERE tree_id = ?`, t.ID); err != nil {
		return err
	}
	for _, n := range t.Nodes {
		if err := putNodeTx(tx, t.ID, n); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// PutTreeMeta upserts only the tree's metadata row.
func (s *Store) PutTreeMeta(t *model.Tree) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := putTreeMetaTx(tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

func putTreeMetaTx(tx *sql.Tx, t *model.Tree) error {
	_, err := tx.Exec(`
		INSERT INTO trees (id, name, root_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			root_id = excluded.root_id,
			updated_at = excluded.updated_at
	`, t.ID, t.Name, t.RootID, t.CreatedAt, t.UpdatedAt)
	return err
}

// PutNode upserts one node row.
func (s *Store) PutNode(treeID string, n *model.Node) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := putNodeTx(tx, treeID, n); err != nil {
		return err
	}
	return tx.Commit()
}

func putNodeTx(tx *sql.Tx, treeID string, n *model.Node) error {
	children, err := json.Marshal(n.Children)
	if err != nil {
		return fmt.Errorf("encode children of %s: %w", n.ID, err)
	}

	var manualX, manualY sql.NullFloat64
	if n.ManualPosition != nil {
		manualX = sql.NullFloat64{Float64: n.ManualPosition.X, Valid: true}
		manualY = sql.NullFloat64{Float64: n.ManualPosition.Y, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO nodes (tree_id, id, title, source_url, parent_id, children,
			color, shape, connection_label, manual_x, manual_y, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tree_id, id) DO UPDATE SET
			title = excluded.title,
			source_url = excluded.source_url,
			parent_id = excluded.parent_id,
			children = excluded.children,
			color = excluded.color,
			shape = excluded.shape,
			connection_label = excluded.connection_label,
			manual_x = excluded.manual_x,
			manual_y = excluded.manual_y,
			updated_at = excluded.updated_at
	`, treeID, n.ID, n.Title, n.SourceURL, n.ParentID, string(children),
		n.Color, string(n.Shape), n.ConnectionLabel, manualX, manualY,
		n.CreatedAt, n.UpdatedAt)
	return err
}

// DeleteNode removes one node row.
func (s *Store) DeleteNode(treeID, nodeID string) error {
	_, err := s.db.Exec(`DELETE FROM nodes WHERE tree_id = ? AND id = ?`, treeID, nodeID)
	return err
}

// DeleteTree removes a tree and all of its nodes as a unit.
func (s *Store) DeleteTree(treeID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM nodes WHERE tree_id = ?`, treeID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM trees WHERE id = ?`, treeID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetTree loads a tree and its nodes, validating the structural invariants
// before handing the tree to callers. A stored tree that fails validation is
// surfaced as an error rather than silently repaired.
func (s *Store) GetTree(treeID string) (*model.Tree, error) {
	t := &model.Tree{Nodes: make(map[string]*model.Node)}
	err := s.db.QueryRow(`
		SELECT id, name, root_id, created_at, updated_at FROM trees WHERE id = ?
	`, treeID).Scan(&t.ID, &t.Name, &t.RootID, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get tree %s: %w", treeID, ErrTreeNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, title, source_url, parent_id, children, color, shape,
			connection_label, manual_x, manual_y, created_at, updated_at
		FROM nodes WHERE tree_id = ?
	`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var n model.Node
		var children string
		var manualX, manualY sql.NullFloat64
		if err := rows.Scan(&n.ID, &n.Title, &n.SourceURL, &n.ParentID, &children,
			&n.Color, &n.Shape, &n.ConnectionLabel, &manualX, &manualY,
			&n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(children), &n.Children); err != nil {
			return nil, fmt.Errorf("decode children of %s: %w", n.ID, err)
		}
		if manualX.Valid && manualY.Valid {
			n.ManualPosition = &model.Point{X: manualX.Float64, Y: manualY.Float64}
		}
		t.Nodes[n.ID] = &n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("stored tree %s is invalid: %w", treeID, err)
	}
	return t, nil
}
