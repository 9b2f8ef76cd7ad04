package tree

import "errors"

// The only error kinds callers must handle. All of them describe an invalid
// request, never internal corruption, and every failed operation leaves the
// tree untouched.
var (
	// ErrParentNotFound is returned by Create when the parent id is unknown.
	ErrParentNotFound = errors.New("parent node not found")

	// ErrNodeNotFound is returned when an operation targets an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrRootDeletionForbidden is returned by Delete when the target is the
	// root. Callers that want the root gone must delete the whole tree.
	ErrRootDeletionForbidden = errors.New("root node cannot be deleted")

	// ErrInvalidReparent covers self-parenting and cycle formation.
	ErrInvalidReparent = errors.New("reparent would break the tree structure")
)
