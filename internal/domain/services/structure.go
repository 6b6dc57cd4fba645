package services

import (
	"context"

	"dockergen/internal/tree"
)

// AddNodeRequest represents a request to insert a file or folder
type AddNodeRequest struct {
	ParentID *string   `json:"parent_id,omitempty"` // nil = root level
	Type     tree.Kind `json:"type"`
	Name     string    `json:"name"`
}

// ImportRequest represents a request to rebuild the structure from upload paths
type ImportRequest struct {
	Paths []string `json:"paths"`
}

// ReplaceStructureRequest represents a request to replace the structure with a client-built forest
type ReplaceStructureRequest struct {
	Structure []tree.NodeJSON `json:"structure"`
}

// StructureService defines the editing operations on a session's project structure.
// Every successful mutation produces a new immutable snapshot; failed
// operations leave the current snapshot untouched.
type StructureService interface {
	// GetTree returns the session's current snapshot
	GetTree(ctx context.Context, sessionID string) (*tree.Tree, error)

	// AddNode inserts a node under a folder, or at the root when ParentID is nil
	AddNode(ctx context.Context, sessionID string, req *AddNodeRequest) (*tree.Tree, *tree.Node, error)

	// DeleteNode removes a node and its subtree. Unknown ids are a no-op.
	DeleteNode(ctx context.Context, sessionID, nodeID string) (*tree.Tree, error)

	// Import replaces the structure with one built from upload paths
	Import(ctx context.Context, sessionID string, req *ImportRequest) (*tree.Tree, error)

	// Replace replaces the structure with a client-supplied forest
	Replace(ctx context.Context, sessionID string, req *ReplaceStructureRequest) (*tree.Tree, error)

	// Reset empties the structure
	Reset(ctx context.Context, sessionID string) (*tree.Tree, error)

	// Undo steps back one snapshot
	Undo(ctx context.Context, sessionID string) (*tree.Tree, error)

	// Redo steps forward one snapshot
	Redo(ctx context.Context, sessionID string) (*tree.Tree, error)

	// Serialize returns the nested name-keyed mapping of the current snapshot
	Serialize(ctx context.Context, sessionID string) (tree.Structure, error)

	// Render returns the current snapshot as a text tree
	Render(ctx context.Context, sessionID string) (string, error)
}
