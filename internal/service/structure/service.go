// Package structure implements the per-session project structure editor on
// top of the immutable tree snapshots.
package structure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dockergen/internal/config"
	"dockergen/internal/domain"
	"dockergen/internal/domain/services"
	"dockergen/internal/metrics"
	"dockergen/internal/tree"
)

// structureService implements the StructureService interface
type structureService struct {
	store  *SessionStore
	logger *slog.Logger
}

// NewService creates a new structure service
func NewService(store *SessionStore, logger *slog.Logger) services.StructureService {
	return &structureService{
		store:  store,
		logger: logger,
	}
}

// GetTree returns the session's current snapshot
func (s *structureService) GetTree(ctx context.Context, sessionID string) (*tree.Tree, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.current(), nil
}

// AddNode inserts a node under a folder, or at the root when ParentID is nil
func (s *structureService) AddNode(ctx context.Context, sessionID string, req *services.AddNodeRequest) (*tree.Tree, *tree.Node, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}

	parentID := ""
	if req.ParentID != nil {
		parentID = strings.TrimSpace(*req.ParentID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	next, node, err := sess.current().Insert(parentID, req.Type, req.Name)
	if err != nil {
		return nil, nil, err
	}
	sess.commit(next, s.store.limit)
	metrics.RecordTreeMutation("insert")

	s.logger.Debug("node added",
		"session_id", sessionID,
		"node_id", node.ID(),
		"parent_id", parentID,
		"type", node.Kind(),
	)
	return next, node, nil
}

// DeleteNode removes a node and its subtree. Unknown ids are a no-op.
func (s *structureService) DeleteNode(ctx context.Context, sessionID, nodeID string) (*tree.Tree, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	cur := sess.current()
	next := cur.Delete(nodeID)
	if next == cur {
		return cur, nil
	}
	sess.commit(next, s.store.limit)
	metrics.RecordTreeMutation("delete")

	parentID, _ := cur.ParentOf(nodeID)
	s.logger.Debug("node deleted",
		"session_id", sessionID,
		"node_id", nodeID,
		"parent_id", parentID,
		"removed", cur.Len()-next.Len(),
	)
	return next, nil
}

// Import replaces the structure with one built from upload paths.
// The forest is built before the session is touched, so a rejected import
// leaves the current snapshot in place.
func (s *structureService) Import(ctx context.Context, sessionID string, req *services.ImportRequest) (*tree.Tree, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if len(req.Paths) > config.MaxUploadPaths {
		metrics.RecordImport(0, false)
		return nil, &domain.ImportError{
			Reason: fmt.Sprintf("too many paths: %d (maximum %d)", len(req.Paths), config.MaxUploadPaths),
		}
	}

	sess.mu.Lock()
	ids := sess.current().Allocator()
	sess.mu.Unlock()

	imported, err := tree.Import(req.Paths, ids)
	if err != nil {
		metrics.RecordImport(0, false)
		s.logger.Info("import rejected",
			"session_id", sessionID,
			"paths", len(req.Paths),
			"error", err,
		)
		return nil, err
	}

	sess.mu.Lock()
	sess.commit(imported, s.store.limit)
	sess.mu.Unlock()

	metrics.RecordImport(imported.Len(), true)
	s.logger.Info("structure imported",
		"session_id", sessionID,
		"paths", len(req.Paths),
		"nodes", imported.Len(),
	)
	return imported, nil
}

// Replace replaces the structure with a client-supplied forest
func (s *structureService) Replace(ctx context.Context, sessionID string, req *services.ReplaceStructureRequest) (*tree.Tree, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	next, err := tree.FromNodes(req.Structure, sess.current().Allocator())
	if err != nil {
		return nil, err
	}
	sess.commit(next, s.store.limit)
	metrics.RecordTreeMutation("replace")
	return next, nil
}

// Reset empties the structure. Resetting an empty structure is a no-op.
func (s *structureService) Reset(ctx context.Context, sessionID string) (*tree.Tree, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	cur := sess.current()
	if cur.IsEmpty() {
		return cur, nil
	}
	next := tree.New(cur.Allocator())
	sess.commit(next, s.store.limit)
	metrics.RecordTreeMutation("reset")
	return next, nil
}

// Undo steps back one snapshot. At the oldest snapshot it is a no-op.
func (s *structureService) Undo(ctx context.Context, sessionID string) (*tree.Tree, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.undo() {
		metrics.RecordTreeMutation("undo")
	}
	return sess.current(), nil
}

// Redo steps forward one snapshot. Without a pending redo it is a no-op.
func (s *structureService) Redo(ctx context.Context, sessionID string) (*tree.Tree, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.redo() {
		metrics.RecordTreeMutation("redo")
	}
	return sess.current(), nil
}

// Serialize returns the nested name-keyed mapping of the current snapshot
func (s *structureService) Serialize(ctx context.Context, sessionID string) (tree.Structure, error) {
	t, err := s.GetTree(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return tree.Serialize(t), nil
}

// Render returns the current snapshot as a text tree
func (s *structureService) Render(ctx context.Context, sessionID string) (string, error) {
	t, err := s.GetTree(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return tree.Render(t), nil
}

func (s *structureService) session(sessionID string) (*session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, &domain.ValidationError{Message: "session id is required"}
	}
	return s.store.get(sessionID), nil
}
