// Package memory holds process-local repository implementations used when
// no database is configured.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"dockergen/internal/domain"
	"dockergen/internal/domain/models"
	"dockergen/internal/domain/repositories"
)

// ArtifactRepository keeps artifacts in a map guarded by a mutex.
type ArtifactRepository struct {
	mu        sync.RWMutex
	artifacts map[string]models.Artifact
	now       func() time.Time
}

// NewArtifactRepository creates an empty in-memory artifact repository
func NewArtifactRepository() *ArtifactRepository {
	return &ArtifactRepository{
		artifacts: make(map[string]models.Artifact),
		now:       time.Now,
	}
}

var _ repositories.ArtifactRepository = (*ArtifactRepository)(nil)

// Create stores a copy of the artifact, assigning ID and CreatedAt when empty
func (r *ArtifactRepository) Create(ctx context.Context, artifact *models.Artifact) error {
	if artifact.ID == "" {
		artifact.ID = uuid.NewString()
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = r.now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.artifacts[artifact.ID]; exists {
		return fmt.Errorf("artifact %s already exists", artifact.ID)
	}
	stored := *artifact
	stored.Structure = slices.Clone(artifact.Structure)
	r.artifacts[artifact.ID] = stored
	return nil
}

// GetByID retrieves an artifact owned by the session
func (r *ArtifactRepository) GetByID(ctx context.Context, id, sessionID string) (*models.Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	artifact, ok := r.artifacts[id]
	if !ok || artifact.SessionID != sessionID {
		return nil, fmt.Errorf("artifact %s: %w", id, domain.ErrNotFound)
	}
	return &artifact, nil
}

// ListBySession retrieves a session's artifacts, newest first
func (r *ArtifactRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Artifact
	for _, a := range r.artifacts {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}

	slices.SortFunc(out, func(a, b models.Artifact) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
