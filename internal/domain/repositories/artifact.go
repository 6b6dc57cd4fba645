package repositories

import (
	"context"

	"dockergen/internal/domain/models"
)

// ArtifactRepository defines data access operations for generated artifacts
type ArtifactRepository interface {
	// Create stores a new artifact. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, artifact *models.Artifact) error

	// GetByID retrieves an artifact owned by the session
	GetByID(ctx context.Context, id, sessionID string) (*models.Artifact, error)

	// ListBySession retrieves a session's artifacts, newest first
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Artifact, error)
}
