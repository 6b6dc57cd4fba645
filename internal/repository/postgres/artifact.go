package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dockergen/internal/domain"
	"dockergen/internal/domain/models"
	"dockergen/internal/domain/repositories"
)

// PostgresArtifactRepository implements the ArtifactRepository interface
type PostgresArtifactRepository struct {
	db     DBTX
	tables *TableNames
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(config *RepositoryConfig) repositories.ArtifactRepository {
	return &PostgresArtifactRepository{
		db:     config.DB,
		tables: config.Tables,
	}
}

// schemaStatements returns the DDL for the artifact table and its session index
func schemaStatements(tables *TableNames) []string {
	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         UUID PRIMARY KEY,
			session_id TEXT NOT NULL,
			language   TEXT NOT NULL,
			provider   TEXT NOT NULL,
			model      TEXT NOT NULL,
			structure  JSONB NOT NULL,
			content    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, tables.Artifacts),
		fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %[1]s_session_created_idx
		ON %[1]s (session_id, created_at DESC)`, tables.Artifacts),
	}
}

// EnsureSchema creates the artifact table when it does not exist
func EnsureSchema(ctx context.Context, db DBTX, tables *TableNames) error {
	for _, stmt := range schemaStatements(tables) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Create stores a new artifact. ID and CreatedAt are assigned here.
func (r *PostgresArtifactRepository) Create(ctx context.Context, artifact *models.Artifact) error {
	if artifact.ID == "" {
		artifact.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, language, provider, model, structure, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, r.tables.Artifacts)

	err := r.db.QueryRow(ctx, query,
		artifact.ID,
		artifact.SessionID,
		artifact.Language,
		artifact.Provider,
		artifact.Model,
		string(artifact.Structure),
		artifact.Content,
	).Scan(&artifact.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("artifact %s already exists", artifact.ID)
		}
		return fmt.Errorf("create artifact: %w", err)
	}

	return nil
}

// GetByID retrieves an artifact owned by the session
func (r *PostgresArtifactRepository) GetByID(ctx context.Context, id, sessionID string) (*models.Artifact, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, language, provider, model, structure, content, created_at
		FROM %s
		WHERE id = $1 AND session_id = $2
	`, r.tables.Artifacts)

	var artifact models.Artifact
	var structure []byte
	err := r.db.QueryRow(ctx, query, id, sessionID).Scan(
		&artifact.ID,
		&artifact.SessionID,
		&artifact.Language,
		&artifact.Provider,
		&artifact.Model,
		&structure,
		&artifact.Content,
		&artifact.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("artifact %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	artifact.Structure = structure

	return &artifact, nil
}

// ListBySession retrieves the session's artifacts, newest first
func (r *PostgresArtifactRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Artifact, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, language, provider, model, structure, content, created_at
		FROM %s
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, r.tables.Artifacts)

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []models.Artifact
	for rows.Next() {
		var artifact models.Artifact
		var structure []byte
		err := rows.Scan(
			&artifact.ID,
			&artifact.SessionID,
			&artifact.Language,
			&artifact.Provider,
			&artifact.Model,
			&structure,
			&artifact.Content,
			&artifact.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifact.Structure = structure
		artifacts = append(artifacts, artifact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}

	return artifacts, nil
}
