package services

import (
	"context"
	"encoding/json"

	"dockergen/internal/domain/models"
)

// GenerateRequest represents a request to generate a build file for the session's structure
type GenerateRequest struct {
	Language string `json:"language"`
	Provider string `json:"provider,omitempty"` // empty = configured default
	Model    string `json:"model,omitempty"`    // empty = provider default
}

// GenerateFromStructureRequest carries the structure inline instead of using a session.
// Structure is either a node forest ([{"name","type","children"}]) or an
// already serialized nested mapping ({"a":{"b.txt":null}}).
type GenerateFromStructureRequest struct {
	Structure json.RawMessage `json:"structure"`
	Language  string          `json:"language"`
	Provider  string          `json:"provider,omitempty"`
	Model     string          `json:"model,omitempty"`
}

// GenerateResult is the outcome of a successful generation
type GenerateResult struct {
	Content    string `json:"content"`
	ArtifactID string `json:"artifact_id,omitempty"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
}

// GenerationService defines build file generation and artifact retrieval
type GenerationService interface {
	// Generate produces a build file from the session's current structure and stores it as an artifact
	Generate(ctx context.Context, sessionID string, req *GenerateRequest) (*GenerateResult, error)

	// GenerateFromStructure produces a build file from an inline structure; nothing is stored
	GenerateFromStructure(ctx context.Context, req *GenerateFromStructureRequest) (*GenerateResult, error)

	// GetArtifact retrieves one of the session's artifacts
	GetArtifact(ctx context.Context, id, sessionID string) (*models.Artifact, error)

	// ListArtifacts retrieves the session's artifacts, newest first
	ListArtifacts(ctx context.Context, sessionID string) ([]models.ArtifactSummary, error)
}
