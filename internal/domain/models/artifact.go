package models

import (
	"encoding/json"
	"time"
)

// Artifact is a generated build file together with the inputs that produced it.
type Artifact struct {
	ID        string          `json:"id" db:"id"`
	SessionID string          `json:"session_id" db:"session_id"`
	Language  string          `json:"language" db:"language"`
	Provider  string          `json:"provider" db:"provider"`
	Model     string          `json:"model" db:"model"`
	Structure json.RawMessage `json:"structure" db:"structure"` // serialized nested mapping sent to the provider
	Content   string          `json:"content" db:"content"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ArtifactSummary is the list form of an Artifact, without the payloads.
type ArtifactSummary struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the list form of the artifact.
func (a *Artifact) Summary() ArtifactSummary {
	return ArtifactSummary{
		ID:        a.ID,
		Language:  a.Language,
		Provider:  a.Provider,
		Model:     a.Model,
		Size:      len(a.Content),
		CreatedAt: a.CreatedAt,
	}
}
