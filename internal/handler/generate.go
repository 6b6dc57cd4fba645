package handler

import (
	"log/slog"
	"net/http"

	"dockergen/internal/domain/models"
	"dockergen/internal/domain/services"
	"dockergen/internal/httputil"
)

// GenerationHandler handles build file generation and artifact retrieval
type GenerationHandler struct {
	generationService services.GenerationService
	logger            *slog.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(generationService services.GenerationService, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		logger:            logger,
	}
}

// DockerGenerateResponse is the body of the structure-in, content-out endpoint
type DockerGenerateResponse struct {
	Content string `json:"content"`
}

// ArtifactListResponse wraps the session's artifact summaries
type ArtifactListResponse struct {
	Artifacts []models.ArtifactSummary `json:"artifacts"`
}

// Generate produces a build file for the session's current structure
// POST /api/generate
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	result, err := h.generationService.Generate(r.Context(), httputil.GetSessionID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// DockerGenerate produces a build file from a structure carried in the body.
// The response holds only the generated text.
// POST /docker-generate
func (h *GenerationHandler) DockerGenerate(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateFromStructureRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("inline generation request",
		"language", req.Language,
		"provider", req.Provider,
		"structure_bytes", len(req.Structure),
	)

	result, err := h.generationService.GenerateFromStructure(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, DockerGenerateResponse{Content: result.Content})
}

// ListArtifacts returns the session's generated build files, newest first
// GET /api/artifacts
func (h *GenerationHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.generationService.ListArtifacts(r.Context(), httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	if artifacts == nil {
		artifacts = []models.ArtifactSummary{}
	}
	httputil.RespondJSON(w, http.StatusOK, ArtifactListResponse{Artifacts: artifacts})
}

// GetArtifact returns one generated build file with its structure
// GET /api/artifacts/{id}
func (h *GenerationHandler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	artifact, ok := h.lookupArtifact(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, artifact)
}

// DownloadArtifact serves the generated text as a Dockerfile attachment
// GET /api/artifacts/{id}/download
func (h *GenerationHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	artifact, ok := h.lookupArtifact(w, r)
	if !ok {
		return
	}
	httputil.RespondAttachment(w, "Dockerfile", artifact.Content)
}

func (h *GenerationHandler) lookupArtifact(w http.ResponseWriter, r *http.Request) (*models.Artifact, bool) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "artifact ID is required")
		return nil, false
	}

	artifact, err := h.generationService.GetArtifact(r.Context(), id, httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	return artifact, true
}
