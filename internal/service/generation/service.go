// Package generation turns a project structure into a Dockerfile by calling a
// configurable text-generation provider, and keeps the results as artifacts.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dockergen/internal/capabilities"
	"dockergen/internal/config"
	"dockergen/internal/domain"
	"dockergen/internal/domain/models"
	"dockergen/internal/domain/repositories"
	"dockergen/internal/domain/services"
	domaingen "dockergen/internal/domain/services/generation"
	"dockergen/internal/metrics"
	"dockergen/internal/tree"
)

const artifactListLimit = 50

// snapshotSource yields a session's current structure snapshot.
type snapshotSource interface {
	GetTree(ctx context.Context, sessionID string) (*tree.Tree, error)
}

// Options holds the generation settings taken from config.Config
type Options struct {
	DefaultProvider string
	DefaultModel    string
	MaxTokens       int
	Timeout         time.Duration
}

// OptionsFromConfig extracts generation settings from the service config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultProvider: cfg.DefaultProvider,
		DefaultModel:    cfg.DefaultModel,
		MaxTokens:       cfg.GenerationMaxTokens,
		Timeout:         cfg.GenerationTimeout,
	}
}

// generationService implements the GenerationService interface
type generationService struct {
	providers  *ProviderRegistry
	catalog    *capabilities.Registry
	structures snapshotSource
	artifacts  repositories.ArtifactRepository
	opts       Options
	logger     *slog.Logger
}

// NewService creates a new generation service
func NewService(
	providers *ProviderRegistry,
	catalog *capabilities.Registry,
	structures snapshotSource,
	artifacts repositories.ArtifactRepository,
	opts Options,
	logger *slog.Logger,
) services.GenerationService {
	return &generationService{
		providers:  providers,
		catalog:    catalog,
		structures: structures,
		artifacts:  artifacts,
		opts:       opts,
		logger:     logger,
	}
}

// Generate produces a Dockerfile for the session's current snapshot.
// The snapshot is immutable, so edits made while the provider call is in
// flight cannot change the payload. A failed call leaves the structure as is.
func (s *generationService) Generate(ctx context.Context, sessionID string, req *services.GenerateRequest) (*services.GenerateResult, error) {
	if err := validateGenerateRequest(req.Language, req.Provider, req.Model); err != nil {
		return nil, err
	}

	lang, err := s.resolveLanguage(req.Language)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.structures.GetTree(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, &domain.ValidationError{Message: "structure is empty: add files or import a folder first"}
	}

	structure := tree.Serialize(snapshot)
	result, err := s.generate(ctx, lang, req.Provider, req.Model, structure, tree.Render(snapshot))
	if err != nil {
		s.logger.Warn("generation failed",
			"session_id", sessionID,
			"language", lang.ID,
			"error", err,
		)
		return nil, err
	}

	payload, err := json.Marshal(structure)
	if err != nil {
		return nil, fmt.Errorf("encode structure: %w", err)
	}

	artifact := &models.Artifact{
		SessionID: sessionID,
		Language:  lang.ID,
		Provider:  result.Provider,
		Model:     result.Model,
		Structure: payload,
		Content:   result.Content,
	}
	if err := s.artifacts.Create(ctx, artifact); err != nil {
		// The content is still returned; only the download link is lost.
		s.logger.Error("failed to store artifact",
			"session_id", sessionID,
			"error", err,
		)
		return result, nil
	}
	result.ArtifactID = artifact.ID

	s.logger.Info("dockerfile generated",
		"session_id", sessionID,
		"artifact_id", artifact.ID,
		"language", lang.ID,
		"provider", result.Provider,
		"model", result.Model,
		"nodes", snapshot.Len(),
	)

	return result, nil
}

// GenerateFromStructure produces a Dockerfile for an inline structure.
func (s *generationService) GenerateFromStructure(ctx context.Context, req *services.GenerateFromStructureRequest) (*services.GenerateResult, error) {
	if err := validateGenerateRequest(req.Language, req.Provider, req.Model); err != nil {
		return nil, err
	}

	lang, err := s.resolveLanguage(req.Language)
	if err != nil {
		return nil, err
	}

	structure, rendered, err := decodeStructure(req.Structure)
	if err != nil {
		return nil, err
	}
	if len(structure) == 0 {
		return nil, &domain.ValidationError{Message: "structure is empty"}
	}

	return s.generate(ctx, lang, req.Provider, req.Model, structure, rendered)
}

// GetArtifact retrieves one of the session's artifacts
func (s *generationService) GetArtifact(ctx context.Context, id, sessionID string) (*models.Artifact, error) {
	return s.artifacts.GetByID(ctx, id, sessionID)
}

// ListArtifacts retrieves the session's artifacts, newest first
func (s *generationService) ListArtifacts(ctx context.Context, sessionID string) ([]models.ArtifactSummary, error) {
	artifacts, err := s.artifacts.ListBySession(ctx, sessionID, artifactListLimit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ArtifactSummary, 0, len(artifacts))
	for i := range artifacts {
		summaries = append(summaries, artifacts[i].Summary())
	}
	return summaries, nil
}

// generate resolves the provider and model, calls it once and returns its text verbatim.
// Every provider-side failure becomes a *domain.GenerationError.
func (s *generationService) generate(
	ctx context.Context,
	lang *capabilities.Language,
	providerName, model string,
	structure tree.Structure,
	rendered string,
) (*services.GenerateResult, error) {
	providerName, model, err := s.resolveProvider(providerName, model)
	if err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(lang.ID, structure, lang, rendered)
	if err != nil {
		return nil, err
	}

	provider, err := s.providers.GetProvider(providerName)
	if err != nil {
		return nil, &domain.GenerationError{Provider: providerName, Err: err}
	}
	if !provider.SupportsModel(model) {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("model %q is not supported by provider %s", model, providerName)}
	}

	callCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := provider.Generate(callCtx, &domaingen.GenerateRequest{
		Model:     model,
		System:    systemPrompt,
		Prompt:    prompt,
		MaxTokens: s.opts.MaxTokens,
	})
	if err == nil && (resp == nil || strings.TrimSpace(resp.Content) == "") {
		err = errors.New("provider returned an empty response")
	}
	metrics.RecordGeneration(providerName, err == nil, time.Since(start))
	if err != nil {
		return nil, &domain.GenerationError{Provider: providerName, Err: err}
	}

	usedModel := resp.Model
	if usedModel == "" {
		usedModel = model
	}

	return &services.GenerateResult{
		Content:  resp.Content,
		Provider: providerName,
		Model:    usedModel,
	}, nil
}

func (s *generationService) resolveLanguage(language string) (*capabilities.Language, error) {
	lang, err := s.catalog.Language(language)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (supported: %s)",
			domain.ErrUnsupportedLanguage, language, strings.Join(s.catalog.LanguageIDs(), ", "))
	}
	return lang, nil
}

// resolveProvider fills in the configured provider and that provider's default model.
func (s *generationService) resolveProvider(providerName, model string) (string, string, error) {
	if providerName == "" {
		providerName = s.opts.DefaultProvider
	}
	if _, err := s.catalog.Provider(providerName); err != nil {
		return "", "", &domain.ValidationError{Message: err.Error()}
	}

	if model != "" {
		return providerName, model, nil
	}
	if providerName == s.opts.DefaultProvider && s.opts.DefaultModel != "" {
		return providerName, s.opts.DefaultModel, nil
	}

	model, err := s.catalog.DefaultModel(providerName)
	if err != nil {
		return "", "", &domain.ValidationError{Message: err.Error()}
	}
	return providerName, model, nil
}

func validateGenerateRequest(language, provider, model string) error {
	err := validation.Errors{
		"language": validation.Validate(strings.TrimSpace(language),
			validation.Required,
			validation.Length(1, config.MaxLanguageLength),
		),
		"provider": validation.Validate(provider, validation.Length(0, config.MaxLanguageLength)),
		"model":    validation.Validate(model, validation.Length(0, config.MaxNodeNameLength)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// decodeStructure accepts either a node forest or an already serialized mapping.
// The text tree is only available for the forest form.
func decodeStructure(raw json.RawMessage) (tree.Structure, string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, "", &domain.ValidationError{Message: "structure is required"}
	}

	switch trimmed[0] {
	case '[':
		var nodes []tree.NodeJSON
		if err := json.Unmarshal(trimmed, &nodes); err != nil {
			return nil, "", &domain.ValidationError{Message: "invalid structure: " + err.Error()}
		}
		forest, err := tree.FromNodes(nodes, nil)
		if err != nil {
			return nil, "", err
		}
		return tree.Serialize(forest), tree.Render(forest), nil
	case '{':
		structure, err := tree.ParseStructure(trimmed)
		if err != nil {
			return nil, "", err
		}
		return structure, "", nil
	default:
		return nil, "", &domain.ValidationError{Message: "structure must be an array of nodes or an object"}
	}
}
