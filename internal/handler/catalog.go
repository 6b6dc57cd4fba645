package handler

import (
	"net/http"

	"dockergen/internal/capabilities"
	"dockergen/internal/httputil"
)

// providerStatus reports whether a provider can be used with the current configuration
type providerStatus interface {
	Configured(provider string) bool
}

// CatalogHandler exposes the supported languages and generation providers
type CatalogHandler struct {
	catalog         *capabilities.Registry
	status          providerStatus
	defaultProvider string
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *capabilities.Registry, status providerStatus, defaultProvider string) *CatalogHandler {
	return &CatalogHandler{
		catalog:         catalog,
		status:          status,
		defaultProvider: defaultProvider,
	}
}

// LanguagesResponse lists the accepted language identifiers
type LanguagesResponse struct {
	Languages []capabilities.Language `json:"languages"`
}

// ProviderResponse is a provider plus its availability
type ProviderResponse struct {
	capabilities.Provider
	Configured bool `json:"configured"`
	Default    bool `json:"default"`
}

// ProvidersResponse lists the generation providers
type ProvidersResponse struct {
	DefaultProvider string             `json:"default_provider"`
	Providers       []ProviderResponse `json:"providers"`
}

// GetLanguages returns the supported languages
// GET /api/languages
func (h *CatalogHandler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, LanguagesResponse{Languages: h.catalog.Languages()})
}

// GetProviders returns the generation providers and their models
// GET /api/providers
func (h *CatalogHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	providers := h.catalog.Providers()
	out := make([]ProviderResponse, 0, len(providers))
	for _, p := range providers {
		// API key env names are server details
		p.APIKeyEnv = ""
		out = append(out, ProviderResponse{
			Provider:   p,
			Configured: h.status != nil && h.status.Configured(p.ID),
			Default:    p.ID == h.defaultProvider,
		})
	}

	httputil.RespondJSON(w, http.StatusOK, ProvidersResponse{
		DefaultProvider: h.defaultProvider,
		Providers:       out,
	})
}
