package capabilities

import (
	"embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry is the catalog of supported languages and generation providers.
type Registry struct {
	languages []Language
	providers []Provider
	mu        sync.RWMutex
}

// NewRegistry creates a new catalog and loads the embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{}

	var langs languageFile
	if err := loadFile("config/languages.yaml", &langs); err != nil {
		return nil, fmt.Errorf("failed to load languages: %w", err)
	}

	var provs providerFile
	if err := loadFile("config/providers.yaml", &provs); err != nil {
		return nil, fmt.Errorf("failed to load providers: %w", err)
	}

	r.languages = langs.Languages
	r.providers = provs.Providers
	return r, nil
}

func loadFile(filename string, out any) error {
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return nil
}

// Language returns a language by id, matched case-insensitively.
func (r *Registry) Language(id string) (*Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id = strings.ToLower(strings.TrimSpace(id))
	for i := range r.languages {
		if r.languages[i].ID == id {
			l := r.languages[i]
			return &l, nil
		}
	}
	return nil, fmt.Errorf("unknown language: %s", id)
}

// Languages returns all languages (ordered as defined in YAML)
func (r *Registry) Languages() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.languages)
}

// LanguageIDs returns the ids of all languages in catalog order
func (r *Registry) LanguageIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.languages))
	for _, l := range r.languages {
		ids = append(ids, l.ID)
	}
	return ids
}

// Provider returns a provider by id
func (r *Registry) Provider(id string) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.providers {
		if r.providers[i].ID == id {
			p := r.providers[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("unknown provider: %s", id)
}

// Providers returns all providers (ordered as defined in YAML)
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.providers)
}

// DefaultModel returns the first model listed for a provider
func (r *Registry) DefaultModel(provider string) (string, error) {
	p, err := r.Provider(provider)
	if err != nil {
		return "", err
	}
	if len(p.Models) == 0 {
		return "", fmt.Errorf("provider %s has no models", provider)
	}
	return p.Models[0].ID, nil
}
