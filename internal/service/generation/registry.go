package generation

import (
	"fmt"
	"sync"

	domaingen "dockergen/internal/domain/services/generation"
)

// providerSource builds providers by name. *ProviderFactory is the production implementation.
type providerSource interface {
	GetProvider(name string) (domaingen.Generator, error)
}

// ProviderRegistry caches provider instances so clients are built once per provider.
type ProviderRegistry struct {
	factory providerSource
	cache   map[string]domaingen.Generator
	mu      sync.RWMutex
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry(factory providerSource) *ProviderRegistry {
	return &ProviderRegistry{
		factory: factory,
		cache:   make(map[string]domaingen.Generator),
	}
}

// Register installs a ready-made provider under name, replacing any cached one.
func (r *ProviderRegistry) Register(name string, provider domaingen.Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[name] = provider
}

// GetProvider returns the provider for the given name, creating and caching it on first use.
func (r *ProviderRegistry) GetProvider(provider string) (domaingen.Generator, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	// Fast path: check cache with read lock
	r.mu.RLock()
	if cached, exists := r.cache[provider]; exists {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	// Slow path: create provider with write lock
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check cache after acquiring write lock
	if cached, exists := r.cache[provider]; exists {
		return cached, nil
	}

	if r.factory == nil {
		return nil, fmt.Errorf("no factory configured for provider '%s'", provider)
	}

	created, err := r.factory.GetProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider '%s': %w", provider, err)
	}

	r.cache[provider] = created
	return created, nil
}
