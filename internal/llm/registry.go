package llm

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Registry holds the mapping between provider keys and their Provider implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider implementation to the registry under its own name.
func (r *Registry) Register(p Provider) {
	if _, exists := r.providers[p.Name()]; exists {
		log.Warn().Str("provider", p.Name()).Msg("Provider already registered, overwriting")
	}
	r.providers[p.Name()] = p
	log.Info().Str("provider", p.Name()).Msg("Registered LLM provider")
}

// Get retrieves a provider implementation from the registry by key.
// An unconfigured provider is indistinguishable from an unknown one.
func (r *Registry) Get(key string) (Provider, error) {
	p, exists := r.providers[key]
	if !exists {
		return nil, fmt.Errorf("provider %q not configured or available", key)
	}
	return p, nil
}
