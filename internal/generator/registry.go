package generator

import (
	"fmt"
	"sort"
	"sync"
)

// Provider name constants.
const (
	ProviderOpenAI = "openai"
)

// Registry holds registered generation providers and resolves which one to
// use by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Generator
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Generator),
	}
}

// Register adds a provider to the registry under the given name.
func (r *Registry) Register(name string, g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = g
}

// Resolve returns the provider registered under the given name, or an
// error if none is.
func (r *Registry) Resolve(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q is not registered", name)
	}
	return g, nil
}

// List returns all registered provider names, sorted for a stable API
// response.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
