package palette

import (
	"fmt"
	"sync"
)

// Registry is the catalog of result providers. Registering an id that is
// already present replaces the earlier provider in place, so tests and
// hot reload can re-register freely.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	index     map[string]int
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds or replaces a provider
func (r *Registry) Register(p Provider) error {
	if p.ID == "" {
		return fmt.Errorf("%w: provider ID cannot be empty", ErrInvalidProvider)
	}
	if p.Search == nil && p.InitialResults == nil {
		return fmt.Errorf("%w: provider %s has neither search nor initial results", ErrInvalidProvider, p.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[p.ID]; ok {
		r.providers[i] = p
		return nil
	}
	r.index[p.ID] = len(r.providers)
	r.providers = append(r.providers, p)
	return nil
}

// Clear removes every provider
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = nil
	r.index = make(map[string]int)
}

// Providers returns a snapshot of the registered providers in registration order
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Get returns the provider registered under id
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Provider{}, false
	}
	return r.providers[i], true
}

// Len returns the number of registered providers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
