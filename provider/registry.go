package provider

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/time/rate"
)

// Registry maps model identifiers to descriptors and the providers that
// serve them. Registrations happen at startup; lookups are safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	desc     Descriptor
	provider Provider
	limiter  *rate.Limiter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*registryEntry{}}
}

// Register adds a model with its descriptor and serving provider. A non-zero
// RequestsPerMinute budget installs a per-model rate limiter honored by the
// router before every attempt.
func (r *Registry) Register(desc Descriptor, p Provider) error {
	if desc.ModelID == "" {
		return fmt.Errorf("descriptor has empty model id")
	}
	if p == nil {
		return fmt.Errorf("model %q registered without a provider", desc.ModelID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[desc.ModelID]; exists {
		return fmt.Errorf("model %q already registered", desc.ModelID)
	}

	entry := &registryEntry{desc: desc, provider: p}
	if desc.RequestsPerMinute > 0 {
		entry.limiter = rate.NewLimiter(rate.Limit(float64(desc.RequestsPerMinute)/60.0), desc.RequestsPerMinute)
	}
	r.entries[desc.ModelID] = entry
	return nil
}

// Resolve returns the descriptor and provider for a model identifier.
func (r *Registry) Resolve(modelID string) (Descriptor, Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[modelID]
	if !ok {
		return Descriptor{}, nil, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	return entry.desc, entry.provider, nil
}

// Describe returns the descriptor for a model identifier.
func (r *Registry) Describe(modelID string) (Descriptor, error) {
	desc, _, err := r.Resolve(modelID)
	return desc, err
}

// Cost computes the deterministic price of usage against a model's pricing
// table.
func (r *Registry) Cost(modelID string, usage TokenUsage) (float64, error) {
	desc, err := r.Describe(modelID)
	if err != nil {
		return 0, err
	}
	return desc.Cost(usage), nil
}

// Models lists all registered model identifiers, sorted.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// limiter returns the rate limiter configured for a model, or nil.
func (r *Registry) limiter(modelID string) *rate.Limiter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.entries[modelID]; ok {
		return entry.limiter
	}
	return nil
}
