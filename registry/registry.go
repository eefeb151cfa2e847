// Package registry holds named actor specifications. A Registry is built
// once at startup, injected where needed, and treated as read-only
// thereafter; Register is the one documented mutation API and replacing a
// spec that already has persisted instances invalidates replay determinism
// for those actors.
package registry

import (
	"sort"
	"sync"

	"github.com/hupe1980/actormesh/core"
)

// Registry maps actor types to their immutable specs. Safe for concurrent
// use.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*core.ActorSpec
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{specs: make(map[string]*core.ActorSpec)}
}

// Register validates the spec and adds or replaces it under its actor type.
func (r *Registry) Register(spec *core.ActorSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.ActorType] = spec
	return nil
}

// Get resolves an actor type to its spec, failing with SpecNotFoundError
// when unregistered.
func (r *Registry) Get(actorType string) (*core.ActorSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[actorType]
	if !ok {
		return nil, &core.SpecNotFoundError{ActorType: actorType}
	}
	return spec, nil
}

// Types returns the registered actor types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.specs))
	for t := range r.specs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
