// Package traits holds the trait definitions that mixin calls expand.
package traits

import (
	"slices"
	"sync"

	"bennypowers.dev/excss/internal/parseobject"
)

// Registry maps trait identifiers to their definitions. There is one flat
// namespace; importing a trait that already exists replaces it.
type Registry struct {
	traits map[string]*parseobject.Trait
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		traits: make(map[string]*parseobject.Trait),
	}
}

// Get returns the trait named ident
func (r *Registry) Get(ident string) (*parseobject.Trait, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.traits[ident]
	return t, ok
}

// Set defines or replaces one trait
func (r *Registry) Set(ident string, t *parseobject.Trait) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traits[ident] = t
}

// Import adds every trait of po, replacing existing traits of the same name
func (r *Registry) Import(po *parseobject.ParseObject) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ident, t := range po.Traits.All() {
		r.traits[ident] = t
	}
}

// Names returns the identifiers of all traits, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.traits))
	for ident := range r.traits {
		names = append(names, ident)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of traits
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.traits)
}

// Clear removes every trait
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traits = make(map[string]*parseobject.Trait)
}
