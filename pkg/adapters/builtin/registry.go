// Package builtin provides the plugins compiled into mdpipe.
package builtin

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/mdpipe/pkg/engine"
)

// Prefix is the optional prefix of plugin names, as in "mdpipe-gfm".
const Prefix = "mdpipe-"

// Factory builds a fresh plugin instance.
type Factory func() engine.Plugin

// Registry manages the available builtin plugins.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a plugin under name and any aliases.
// An existing entry with the same name is overwritten.
func (r *Registry) Register(name string, f Factory, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range append([]string{name}, aliases...) {
		r.factories[Normalize(n)] = f
	}
}

// Lookup returns a new instance of the plugin registered under name.
func (r *Registry) Lookup(name string) (engine.Plugin, bool) {
	r.mu.RLock()
	f, ok := r.factories[Normalize(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return f(), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[Normalize(name)]
	return ok
}

// Get is Lookup with an error for unknown names.
func (r *Registry) Get(name string) (engine.Plugin, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("builtin plugin not found: %s", name)
	}
	return p, nil
}

// Names lists the registered names, aliases included, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Normalize lower-cases name and strips Prefix.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(name, Prefix)
}
