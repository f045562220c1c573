package game

import (
	"fmt"
	"sync"
)

// Registry holds all registered game engines. Adding a game type is a
// registration at startup, not a code change anywhere else.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// Register adds an engine. Panics on duplicate names.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := e.Info().Name
	if _, exists := r.engines[name]; exists {
		panic(fmt.Sprintf("game %q already registered", name))
	}
	r.engines[name] = e
}

// Get returns an engine by game type name.
func (r *Registry) Get(name string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[name]
	return e, ok
}

// List returns info for all registered game types.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.engines))
	for _, e := range r.engines {
		infos = append(infos, e.Info())
	}
	return infos
}
