package task

import (
	"sort"
	"sync"
)

// Registry manages the built-in task set fixed at process start.
type Registry struct {
	mu    sync.RWMutex
	tasks Set
}

// NewRegistry creates a registry seeded with the given definitions.
func NewRegistry(defs ...*Definition) *Registry {
	r := &Registry{tasks: make(Set, len(defs))}
	for _, def := range defs {
		r.tasks[def.Name] = def
	}
	return r
}

// Get retrieves a task by name or alias.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks.Lookup(name)
}

// Register adds or updates a task.
func (r *Registry) Register(def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[def.Name] = def
}

// Snapshot returns a copy of the registered set, safe for per-invocation
// merging without disturbing the registry.
func (r *Registry) Snapshot() Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(Set, len(r.tasks))
	for name, def := range r.tasks {
		snapshot[name] = def
	}
	return snapshot
}

// List returns all registered tasks sorted by name.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]*Definition, 0, len(r.tasks))
	for _, def := range r.tasks {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
