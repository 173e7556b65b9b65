// Package toolregistry is the name -> Tool map described in spec.md §4.B.
// It is grounded on the teacher's internal/app/toolregistry/registry.go:
// the same static-map-plus-mutex shape, the same cached/double-checked
// schema listing, and the same "built-ins cannot be unregistered" rule.
package toolregistry

import (
	"sort"
	"sync"

	"skillmint/internal/core"
)

// Registry holds every registered Tool and serves schema listings to the
// agent loop and to individual skill/task narrowings.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]core.Tool
	builtins map[string]struct{}

	cacheMu     sync.Mutex
	cachedDefs  []core.ToolSchema
	cacheDirty  bool
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{
		tools:      make(map[string]core.Tool),
		builtins:   make(map[string]struct{}),
		cacheDirty: true,
	}
}

// Register adds or replaces a tool under its own Name(). asBuiltin marks
// the tool as non-removable via Unregister.
func (r *Registry) Register(t core.Tool, asBuiltin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
	if asBuiltin {
		r.builtins[t.Name()] = struct{}{}
	}
	r.markDirty()
}

// Unregister removes a tool by name. Built-in tools refuse removal.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builtins[name]; ok {
		return core.NewError(core.KindBadRequest, "tool %q is a built-in and cannot be unregistered", name)
	}
	if _, ok := r.tools[name]; !ok {
		return core.NewError(core.KindNotFound, "tool %q is not registered", name)
	}
	delete(r.tools, name)
	r.markDirty()
	return nil
}

// Get returns the named tool, or (nil, false) if absent.
func (r *Registry) Get(name string) (core.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// markDirty must be called with r.mu held.
func (r *Registry) markDirty() {
	r.cacheMu.Lock()
	r.cacheDirty = true
	r.cacheMu.Unlock()
}

// List returns every registered tool's schema, sorted by name. The sorted
// slice is cached and rebuilt only when the tool set has changed since
// the last call (double-checked locking, same pattern as the teacher's
// registry.List()).
func (r *Registry) List() []core.ToolSchema {
	r.cacheMu.Lock()
	dirty := r.cacheDirty
	r.cacheMu.Unlock()
	if !dirty {
		r.cacheMu.Lock()
		defer r.cacheMu.Unlock()
		if !r.cacheDirty {
			return r.cachedDefs
		}
	}

	r.mu.RLock()
	defs := make([]core.ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, core.Schema(t))
	}
	r.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	r.cacheMu.Lock()
	r.cachedDefs = defs
	r.cacheDirty = false
	r.cacheMu.Unlock()

	return defs
}

// ListAllowed returns the schema subset whose names are present in
// allowed. A nil allowed set means no restriction (equivalent to List()).
func (r *Registry) ListAllowed(allowed map[string]struct{}) []core.ToolSchema {
	full := r.List()
	if allowed == nil {
		return full
	}
	out := make([]core.ToolSchema, 0, len(allowed))
	for _, d := range full {
		if _, ok := allowed[d.Name]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Names returns every registered tool name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
