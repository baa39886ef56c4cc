// Package compiler defines the adapter interface every toolchain backend
// implements, plus a global registry adapters are looked up by name.
package compiler

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dehydratedfish/bricks/internal/model"
)

// Adapter is a named strategy providing command generation and diagnostic
// classification for a specific toolchain. GenerateCommands only computes
// entity.BuildCommands; it never executes anything. ProcessDiagnostics
// classifies a single command's captured output into entity.Diagnostics.
type Adapter interface {
	Name() string
	GenerateCommands(bp *model.Blueprint, entity *model.Entity) error
	ProcessDiagnostics(entity *model.Entity, output string)
}

// Registry maps compiler names to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds adapter under its own Name(). Panics if that name is
// already registered, since two adapters silently shadowing each other is
// always a programming error, never a runtime condition to recover from.
func (r *Registry) Register(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; exists {
		panic(fmt.Sprintf("compiler: adapter %q already registered", name))
	}
	r.adapters[name] = adapter
}

// Get retrieves an adapter by name. Returns nil, false if unregistered.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns all registered adapter names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry is the process-wide adapter registry; compiler
// implementations register themselves into it from an init().
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds adapter to the default registry.
func Register(adapter Adapter) {
	defaultRegistry.Register(adapter)
}

// Get retrieves an adapter from the default registry.
func Get(name string) (Adapter, bool) {
	return defaultRegistry.Get(name)
}
