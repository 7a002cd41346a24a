package runtime

import (
	"chat-hub/contract"
	"chat-hub/errors"
	"fmt"
	"sync"
)

// Registry holds the adapter set by name, in registration order.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]contract.Adapter
	adapters []contract.Adapter
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]contract.Adapter)}
}

// Register adds adapter. Names are unique across the set.
func (r *Registry) Register(adapter contract.Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%q: %w", name, errors.ErrDuplicateAdapter)
	}
	r.byName[name] = adapter
	r.adapters = append(r.adapters, adapter)
	return nil
}

func (r *Registry) Get(name string) (contract.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.byName[name]
	return adapter, ok
}

// All returns a copy of the set in registration order.
func (r *Registry) All() []contract.Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]contract.Adapter(nil), r.adapters...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}
