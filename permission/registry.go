package permission

import (
	"errors"
	"sync"
)

// Registry records the capability names an application declares so that
// route guards can reject typos at construction time instead of silently
// denying every request.
type Registry struct {
	mu     sync.RWMutex
	names  map[string]struct{}
	frozen bool
}

// NewRegistry creates an empty, unfrozen Registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register declares a capability name. Must be called before [Registry.Freeze].
func (r *Registry) Register(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.New("registry frozen")
	}
	if name == "" {
		return errors.New("capability name cannot be empty")
	}
	if _, exists := r.names[name]; exists {
		return errors.New("capability already registered")
	}

	r.names[name] = struct{}{}
	return nil
}

// Has reports whether name was declared.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

// Undeclared returns the members of required that were never registered.
// An empty registry declares nothing and accepts everything.
func (r *Registry) Undeclared(required Set) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.names) == 0 {
		return nil
	}
	var out []string
	for name := range required {
		if _, ok := r.names[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of declared capabilities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
