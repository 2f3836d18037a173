package locking

import (
	"sort"
	"sync"
)

// Registry owns the process's named locks. It is constructed once at
// startup and injected into components that need admission control; lock
// instances are singletons per resource name for the process lifetime.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*Lock
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*Lock)}
}

// Get returns the lock registered under name, creating it with the given
// priority on first use. The priority of an existing lock is not changed.
func (r *Registry) Get(name string, priority Priority) *Lock {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.locks[name]; ok {
		return l
	}
	l := NewLock(name, priority)
	r.locks[name] = l
	return l
}

// Report returns a snapshot of every registered lock, sorted by name.
// Surfaced on the /v1/locks diagnostic endpoint.
func (r *Registry) Report() []Info {
	r.mu.Lock()
	locks := make([]*Lock, 0, len(r.locks))
	for _, l := range r.locks {
		locks = append(locks, l)
	}
	r.mu.Unlock()

	infos := make([]Info, 0, len(locks))
	for _, l := range locks {
		infos = append(infos, l.Snapshot())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
