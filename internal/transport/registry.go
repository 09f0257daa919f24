package transport

import (
	"sort"
	"sync"
)

// Registry stores carriers by name.
type Registry struct {
	repo map[string]Transport
	mu   sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		repo: make(map[string]Transport),
	}
}

// Register adds a carrier, replacing any with the same name.
func (r *Registry) Register(t Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repo[t.Name()] = t
}

func (r *Registry) Get(name string) (Transport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.repo[name]
	return t, ok
}

// Statuses returns a snapshot sorted by name.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	entries := make([]Transport, 0, len(r.repo))
	for _, t := range r.repo {
		entries = append(entries, t)
	}
	r.mu.RUnlock()

	list := make([]Status, 0, len(entries))
	for _, t := range entries {
		st := t.Status()
		st.Name = t.Name()
		list = append(list, st)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}
