package diagnostics

import (
	"fmt"
	"sync"
)

// Info describes a registered collector.
type Info struct {
	Key  string `json:"key"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registry holds collectors under unique keys, in registration order.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
	order      []string
}

func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Collector)}
}

func (r *Registry) Register(key string, c Collector) error {
	if key == "" {
		return fmt.Errorf("collector key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collectors[key]; exists {
		return fmt.Errorf("collector %q already registered", key)
	}
	r.collectors[key] = c
	r.order = append(r.order, key)
	return nil
}

// Get finds a collector by registry key or by collector id.
func (r *Registry) Get(id string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.collectors[id]; ok {
		return c, true
	}
	for _, key := range r.order {
		if c := r.collectors[key]; c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.order))
	for _, key := range r.order {
		c := r.collectors[key]
		out = append(out, Info{Key: key, ID: c.ID(), Name: c.Name()})
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
