package workflow

import (
	"sync"

	apperrors "workflow/pkg/errors"
)

// Registry holds the rules an Engine evaluates. It is filled at startup and
// frozen before the first event is handled.
type Registry struct {
	mu     sync.RWMutex
	rules  []Rule
	index  map[string]int
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register validates and adds rule. A failure affects only this rule.
func (r *Registry) Register(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return apperrors.Configurationf("name", "registry is frozen, cannot register %q", rule.Name)
	}
	if _, exists := r.index[rule.Name]; exists {
		return apperrors.Configurationf("name", "rule %q is already registered", rule.Name)
	}

	r.index[rule.Name] = len(r.rules)
	r.rules = append(r.rules, rule.clone())
	return nil
}

// Freeze rejects any further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Rules returns copies of the registered rules in registration order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rule, len(r.rules))
	for i, rule := range r.rules {
		out[i] = rule.clone()
	}
	return out
}

func (r *Registry) Get(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return Rule{}, false
	}
	return r.rules[i].clone(), true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Events lists the distinct event names the registered rules subscribe to.
func (r *Registry) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, rule := range r.rules {
		name := EventName(rule.Trigger)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
