package ai

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Router delegates to the active provider, which can be switched at runtime.
type Router struct {
	mu        sync.RWMutex
	providers map[ProviderType]Completer
	active    ProviderType
}

func NewRouter(active ProviderType, providers map[ProviderType]Completer) (*Router, error) {
	r := &Router{providers: providers}
	if err := r.SetActive(active); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Router) Name() string { return string(r.Active()) }

func (r *Router) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	r.mu.RLock()
	p := r.providers[r.active]
	r.mu.RUnlock()
	return p.Complete(ctx, req)
}

func (r *Router) Active() ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive switches the provider used by subsequent calls.
func (r *Router) SetActive(p ProviderType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[p]; !ok {
		return fmt.Errorf("unknown AI provider %q", p)
	}
	r.active = p
	return nil
}

func (r *Router) Provider(p ProviderType) (Completer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.providers[p]
	return c, ok
}

// Available lists the registered providers in name order.
func (r *Router) Available() []ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ProviderType, 0, len(r.providers))
	for p := range r.providers {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
