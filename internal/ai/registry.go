package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownProvider is returned by Get for a name nothing registered under.
var ErrUnknownProvider = errors.New("unknown ai provider")

// ProviderFactory builds a Provider for the given model name. An empty model
// means the factory's configured default.
type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry maps provider names to factories. Names are case-insensitive.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[canonical(name)] = f
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[canonical(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return f(ctx, model)
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
