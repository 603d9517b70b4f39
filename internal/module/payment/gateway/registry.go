package gateway

import (
	"fmt"
	"sync"
)

// Registry holds the configured payment gateways keyed by name.
type Registry struct {
	mu        sync.RWMutex
	gateways  map[string]Gateway
	defaultGW string
}

// NewRegistry creates an empty gateway registry.
func NewRegistry() *Registry {
	return &Registry{
		gateways: make(map[string]Gateway),
	}
}

// Register adds a gateway. The first registered gateway becomes the
// default.
func (r *Registry) Register(gw Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[gw.Name()] = gw
	if r.defaultGW == "" {
		r.defaultGW = gw.Name()
	}
}

// Get returns the gateway with the given name.
func (r *Registry) Get(name string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gw, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("unknown payment gateway: %s", name)
	}
	return gw, nil
}

// Default returns the default gateway.
func (r *Registry) Default() Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gateways[r.defaultGW]
}

// Names returns the registered gateway names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	return names
}
