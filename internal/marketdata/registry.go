package marketdata

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps venue names to their services.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
}

// NewRegistry returns a registry holding services.
func NewRegistry(services ...Service) (*Registry, error) {
	r := &Registry{services: make(map[string]Service, len(services))}
	for _, s := range services {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds s under its venue name. Names are case-insensitive and must be unique.
func (r *Registry) Register(s Service) error {
	name := strings.ToLower(s.Venue())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[name]; ok {
		return fmt.Errorf("venue %q already registered", name)
	}
	r.services[name] = s
	return nil
}

// Get returns the service for venue.
func (r *Registry) Get(venue string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[strings.ToLower(venue)]
	return s, ok
}

// Venues returns the sorted registered venue names.
func (r *Registry) Venues() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
