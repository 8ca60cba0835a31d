package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yairfalse/kartta/types"
)

// RegionScanner enumerates one service's resources in one region.
// Implementations must be safe for concurrent ScanRegion calls, since
// the conductor runs regions in parallel.
type RegionScanner interface {
	// Service returns the service name the scanner covers ("ec2", "s3").
	Service() string
	// Global reports whether the service is region-less. Global
	// scanners are invoked once with types.GlobalRegion.
	Global() bool
	// ScanRegion returns every discovered resource in the region. An
	// empty slice with nil error means the region genuinely has none.
	ScanRegion(ctx context.Context, region string) ([]types.Resource, error)
}

// Registry holds the known scanners keyed by service name.
type Registry struct {
	mu       sync.RWMutex
	scanners map[string]RegionScanner
}

// NewRegistry creates an empty scanner registry.
func NewRegistry() *Registry {
	return &Registry{scanners: make(map[string]RegionScanner)}
}

// Register adds a scanner, rejecting duplicate service names.
func (r *Registry) Register(s RegionScanner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := s.Service()
	if _, exists := r.scanners[name]; exists {
		return fmt.Errorf("scanner %q already registered", name)
	}
	r.scanners[name] = s
	return nil
}

// Get returns the scanner for a service name.
func (r *Registry) Get(service string) (RegionScanner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scanners[service]
	return s, ok
}

// Names returns the registered service names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
