// Package providers defines the cloud provider abstraction and its registry.
package providers

import (
	"context"
	"fmt"

	"github.com/yairfalse/kartta/scan"
)

// CloudProvider is one cloud account ready to be scanned.
type CloudProvider interface {
	// Name returns the provider identifier ("aws").
	Name() string
	// ListRegions enumerates the regions enabled for the account. A
	// failure here aborts the run: without regions there is nothing
	// to fan out over.
	ListRegions(ctx context.Context) ([]string, error)
	// Scanners returns one RegionScanner per supported service.
	Scanners() []scan.RegionScanner
}

// ProviderFactory creates a provider instance.
type ProviderFactory func(ctx context.Context) (CloudProvider, error)

// Registry of available providers
var factories = make(map[string]ProviderFactory)

// RegisterProvider registers a new provider factory.
func RegisterProvider(name string, factory ProviderFactory) {
	factories[name] = factory
}

// GetProvider creates a provider instance by name.
func GetProvider(ctx context.Context, name string) (CloudProvider, error) {
	factory, exists := factories[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	return factory(ctx)
}

// ListProviders returns available provider names.
func ListProviders() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
