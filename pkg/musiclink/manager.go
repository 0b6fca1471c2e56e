package musiclink

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoResolver is returned when no resolver handles a URL.
var ErrNoResolver = errors.New("no resolver found for URL")

// Manager coordinates multiple music link resolvers to handle various provider URLs.
type Manager struct {
	resolvers []Resolver
}

// NewManager creates a manager with all supported resolvers.
func NewManager(opts ...Option) *Manager {
	return NewManagerWith(
		NewYouTubeResolver(opts...),
		NewAppleMusicResolver(opts...),
	)
}

// NewManagerWith creates a manager over the given resolvers, tried in order.
func NewManagerWith(resolvers ...Resolver) *Manager {
	return &Manager{resolvers: resolvers}
}

// Resolve resolves url with the first resolver that accepts it.
func (m *Manager) Resolve(ctx context.Context, url string) (*TrackInfo, error) {
	resolver, ok := m.ResolverFor(url)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoResolver, url)
	}
	return resolver.Resolve(ctx, url)
}

// ResolverFor returns the resolver responsible for url.
func (m *Manager) ResolverFor(url string) (Resolver, bool) {
	for _, resolver := range m.resolvers {
		if resolver.CanResolve(url) {
			return resolver, true
		}
	}
	return nil, false
}

// CanResolve checks if any resolver can handle the given URL.
func (m *Manager) CanResolve(url string) bool {
	_, ok := m.ResolverFor(url)
	return ok
}

// Resolvers returns the resolvers in resolution order.
func (m *Manager) Resolvers() []Resolver {
	return append([]Resolver(nil), m.resolvers...)
}

// Providers lists the provider names in resolution order.
func (m *Manager) Providers() []string {
	names := make([]string, 0, len(m.resolvers))
	for _, resolver := range m.resolvers {
		names = append(names, resolver.Provider())
	}
	return names
}
