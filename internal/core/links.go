package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLink is returned when no link resolver recognizes a URL.
var ErrUnsupportedLink = errors.New("unsupported link")

// LinkResolver turns a link of a provider that cannot be streamed directly into a track that
// an extractor can bridge. It is also the SourceExtractor passed to Bridge for that track.
type LinkResolver interface {
	SourceExtractor
	CanResolve(url string) bool
	ResolveTrack(ctx context.Context, url string, rc RequestContext) (*Track, error)
}

// Links is an ordered set of link resolvers.
type Links []LinkResolver

// Resolve resolves url with the first resolver that recognizes it and returns that resolver
// as the track's source.
func (l Links) Resolve(ctx context.Context, url string, rc RequestContext) (*Track, SourceExtractor, error) {
	url = strings.TrimSpace(url)
	for _, resolver := range l {
		if resolver == nil || !resolver.CanResolve(url) {
			continue
		}
		track, err := resolver.ResolveTrack(ctx, url, rc)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", resolver.Identifier(), err)
		}
		return track, resolver, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedLink, url)
}

// CanResolve reports whether any resolver recognizes url.
func (l Links) CanResolve(url string) bool {
	for _, resolver := range l {
		if resolver != nil && resolver.CanResolve(url) {
			return true
		}
	}
	return false
}
