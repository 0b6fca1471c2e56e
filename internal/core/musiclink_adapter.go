package core

import (
	"context"

	"soundbridge/pkg/fuzzy"
	"soundbridge/pkg/musiclink"
)

// musicLinkAdapter adapts a pkg/musiclink resolver to a LinkResolver.
type musicLinkAdapter struct {
	resolver musiclink.Resolver
}

// NewMusicLinkResolvers wraps every resolver of a musiclink manager.
func NewMusicLinkResolvers(manager *musiclink.Manager) Links {
	resolvers := manager.Resolvers()
	links := make(Links, 0, len(resolvers))
	for _, resolver := range resolvers {
		links = append(links, NewMusicLinkAdapter(resolver))
	}
	return links
}

// NewMusicLinkAdapter wraps a single musiclink resolver.
func NewMusicLinkAdapter(resolver musiclink.Resolver) LinkResolver {
	return &musicLinkAdapter{resolver: resolver}
}

func (a *musicLinkAdapter) Identifier() string {
	return a.resolver.Provider()
}

func (a *musicLinkAdapter) CanResolve(url string) bool {
	return a.resolver.CanResolve(url)
}

// ResolveTrack resolves a music link to a track tagged with the link's provider.
func (a *musicLinkAdapter) ResolveTrack(ctx context.Context, url string, rc RequestContext) (*Track, error) {
	info, err := a.resolver.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}

	link := info.URL
	if link == "" {
		link = url
	}
	var duration string
	if info.Duration > 0 {
		duration = FormatTimecode(info.Duration.Milliseconds())
	}
	return &Track{
		Title:       info.Title,
		CleanTitle:  fuzzy.Title(info.Title),
		URL:         link,
		Duration:    duration,
		Thumbnail:   info.ThumbnailURL,
		Author:      info.Artist,
		RequestedBy: rc.RequestedBy,
		Source:      info.Provider,
		Raw:         info,
	}, nil
}

// CreateBridgeQuery searches by normalized artist and title.
func (a *musicLinkAdapter) CreateBridgeQuery(track *Track) string {
	if track == nil {
		return ""
	}
	return fuzzy.Query(track.Author, track.Title)
}
