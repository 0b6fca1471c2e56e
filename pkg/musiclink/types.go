// Package musiclink reads track metadata from links of providers that cannot be streamed
// directly, so that the track can be searched for on a provider that can.
package musiclink

import (
	"context"
	"time"
)

// Provider names reported in TrackInfo.Provider.
const (
	ProviderYouTube    = "youtube"
	ProviderAppleMusic = "applemusic"
)

// TrackInfo holds extracted track information from a provider link.
type TrackInfo struct {
	Provider     string        // Provider that served the link.
	URL          string        // Canonical link of the track.
	Title        string        // Track title without video decorations.
	Artist       string        // Artist name(s).
	ISRC         string        // International Standard Recording Code (if available).
	ThumbnailURL string        // Cover or video thumbnail.
	Duration     time.Duration // Zero when the provider does not report it.
}

// Resolver resolves links of one provider to track information.
type Resolver interface {
	// Provider returns the provider name, used as the track source.
	Provider() string

	// CanResolve checks if this resolver can handle the given URL.
	CanResolve(url string) bool

	// Resolve extracts track information from a provider URL.
	Resolve(ctx context.Context, url string) (*TrackInfo, error)
}
