package core

import (
	"context"
	"io"
	"sync"
)

// StreamMode selects what an extractor hands back from Stream.
type StreamMode string

const (
	// StreamModeURL returns a direct, short-lived audio URL.
	StreamModeURL StreamMode = "url"
	// StreamModeBytes returns an open audio byte stream.
	StreamModeBytes StreamMode = "bytes"
)

// RequestContext records who asked for a track.
type RequestContext struct {
	RequestedBy string
}

// SearchContext is passed to Handle. Protocol is set when the host routed the query through
// an explicit protocol prefix such as "scsearch:".
type SearchContext struct {
	RequestContext
	Protocol string
}

// Author is the owner of a playlist.
type Author struct {
	Name string
	URL  string
}

// Track is the host's normalized track record.
type Track struct {
	Title       string
	CleanTitle  string
	URL         string
	Duration    string
	Description string
	Thumbnail   string
	Views       int64
	Author      string
	RequestedBy string
	Source      string

	// Raw is the provider's own record, opaque to the host.
	Raw any
	// Playlist is a non-owning back reference to the playlist this track was loaded from.
	Playlist *Playlist

	mu            sync.Mutex
	bridgedTrack  *Track
	bridgedSource string
}

// SetBridge records that t is played through bridged, found by the provider identified by source.
func (t *Track) SetBridge(bridged *Track, source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bridgedTrack = bridged
	t.bridgedSource = source
}

// Bridged returns the bridged counterpart and the identifier of the provider that found it.
func (t *Track) Bridged() (*Track, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bridgedTrack, t.bridgedSource
}

// Playlist is the host's normalized playlist record. It owns its tracks.
type Playlist struct {
	ID          string
	Title       string
	Description string
	Thumbnail   string
	Type        string
	Source      string
	Author      Author
	URL         string
	Tracks      []*Track
	Raw         any
}

// SearchResult is what Handle and GetRelatedTracks return. Playlist is nil unless a playlist
// was resolved. Cause is nil on success and records why the result is empty otherwise.
type SearchResult struct {
	Playlist *Playlist
	Tracks   []*Track
	Cause    error
}

// Empty reports whether the result carries no tracks.
func (r SearchResult) Empty() bool {
	return len(r.Tracks) == 0
}

// Streamable is a playable handle: URL in url mode, Body (plus the URL it was opened from)
// in bytes mode. The receiver closes Body.
type Streamable struct {
	URL  string
	Body io.ReadCloser
}

// History answers whether a URL has already been played in a queue.
type History interface {
	Contains(url string) bool
}

// SourceExtractor is the capability a provider exposes to bridge resolvers of other providers.
// CreateBridgeQuery returns "" when the provider has no better query than "<author> - <title>".
type SourceExtractor interface {
	Identifier() string
	CreateBridgeQuery(track *Track) string
}

// Extractor is a source provider plugged into the host.
type Extractor interface {
	SourceExtractor

	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
	Protocols() []string

	Validate(query string) bool
	Handle(ctx context.Context, query string, sc SearchContext) SearchResult
	GetRelatedTracks(ctx context.Context, track *Track, history History) SearchResult
	// Bridge finds a playable equivalent of a track from another provider. A non-nil error
	// means "not here": the host moves on to the next provider.
	Bridge(ctx context.Context, track *Track, source SourceExtractor) (*Streamable, error)
	// Stream resolves a playable handle for one of this provider's tracks. Errors are final.
	Stream(ctx context.Context, track *Track) (*Streamable, error)
}
