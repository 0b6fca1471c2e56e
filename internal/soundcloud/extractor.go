// Package soundcloud is the SoundCloud extractor: it resolves track, share and set URLs or
// free-text searches into the host's track model, suggests related tracks, bridges tracks
// found by other providers and resolves playable streams.
package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"soundbridge/internal/core"
	scapi "soundbridge/pkg/soundcloud"
)

const (
	// Identifier names this extractor in the host registry.
	Identifier = "soundcloud"
	// SourceName is the source tag on every track this extractor produces.
	SourceName = "soundcloud"

	// ProtocolSearch forces a search. Handle treats SoundCloud track, share and set URLs
	// routed through it as search text instead of resolving them.
	ProtocolSearch = "scsearch"
	// ProtocolSoundCloud routes a query to this extractor without forcing a search.
	ProtocolSoundCloud = "soundcloud"

	// RelatedLimit is the number of related tracks requested for auto-play.
	RelatedLimit = 5
)

// Fetch operation names, used for logs and metrics.
const (
	opGetTrack    = "get_track"
	opGetPlaylist = "get_playlist"
	opSearch      = "search"
	opSearchAlt   = "search_alt"
	opRelated     = "related"
)

// Outcomes reported to the Recorder.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	// ErrInvalidTrack is returned when Stream or Bridge get something that is not a
	// SoundCloud track record.
	ErrInvalidTrack = errors.New("invalid track object")
	// ErrNoStream is returned when a stream could not be extracted from a track.
	ErrNoStream = errors.New("could not extract stream from this track source")
	// ErrNoBridgeCandidate is returned when a bridge search found nothing playable.
	ErrNoBridgeCandidate = errors.New("no bridge candidate found")
	// ErrEmptyResult is the cause recorded when every remote call succeeded but returned nothing.
	ErrEmptyResult = errors.New("no results")
)

// API is the part of the SoundCloud client the extractor uses.
type API interface {
	GetTrack(ctx context.Context, url string) (*scapi.Track, error)
	GetPlaylist(ctx context.Context, url string) (*scapi.Playlist, error)
	SearchTracks(ctx context.Context, query string) ([]*scapi.Track, error)
	SearchTracksAlt(ctx context.Context, query string) ([]*scapi.Track, error)
	RelatedTracks(ctx context.Context, url string, limit int) ([]*scapi.Track, error)
	StreamURL(ctx context.Context, url string) (string, error)
	StreamBytes(ctx context.Context, url string) (io.ReadCloser, error)
}

// Recorder receives fetch, bridge and stream outcomes.
type Recorder interface {
	ObserveFetch(operation, outcome string)
	ObserveBridge(outcome string)
	ObserveStream(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(string, string) {}
func (nopRecorder) ObserveBridge(string) {}
func (nopRecorder) ObserveStream(string, time.Duration) {}

// Options configures an Extractor. API is required.
type Options struct {
	API        API
	StreamMode core.StreamMode
	Logger     *zap.Logger
	Recorder   Recorder
}

// Extractor implements core.Extractor for SoundCloud.
type Extractor struct {
	api        API
	streamMode core.StreamMode
	logger     *zap.Logger
	recorder   Recorder

	mu        sync.RWMutex
	protocols []string
}

var _ core.Extractor = (*Extractor)(nil)

// New creates an extractor over an existing API client.
func New(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	mode := opts.StreamMode
	if mode == "" {
		mode = core.StreamModeURL
	}

	return &Extractor{
		api:        opts.API,
		streamMode: mode,
		logger:     logger.Named("soundcloud"),
		recorder:   recorder,
	}
}

// NewFromConfig creates an extractor backed by the public SoundCloud API.
func NewFromConfig(cfg core.SoundCloudConfig, logger *zap.Logger, recorder Recorder) (*Extractor, error) {
	client, err := scapi.New(scapi.Options{
		ClientID:   cfg.ClientID,
		OAuthToken: cfg.OAuthToken,
		Proxy:      cfg.Proxy,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SoundCloud client: %w", err)
	}

	return New(Options{
		API:        client,
		StreamMode: cfg.StreamMode,
		Logger:     logger,
		Recorder:   recorder,
	}), nil
}

func (e *Extractor) Identifier() string {
	return Identifier
}

// Activate registers the extractor's protocols.
func (e *Extractor) Activate(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.protocols = []string{ProtocolSearch, ProtocolSoundCloud}
	return nil
}

// Deactivate clears the extractor's protocols.
func (e *Extractor) Deactivate(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.protocols = nil
	return nil
}

func (e *Extractor) Protocols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.protocols...)
}

func (e *Extractor) Validate(query string) bool {
	return Validate(query)
}

// CreateBridgeQuery lets other providers search for a SoundCloud track by its title when the
// uploader already wrote it as "Artist - Title".
func (e *Extractor) CreateBridgeQuery(track *core.Track) string {
	if track == nil || !strings.Contains(track.Title, " - ") {
		return ""
	}
	return track.Title
}

// Handle resolves query. It never fails: an empty result carries the reason in Cause.
func (e *Extractor) Handle(ctx context.Context, query string, sc core.SearchContext) core.SearchResult {
	query = strings.TrimSpace(query)
	rc := sc.RequestContext

	if sc.Protocol == ProtocolSearch {
		return e.search(ctx, query, rc)
	}

	switch Classify(query) {
	case QueryPlaylist:
		f := fetch(ctx, e, opGetPlaylist, query, func(ctx context.Context) (*scapi.Playlist, error) {
			return e.api.GetPlaylist(ctx, query)
		})
		if f.Value == nil {
			return emptyResult(causeOf(f.Err, query))
		}
		playlist := MapPlaylist(f.Value, rc)
		return core.SearchResult{Playlist: playlist, Tracks: playlist.Tracks}

	case QueryTrack, QueryShortenedTrack:
		f := fetch(ctx, e, opGetTrack, query, func(ctx context.Context) (*scapi.Track, error) {
			return e.api.GetTrack(ctx, query)
		})
		if f.Value == nil {
			return emptyResult(causeOf(f.Err, query))
		}
		return core.SearchResult{Tracks: []*core.Track{MapTrack(f.Value, rc, nil)}}

	default:
		return e.search(ctx, query, rc)
	}
}

func (e *Extractor) search(ctx context.Context, query string, rc core.RequestContext) core.SearchResult {
	raw, cause := e.searchRaw(ctx, query)
	if len(raw) == 0 {
		return emptyResult(cause)
	}

	tracks := mapTracks(streamableOnly(FilterPreviews(raw)), rc)
	if len(tracks) == 0 {
		return emptyResult(fmt.Errorf("%w: no streamable tracks for %q", ErrEmptyResult, query))
	}
	return core.SearchResult{Tracks: tracks}
}

// searchRaw runs the primary search and falls back to the alternate search when it yields
// nothing. The returned error explains an empty slice.
func (e *Extractor) searchRaw(ctx context.Context, query string) ([]*scapi.Track, error) {
	primary := fetch(ctx, e, opSearch, query, func(ctx context.Context) ([]*scapi.Track, error) {
		return e.api.SearchTracks(ctx, query)
	})
	if len(primary.Value) > 0 {
		return primary.Value, nil
	}

	alt := fetch(ctx, e, opSearchAlt, query, func(ctx context.Context) ([]*scapi.Track, error) {
		return e.api.SearchTracksAlt(ctx, query)
	})
	if len(alt.Value) > 0 {
		return alt.Value, nil
	}

	return nil, causeOf(errors.Join(primary.Err, alt.Err), query)
}

// GetRelatedTracks suggests up to RelatedLimit tracks to play after track, preferring ones
// not in history. The requester is carried over from track.
func (e *Extractor) GetRelatedTracks(ctx context.Context, track *core.Track, history core.History) core.SearchResult {
	if track == nil || track.URL == "" {
		return emptyResult(ErrInvalidTrack)
	}

	f := fetch(ctx, e, opRelated, track.URL, func(ctx context.Context) ([]*scapi.Track, error) {
		return e.api.RelatedTracks(ctx, track.URL, RelatedLimit)
	})
	if len(f.Value) == 0 {
		return emptyResult(causeOf(f.Err, track.URL))
	}

	unique := make([]*scapi.Track, 0, len(f.Value))
	for _, t := range FilterPreviews(f.Value) {
		if t != nil && (history == nil || !history.Contains(t.PermalinkURL)) {
			unique = append(unique, t)
		}
	}
	if len(unique) == 0 {
		unique = f.Value
	}

	rc := core.RequestContext{RequestedBy: track.RequestedBy}
	return core.SearchResult{Tracks: mapTracks(unique, rc)}
}

// causeOf returns err, or ErrEmptyResult when the remote side answered with nothing.
func causeOf(err error, subject string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%w for %q", ErrEmptyResult, subject)
}

func emptyResult(cause error) core.SearchResult {
	return core.SearchResult{Tracks: []*core.Track{}, Cause: cause}
}
