package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"soundbridge/internal/core"
	"soundbridge/pkg/fuzzy"
)

// StreamError is returned by Stream. It unwraps to ErrInvalidTrack, ErrNoStream or the
// remote cause.
type StreamError struct {
	URL string
	Err error
}

func (e *StreamError) Error() string {
	if e.URL == "" {
		return "soundcloud stream: " + e.Err.Error()
	}
	return fmt.Sprintf("soundcloud stream %s: %v", e.URL, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Stream resolves a playable handle for a SoundCloud track. Unlike Handle it reports failure,
// because the host has nothing left to fall back to at this point.
func (e *Extractor) Stream(ctx context.Context, track *core.Track) (*core.Streamable, error) {
	if !recognized(track) {
		return nil, &StreamError{Err: ErrInvalidTrack}
	}

	start := time.Now()
	stream, err := e.openStream(ctx, track.URL)
	if err != nil {
		e.recorder.ObserveStream(OutcomeError, time.Since(start))
		e.logger.Warn("Stream extraction failed", zap.String("url", track.URL), zap.Error(err))
		return nil, &StreamError{URL: track.URL, Err: err}
	}

	e.recorder.ObserveStream(OutcomeOK, time.Since(start))
	return stream, nil
}

func (e *Extractor) openStream(ctx context.Context, trackURL string) (*core.Streamable, error) {
	if e.streamMode == core.StreamModeBytes {
		body, err := e.api.StreamBytes(ctx, trackURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoStream, err)
		}
		if body == nil {
			return nil, ErrNoStream
		}
		return &core.Streamable{URL: trackURL, Body: body}, nil
	}

	streamURL, err := e.api.StreamURL(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoStream, err)
	}
	if streamURL == "" {
		return nil, ErrNoStream
	}
	return &core.Streamable{URL: streamURL}, nil
}

// recognized reports whether track is a track record pointing at a SoundCloud track URL.
func recognized(track *core.Track) bool {
	if track == nil || track.URL == "" {
		return false
	}
	switch Classify(track.URL) {
	case QueryTrack, QueryShortenedTrack:
		return true
	default:
		return false
	}
}

// Bridge finds a SoundCloud equivalent of track and resolves its stream. Tracks that already
// come from SoundCloud are streamed directly. On success the original track is annotated
// with the bridged track so the host can reuse it. Any error means "not found here".
func (e *Extractor) Bridge(ctx context.Context, track *core.Track, source core.SourceExtractor) (*core.Streamable, error) {
	if track == nil {
		return nil, ErrInvalidTrack
	}

	if sameProvider(track, source) {
		stream, err := e.Stream(ctx, track)
		if err != nil {
			e.recorder.ObserveBridge(OutcomeError)
			return nil, err
		}
		e.recorder.ObserveBridge(OutcomeOK)
		return stream, nil
	}

	query := bridgeQuery(track, source)
	result := e.Handle(ctx, query, core.SearchContext{
		RequestContext: core.RequestContext{RequestedBy: track.RequestedBy},
	})
	if result.Empty() {
		e.recorder.ObserveBridge(OutcomeEmpty)
		return nil, errors.Join(fmt.Errorf("%w for %q", ErrNoBridgeCandidate, query), result.Cause)
	}

	candidate := result.Tracks[0]
	stream, err := e.Stream(ctx, candidate)
	if err != nil {
		e.recorder.ObserveBridge(OutcomeError)
		return nil, fmt.Errorf("bridge %q: %w", query, err)
	}

	track.SetBridge(candidate, Identifier)
	e.recorder.ObserveBridge(OutcomeOK)
	e.logger.Debug("Bridged track",
		zap.String("source", track.Source),
		zap.String("query", query),
		zap.String("bridged_url", candidate.URL),
		zap.Float64("title_similarity", fuzzy.TitleSimilarity(track.Title, candidate.Title)))
	return stream, nil
}

func sameProvider(track *core.Track, source core.SourceExtractor) bool {
	if source != nil {
		return source.Identifier() == Identifier
	}
	return track.Source == SourceName
}

// bridgeQuery prefers the originating provider's own query and falls back to "<author> - <title>".
func bridgeQuery(track *core.Track, source core.SourceExtractor) string {
	if source != nil {
		if q := strings.TrimSpace(source.CreateBridgeQuery(track)); q != "" {
			return q
		}
	}
	return fmt.Sprintf("%s - %s", track.Author, track.Title)
}
