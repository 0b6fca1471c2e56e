package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// trackIDsChunkSize is the largest id list the /tracks endpoint accepts.
	trackIDsChunkSize = 50
	// hydrateConcurrency bounds parallel requests while filling in playlists and search hits.
	hydrateConcurrency = 4
)

// Resolve resolves a SoundCloud URL and returns the raw JSON together with its kind.
func (c *Client) Resolve(ctx context.Context, rawURL string) (json.RawMessage, string, error) {
	canonical, err := c.expandShortened(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, "/resolve", url.Values{"url": {canonical}}, &raw); err != nil {
		return nil, "", err
	}

	var header kindHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, "", fmt.Errorf("failed to decode resolve response: %w", err)
	}
	return raw, header.Kind, nil
}

// GetTrack resolves a track URL (canonical, mobile or shortened).
func (c *Client) GetTrack(ctx context.Context, rawURL string) (*Track, error) {
	raw, kind, err := c.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if kind != KindTrack {
		return nil, fmt.Errorf("%w: %s is a %q", ErrUnexpectedKind, rawURL, kind)
	}

	var track Track
	if err := json.Unmarshal(raw, &track); err != nil {
		return nil, fmt.Errorf("failed to decode track: %w", err)
	}
	return &track, nil
}

// GetPlaylist resolves a set URL and fills in tracks the API returned as stubs. Stubs the
// API no longer knows about are dropped.
func (c *Client) GetPlaylist(ctx context.Context, rawURL string) (*Playlist, error) {
	raw, kind, err := c.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if kind != KindPlaylist {
		return nil, fmt.Errorf("%w: %s is a %q", ErrUnexpectedKind, rawURL, kind)
	}

	var playlist Playlist
	if err := json.Unmarshal(raw, &playlist); err != nil {
		return nil, fmt.Errorf("failed to decode playlist: %w", err)
	}

	if err := c.hydrate(ctx, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// TracksByID fetches full track records, chunked and in parallel. Order of the result
// follows ids; ids the API does not return are skipped.
func (c *Client) TracksByID(ctx context.Context, ids []int64) ([]*Track, error) {
	var (
		mu    sync.Mutex
		found = make(map[int64]*Track, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)

	for start := 0; start < len(ids); start += trackIDsChunkSize {
		chunk := ids[start:min(start+trackIDsChunkSize, len(ids))]
		g.Go(func() error {
			parts := make([]string, len(chunk))
			for i, id := range chunk {
				parts[i] = strconv.FormatInt(id, 10)
			}

			var tracks []*Track
			if err := c.getJSON(gctx, "/tracks", url.Values{"ids": {strings.Join(parts, ",")}}, &tracks); err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, t := range tracks {
				if t != nil {
					found[t.ID] = t
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch tracks by id: %w", err)
	}

	result := make([]*Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := found[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (c *Client) hydrate(ctx context.Context, playlist *Playlist) error {
	var stubIDs []int64
	for _, t := range playlist.Tracks {
		if t != nil && t.stub() {
			stubIDs = append(stubIDs, t.ID)
		}
	}
	if len(stubIDs) == 0 {
		return nil
	}

	full, err := c.TracksByID(ctx, stubIDs)
	if err != nil {
		return err
	}
	byID := make(map[int64]*Track, len(full))
	for _, t := range full {
		byID[t.ID] = t
	}

	tracks := make([]*Track, 0, len(playlist.Tracks))
	for _, t := range playlist.Tracks {
		switch {
		case t == nil:
		case !t.stub():
			tracks = append(tracks, t)
		case byID[t.ID] != nil:
			tracks = append(tracks, byID[t.ID])
		default:
			c.logger.Debug("Dropping unresolved playlist entry", zap.Int64("track_id", t.ID))
		}
	}
	playlist.Tracks = tracks
	return nil
}

// RelatedTracks returns up to limit tracks related to the track at rawURL.
func (c *Client) RelatedTracks(ctx context.Context, rawURL string, limit int) ([]*Track, error) {
	track, err := c.GetTrack(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var resp relatedResponse
	endpoint := fmt.Sprintf("/tracks/%d/related", track.ID)
	if err := c.getJSON(ctx, endpoint, url.Values{"limit": {strconv.Itoa(limit)}}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Collection) > limit {
		resp.Collection = resp.Collection[:limit]
	}
	return resp.Collection, nil
}
