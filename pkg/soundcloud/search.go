package soundcloud

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// SearchLimit is the page size requested from /search/tracks.
	SearchLimit = 20
	// altSearchMaxResults caps how many scraped search hits are resolved.
	altSearchMaxResults = 10
)

// searchHitRegex matches result links on the server-rendered search page.
var searchHitRegex = regexp.MustCompile(`<li><h2><a href="(/[^"/]+/[^"/]+)">`)

// SearchTracks runs the api-v2 track search.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]*Track, error) {
	var resp SearchResponse
	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(SearchLimit)},
	}
	if err := c.getJSON(ctx, "/search/tracks", params, &resp); err != nil {
		return nil, fmt.Errorf("track search failed: %w", err)
	}
	return resp.Collection, nil
}

// SearchTracksAlt searches through the server-rendered web search page and resolves each hit.
// It finds tracks the api-v2 search sometimes misses. Hits that fail to resolve are skipped.
func (c *Client) SearchTracksAlt(ctx context.Context, query string) ([]*Track, error) {
	page, err := c.fetchText(ctx, c.webURL+"/search/sounds?q="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("alternate search failed: %w", err)
	}

	var (
		paths []string
		seen  = make(map[string]struct{})
	)
	for _, m := range searchHitRegex.FindAllStringSubmatch(page, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		paths = append(paths, m[1])
		if len(paths) == altSearchMaxResults {
			break
		}
	}

	resolved := make([]*Track, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			track, err := c.GetTrack(gctx, DefaultWebURL+path)
			if err != nil {
				c.logger.Debug("Skipping alternate search hit", zap.String("path", path), zap.Error(err))
				return nil
			}
			resolved[i] = track
			return nil
		})
	}
	_ = g.Wait()

	tracks := make([]*Track, 0, len(resolved))
	for _, t := range resolved {
		if t != nil {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}
