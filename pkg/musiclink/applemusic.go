package musiclink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ITunesLookupURL is the iTunes/Apple Music API lookup endpoint.
const ITunesLookupURL = "https://itunes.apple.com/lookup"

// iTunesLookupResponse represents the response from iTunes lookup API.
type iTunesLookupResponse struct {
	ResultCount int                 `json:"resultCount"`
	Results     []iTunesTrackResult `json:"results"`
}

// iTunesTrackResult represents a track result from iTunes API.
type iTunesTrackResult struct {
	WrapperType     string `json:"wrapperType"`
	TrackID         int64  `json:"trackId"`
	TrackName       string `json:"trackName"`
	ArtistName      string `json:"artistName"`
	TrackViewURL    string `json:"trackViewUrl"`
	ArtworkURL100   string `json:"artworkUrl100"`
	TrackTimeMillis int64  `json:"trackTimeMillis"`
	ISRC            string `json:"isrc"`
}

// AppleMusicResolver resolves Apple Music links to track information.
type AppleMusicResolver struct {
	opts options
}

// NewAppleMusicResolver creates a new Apple Music link resolver.
func NewAppleMusicResolver(opts ...Option) *AppleMusicResolver {
	return &AppleMusicResolver{opts: buildOptions(ITunesLookupURL, opts)}
}

func (r *AppleMusicResolver) Provider() string {
	return ProviderAppleMusic
}

// CanResolve checks if the URL is an Apple Music link.
func (r *AppleMusicResolver) CanResolve(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	hostname := strings.ToLower(u.Hostname())
	return hostname == "music.apple.com" || hostname == "itunes.apple.com"
}

// Resolve extracts track information from an Apple Music URL using the iTunes lookup API.
func (r *AppleMusicResolver) Resolve(ctx context.Context, rawURL string) (*TrackInfo, error) {
	if !r.CanResolve(rawURL) {
		return nil, fmt.Errorf("%w: not an Apple Music link", ErrUnsupportedURL)
	}

	trackID, err := extractAppleTrackID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract track ID: %w", err)
	}

	reqURL := fmt.Sprintf("%s?id=%s&entity=song", r.opts.endpoint, url.QueryEscape(trackID))

	var resp iTunesLookupResponse
	if err := fetchJSON(ctx, r.opts.client, reqURL, "iTunes API", &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch track data: %w", err)
	}

	track, ok := firstTrack(resp.Results)
	if !ok {
		return nil, errors.New("no track found in iTunes API response")
	}

	link := track.TrackViewURL
	if link == "" {
		link = rawURL
	}
	return &TrackInfo{
		Provider:     ProviderAppleMusic,
		URL:          link,
		Title:        track.TrackName,
		Artist:       track.ArtistName,
		ISRC:         track.ISRC,
		ThumbnailURL: track.ArtworkURL100,
		Duration:     time.Duration(track.TrackTimeMillis) * time.Millisecond,
	}, nil
}

// firstTrack skips the collection entry the lookup returns ahead of album tracks.
func firstTrack(results []iTunesTrackResult) (iTunesTrackResult, bool) {
	for _, r := range results {
		if r.WrapperType == "" || r.WrapperType == "track" {
			return r, true
		}
	}
	return iTunesTrackResult{}, false
}

// extractAppleTrackID reads the ?i= parameter of album links or the trailing id of song links.
func extractAppleTrackID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	if trackID := u.Query().Get("i"); trackID != "" {
		return trackID, nil
	}

	if strings.Contains(u.Path, "/song/") {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if songID := parts[len(parts)-1]; songID != "" && songID != "song" {
			return songID, nil
		}
	}

	return "", errors.New("no track ID found in Apple Music URL (album links without ?i= are not supported)")
}
