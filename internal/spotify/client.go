// Package spotify resolves Spotify track links into host tracks so they can be bridged to a
// provider that can actually stream them.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"soundbridge/internal/core"
	"soundbridge/pkg/fuzzy"
)

const (
	// Identifier names this source in bridge annotations and logs.
	Identifier = "spotify"
	// SpotifyIDLength is the expected length of a Spotify track ID.
	SpotifyIDLength = 22
	// AppLinkDomain is the host of Spotify's shortened share links.
	AppLinkDomain = "spotify.link"

	shortLinkTimeout = 10 * time.Second
	maxRedirects     = 5
	userAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	spotifyTrackRegex = regexp.MustCompile(`(?:https?://)?(?:open\.)?spotify\.com/(?:intl-[a-z]{2}/)?track/([a-zA-Z0-9]+)`)
	spotifyURIRegex   = regexp.MustCompile(`spotify:track:([a-zA-Z0-9]+)`)

	// ErrNotConfigured is returned when no client credentials are set.
	ErrNotConfigured = errors.New("spotify credentials not configured")
	// ErrNoTrackID is returned when a link does not point at a Spotify track.
	ErrNoTrackID = errors.New("no track ID found in URL")
)

// Options configures a Client. TokenURL and BaseURL default to Spotify's public endpoints.
type Options struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Client looks up track metadata with app-only (client credentials) authentication.
type Client struct {
	logger     *zap.Logger
	credential *clientcredentials.Config
	api        *spotify.Client
	http       *http.Client
}

var _ core.LinkResolver = (*Client)(nil)

// NewClient creates a client from the host configuration.
func NewClient(cfg core.SpotifyConfig, logger *zap.Logger) (*Client, error) {
	return New(Options{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Logger:       logger,
	})
}

// New creates a client. No request is made until Authenticate or ResolveTrack.
func New(opts Options) (*Client, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, ErrNotConfigured
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: shortLinkTimeout}
	}

	credential := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
	}

	// Token requests use base too; it is taken from the context the client is built with.
	authed := credential.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))

	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(opts.BaseURL))
	}

	return &Client{
		logger:     logger.Named("spotify"),
		credential: credential,
		api:        spotify.New(authed, clientOpts...),
		http:       base,
	}, nil
}

// Authenticate checks the credentials by fetching a token.
func (c *Client) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	if _, err := c.credential.Token(ctx); err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}
	c.logger.Info("Authenticated with client credentials")
	return nil
}

func (c *Client) Identifier() string {
	return Identifier
}

// CanResolve reports whether rawURL is a Spotify track link, URI or share link.
func (c *Client) CanResolve(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if spotifyURIRegex.MatchString(rawURL) || spotifyTrackRegex.MatchString(rawURL) {
		return true
	}
	u, err := url.Parse(rawURL)
	return err == nil && strings.EqualFold(u.Hostname(), AppLinkDomain)
}

// ResolveTrack looks up the track a link points at.
func (c *Client) ResolveTrack(ctx context.Context, rawURL string, rc core.RequestContext) (*core.Track, error) {
	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err == nil && strings.EqualFold(u.Hostname(), AppLinkDomain) {
		resolved, err := c.resolveShortURL(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve shortened URL: %w", err)
		}
		rawURL = resolved
	}

	trackID, err := ExtractTrackID(rawURL)
	if err != nil {
		return nil, err
	}

	full, err := c.api.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", trackID, err)
	}

	track := convertTrack(full, rc)
	c.logger.Debug("Resolved track",
		zap.String("id", trackID),
		zap.String("title", track.Title),
		zap.String("artist", track.Author))
	return track, nil
}

// CreateBridgeQuery builds "<first artist> <title>" with featuring credits and release
// decorations stripped, which is what other catalogs index.
func (c *Client) CreateBridgeQuery(track *core.Track) string {
	if track == nil {
		return ""
	}

	artist := track.Author
	if full, ok := track.Raw.(*spotify.FullTrack); ok && len(full.Artists) > 0 {
		artist = full.Artists[0].Name
	}
	return fuzzy.Query(artist, track.Title)
}

// ExtractTrackID returns the track ID of an open.spotify.com URL or a spotify:track: URI.
func ExtractTrackID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	if matches := spotifyURIRegex.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], nil
	}
	if matches := spotifyTrackRegex.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range pathParts {
		if part == "track" && i+1 < len(pathParts) && pathParts[i+1] != "" {
			return pathParts[i+1], nil
		}
	}

	return "", ErrNoTrackID
}

// resolveShortURL follows a spotify.link redirect chain to the open.spotify.com track URL.
func (c *Client) resolveShortURL(ctx context.Context, shortURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, shortLinkTimeout)
	defer cancel()

	client := *c.http
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, shortURL, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	if _, err := ExtractTrackID(finalURL); err != nil {
		return "", fmt.Errorf("URL did not resolve to a Spotify track: %s", finalURL)
	}
	return finalURL, nil
}

func convertTrack(full *spotify.FullTrack, rc core.RequestContext) *core.Track {
	artists := make([]string, 0, len(full.Artists))
	for _, artist := range full.Artists {
		artists = append(artists, artist.Name)
	}

	trackURL := full.ExternalURLs["spotify"]
	if trackURL == "" {
		trackURL = "https://open.spotify.com/track/" + string(full.ID)
	}

	var thumbnail string
	if len(full.Album.Images) > 0 {
		thumbnail = full.Album.Images[0].URL
	}

	return &core.Track{
		Title:       full.Name,
		CleanTitle:  full.Name,
		URL:         trackURL,
		Duration:    core.FormatTimecode(int64(full.Duration)),
		Description: full.Album.Name,
		Thumbnail:   thumbnail,
		Author:      strings.Join(artists, ", "),
		RequestedBy: rc.RequestedBy,
		Source:      Identifier,
		Raw:         full,
	}
}
