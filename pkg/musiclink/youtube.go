package musiclink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	// YouTubeOEmbedURL is the YouTube oEmbed API endpoint.
	YouTubeOEmbedURL = "https://www.youtube.com/oembed"

	vevoSuffix  = "VEVO"
	topicSuffix = " - Topic"
	titleSep    = " - "
)

var (
	videoDecorationRegex = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:official\s+(?:music\s+)?(?:video|audio)|` +
		`lyric\s+video|lyrics?|visuali[sz]er|hd|hq|4k)\s*[\)\]]`)
	camelCaseRegex = regexp.MustCompile(`([a-z])([A-Z])`)
)

// YouTubeOEmbedResponse represents the response from YouTube's oEmbed API.
type YouTubeOEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// YouTubeResolver resolves YouTube and YouTube Music links to track information.
type YouTubeResolver struct {
	opts options
}

// NewYouTubeResolver creates a new YouTube link resolver.
func NewYouTubeResolver(opts ...Option) *YouTubeResolver {
	return &YouTubeResolver{opts: buildOptions(YouTubeOEmbedURL, opts)}
}

func (r *YouTubeResolver) Provider() string {
	return ProviderYouTube
}

// CanResolve checks if the URL is a YouTube or YouTube Music link.
func (r *YouTubeResolver) CanResolve(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Hostname()) {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return true
	}
	return false
}

// Resolve extracts track information from a YouTube URL using the oEmbed API.
func (r *YouTubeResolver) Resolve(ctx context.Context, rawURL string) (*TrackInfo, error) {
	if !r.CanResolve(rawURL) {
		return nil, fmt.Errorf("%w: not a YouTube link", ErrUnsupportedURL)
	}

	videoID, err := extractVideoID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract video ID: %w", err)
	}

	videoURL := "https://www.youtube.com/watch?v=" + videoID
	reqURL := fmt.Sprintf("%s?url=%s&format=json", r.opts.endpoint, url.QueryEscape(videoURL))

	var resp YouTubeOEmbedResponse
	if err := fetchJSON(ctx, r.opts.client, reqURL, "YouTube oEmbed", &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch oEmbed data: %w", err)
	}

	title, artist := parseVideoTitle(resp.Title, resp.AuthorName)
	return &TrackInfo{
		Provider:     ProviderYouTube,
		URL:          videoURL,
		Title:        title,
		Artist:       artist,
		ThumbnailURL: resp.ThumbnailURL,
	}, nil
}

// extractVideoID extracts the video ID from watch, shorts and youtu.be links.
func extractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(u.Hostname(), "youtu.be") {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
		return "", errors.New("no video ID in youtu.be URL")
	}

	if id, found := strings.CutPrefix(u.Path, "/shorts/"); found && id != "" {
		return strings.Trim(id, "/"), nil
	}

	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	return "", errors.New("no video ID in YouTube URL")
}

// parseVideoTitle splits a video title into track title and artist. Official artist channels
// ("...VEVO", "... - Topic") name the artist; otherwise "Artist - Title" titles do; otherwise
// the channel name is used.
func parseVideoTitle(videoTitle, channel string) (title, artist string) {
	title = cleanTitle(videoTitle)

	switch {
	case strings.HasSuffix(channel, vevoSuffix):
		artist = splitCamelCase(strings.TrimSuffix(channel, vevoSuffix))
	case strings.HasSuffix(channel, topicSuffix):
		artist = strings.TrimSuffix(channel, topicSuffix)
	}

	if before, after, found := strings.Cut(title, titleSep); found {
		before, after = strings.TrimSpace(before), strings.TrimSpace(after)
		if artist == "" || strings.EqualFold(before, artist) {
			return after, before
		}
	}

	if artist == "" {
		artist = channel
	}
	return title, artist
}

// cleanTitle removes common YouTube video decorations from titles.
func cleanTitle(title string) string {
	return strings.TrimSpace(videoDecorationRegex.ReplaceAllString(title, ""))
}

// splitCamelCase splits a camelCase string into words.
func splitCamelCase(s string) string {
	return camelCaseRegex.ReplaceAllString(s, "$1 $2")
}
