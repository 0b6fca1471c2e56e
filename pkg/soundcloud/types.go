// Package soundcloud is a small client for SoundCloud's public api-v2 endpoints: resolving
// track and playlist URLs, searching tracks, fetching related tracks and resolving streams.
package soundcloud

// Kind values reported by the resolve endpoint.
const (
	KindTrack    = "track"
	KindPlaylist = "playlist"
)

// Transcoding protocols.
const (
	ProtocolProgressive = "progressive"
	ProtocolHLS         = "hls"
)

// User is the uploader of a track or the owner of a playlist.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PermalinkURL string `json:"permalink_url"`
	AvatarURL    string `json:"avatar_url"`
}

// Format describes how a transcoding is delivered.
type Format struct {
	Protocol string `json:"protocol"`
	MimeType string `json:"mime_type"`
}

// Transcoding is one of the encodings a track is available in. URL is not playable by itself;
// it resolves to a short-lived stream URL.
type Transcoding struct {
	URL      string `json:"url"`
	Preset   string `json:"preset"`
	Duration int64  `json:"duration"`
	Snipped  bool   `json:"snipped"`
	Format   Format `json:"format"`
	Quality  string `json:"quality"`
}

// Media lists the available transcodings of a track.
type Media struct {
	Transcodings []Transcoding `json:"transcodings"`
}

// Track is a SoundCloud track as returned by api-v2. Durations are in milliseconds.
type Track struct {
	ID                 int64  `json:"id"`
	Kind               string `json:"kind"`
	Title              string `json:"title"`
	PermalinkURL       string `json:"permalink_url"`
	Duration           int64  `json:"duration"`
	FullDuration       int64  `json:"full_duration"`
	ArtworkURL         string `json:"artwork_url"`
	Description        string `json:"description"`
	PlaybackCount      int64  `json:"playback_count"`
	User               User   `json:"user"`
	Policy             string `json:"policy"`
	Streamable         bool   `json:"streamable"`
	Media              Media  `json:"media"`
	TrackAuthorization string `json:"track_authorization"`
}

// Playlist is a SoundCloud set. Tracks past the first few are usually returned as stubs
// carrying only an id; GetPlaylist fills them in.
type Playlist struct {
	ID           int64    `json:"id"`
	Kind         string   `json:"kind"`
	Title        string   `json:"title"`
	PermalinkURL string   `json:"permalink_url"`
	Description  string   `json:"description"`
	ArtworkURL   string   `json:"artwork_url"`
	User         User     `json:"user"`
	TrackCount   int      `json:"track_count"`
	Tracks       []*Track `json:"tracks"`
}

// SearchResponse is a page of track search results.
type SearchResponse struct {
	Collection   []*Track `json:"collection"`
	TotalResults int      `json:"total_results"`
	NextHref     string   `json:"next_href"`
}

type relatedResponse struct {
	Collection []*Track `json:"collection"`
}

type streamResponse struct {
	URL string `json:"url"`
}

type kindHeader struct {
	Kind string `json:"kind"`
}

// stub reports whether t is a partially hydrated playlist entry.
func (t *Track) stub() bool {
	return t.Title == "" || t.PermalinkURL == ""
}
