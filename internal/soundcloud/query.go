package soundcloud

import (
	"net/url"
	"regexp"
	"strings"
)

// QueryType is the shape of a user query.
type QueryType int

const (
	// QueryFreeText is anything that is not a recognized SoundCloud URL; it is searched.
	QueryFreeText QueryType = iota
	// QueryTrack is a canonical or mobile track URL.
	QueryTrack
	// QueryShortenedTrack is an on.soundcloud.com share link.
	QueryShortenedTrack
	// QueryPlaylist is a set URL.
	QueryPlaylist
)

func (q QueryType) String() string {
	switch q {
	case QueryTrack:
		return "track"
	case QueryShortenedTrack:
		return "shortened_track"
	case QueryPlaylist:
		return "playlist"
	default:
		return "free_text"
	}
}

var (
	trackURLRegex     = regexp.MustCompile(`^https?://(m\.|www\.)?soundcloud\.com/([\w-]+)/([\w-]+)(.+)?$`)
	shortenedURLRegex = regexp.MustCompile(`^https://on\.soundcloud\.com/[a-zA-Z0-9]{1,17}$`)
	playlistURLRegex  = regexp.MustCompile(`^https?://(m\.|www\.)?soundcloud\.com/([\w-]+)/sets/([\w-]+)(.+)?$`)
)

// Classify returns the shape of query. Set URLs also match the track pattern, so they are
// checked first.
func Classify(query string) QueryType {
	query = strings.TrimSpace(query)

	switch {
	case playlistURLRegex.MatchString(query):
		return QueryPlaylist
	case shortenedURLRegex.MatchString(query):
		return QueryShortenedTrack
	case trackURLRegex.MatchString(query):
		return QueryTrack
	default:
		return QueryFreeText
	}
}

// Validate reports whether the extractor accepts query. Every non-URL is accepted as a search
// term; http(s) URLs are accepted only when they are SoundCloud track, share or set links.
func Validate(query string) bool {
	query = strings.TrimSpace(query)
	return !isURL(query) || Classify(query) != QueryFreeText
}

func isURL(query string) bool {
	u, err := url.Parse(query)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
