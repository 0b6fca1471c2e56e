package soundcloud

import (
	"strconv"

	"soundbridge/internal/core"
	scapi "soundbridge/pkg/soundcloud"
)

const playlistType = "playlist"

// MapTrack projects a raw track into the host model. playlist may be nil.
func MapTrack(raw *scapi.Track, rc core.RequestContext, playlist *core.Playlist) *core.Track {
	return &core.Track{
		Title:       raw.Title,
		CleanTitle:  raw.Title,
		URL:         raw.PermalinkURL,
		Duration:    core.FormatTimecode(raw.Duration),
		Description: raw.Description,
		Thumbnail:   raw.ArtworkURL,
		Views:       raw.PlaybackCount,
		Author:      raw.User.Username,
		RequestedBy: rc.RequestedBy,
		Source:      SourceName,
		Raw:         raw,
		Playlist:    playlist,
	}
}

// MapPlaylist projects a raw playlist and its tracks. The playlist is built first so every
// track can point back at it.
func MapPlaylist(raw *scapi.Playlist, rc core.RequestContext) *core.Playlist {
	thumbnail := raw.ArtworkURL
	if thumbnail == "" && len(raw.Tracks) > 0 && raw.Tracks[0] != nil {
		thumbnail = raw.Tracks[0].ArtworkURL
	}

	playlist := &core.Playlist{
		ID:          strconv.FormatInt(raw.ID, 10),
		Title:       raw.Title,
		Description: raw.Description,
		Thumbnail:   thumbnail,
		Type:        playlistType,
		Source:      SourceName,
		Author: core.Author{
			Name: raw.User.Username,
			URL:  raw.User.PermalinkURL,
		},
		URL: raw.PermalinkURL,
		Raw: raw,
	}

	playlist.Tracks = make([]*core.Track, 0, len(raw.Tracks))
	for _, t := range raw.Tracks {
		if t != nil {
			playlist.Tracks = append(playlist.Tracks, MapTrack(t, rc, playlist))
		}
	}
	return playlist
}

func mapTracks(raw []*scapi.Track, rc core.RequestContext) []*core.Track {
	tracks := make([]*core.Track, 0, len(raw))
	for _, t := range raw {
		if t != nil {
			tracks = append(tracks, MapTrack(t, rc, nil))
		}
	}
	return tracks
}
