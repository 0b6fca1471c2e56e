package http

import "soundbridge/internal/core"

type trackView struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Duration      string `json:"duration"`
	Author        string `json:"author"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	Description   string `json:"description,omitempty"`
	Views         int64  `json:"views"`
	Source        string `json:"source"`
	RequestedBy   string `json:"requested_by,omitempty"`
	BridgedURL    string `json:"bridged_url,omitempty"`
	BridgedSource string `json:"bridged_source,omitempty"`
}

type playlistView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Author     string `json:"author"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Source     string `json:"source"`
	TrackCount int    `json:"track_count"`
}

type historyView struct {
	Size   int      `json:"size"`
	Tracks []string `json:"tracks"`
}

type resultView struct {
	Playlist *playlistView `json:"playlist"`
	Tracks   []trackView   `json:"tracks"`
	Cause    string        `json:"cause,omitempty"`
}

func newTrackView(t *core.Track) trackView {
	view := trackView{
		Title:       t.Title,
		URL:         t.URL,
		Duration:    t.Duration,
		Author:      t.Author,
		Thumbnail:   t.Thumbnail,
		Description: t.Description,
		Views:       t.Views,
		Source:      t.Source,
		RequestedBy: t.RequestedBy,
	}
	if bridged, source := t.Bridged(); bridged != nil {
		view.BridgedURL = bridged.URL
		view.BridgedSource = source
	}
	return view
}

func newResultView(result core.SearchResult) resultView {
	view := resultView{Tracks: make([]trackView, 0, len(result.Tracks))}
	for _, t := range result.Tracks {
		if t != nil {
			view.Tracks = append(view.Tracks, newTrackView(t))
		}
	}

	if p := result.Playlist; p != nil {
		view.Playlist = &playlistView{
			ID:         p.ID,
			Title:      p.Title,
			URL:        p.URL,
			Author:     p.Author.Name,
			Thumbnail:  p.Thumbnail,
			Source:     p.Source,
			TrackCount: len(p.Tracks),
		}
	}

	if result.Cause != nil {
		view.Cause = result.Cause.Error()
	}
	return view
}
