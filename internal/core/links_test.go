package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"soundbridge/pkg/musiclink"
)

type stubLinkResolver struct {
	id     string
	prefix string
	err    error
}

func (s stubLinkResolver) Identifier() string { return s.id }

func (s stubLinkResolver) CreateBridgeQuery(track *Track) string { return track.Title }

func (s stubLinkResolver) CanResolve(url string) bool { return strings.HasPrefix(url, s.prefix) }

func (s stubLinkResolver) ResolveTrack(_ context.Context, url string, rc RequestContext) (*Track, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &Track{URL: url, Source: s.id, RequestedBy: rc.RequestedBy}, nil
}

func TestLinks_Resolve(t *testing.T) {
	failure := errors.New("lookup failed")
	links := Links{
		nil,
		stubLinkResolver{id: "a", prefix: "https://a.example/"},
		stubLinkResolver{id: "b", prefix: "https://b.example/", err: failure},
	}

	track, source, err := links.Resolve(context.Background(), " https://a.example/1 ", RequestContext{RequestedBy: "hal"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if track.URL != "https://a.example/1" || track.RequestedBy != "hal" || source.Identifier() != "a" {
		t.Errorf("unexpected resolution %+v via %v", track, source)
	}

	if _, _, err := links.Resolve(context.Background(), "https://b.example/1", RequestContext{}); !errors.Is(err, failure) {
		t.Errorf("Resolve() error = %v, want wrapped lookup failure", err)
	}

	if _, _, err := links.Resolve(context.Background(), "https://c.example/1", RequestContext{}); !errors.Is(err, ErrUnsupportedLink) {
		t.Errorf("Resolve() error = %v, want ErrUnsupportedLink", err)
	}

	if !links.CanResolve("https://b.example/x") || links.CanResolve("https://c.example/x") {
		t.Error("CanResolve mismatch")
	}
}

type stubMusicLink struct {
	info *musiclink.TrackInfo
}

func (s stubMusicLink) Provider() string { return s.info.Provider }

func (s stubMusicLink) CanResolve(string) bool { return true }

func (s stubMusicLink) Resolve(context.Context, string) (*musiclink.TrackInfo, error) {
	return s.info, nil
}

func TestMusicLinkAdapter(t *testing.T) {
	info := &musiclink.TrackInfo{
		Provider:     musiclink.ProviderAppleMusic,
		URL:          "https://music.apple.com/us/song/x/1",
		Title:        "Hey Jude - Remastered 2009",
		Artist:       "The Beatles",
		ThumbnailURL: "https://example.com/cover.jpg",
		Duration:     431 * time.Second,
	}
	adapter := NewMusicLinkAdapter(stubMusicLink{info: info})

	if adapter.Identifier() != musiclink.ProviderAppleMusic {
		t.Errorf("Identifier() = %q", adapter.Identifier())
	}

	track, err := adapter.ResolveTrack(context.Background(), "https://music.apple.com/x", RequestContext{RequestedBy: "ivy"})
	if err != nil {
		t.Fatalf("ResolveTrack() error = %v", err)
	}
	if track.URL != info.URL || track.Author != "The Beatles" || track.Source != musiclink.ProviderAppleMusic {
		t.Errorf("unexpected track %+v", track)
	}
	if track.Duration != "07:11" || track.CleanTitle != "hey jude" || track.RequestedBy != "ivy" {
		t.Errorf("Duration/CleanTitle/RequestedBy = %q/%q/%q", track.Duration, track.CleanTitle, track.RequestedBy)
	}
	if got := adapter.CreateBridgeQuery(track); got != "the beatles hey jude" {
		t.Errorf("CreateBridgeQuery() = %q", got)
	}
	if got := adapter.CreateBridgeQuery(nil); got != "" {
		t.Errorf("CreateBridgeQuery(nil) = %q", got)
	}
}

func TestNewMusicLinkResolvers(t *testing.T) {
	links := NewMusicLinkResolvers(musiclink.NewManager())
	if len(links) != 2 {
		t.Fatalf("got %d resolvers", len(links))
	}
	if !links.CanResolve("https://youtu.be/dQw4w9WgXcQ") || !links.CanResolve("https://music.apple.com/us/song/x/1") {
		t.Error("expected YouTube and Apple Music links to be recognized")
	}
	if links.CanResolve("https://soundcloud.com/a/b") {
		t.Error("SoundCloud links belong to the extractor, not a link resolver")
	}
}
