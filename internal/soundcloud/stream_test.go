package soundcloud

import (
	"context"
	"errors"
	"io"
	"testing"

	"soundbridge/internal/core"
	scapi "soundbridge/pkg/soundcloud"
)

type fakeSource struct {
	id    string
	query string
}

func (s fakeSource) Identifier() string { return s.id }
func (s fakeSource) CreateBridgeQuery(*core.Track) string { return s.query }

func TestStream_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		track *core.Track
	}{
		{"nil track", nil},
		{"empty url", &core.Track{}},
		{"foreign url", &core.Track{URL: "https://www.youtube.com/watch?v=abc"}},
		{"set url", &core.Track{URL: "https://soundcloud.com/artist/sets/mix"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			ext, _ := newTestExtractor(api, core.StreamModeURL)

			stream, err := ext.Stream(context.Background(), tt.track)
			if stream != nil || !errors.Is(err, ErrInvalidTrack) {
				t.Errorf("Stream() = %v, %v; want ErrInvalidTrack", stream, err)
			}
			if api.totalCalls() != 0 {
				t.Errorf("invalid input triggered remote calls: %v", api.calls)
			}
		})
	}
}

func TestStream_URLMode(t *testing.T) {
	api := newFakeAPI()
	api.streamURL = "https://cf-media.sndcdn.com/abc.mp3"
	ext, recorder := newTestExtractor(api, core.StreamModeURL)

	stream, err := ext.Stream(context.Background(), &core.Track{URL: "https://soundcloud.com/artist/one"})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if stream.URL != api.streamURL || stream.Body != nil {
		t.Errorf("unexpected stream %+v", stream)
	}
	if recorder.streams[OutcomeOK] != 1 {
		t.Errorf("stream outcomes = %v", recorder.streams)
	}
}

func TestStream_Failures(t *testing.T) {
	remote := errors.New("resolve failed")
	tests := []struct {
		name    string
		mode    core.StreamMode
		url     string
		err     error
		wantErr []error
	}{
		{"url mode remote error", core.StreamModeURL, "", remote, []error{ErrNoStream, remote}},
		{"url mode empty url", core.StreamModeURL, "", nil, []error{ErrNoStream}},
		{"bytes mode remote error", core.StreamModeBytes, "", remote, []error{ErrNoStream, remote}},
		{"bytes mode no body", core.StreamModeBytes, "", nil, []error{ErrNoStream}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.streamURL = tt.url
			api.streamErr = tt.err
			ext, recorder := newTestExtractor(api, tt.mode)

			trackURL := "https://soundcloud.com/artist/one"
			stream, err := ext.Stream(context.Background(), &core.Track{URL: trackURL})
			if stream != nil {
				t.Errorf("expected no stream, got %+v", stream)
			}

			var streamErr *StreamError
			if !errors.As(err, &streamErr) || streamErr.URL != trackURL {
				t.Fatalf("error %v is not a StreamError for %s", err, trackURL)
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("error %v does not wrap %v", err, want)
				}
			}
			if recorder.streams[OutcomeError] != 1 {
				t.Errorf("stream outcomes = %v", recorder.streams)
			}
		})
	}
}

func TestStream_BytesMode(t *testing.T) {
	api := newFakeAPI()
	api.streamBody = "audio"
	ext, _ := newTestExtractor(api, core.StreamModeBytes)

	stream, err := ext.Stream(context.Background(), &core.Track{URL: "https://on.soundcloud.com/abc"})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer stream.Body.Close()

	data, err := io.ReadAll(stream.Body)
	if err != nil || string(data) != "audio" {
		t.Errorf("body = %q, %v", data, err)
	}
	if api.callCount("stream_url") != 0 {
		t.Error("bytes mode should not resolve a URL")
	}
}

func TestBridge_SameProviderStreamsDirectly(t *testing.T) {
	tests := []struct {
		name   string
		source func(*Extractor) core.SourceExtractor
		track  *core.Track
	}{
		{
			name:   "source is this extractor",
			source: func(e *Extractor) core.SourceExtractor { return e },
			track:  &core.Track{URL: "https://soundcloud.com/artist/one", Source: "spotify"},
		},
		{
			name:   "no source but soundcloud track",
			source: func(*Extractor) core.SourceExtractor { return nil },
			track:  &core.Track{URL: "https://soundcloud.com/artist/one", Source: SourceName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.streamURL = "https://cf-media.sndcdn.com/one.mp3"
			ext, _ := newTestExtractor(api, core.StreamModeURL)

			stream, err := ext.Bridge(context.Background(), tt.track, tt.source(ext))
			if err != nil {
				t.Fatalf("Bridge() error = %v", err)
			}
			if stream.URL != api.streamURL {
				t.Errorf("URL = %q", stream.URL)
			}
			if api.callCount(opSearch)+api.callCount(opSearchAlt) != 0 {
				t.Errorf("same-provider bridge searched: %v", api.calls)
			}
			if bridged, _ := tt.track.Bridged(); bridged != nil {
				t.Error("same-provider bridge should not annotate the track")
			}
		})
	}
}

func TestBridge_QueryConstruction(t *testing.T) {
	tests := []struct {
		name   string
		source core.SourceExtractor
		want   string
	}{
		{"no source", nil, "Daft Punk - One More Time"},
		{"source without query", fakeSource{id: "youtube"}, "Daft Punk - One More Time"},
		{"blank source query", fakeSource{id: "youtube", query: "   "}, "Daft Punk - One More Time"},
		{"source query", fakeSource{id: "spotify", query: "daft punk one more time"}, "daft punk one more time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.search = []*scapi.Track{rawTrack(1, "one")}
			api.streamURL = "https://cf-media.sndcdn.com/one.mp3"
			ext, _ := newTestExtractor(api, core.StreamModeURL)

			track := &core.Track{
				Title:  "One More Time",
				Author: "Daft Punk",
				URL:    "https://open.spotify.com/track/abc",
				Source: "spotify",
			}
			if _, err := ext.Bridge(context.Background(), track, tt.source); err != nil {
				t.Fatalf("Bridge() error = %v", err)
			}
			if len(api.searched) != 1 || api.searched[0] != tt.want {
				t.Errorf("searched %v, want [%q]", api.searched, tt.want)
			}
		})
	}
}

func TestBridge_AnnotatesOriginalTrack(t *testing.T) {
	api := newFakeAPI()
	api.search = []*scapi.Track{rawTrack(1, "one"), rawTrack(2, "two")}
	api.streamURL = "https://cf-media.sndcdn.com/one.mp3"
	ext, recorder := newTestExtractor(api, core.StreamModeURL)

	track := &core.Track{Title: "One", Author: "Artist", Source: "youtube", RequestedBy: "frank"}
	stream, err := ext.Bridge(context.Background(), track, fakeSource{id: "youtube"})
	if err != nil {
		t.Fatalf("Bridge() error = %v", err)
	}
	if stream.URL != api.streamURL {
		t.Errorf("URL = %q", stream.URL)
	}

	bridged, source := track.Bridged()
	if bridged == nil || bridged.URL != "https://soundcloud.com/artist/one" {
		t.Fatalf("bridged track = %+v", bridged)
	}
	if source != Identifier {
		t.Errorf("bridged source = %q", source)
	}
	if bridged.RequestedBy != "frank" {
		t.Errorf("bridged RequestedBy = %q", bridged.RequestedBy)
	}
	if recorder.bridges[OutcomeOK] != 1 {
		t.Errorf("bridge outcomes = %v", recorder.bridges)
	}
}

func TestBridge_Failures(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		api := newFakeAPI()
		ext, recorder := newTestExtractor(api, core.StreamModeURL)

		track := &core.Track{Title: "Nothing", Author: "Nobody", Source: "youtube"}
		stream, err := ext.Bridge(context.Background(), track, nil)
		if stream != nil || !errors.Is(err, ErrNoBridgeCandidate) {
			t.Errorf("Bridge() = %v, %v", stream, err)
		}
		if bridged, _ := track.Bridged(); bridged != nil {
			t.Error("failed bridge annotated the track")
		}
		if recorder.bridges[OutcomeEmpty] != 1 {
			t.Errorf("bridge outcomes = %v", recorder.bridges)
		}
	})

	t.Run("candidate without stream", func(t *testing.T) {
		api := newFakeAPI()
		api.search = []*scapi.Track{rawTrack(1, "one")}
		api.streamErr = errors.New("no transcoding")
		ext, _ := newTestExtractor(api, core.StreamModeURL)

		track := &core.Track{Title: "One", Author: "Artist", Source: "youtube"}
		stream, err := ext.Bridge(context.Background(), track, nil)
		if stream != nil || !errors.Is(err, ErrNoStream) {
			t.Errorf("Bridge() = %v, %v", stream, err)
		}
		if bridged, _ := track.Bridged(); bridged != nil {
			t.Error("failed bridge annotated the track")
		}
	})

	t.Run("nil track", func(t *testing.T) {
		api := newFakeAPI()
		ext, _ := newTestExtractor(api, core.StreamModeURL)
		if _, err := ext.Bridge(context.Background(), nil, nil); !errors.Is(err, ErrInvalidTrack) {
			t.Errorf("Bridge(nil) error = %v", err)
		}
	})
}
