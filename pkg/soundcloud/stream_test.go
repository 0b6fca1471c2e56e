package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPickTranscoding(t *testing.T) {
	progressive := Transcoding{URL: "p", Format: Format{Protocol: ProtocolProgressive}}
	hls := Transcoding{URL: "h", Format: Format{Protocol: ProtocolHLS}}
	snippedProgressive := Transcoding{URL: "sp", Snipped: true, Format: Format{Protocol: ProtocolProgressive}}

	tests := []struct {
		name    string
		media   Media
		wantURL string
		wantErr bool
	}{
		{
			name:    "Progressive preferred over HLS",
			media:   Media{Transcodings: []Transcoding{hls, progressive}},
			wantURL: "p",
		},
		{
			name:    "Full HLS preferred over snipped progressive",
			media:   Media{Transcodings: []Transcoding{snippedProgressive, hls}},
			wantURL: "h",
		},
		{
			name:    "Snipped progressive as last resort",
			media:   Media{Transcodings: []Transcoding{snippedProgressive}},
			wantURL: "sp",
		},
		{
			name:    "No transcodings",
			media:   Media{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PickTranscoding(tt.media)
			if tt.wantErr {
				if !errors.Is(err, ErrNoTranscoding) {
					t.Errorf("PickTranscoding() error = %v, want ErrNoTranscoding", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PickTranscoding() error = %v", err)
			}
			if got.URL != tt.wantURL {
				t.Errorf("PickTranscoding() = %q, want %q", got.URL, tt.wantURL)
			}
		})
	}
}

// streamServer serves a track whose only transcoding uses the given protocol.
func streamServer(t *testing.T, protocol string) *httptest.Server {
	t.Helper()

	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/resolve", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, fmt.Sprintf(`{"kind":"track","id":1,"title":"Song","permalink_url":"https://soundcloud.com/a/song",`+
			`"track_authorization":"auth-token","media":{"transcodings":[`+
			`{"url":"%s/media/1/stream/%s","format":{"protocol":"%s","mime_type":"audio/mpeg"}}]}}`,
			serverURL, protocol, protocol))
	})
	mux.HandleFunc("/media/1/stream/"+protocol, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("track_authorization"); got != "auth-token" {
			t.Errorf("track_authorization = %q, want %q", got, "auth-token")
		}
		if protocol == ProtocolHLS {
			writeJSON(w, `{"url":"`+serverURL+`/hls/playlist.m3u8"}`)
			return
		}
		writeJSON(w, `{"url":"`+serverURL+`/audio.mp3"}`)
	})
	mux.HandleFunc("/audio.mp3", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "progressive-audio")
	})
	mux.HandleFunc("/hls/playlist.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXT-X-MEDIA-SEQUENCE:0\n"+
			"#EXTINF:10.0,\nseg0.mp3\n#EXTINF:10.0,\n/hls/seg1.mp3\n#EXT-X-ENDLIST\n")
	})
	mux.HandleFunc("/hls/seg0.mp3", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "first-")
	})
	mux.HandleFunc("/hls/seg1.mp3", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "second")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	serverURL = server.URL
	return server
}

func newStreamClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := New(Options{
		ClientID:   testClientID,
		APIURL:     server.URL,
		WebURL:     server.URL,
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestStreamURL(t *testing.T) {
	server := streamServer(t, ProtocolProgressive)
	client := newStreamClient(t, server)

	got, err := client.StreamURL(context.Background(), "https://soundcloud.com/a/song")
	if err != nil {
		t.Fatalf("StreamURL() error = %v", err)
	}
	if want := server.URL + "/audio.mp3"; got != want {
		t.Errorf("StreamURL() = %q, want %q", got, want)
	}
}

func TestStreamBytes_Progressive(t *testing.T) {
	server := streamServer(t, ProtocolProgressive)
	client := newStreamClient(t, server)

	body, err := client.StreamBytes(context.Background(), "https://soundcloud.com/a/song")
	if err != nil {
		t.Fatalf("StreamBytes() error = %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "progressive-audio" {
		t.Errorf("StreamBytes() = %q, want %q", data, "progressive-audio")
	}
}

func TestStreamBytes_HLSConcatenatesSegments(t *testing.T) {
	server := streamServer(t, ProtocolHLS)
	client := newStreamClient(t, server)

	body, err := client.StreamBytes(context.Background(), "https://soundcloud.com/a/song")
	if err != nil {
		t.Fatalf("StreamBytes() error = %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "first-second" {
		t.Errorf("StreamBytes() = %q, want %q", data, "first-second")
	}
}
