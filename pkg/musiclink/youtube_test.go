package musiclink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestYouTubeResolver_CanResolve(t *testing.T) {
	resolver := NewYouTubeResolver()

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"Standard YouTube URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"YouTube short URL", "https://youtu.be/dQw4w9WgXcQ", true},
		{"YouTube Music URL", "https://music.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"Mobile YouTube URL", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"Non-YouTube URL", "https://example.com", false},
		{"Spotify URL", "https://open.spotify.com/track/123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := resolver.CanResolve(tt.url); result != tt.expected {
				t.Errorf("CanResolve() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		expectedID string
		wantError  bool
	}{
		{"Standard YouTube URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"YouTube short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"YouTube Music URL with playlist", "https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=RD", "dQw4w9WgXcQ", false},
		{"Shorts URL", "https://www.youtube.com/shorts/abc123", "abc123", false},
		{"Empty short URL", "https://youtu.be/", "", true},
		{"Watch URL without v", "https://www.youtube.com/watch", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videoID, err := extractVideoID(tt.url)
			if tt.wantError {
				if err == nil {
					t.Errorf("extractVideoID() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("extractVideoID() unexpected error: %v", err)
			}
			if videoID != tt.expectedID {
				t.Errorf("extractVideoID() = %v, want %v", videoID, tt.expectedID)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Rick Astley - Never Gonna Give You Up (Official Video)", "Rick Astley - Never Gonna Give You Up"},
		{"Some Song (Lyric Video)", "Some Song"},
		{"Some Song [Lyrics]", "Some Song"},
		{"Amazing Track [HD]", "Amazing Track"},
		{"Song Title (Official Music Video) [4K]", "Song Title"},
		{"Song Title (Official Audio)", "Song Title"},
		{"Simple Song Title", "Simple Song Title"},
		{"Song (Club Mix)", "Song (Club Mix)"},
	}

	for _, tt := range tests {
		if result := cleanTitle(tt.input); result != tt.expected {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestParseVideoTitle(t *testing.T) {
	tests := []struct {
		name           string
		title          string
		channel        string
		expectedTitle  string
		expectedArtist string
	}{
		{
			name:           "VEVO channel with artist prefix",
			title:          "Rick Astley - Never Gonna Give You Up (Official Video)",
			channel:        "RickAstleyVEVO",
			expectedTitle:  "Never Gonna Give You Up",
			expectedArtist: "Rick Astley",
		},
		{
			name:           "Topic channel",
			title:          "Some Song Title",
			channel:        "Artist Name - Topic",
			expectedTitle:  "Some Song Title",
			expectedArtist: "Artist Name",
		},
		{
			name:           "Artist dash title",
			title:          "Artist - Track Title [HD]",
			channel:        "Random Uploads",
			expectedTitle:  "Track Title",
			expectedArtist: "Artist",
		},
		{
			name:           "VEVO channel keeps unrelated dash",
			title:          "Other - Song",
			channel:        "ArtistVEVO",
			expectedTitle:  "Other - Song",
			expectedArtist: "Artist",
		},
		{
			name:           "Channel as fallback",
			title:          "Just A Song",
			channel:        "Channel Name",
			expectedTitle:  "Just A Song",
			expectedArtist: "Channel Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, artist := parseVideoTitle(tt.title, tt.channel)
			if title != tt.expectedTitle || artist != tt.expectedArtist {
				t.Errorf("parseVideoTitle() = (%q, %q), want (%q, %q)",
					title, artist, tt.expectedTitle, tt.expectedArtist)
			}
		})
	}
}

func TestSplitCamelCase(t *testing.T) {
	tests := map[string]string{
		"RickAstley":   "Rick Astley",
		"JohnDoeSmith": "John Doe Smith",
		"Rick Astley":  "Rick Astley",
		"rickastley":   "rickastley",
		"ABCTest":      "ABCTest",
		"":             "",
	}

	for input, expected := range tests {
		if result := splitCamelCase(input); result != expected {
			t.Errorf("splitCamelCase(%q) = %q, want %q", input, result, expected)
		}
	}
}

func TestYouTubeResolver_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "Rick Astley - Never Gonna Give You Up (Official Music Video)",
			"author_name": "Rick Astley",
			"thumbnail_url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"
		}`))
	}))
	defer server.Close()

	resolver := NewYouTubeResolver(WithEndpoint(server.URL), WithHTTPClient(server.Client()))

	info, err := resolver.Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if info.Title != "Never Gonna Give You Up" || info.Artist != "Rick Astley" {
		t.Errorf("Resolve() = %q by %q", info.Title, info.Artist)
	}
	if info.Provider != ProviderYouTube || info.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("unexpected provider/url %q %q", info.Provider, info.URL)
	}
	if info.ThumbnailURL == "" {
		t.Error("expected a thumbnail")
	}

	if _, err := resolver.Resolve(context.Background(), "https://youtu.be/unknown"); err == nil {
		t.Error("expected an error for a 404 oEmbed response")
	}
	if _, err := resolver.Resolve(context.Background(), "https://example.com/x"); !errors.Is(err, ErrUnsupportedURL) {
		t.Errorf("expected ErrUnsupportedURL, got %v", err)
	}
}
