package musiclink

import (
	"context"
	"errors"
	"testing"
)

type stubResolver struct {
	provider string
	host     string
	calls    int
}

func (s *stubResolver) Provider() string { return s.provider }

func (s *stubResolver) CanResolve(url string) bool {
	return len(url) >= len(s.host) && url[:len(s.host)] == s.host
}

func (s *stubResolver) Resolve(_ context.Context, url string) (*TrackInfo, error) {
	s.calls++
	return &TrackInfo{Provider: s.provider, URL: url, Title: "Title"}, nil
}

func TestManager_CanResolve(t *testing.T) {
	manager := NewManager()

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"YouTube standard URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"YouTube short URL", "https://youtu.be/dQw4w9WgXcQ", true},
		{"Apple Music URL", "https://music.apple.com/us/album/test/123?i=456", true},
		{"SoundCloud URL", "https://soundcloud.com/artist/track", false},
		{"Spotify URL", "https://open.spotify.com/track/123", false},
		{"Invalid URL", "not-a-url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := manager.CanResolve(tt.url); result != tt.expected {
				t.Errorf("CanResolve() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestManager_ResolveUsesFirstMatch(t *testing.T) {
	first := &stubResolver{provider: "first", host: "https://a.example"}
	second := &stubResolver{provider: "second", host: "https://a.example"}
	manager := NewManagerWith(first, second)

	info, err := manager.Resolve(context.Background(), "https://a.example/track")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if info.Provider != "first" || first.calls != 1 || second.calls != 0 {
		t.Errorf("unexpected resolution: %+v, calls %d/%d", info, first.calls, second.calls)
	}
}

func TestManager_ResolveUnsupported(t *testing.T) {
	manager := NewManagerWith(&stubResolver{provider: "a", host: "https://a.example"})

	if _, err := manager.Resolve(context.Background(), "https://b.example/track"); !errors.Is(err, ErrNoResolver) {
		t.Errorf("Resolve() error = %v, want ErrNoResolver", err)
	}
}

func TestManager_Providers(t *testing.T) {
	got := NewManager().Providers()
	if len(got) != 2 || got[0] != ProviderYouTube || got[1] != ProviderAppleMusic {
		t.Errorf("Providers() = %v", got)
	}
}
