package soundcloud

import (
	"strings"

	scapi "soundbridge/pkg/soundcloud"
)

const (
	// previewDurationMs is the length SoundCloud truncates go+ tracks to for non-subscribers.
	previewDurationMs = 30000
	// policyAllow marks tracks that are fully playable regardless of their duration.
	policyAllow = "ALLOW"
)

// isPreview reports whether t is a 30 second cut of a longer track.
func isPreview(t *scapi.Track) bool {
	if strings.EqualFold(t.Policy, policyAllow) {
		return false
	}
	return t.Duration == previewDurationMs && t.FullDuration > previewDurationMs
}

// FilterPreviews drops preview cuts. When every track is a preview, tracks is returned
// unchanged: a preview beats nothing.
func FilterPreviews(tracks []*scapi.Track) []*scapi.Track {
	filtered := make([]*scapi.Track, 0, len(tracks))
	for _, t := range tracks {
		if t != nil && !isPreview(t) {
			filtered = append(filtered, t)
		}
	}

	if len(filtered) == 0 {
		return tracks
	}
	return filtered
}

func streamableOnly(tracks []*scapi.Track) []*scapi.Track {
	result := make([]*scapi.Track, 0, len(tracks))
	for _, t := range tracks {
		if t != nil && t.Streamable {
			result = append(result, t)
		}
	}
	return result
}
