package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/grafov/m3u8"
	"go.uber.org/zap"
)

// PickTranscoding chooses the transcoding to stream: full-length progressive first, then
// full-length HLS, then whatever is left.
func PickTranscoding(media Media) (*Transcoding, error) {
	var fallback *Transcoding
	for _, protocol := range []string{ProtocolProgressive, ProtocolHLS} {
		for i := range media.Transcodings {
			t := &media.Transcodings[i]
			if t.Format.Protocol != protocol {
				continue
			}
			if !t.Snipped {
				return t, nil
			}
			if fallback == nil {
				fallback = t
			}
		}
	}
	if fallback == nil {
		return nil, ErrNoTranscoding
	}
	return fallback, nil
}

// StreamURL resolves a playable URL for the track at rawURL. For HLS transcodings this is
// the URL of the media playlist.
func (c *Client) StreamURL(ctx context.Context, rawURL string) (string, error) {
	streamURL, _, err := c.streamLink(ctx, rawURL)
	return streamURL, err
}

// StreamBytes opens the audio of the track at rawURL. Progressive streams are returned as-is;
// HLS media segments are fetched in order and concatenated. The caller closes the reader.
func (c *Client) StreamBytes(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	streamURL, protocol, err := c.streamLink(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if protocol == ProtocolHLS {
		return c.openHLS(ctx, streamURL)
	}

	resp, err := c.openStream(ctx, streamURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	return resp.Body, nil
}

func (c *Client) streamLink(ctx context.Context, rawURL string) (streamURL, protocol string, err error) {
	track, err := c.GetTrack(ctx, rawURL)
	if err != nil {
		return "", "", err
	}

	transcoding, err := PickTranscoding(track.Media)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", err, track.PermalinkURL)
	}

	params := url.Values{}
	if track.TrackAuthorization != "" {
		params.Set("track_authorization", track.TrackAuthorization)
	}

	var resp streamResponse
	if err := c.getJSON(ctx, transcoding.URL, params, &resp); err != nil {
		return "", "", fmt.Errorf("failed to resolve transcoding: %w", err)
	}
	if resp.URL == "" {
		return "", "", fmt.Errorf("%w: empty stream url for %s", ErrNoTranscoding, track.PermalinkURL)
	}
	return resp.URL, transcoding.Format.Protocol, nil
}

// openHLS parses the media playlist at playlistURL and streams its segments through a pipe.
func (c *Client) openHLS(ctx context.Context, playlistURL string) (io.ReadCloser, error) {
	segments, err := c.hlsSegments(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		for _, segment := range segments {
			if err := c.copySegment(ctx, pw, segment); err != nil {
				if !errors.Is(err, io.ErrClosedPipe) {
					c.logger.Debug("HLS segment copy failed", zap.String("segment", segment), zap.Error(err))
				}
				pw.CloseWithError(err)
				return
			}
		}
		_ = pw.Close()
	}()
	return pr, nil
}

func (c *Client) hlsSegments(ctx context.Context, playlistURL string) ([]string, error) {
	resp, err := c.do(ctx, playlistURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HLS playlist: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	playlist, listType, err := m3u8.DecodeFrom(resp.Body, true)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HLS playlist: %w", err)
	}
	if listType != m3u8.MEDIA {
		return nil, errors.New("HLS playlist is not a media playlist")
	}
	media := playlist.(*m3u8.MediaPlaylist)

	base, err := url.Parse(playlistURL)
	if err != nil {
		return nil, err
	}

	var segments []string
	for _, segment := range media.Segments {
		if segment == nil {
			continue
		}
		ref, err := url.Parse(segment.URI)
		if err != nil {
			return nil, fmt.Errorf("invalid segment URI %q: %w", segment.URI, err)
		}
		segments = append(segments, base.ResolveReference(ref).String())
	}
	if len(segments) == 0 {
		return nil, errors.New("HLS playlist has no segments")
	}
	return segments, nil
}

func (c *Client) copySegment(ctx context.Context, w io.Writer, segmentURL string) error {
	resp, err := c.openStream(ctx, segmentURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	_, err = io.Copy(w, resp.Body)
	return err
}
