package core

import (
	"context"

	"go.uber.org/zap"
)

// Play opens a stream for target. Links that one of links recognizes are resolved and bridged
// through the other active extractors; anything else is routed to its owning extractor and
// streamed directly. The returned track is the one actually played.
func (r *Registry) Play(ctx context.Context, links Links, target string, rc RequestContext) (*Streamable, *Track, error) {
	if links.CanResolve(target) {
		track, source, err := links.Resolve(ctx, target, rc)
		if err != nil {
			return nil, nil, err
		}

		stream, via, err := r.BridgeAny(ctx, track, source)
		if err != nil {
			return nil, nil, err
		}

		played := track
		if bridged, _ := track.Bridged(); bridged != nil {
			played = bridged
		}
		r.logger.Info("Bridged stream",
			zap.String("source", source.Identifier()),
			zap.String("via", via),
			zap.String("url", played.URL))
		return stream, played, nil
	}

	ext, rest, _, err := r.Route(target)
	if err != nil {
		return nil, nil, err
	}

	track := &Track{URL: rest, Source: ext.Identifier(), RequestedBy: rc.RequestedBy}
	stream, err := ext.Stream(ctx, track)
	if err != nil {
		return nil, nil, err
	}
	return stream, track, nil
}
