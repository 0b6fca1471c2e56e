package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"soundbridge/internal/core"
	httpserver "soundbridge/internal/http"
	"soundbridge/internal/soundcloud"
	"soundbridge/internal/spotify"
	"soundbridge/internal/store"
	"soundbridge/pkg/musiclink"
)

type services struct {
	registry *core.Registry
	links    core.Links
	history  *store.History
	metrics  *httpserver.Metrics
	gatherer prometheus.Gatherer
}

func initializeServices(ctx context.Context) (*services, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpserver.NewMetrics(promRegistry)

	extractor, err := soundcloud.NewFromConfig(config.SoundCloud, logger, metrics)
	if err != nil {
		return nil, err
	}

	registry := core.NewRegistry(logger)
	if err := registry.Register(ctx, extractor); err != nil {
		return nil, err
	}

	links, err := buildLinks(ctx)
	if err != nil {
		_ = registry.Close(context.Background())
		return nil, err
	}

	history := store.NewHistory(config.History.Size, config.History.FalsePositiveRate)
	httpserver.RegisterHistorySize(promRegistry, history)

	return &services{
		registry: registry,
		links:    links,
		history:  history,
		metrics:  metrics,
		gatherer: promRegistry,
	}, nil
}

// buildLinks lists the foreign-link resolvers used as bridge sources. Spotify is only added
// when credentials are configured.
func buildLinks(ctx context.Context) (core.Links, error) {
	links := core.Links{}

	if config.Spotify.Enabled() {
		spotifyClient, err := spotify.NewClient(config.Spotify, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spotify client: %w", err)
		}
		if err := spotifyClient.Authenticate(ctx); err != nil {
			return nil, fmt.Errorf("failed to authenticate with Spotify: %w", err)
		}
		links = append(links, spotifyClient)
	} else {
		logger.Debug("Spotify credentials not configured, Spotify links cannot be bridged")
	}

	manager := musiclink.NewManager()
	links = append(links, core.NewMusicLinkResolvers(manager)...)

	logger.Debug("Link resolvers ready", zap.Int("count", len(links)), zap.Strings("providers", manager.Providers()))
	return links, nil
}

func (s *services) close() {
	if err := s.registry.Close(context.Background()); err != nil {
		logger.Debug("Failed to deactivate extractors", zap.Error(err))
	}
}
