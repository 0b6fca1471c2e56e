package core

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.SoundCloud.StreamMode != StreamModeURL {
		t.Errorf("Expected default stream mode %q, got %q", StreamModeURL, config.SoundCloud.StreamMode)
	}

	if config.Server.Port != DefaultServerPort {
		t.Errorf("Expected default port %d, got %d", DefaultServerPort, config.Server.Port)
	}

	if config.History.Size != DefaultHistorySize {
		t.Errorf("Expected default history size %d, got %d", DefaultHistorySize, config.History.Size)
	}

	if config.Spotify.Enabled() {
		t.Error("Spotify should be disabled without credentials")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "Bytes stream mode",
			mutate: func(c *Config) { c.SoundCloud.StreamMode = StreamModeBytes },
		},
		{
			name:    "Unknown stream mode",
			mutate:  func(c *Config) { c.SoundCloud.StreamMode = "pipe" },
			wantErr: true,
		},
		{
			name:    "Port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "Zero history size",
			mutate:  func(c *Config) { c.History.Size = 0 },
			wantErr: true,
		},
		{
			name:    "False positive rate of one",
			mutate:  func(c *Config) { c.History.FalsePositiveRate = 1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSpotifyConfigEnabled(t *testing.T) {
	config := SpotifyConfig{ClientID: "id"}
	if config.Enabled() {
		t.Error("Spotify should need both client id and secret")
	}

	config.ClientSecret = "secret"
	if !config.Enabled() {
		t.Error("Spotify should be enabled with client id and secret")
	}
}
