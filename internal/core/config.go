package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultServerHost is the default HTTP server host.
	DefaultServerHost = "0.0.0.0"
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080
	// DefaultHistorySize is the number of played URLs remembered for related-track lookups.
	DefaultHistorySize = 500
	// DefaultHistoryFalsePositiveRate is the bloom filter false positive rate of the play history.
	DefaultHistoryFalsePositiveRate = 0.001
	// maxPort is the highest valid TCP port.
	maxPort = 65535
)

type Config struct {
	SoundCloud SoundCloudConfig
	Spotify    SpotifyConfig
	Server     ServerConfig
	Log        LogConfig
	History    HistoryConfig
}

type SoundCloudConfig struct {
	ClientID   string
	OAuthToken string
	Proxy      string
	StreamMode StreamMode
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether Spotify links can be used as bridge sources.
func (c SpotifyConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type HistoryConfig struct {
	Size              int
	FalsePositiveRate float64
}

func DefaultConfig() *Config {
	return &Config{
		SoundCloud: SoundCloudConfig{
			StreamMode: StreamModeURL,
		},
		Server: ServerConfig{
			Host:         DefaultServerHost,
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // byte streams are long-lived
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		History: HistoryConfig{
			Size:              DefaultHistorySize,
			FalsePositiveRate: DefaultHistoryFalsePositiveRate,
		},
	}
}

// Validate checks the values the CLI cannot default on its own.
func (c *Config) Validate() error {
	switch c.SoundCloud.StreamMode {
	case StreamModeURL, StreamModeBytes:
	default:
		return fmt.Errorf("unknown stream mode %q (want %q or %q)", c.SoundCloud.StreamMode, StreamModeURL, StreamModeBytes)
	}

	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if c.History.Size <= 0 {
		return errors.New("history size must be positive")
	}
	if c.History.FalsePositiveRate <= 0 || c.History.FalsePositiveRate >= 1 {
		return fmt.Errorf("history false positive rate %v must be in (0, 1)", c.History.FalsePositiveRate)
	}

	return nil
}
