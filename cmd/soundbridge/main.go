// Package main provides the soundbridge CLI application entry point.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"soundbridge/internal/core"
)

const envPrefix = "SOUNDBRIDGE"

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "soundbridge",
	Short: "soundbridge - SoundCloud source extractor",
	Long: `soundbridge resolves SoundCloud URLs and searches into playable tracks, suggests related
tracks and bridges links from other providers (Spotify, YouTube, Apple Music) to SoundCloud streams.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, console)")
	rootCmd.PersistentFlags().String("soundcloud-client-id", "", "SoundCloud client ID (scraped from the web app when empty)")
	rootCmd.PersistentFlags().String("soundcloud-oauth-token", "", "SoundCloud OAuth token")
	rootCmd.PersistentFlags().String("soundcloud-proxy", "", "Proxy URL for SoundCloud requests")
	rootCmd.PersistentFlags().String("stream-mode", string(core.StreamModeURL), "Stream mode (url, bytes)")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("server-host", core.DefaultServerHost, "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", core.DefaultServerPort, "HTTP server port")
	rootCmd.PersistentFlags().Int("history-size", core.DefaultHistorySize, "Number of played tracks remembered for related suggestions")
	rootCmd.PersistentFlags().Float64("history-false-positive-rate", core.DefaultHistoryFalsePositiveRate, "Play history bloom filter false positive rate")
	rootCmd.Flags().Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(resolveCmd, relatedCmd, streamCmd, bridgeCmd, serveCmd)
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureSoundCloud(cfg)
	configureSpotify(cfg)
	configureServer(cfg)
	configureHistory(cfg)

	return cfg
}

func configureSoundCloud(cfg *core.Config) {
	cfg.SoundCloud.ClientID = viper.GetString("soundcloud-client-id")
	cfg.SoundCloud.OAuthToken = viper.GetString("soundcloud-oauth-token")
	cfg.SoundCloud.Proxy = viper.GetString("soundcloud-proxy")
	cfg.SoundCloud.StreamMode = core.StreamMode(strings.ToLower(viper.GetString("stream-mode")))
	if cfg.SoundCloud.StreamMode == "" {
		cfg.SoundCloud.StreamMode = core.StreamModeURL
	}
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = core.DefaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureHistory(cfg *core.Config) {
	cfg.History.Size = viper.GetInt("history-size")
	if cfg.History.Size <= 0 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid history size (%d), using default (%d)\n",
			cfg.History.Size, core.DefaultHistorySize)
		cfg.History.Size = core.DefaultHistorySize
	}
	cfg.History.FalsePositiveRate = viper.GetFloat64("history-false-positive-rate")
	if cfg.History.FalsePositiveRate <= 0 || cfg.History.FalsePositiveRate >= 1 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid history false positive rate (%v), using default (%v)\n",
			cfg.History.FalsePositiveRate, core.DefaultHistoryFalsePositiveRate)
		cfg.History.FalsePositiveRate = core.DefaultHistoryFalsePositiveRate
	}
}

func buildLogger(cfg core.LogConfig) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if generate, _ := cmd.Flags().GetBool("generate-env-example"); generate {
		return generateEnvExample(cmd)
	}
	return cmd.Help()
}
