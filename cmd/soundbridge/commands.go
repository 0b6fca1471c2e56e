package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"soundbridge/internal/core"
	httpserver "soundbridge/internal/http"
)

var errNoResults = errors.New("no results")

var resolveCmd = &cobra.Command{
	Use:   "resolve <url|query>",
	Short: "Resolve a SoundCloud URL or search term into tracks",
	Example: `  soundbridge resolve https://soundcloud.com/artist/track
  soundbridge resolve "scsearch:daft punk"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

var relatedCmd = &cobra.Command{
	Use:   "related <url>",
	Short: "List tracks related to a SoundCloud track",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelated,
}

var streamCmd = &cobra.Command{
	Use:   "stream <url>",
	Short: "Resolve a playable stream, bridging links from other providers",
	Long: `stream prints the stream URL in url mode. In bytes mode the audio is written to --output
(stdout when unset).`,
	Args: cobra.ExactArgs(1),
	RunE: runStream,
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge <spotify|youtube|apple music url>",
	Short: "Find the SoundCloud equivalent of a track from another provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runBridge,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API, health checks and metrics over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	for _, cmd := range []*cobra.Command{resolveCmd, relatedCmd, streamCmd, bridgeCmd} {
		cmd.Flags().String("requested-by", "", "Requester recorded on resolved tracks")
	}
	streamCmd.Flags().StringP("output", "o", "", "Write the audio to this file in bytes mode")
	relatedCmd.Flags().StringSlice("played", nil, "Track URLs already played, oldest first; they are left out of the suggestions")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func requestContext(cmd *cobra.Command) core.RequestContext {
	requestedBy, _ := cmd.Flags().GetString("requested-by")
	return core.RequestContext{RequestedBy: requestedBy}
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.close()

	query := strings.Join(args, " ")
	result := svcs.registry.Handle(ctx, query, requestContext(cmd))
	if result.Empty() {
		return noResults(query, result.Cause)
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

func runRelated(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.close()

	ext, rest, _, err := svcs.registry.Route(args[0])
	if err != nil {
		return err
	}

	seed := ext.Handle(ctx, rest, core.SearchContext{RequestContext: requestContext(cmd)})
	if seed.Empty() {
		return noResults(args[0], seed.Cause)
	}

	played, _ := cmd.Flags().GetStringSlice("played")
	svcs.history.Load(played)

	result := ext.GetRelatedTracks(ctx, seed.Tracks[0], svcs.history)
	if result.Empty() {
		return noResults(args[0], result.Cause)
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

func runStream(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.close()

	stream, played, err := svcs.registry.Play(ctx, svcs.links, args[0], requestContext(cmd))
	if err != nil {
		return err
	}
	logger.Info("Stream resolved", zap.String("track", played.URL), zap.Bool("bytes", stream.Body != nil))

	if stream.Body == nil {
		fmt.Fprintln(cmd.OutOrStdout(), stream.URL)
		return nil
	}
	defer stream.Body.Close()

	output, _ := cmd.Flags().GetString("output")
	return writeStream(cmd.OutOrStdout(), output, stream.Body)
}

func writeStream(stdout io.Writer, output string, body io.Reader) error {
	if output == "" || output == "-" {
		_, err := io.Copy(stdout, body)
		return err
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return file.Close()
}

func runBridge(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.close()

	track, source, err := svcs.links.Resolve(ctx, args[0], requestContext(cmd))
	if err != nil {
		return err
	}

	stream, via, err := svcs.registry.BridgeAny(ctx, track, source)
	if err != nil {
		return err
	}
	if stream.Body != nil {
		_ = stream.Body.Close()
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n", describe(track), source.Identifier())
	if bridged, _ := track.Bridged(); bridged != nil {
		fmt.Fprintf(w, "  -> %s (%s)\n     %s\n", describe(bridged), via, bridged.URL)
	}
	fmt.Fprintf(w, "  stream: %s\n", stream.URL)
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("Starting soundbridge",
		zap.String("stream_mode", string(config.SoundCloud.StreamMode)),
		zap.Bool("spotify_enabled", config.Spotify.Enabled()),
		zap.Int("history_size", config.History.Size))

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.close()

	server := httpserver.NewServer(&config.Server, httpserver.Deps{
		Registry: svcs.registry,
		Links:    svcs.links,
		History:  svcs.history,
		Metrics:  svcs.metrics,
		Gatherer: svcs.gatherer,
		Logger:   logger.Named("http"),
	})

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gCtx)
	})

	logger.Info("soundbridge started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("soundbridge stopped with error", zap.Error(err))
		return err
	}

	logger.Info("soundbridge stopped gracefully")
	return nil
}

func noResults(query string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w for %q", errNoResults, query)
	}
	return fmt.Errorf("%w for %q: %w", errNoResults, query, cause)
}

func describe(t *core.Track) string {
	if t.Author == "" {
		return t.Title
	}
	return t.Author + " - " + t.Title
}

func printResult(w io.Writer, result core.SearchResult) {
	if p := result.Playlist; p != nil {
		fmt.Fprintf(w, "%s by %s (%d tracks)\n%s\n\n", p.Title, p.Author.Name, len(p.Tracks), p.URL)
	}
	for i, t := range result.Tracks {
		fmt.Fprintf(w, "%2d. [%s] %s\n    %s\n", i+1, t.Duration, describe(t), t.URL)
	}
}
