package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# soundbridge Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: SOUNDBRIDGE_<SECTION>_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<section>-<setting>\n")
	content.WriteString("#\n\n")

	writeSection(&content, cmd, "SoundCloud", []envEntry{
		{flag: "soundcloud-client-id", comment: "Scraped from soundcloud.com when empty"},
		{flag: "soundcloud-oauth-token", comment: "Optional, unlocks go+ streams of the token owner"},
		{flag: "soundcloud-proxy", comment: "Optional proxy URL, e.g. http://127.0.0.1:3128"},
		{flag: "stream-mode", comment: "url (stream URL) or bytes (proxied audio)"},
	})
	writeSection(&content, cmd, "Spotify (optional bridge source)", []envEntry{
		{flag: "spotify-client-id", comment: "From https://developer.spotify.com/dashboard"},
		{flag: "spotify-client-secret", comment: "Client credentials flow, no user login needed"},
	})
	writeSection(&content, cmd, "HTTP Server", []envEntry{
		{flag: "server-host"},
		{flag: "server-port"},
	})
	writeSection(&content, cmd, "Play History", []envEntry{
		{flag: "history-size", comment: "Played tracks skipped by related suggestions"},
		{flag: "history-false-positive-rate"},
	})
	writeSection(&content, cmd, "Logging", []envEntry{
		{flag: "log-level", comment: "debug, info, warn, error"},
		{flag: "log-format", comment: "json or console"},
	})

	return content.String()
}

type envEntry struct {
	flag    string
	comment string
}

func writeSection(content *strings.Builder, cmd *cobra.Command, title string, entries []envEntry) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString("# -----------------------------------------------------------------------------\n")

	for _, entry := range entries {
		line := fmt.Sprintf("%s=%s", flagToEnvVar(entry.flag), getDefaultValueString(cmd, entry.flag))
		if entry.comment != "" {
			line = fmt.Sprintf("%-48s # %s", line, entry.comment)
		}
		content.WriteString(line + "\n")
	}
	content.WriteString("\n")
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.Root().PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}
