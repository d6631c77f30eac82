// Package cli implements the ytscribe command line interface.
package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ytscribe",
	Short: "Download YouTube transcripts for a channel or a single video",
	Long: `Ytscribe enumerates a YouTube channel's uploads and downloads their
caption transcripts, or fetches the transcript of a single video.

API calls are rate limited and retried with exponential backoff. Transcripts
are written as plain text or JSON artifacts under the destination directory,
alongside a timestamped run log.

The YouTube Data API key is read from the --api-key flag, the
YOUTUBE_API_KEY environment variable, or a .env file in the working
directory.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("api-key", "k", "", "YouTube Data API key (or set YOUTUBE_API_KEY)")
	pf.StringP("channel", "c", "", "Channel handle, UC id, or channel URL")
	pf.StringP("video-id", "v", "", "Single video id instead of a channel")
	pf.StringP("destination-directory", "d", ".", "Directory for artifacts and logs")
	pf.IntP("max-number-of-videos", "m", 5, "Maximum number of videos to process (0 = all)")
	pf.StringP("languages-of-subtitles", "l", "en", "Preferred caption languages, e.g. en,fr or [en,fr]")
	pf.Float64P("rate-limit", "r", 5, "API calls per second")
	pf.DurationP("timeout", "T", 10*time.Second, "Maximum wait for one rate-gate slot")
	pf.Int("concurrency", 1, "Number of parallel transcript downloads")
	pf.Bool("include-shorts", false, "Include Shorts in channel enumeration")
	pf.StringP("log-level", "L", "info", "Log level: debug, info, warn, error")
	pf.StringP("log-format", "F", "console", "Log format: console or json")
	pf.Bool("console-log", false, "Mirror the run log to stderr")
}
