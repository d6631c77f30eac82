package cli

import (
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download transcripts for a channel's videos or a single video",
	Long: `Download caption transcripts.

In channel mode the most recent uploads are processed, Shorts excluded
unless --include-shorts is set. In single-video mode exactly one transcript
is fetched.

Examples:
  ytscribe download -c @somechannel -m 10 -l en,fr -d ./out
  ytscribe download -v dQw4w9WgXcQ -l en -f json
  ytscribe download -c @somechannel --force-download --include-shorts`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringP("format", "f", "plain_text", "Artifact format: plain_text or json")
	downloadCmd.Flags().BoolP("time-codes", "t", false, "Include segment start times in plain-text output")
	downloadCmd.Flags().Bool("force-download", false, "Fall back to any available caption language when no preference matches")
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, false)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		raw, _ := flags.GetString("format")
		cfg.Format = writerFormat(raw)
	}
	if flags.Changed("time-codes") {
		cfg.TimeCodes, _ = flags.GetBool("time-codes")
	}
	if flags.Changed("force-download") {
		cfg.ForceFallback, _ = flags.GetBool("force-download")
	}

	return run(cmd, cfg)
}
