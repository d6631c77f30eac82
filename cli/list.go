package cli

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available caption languages without downloading",
	Long: `List the caption languages available for a channel's videos or a
single video. No transcripts are fetched; the aggregation is written as a
report under the destination directory.

Examples:
  ytscribe list -c @somechannel -m 10
  ytscribe list -v dQw4w9WgXcQ -F json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("format", "f", "plain_text", "Report format: plain_text or json")
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, true)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("format") {
		raw, _ := cmd.Flags().GetString("format")
		cfg.Format = writerFormat(raw)
	}

	return run(cmd, cfg)
}
