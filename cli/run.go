package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ytscribe/config"
	httpclient "ytscribe/http"
	"ytscribe/logging"
	"ytscribe/pipeline"
	"ytscribe/ratelimit"
	"ytscribe/retry"
	"ytscribe/writer"
	"ytscribe/youtube"
)

// writerFormat normalizes a format flag value. Validation happens in
// Config.Validate, so unknown values pass through and fail there.
func writerFormat(raw string) writer.Format {
	return writer.Format(strings.ToLower(raw))
}

// buildConfig layers flag values over environment-derived configuration.
// Only flags the user actually set override the environment.
func buildConfig(cmd *cobra.Command, listOnly bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.ListOnly = listOnly

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("channel") {
		cfg.Channel, _ = flags.GetString("channel")
	}
	if flags.Changed("video-id") {
		cfg.VideoID, _ = flags.GetString("video-id")
	}
	if flags.Changed("destination-directory") {
		cfg.DestDir, _ = flags.GetString("destination-directory")
	}
	if flags.Changed("max-number-of-videos") {
		cfg.MaxVideos, _ = flags.GetInt("max-number-of-videos")
	}
	if flags.Changed("languages-of-subtitles") {
		raw, _ := flags.GetString("languages-of-subtitles")
		cfg.Languages = config.ParseLanguages(raw)
	}
	if flags.Changed("rate-limit") {
		cfg.Rate, _ = flags.GetFloat64("rate-limit")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("include-shorts") {
		cfg.IncludeShorts, _ = flags.GetBool("include-shorts")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("console-log") {
		cfg.ConsoleLog, _ = flags.GetBool("console-log")
	}

	return cfg, nil
}

// run wires the collaborators and executes one pipeline run. Per-video
// failures are reported in the summary but do not fail the command; fatal
// errors do.
func run(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, logPath, err := logging.New(logging.Options{
		Dir:     cfg.DestDir,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Console: cfg.ConsoleLog,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := ratelimit.New(cfg.Rate, cfg.Timeout)

	httpCfg := httpclient.DefaultConfig()
	client := httpclient.New(httpCfg, limiter)
	defer client.Close()

	yt, err := youtube.NewClient(ctx, cfg.APIKey, limiter, retry.DefaultPolicy())
	if err != nil {
		return err
	}

	sink, err := writer.New(cfg.DestDir, cfg.Format, cfg.TimeCodes)
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Source:   pipeline.APISource(yt),
		Captions: yt,
		Fetcher:  youtube.NewTranscriptFetcher(client),
		Writer:   sink,
		Log:      log,
		Opts: pipeline.Options{
			Channel:       cfg.Channel,
			VideoID:       cfg.VideoID,
			MaxCount:      cfg.MaxVideos,
			IncludeShorts: cfg.IncludeShorts,
			Languages:     cfg.Languages,
			ForceFallback: cfg.ForceFallback,
			ListOnly:      cfg.ListOnly,
			Concurrency:   cfg.Concurrency,
		},
	}

	summary, runErr := runner.Run(ctx)
	printSummary(cmd, summary, logPath)
	return runErr
}

func printSummary(cmd *cobra.Command, summary *pipeline.Summary, logPath string) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Run %s: %d videos\n", summary.RunID, summary.VideoCount)
	if summary.ReportPath != "" {
		fmt.Fprintf(out, "Report: %s\n", summary.ReportPath)
	}

	for _, outcome := range []pipeline.Outcome{
		pipeline.OutcomeSuccess,
		pipeline.OutcomeNoCaptions,
		pipeline.OutcomeLanguageUnavailable,
		pipeline.OutcomeRateLimited,
		pipeline.OutcomeTimedOut,
		pipeline.OutcomeTransient,
		pipeline.OutcomeFatal,
	} {
		if n := summary.Count(outcome); n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", outcome, n)
		}
	}

	for _, item := range summary.Items {
		if item.Outcome != pipeline.OutcomeSuccess && item.Err != nil {
			fmt.Fprintf(out, "  %s: %s (%v)\n", item.VideoID, item.Outcome, item.Err)
		}
	}

	fmt.Fprintf(out, "Log: %s\n", logPath)
}
