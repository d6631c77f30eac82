// Package ytscribe downloads YouTube caption transcripts for a channel's
// uploads or a single video.
//
// Overview
//
// ytscribe wraps the YouTube Data API and the timedtext caption endpoint
// behind a rate-limited, retrying pipeline:
//
//   - youtube: channel resolution, upload enumeration, caption tracks,
//     and transcript fetching
//   - pipeline: run orchestration with per-video outcome tracking
//   - writer: plain-text and JSON artifacts plus list-mode reports
//
// Quick Start
//
// Enumerate a channel and fetch transcripts:
//
//	limiter := ratelimit.New(5, 10*time.Second)
//	yt, err := youtube.NewClient(ctx, apiKey, limiter, retry.DefaultPolicy())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client := http.New(http.DefaultConfig(), limiter)
//	defer client.Close()
//
//	runner := &pipeline.Runner{
//		Source:   pipeline.APISource(yt),
//		Captions: yt,
//		Fetcher:  youtube.NewTranscriptFetcher(client),
//		Writer:   sink,
//		Opts: pipeline.Options{
//			Channel:   "@somechannel",
//			MaxCount:  5,
//			Languages: []string{"en"},
//		},
//	}
//	summary, err := runner.Run(ctx)
//
// Configuration
//
// The CLI loads settings from flags, environment variables, and a .env
// file, in that priority order. The Data API key comes from
// YOUTUBE_API_KEY.
//
// Error Handling
//
// All operations return errors that support the standard patterns:
//
//	if errors.Is(err, ytscribe.ErrChannelNotFound) {
//		fmt.Println("channel not found")
//	}
//
//	var cerr *ytscribe.ChannelError
//	if errors.As(err, &cerr) {
//		fmt.Printf("enumerating %s failed: %v\n", cerr.Channel, cerr.Err)
//	}
//
// Rate Limiting
//
// Every remote call, Data API and timedtext alike, passes the same token
// bucket gate. Retried attempts re-acquire a token, so retries never
// bypass the budget.
package ytscribe
