// Package pipeline orchestrates enumeration, caption resolution, and
// transcript fetching into a single run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"

	httpclient "ytscribe/http"
	"ytscribe/ratelimit"
	"ytscribe/retry"
	"ytscribe/writer"
	"ytscribe/youtube"
)

// Outcome classifies the result of processing one video.
type Outcome int

const (
	// OutcomeUnknown means the video was never processed (run canceled
	// or aborted first).
	OutcomeUnknown Outcome = iota
	// OutcomeSuccess means a transcript artifact was produced.
	OutcomeSuccess
	// OutcomeNoCaptions means the video has no caption tracks.
	OutcomeNoCaptions
	// OutcomeLanguageUnavailable means no preferred language matched.
	OutcomeLanguageUnavailable
	// OutcomeRateLimited means the server rate limited the fetch past
	// the retry budget.
	OutcomeRateLimited
	// OutcomeTimedOut means the rate gate or request deadline expired.
	OutcomeTimedOut
	// OutcomeTransient means a retryable fault survived all retries.
	OutcomeTransient
	// OutcomeFatal means a non-retryable fault; it aborts the run.
	OutcomeFatal
)

// String returns the outcome label used in logs and reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoCaptions:
		return "no_captions"
	case OutcomeLanguageUnavailable:
		return "language_unavailable"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeTransient:
		return "transient_error"
	case OutcomeFatal:
		return "fatal_error"
	default:
		return "unknown"
	}
}

// Fatal reports whether the outcome aborts the rest of the run.
// A single video's fatal fetch error (auth, permission, quota) would fail
// every subsequent call too, so the run stops rather than burn quota.
func (o Outcome) Fatal() bool { return o == OutcomeFatal }

// VideoSource enumerates a channel's videos.
type VideoSource interface {
	Videos(ctx context.Context, channel string, opts youtube.EnumerateOptions) youtube.VideoIterator
}

// CaptionLister lists the caption tracks available for a video.
type CaptionLister interface {
	ListTracks(ctx context.Context, videoID string) ([]youtube.CaptionTrack, error)
}

// TranscriptFetcher downloads one caption track.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, track youtube.CaptionTrack) (*youtube.Transcript, error)
}

// ArtifactWriter persists transcripts and reports.
type ArtifactWriter interface {
	WriteTranscript(t *youtube.Transcript, title string) (string, error)
	WriteReport(r *writer.Report) (string, error)
}

// APISource adapts a youtube.Client to the VideoSource interface.
func APISource(c *youtube.Client) VideoSource { return apiSource{c} }

type apiSource struct{ client *youtube.Client }

func (s apiSource) Videos(ctx context.Context, channel string, opts youtube.EnumerateOptions) youtube.VideoIterator {
	return s.client.Videos(ctx, channel, opts)
}

// Options configures one run.
type Options struct {
	// Channel is the channel reference for channel mode.
	Channel string
	// VideoID selects single-video mode; mutually exclusive with Channel.
	VideoID string
	// MaxCount caps the number of videos processed (channel mode).
	MaxCount int
	// IncludeShorts keeps Shorts in the enumeration.
	IncludeShorts bool
	// Languages is the ordered language preference list.
	Languages []string
	// ForceFallback falls back to the first available track when no
	// preferred language matches.
	ForceFallback bool
	// ListOnly aggregates available languages instead of fetching.
	ListOnly bool
	// Concurrency bounds the worker pool; values below 1 mean sequential.
	// Throughput is still capped by the shared rate gate.
	Concurrency int
}

// Item records the outcome for one video.
type Item struct {
	VideoID string
	Outcome Outcome
	// Path is the artifact path on success.
	Path string
	// Err is the failure detail for non-success outcomes.
	Err error

	transcript *youtube.Transcript
	title      string
}

// Summary aggregates one run.
type Summary struct {
	// RunID uniquely identifies the run.
	RunID string
	// VideoCount is the number of videos considered.
	VideoCount int
	// MostRecent is the newest publish timestamp among enumerated videos.
	MostRecent time.Time
	// Items holds per-video outcomes in enumeration order.
	Items []Item
	// ReportPath is the list-mode report location.
	ReportPath string
}

// Count returns how many items ended with the given outcome.
func (s *Summary) Count(o Outcome) int {
	n := 0
	for _, item := range s.Items {
		if item.Outcome == o {
			n++
		}
	}
	return n
}

// Runner drives one run over its collaborators.
type Runner struct {
	Source   VideoSource
	Captions CaptionLister
	Fetcher  TranscriptFetcher
	Writer   ArtifactWriter
	Log      *zap.Logger
	Opts     Options
}

// Run executes the pipeline. Per-video failures are recorded in the
// summary and skipped; resolution errors, fatal remote errors, and local
// write errors abort the run and are returned alongside the partial
// summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if r.Log == nil {
		r.Log = zap.NewNop()
	}

	summary := &Summary{RunID: uuid.NewString()}
	log := r.Log.With(zap.String("run_id", summary.RunID))

	refs, err := r.gather(ctx)
	if err != nil {
		log.Error("enumeration failed", zap.Error(err))
		return summary, err
	}

	summary.VideoCount = len(refs)
	for _, ref := range refs {
		if ref.PublishedAt.After(summary.MostRecent) {
			summary.MostRecent = ref.PublishedAt
		}
	}
	log.Info("videos enumerated", zap.Int("count", len(refs)))

	if r.Opts.ListOnly {
		return summary, r.list(ctx, refs, summary, log)
	}
	return summary, r.download(ctx, refs, summary, log)
}

// gather produces the refs for the run: a synthetic single ref in
// single-video mode, the enumerated sequence otherwise.
func (r *Runner) gather(ctx context.Context) ([]youtube.VideoRef, error) {
	if r.Opts.VideoID != "" {
		return []youtube.VideoRef{{ID: r.Opts.VideoID}}, nil
	}

	seq := r.Source.Videos(ctx, r.Opts.Channel, youtube.EnumerateOptions{
		MaxCount:      r.Opts.MaxCount,
		IncludeShorts: r.Opts.IncludeShorts,
	})

	var refs []youtube.VideoRef
	for seq.Next() {
		refs = append(refs, seq.Video())
	}
	if err := seq.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// list aggregates available caption languages without fetching content.
func (r *Runner) list(ctx context.Context, refs []youtube.VideoRef, summary *Summary, log *zap.Logger) error {
	report := &writer.Report{
		RunID:      summary.RunID,
		Channel:    r.Opts.Channel,
		VideoCount: len(refs),
		MostRecent: summary.MostRecent,
		Languages:  make(map[string][]string, len(refs)),
	}

	for _, ref := range refs {
		item := Item{VideoID: ref.ID}

		tracks, err := r.Captions.ListTracks(ctx, ref.ID)
		switch {
		case err == nil:
			langs := make([]string, len(tracks))
			for i, track := range tracks {
				langs[i] = track.Language
			}
			report.Languages[ref.ID] = langs
			item.Outcome = OutcomeSuccess
		case errors.Is(err, youtube.ErrNoCaptions):
			report.Languages[ref.ID] = []string{}
			item.Outcome = OutcomeNoCaptions
			item.Err = err
		default:
			item.Outcome = classify(err)
			item.Err = err
		}

		log.Info("video listed",
			zap.String("video_id", ref.ID),
			zap.Stringer("outcome", item.Outcome))

		summary.Items = append(summary.Items, item)
		if item.Outcome.Fatal() {
			return fmt.Errorf("list %s: %w", ref.ID, item.Err)
		}
	}

	path, err := r.Writer.WriteReport(report)
	if err != nil {
		return err
	}
	summary.ReportPath = path
	return nil
}

// download fetches transcripts, bounded by Opts.Concurrency, and writes
// artifacts in enumeration order once fetching settles. A fatal item
// cancels the remaining workers; transcripts fetched before the abort are
// still flushed to disk.
func (r *Runner) download(ctx context.Context, refs []youtube.VideoRef, summary *Summary, log *zap.Logger) error {
	concurrency := r.Opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	items := make([]Item, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			items[i] = r.process(gctx, ref)
			log.Info("video processed",
				zap.String("video_id", ref.ID),
				zap.Stringer("outcome", items[i].Outcome))
			if items[i].Outcome.Fatal() {
				return fmt.Errorf("fetch %s: %w", ref.ID, items[i].Err)
			}
			return nil
		})
	}
	fatal := g.Wait()

	// Flush whatever succeeded, preserving enumeration order.
	for i := range items {
		if items[i].Outcome != OutcomeSuccess || items[i].transcript == nil {
			continue
		}
		path, err := r.Writer.WriteTranscript(items[i].transcript, items[i].title)
		if err != nil {
			items[i].Outcome = OutcomeFatal
			items[i].Err = err
			summary.Items = items
			return err
		}
		items[i].Path = path
	}

	summary.Items = items
	return fatal
}

// process resolves, selects, and fetches one video's transcript.
func (r *Runner) process(ctx context.Context, ref youtube.VideoRef) Item {
	item := Item{VideoID: ref.ID, title: ref.Title}

	tracks, err := r.Captions.ListTracks(ctx, ref.ID)
	if err != nil {
		item.Outcome = classify(err)
		item.Err = err
		return item
	}

	track, err := youtube.SelectTrack(tracks, r.Opts.Languages, r.Opts.ForceFallback)
	if err != nil {
		item.Outcome = classify(err)
		item.Err = err
		return item
	}

	transcript, err := r.Fetcher.Fetch(ctx, track)
	if err != nil {
		item.Outcome = classify(err)
		item.Err = err
		return item
	}

	item.Outcome = OutcomeSuccess
	item.transcript = transcript
	return item
}

// classify maps an error to its outcome.
func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, youtube.ErrNoCaptions):
		return OutcomeNoCaptions
	case errors.Is(err, youtube.ErrLanguageUnavailable):
		return OutcomeLanguageUnavailable
	case errors.Is(err, ratelimit.ErrAcquireTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimedOut
	case errors.Is(err, context.Canceled):
		// The run was aborted before this video finished.
		return OutcomeUnknown
	}

	var rle *httpclient.RateLimitError
	if errors.As(err, &rle) {
		return OutcomeRateLimited
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return OutcomeRateLimited
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return OutcomeTransient
	}

	var se *httpclient.StatusError
	if errors.As(err, &se) && se.Transient() {
		return OutcomeTransient
	}

	return OutcomeFatal
}
