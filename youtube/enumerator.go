package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"ytscribe/ratelimit"
	"ytscribe/retry"
)

// pageSize is the playlistItems page size; 50 is the API maximum.
const pageSize = 50

var channelIDRegex = regexp.MustCompile(`UC[A-Za-z0-9_-]{22}`)

// Client talks to the YouTube Data API v3. All calls pass through the
// shared rate limiter and are retried per the configured policy.
type Client struct {
	svc     *ytapi.Service
	limiter *ratelimit.Limiter
	policy  retry.Policy
}

// NewClient creates a Data API client. Extra options are mainly useful in
// tests (custom endpoint and HTTP client).
func NewClient(ctx context.Context, apiKey string, limiter *ratelimit.Limiter, policy retry.Policy, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: api key required")
	}

	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := ytapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{svc: svc, limiter: limiter, policy: policy}, nil
}

// call runs one API operation under the rate gate and retry policy.
func (c *Client) call(ctx context.Context, fn func(context.Context) error) error {
	return retry.Do(ctx, c.policy, nil, func(ctx context.Context) error {
		if err := c.limiter.Acquire(ctx); err != nil {
			return retry.Permanent(err)
		}
		return classifyAPIError(fn(ctx))
	})
}

// classifyAPIError marks non-retryable Data API failures as permanent.
// Auth, permission, and quota-exhaustion failures would fail every
// subsequent call, so they are not retried; per-request rate limiting and
// server faults are.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch {
	case gerr.Code == 404:
		return retry.Permanent(err)
	case gerr.Code == 429 || hasReason(gerr, "rateLimitExceeded"):
		return err
	case gerr.Code >= 400 && gerr.Code < 500:
		return retry.Permanent(err)
	default:
		return err
	}
}

func hasReason(gerr *googleapi.Error, reason string) bool {
	for _, e := range gerr.Errors {
		if e.Reason == reason {
			return true
		}
	}
	return false
}

// EnumerateOptions configures channel enumeration.
type EnumerateOptions struct {
	// MaxCount limits the number of refs yielded after filtering.
	// Zero means no limit.
	MaxCount int

	// IncludeShorts keeps Shorts in the sequence. When false, Shorts are
	// dropped during pagination so they never count toward MaxCount.
	IncludeShorts bool
}

// VideoIterator is the consumer-side view of an enumeration:
// a lazy, finite, ordered sequence of refs, most-recent-first.
type VideoIterator interface {
	// Next advances to the next ref, fetching more pages as needed.
	// It returns false when the sequence ends or an error occurs.
	Next() bool
	// Video returns the current ref. Valid only after Next returned true.
	Video() VideoRef
	// Err returns the error that ended the sequence, if any.
	Err() error
}

// Videos enumerates a channel's uploads lazily. The channel reference may
// be a canonical "UC…" ID, an "@handle", or a youtube.com channel URL;
// resolution happens on the first Next call. Stopping early leaves
// remaining pages unfetched.
func (c *Client) Videos(ctx context.Context, channel string, opts EnumerateOptions) *VideoSeq {
	return &VideoSeq{
		ctx:     ctx,
		client:  c,
		channel: channel,
		opts:    opts,
	}
}

// VideoSeq is the lazy sequence returned by Videos. It implements
// VideoIterator in the bufio.Scanner style:
//
//	seq := client.Videos(ctx, "@somechannel", opts)
//	for seq.Next() {
//		ref := seq.Video()
//		...
//	}
//	if err := seq.Err(); err != nil { ... }
type VideoSeq struct {
	ctx     context.Context
	client  *Client
	channel string
	opts    EnumerateOptions

	playlistID string
	pageToken  string
	resolved   bool
	lastPage   bool

	buf     []VideoRef
	cur     VideoRef
	yielded int
	err     error
}

// Next advances the sequence.
func (s *VideoSeq) Next() bool {
	if s.err != nil {
		return false
	}
	if s.opts.MaxCount > 0 && s.yielded >= s.opts.MaxCount {
		return false
	}

	for len(s.buf) == 0 {
		if s.resolved && s.lastPage {
			return false
		}
		if err := s.fill(); err != nil {
			s.err = &ChannelError{Channel: s.channel, Err: err}
			return false
		}
	}

	s.cur = s.buf[0]
	s.buf = s.buf[1:]
	s.yielded++
	return true
}

// Video returns the current ref.
func (s *VideoSeq) Video() VideoRef { return s.cur }

// Err returns the error that terminated the sequence, nil on normal end.
func (s *VideoSeq) Err() error { return s.err }

// fill resolves the channel if needed and buffers one filtered page.
func (s *VideoSeq) fill() error {
	if !s.resolved {
		playlistID, err := s.client.uploadsPlaylistID(s.ctx, s.channel)
		if err != nil {
			return err
		}
		s.playlistID = playlistID
		s.resolved = true
	}

	refs, nextToken, err := s.client.listPage(s.ctx, s.playlistID, s.pageToken)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		if !s.opts.IncludeShorts && ref.IsShort {
			continue
		}
		s.buf = append(s.buf, ref)
	}

	s.pageToken = nextToken
	if nextToken == "" {
		s.lastPage = true
	}
	return nil
}

// uploadsPlaylistID resolves a channel reference to its uploads playlist.
func (c *Client) uploadsPlaylistID(ctx context.Context, channel string) (string, error) {
	channelID, err := c.resolveChannelID(ctx, channel)
	if err != nil {
		return "", err
	}

	var playlistID string
	err = c.call(ctx, func(ctx context.Context) error {
		resp, err := c.svc.Channels.List([]string{"contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return retry.Permanent(ErrChannelNotFound)
		}
		playlistID = resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
		return nil
	})
	if err != nil {
		return "", err
	}
	if playlistID == "" {
		return "", ErrChannelUnresolvable
	}
	return playlistID, nil
}

// resolveChannelID turns an ID, handle, or URL into a canonical channel ID.
func (c *Client) resolveChannelID(ctx context.Context, input string) (string, error) {
	trimmed := strings.TrimSpace(input)

	if strings.Contains(trimmed, "youtube.com/channel/") {
		if id := channelIDRegex.FindString(trimmed); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("%w: %q", ErrChannelUnresolvable, input)
	}

	if channelIDRegex.MatchString(trimmed) && strings.HasPrefix(trimmed, "UC") {
		return channelIDRegex.FindString(trimmed), nil
	}

	// Handle forms: "@name" or "youtube.com/@name".
	handle := trimmed
	if idx := strings.Index(handle, "youtube.com/@"); idx != -1 {
		handle = handle[idx+len("youtube.com/"):]
		handle = strings.SplitN(handle, "/", 2)[0]
		handle = strings.SplitN(handle, "?", 2)[0]
	}
	handle = strings.TrimPrefix(handle, "@")
	if handle == "" || strings.ContainsAny(handle, "/ ") {
		return "", fmt.Errorf("%w: %q", ErrChannelUnresolvable, input)
	}

	return c.channelIDForHandle(ctx, handle)
}

// channelIDForHandle resolves an @handle via channels.list, falling back
// to a channel search when the handle lookup finds nothing.
func (c *Client) channelIDForHandle(ctx context.Context, handle string) (string, error) {
	var channelID string

	err := c.call(ctx, func(ctx context.Context) error {
		resp, err := c.svc.Channels.List([]string{"id"}).
			ForHandle(handle).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) > 0 {
			channelID = resp.Items[0].Id
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if channelID != "" {
		return channelID, nil
	}

	err = c.call(ctx, func(ctx context.Context) error {
		resp, err := c.svc.Search.List([]string{"id"}).
			Q(handle).
			Type("channel").
			MaxResults(1).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 || resp.Items[0].Id == nil {
			return retry.Permanent(ErrChannelNotFound)
		}
		channelID = resp.Items[0].Id.ChannelId
		return nil
	})
	if err != nil {
		return "", err
	}
	return channelID, nil
}

// listPage fetches one uploads page and classifies each item.
// It issues two calls: playlistItems.list for the page and videos.list
// for the durations that drive the Short classification.
func (c *Client) listPage(ctx context.Context, playlistID, pageToken string) ([]VideoRef, string, error) {
	var (
		refs      []VideoRef
		ids       []string
		nextToken string
	)

	err := c.call(ctx, func(ctx context.Context) error {
		resp, err := c.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(pageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		refs = refs[:0]
		ids = ids[:0]
		for _, item := range resp.Items {
			if item.ContentDetails == nil {
				continue
			}
			ref := VideoRef{ID: item.ContentDetails.VideoId}
			if item.Snippet != nil {
				ref.Title = item.Snippet.Title
			}
			published := ""
			if item.ContentDetails.VideoPublishedAt != "" {
				published = item.ContentDetails.VideoPublishedAt
			} else if item.Snippet != nil {
				published = item.Snippet.PublishedAt
			}
			if t, err := time.Parse(time.RFC3339, published); err == nil {
				ref.PublishedAt = t
			}
			refs = append(refs, ref)
			ids = append(ids, ref.ID)
		}
		nextToken = resp.NextPageToken
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrRemote, err)
	}

	if len(ids) == 0 {
		return refs, nextToken, nil
	}

	durations := make(map[string]time.Duration, len(ids))
	err = c.call(ctx, func(ctx context.Context) error {
		resp, err := c.svc.Videos.List([]string{"contentDetails"}).
			Id(ids...).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		for _, item := range resp.Items {
			if item.ContentDetails == nil {
				continue
			}
			if d, err := parseISODuration(item.ContentDetails.Duration); err == nil {
				durations[item.Id] = d
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrRemote, err)
	}

	for i := range refs {
		if d, ok := durations[refs[i].ID]; ok {
			refs[i].IsShort = d > 0 && d <= shortMaxDuration
		}
	}

	return refs, nextToken, nil
}

var isoDurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration parses the ISO 8601 durations the Data API returns,
// e.g. "PT1H2M3S" or "PT45S".
func parseISODuration(s string) (time.Duration, error) {
	m := isoDurationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}

	var d time.Duration
	parts := []struct {
		value string
		unit  time.Duration
	}{
		{m[1], 24 * time.Hour},
		{m[2], time.Hour},
		{m[3], time.Minute},
		{m[4], time.Second},
	}
	for _, p := range parts {
		if p.value == "" {
			continue
		}
		n, err := strconv.Atoi(p.value)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration %q", s)
		}
		d += time.Duration(n) * p.unit
	}
	return d, nil
}
