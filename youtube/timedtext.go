package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpclient "ytscribe/http"
)

// defaultTimedtextURL is YouTube's caption content endpoint.
const defaultTimedtextURL = "https://www.youtube.com/api/timedtext"

// TranscriptFetcher downloads a caption track's content and normalizes it
// into ordered transcript segments. Every fetch attempt passes through the
// HTTP client's shared rate gate.
type TranscriptFetcher struct {
	client  *httpclient.Client
	baseURL string
}

// NewTranscriptFetcher creates a fetcher on top of the given client.
func NewTranscriptFetcher(client *httpclient.Client) *TranscriptFetcher {
	return &TranscriptFetcher{
		client:  client,
		baseURL: defaultTimedtextURL,
	}
}

// SetBaseURL overrides the timedtext endpoint. Used in tests.
func (f *TranscriptFetcher) SetBaseURL(u string) { f.baseURL = u }

// Fetch downloads and parses the transcript for the given track.
// A track that parses to zero segments is reported as ErrNoCaptions, and a
// 404 from the endpoint means the track is gone, reported the same way.
func (f *TranscriptFetcher) Fetch(ctx context.Context, track CaptionTrack) (*Transcript, error) {
	if track.VideoID == "" {
		return nil, fmt.Errorf("youtube: video id required")
	}
	lang := track.Language
	if lang == "" {
		lang = "en"
	}

	params := url.Values{}
	params.Set("v", track.VideoID)
	params.Set("lang", lang)
	params.Set("fmt", "json3")
	if track.AutoGenerated {
		params.Set("kind", "asr")
	}

	resp, err := f.client.Get(ctx, f.baseURL+"?"+params.Encode())
	if err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) && se.StatusCode == 404 {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNoCaptions, track.VideoID, lang)
		}
		return nil, err
	}

	segments, err := parseTimedtext(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse timedtext for %s: %w", track.VideoID, err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoCaptions, track.VideoID, lang)
	}

	return &Transcript{
		VideoID:  track.VideoID,
		Language: lang,
		Segments: segments,
	}, nil
}

// timedtextResponse is the raw json3 payload shape.
type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	StartMs int64          `json:"tStartMs"`
	Segs    []timedtextSeg `json:"segs,omitempty"`
}

type timedtextSeg struct {
	UTF8 string `json:"utf8"`
}

// parseTimedtext converts json3 events into ordered segments. Events with
// no text (window/style events) are skipped.
func parseTimedtext(data []byte) ([]TranscriptSegment, error) {
	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal timedtext: %w", err)
	}

	var segments []TranscriptSegment
	for _, event := range resp.Events {
		if len(event.Segs) == 0 {
			continue
		}

		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		trimmed := strings.TrimSpace(text.String())
		if trimmed == "" {
			continue
		}

		segments = append(segments, TranscriptSegment{
			Start: time.Duration(event.StartMs) * time.Millisecond,
			Text:  trimmed,
		})
	}

	return segments, nil
}
