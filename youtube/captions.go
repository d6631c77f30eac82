package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// ListTracks returns the caption tracks available for a video, in the
// order the API lists them. That order is not contractually stable and
// must not be relied on beyond fallback selection.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	if videoID == "" {
		return nil, fmt.Errorf("youtube: video id required")
	}

	var tracks []CaptionTrack
	err := c.call(ctx, func(ctx context.Context) error {
		resp, err := c.svc.Captions.List([]string{"snippet"}, videoID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		tracks = tracks[:0]
		for _, item := range resp.Items {
			if item.Snippet == nil {
				continue
			}
			tracks = append(tracks, CaptionTrack{
				VideoID:       videoID,
				Language:      item.Snippet.Language,
				AutoGenerated: item.Snippet.TrackKind == "asr" || item.Snippet.TrackKind == "ASR",
			})
		}
		return nil
	})
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 404 {
			return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
		}
		return nil, fmt.Errorf("%w: %w", ErrRemote, err)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCaptions, videoID)
	}
	return tracks, nil
}

// SelectTrack picks a track by iterating preferred languages in the
// caller-given order and returning the first exact match. Matching is
// case-insensitive and ignores region subtags ("en" matches "en-US")
// unless the preference itself carries a region. When nothing matches and
// forceFallback is true, the first listed track is returned; otherwise
// ErrLanguageUnavailable. Selection is deterministic for a fixed tracks
// slice and preference order.
func SelectTrack(tracks []CaptionTrack, preferred []string, forceFallback bool) (CaptionTrack, error) {
	if len(tracks) == 0 {
		return CaptionTrack{}, ErrNoCaptions
	}

	for _, want := range preferred {
		for _, track := range tracks {
			if languageMatches(want, track.Language) {
				return track, nil
			}
		}
	}

	if forceFallback {
		return tracks[0], nil
	}
	return CaptionTrack{}, fmt.Errorf("%w: wanted %v", ErrLanguageUnavailable, preferred)
}

// languageMatches compares language codes per the selection policy.
func languageMatches(want, have string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	have = strings.ToLower(strings.TrimSpace(have))
	if want == "" || have == "" {
		return false
	}
	if want == have {
		return true
	}
	// A region-qualified preference requires an exact match; a bare
	// primary tag matches any region variant.
	if strings.ContainsRune(want, '-') {
		return false
	}
	return strings.HasPrefix(have, want+"-")
}
