// Package youtube fetches video lists, caption tracks, and transcripts
// from the YouTube Data API and timedtext endpoint.
package youtube

import (
	"errors"
	"time"
)

// Sentinel errors for YouTube operations.
var (
	// ErrChannelNotFound indicates the channel does not exist.
	ErrChannelNotFound = errors.New("youtube: channel not found")
	// ErrChannelUnresolvable indicates the channel reference could not be
	// turned into a canonical channel ID.
	ErrChannelUnresolvable = errors.New("youtube: channel unresolvable")
	// ErrVideoNotFound indicates the video does not exist.
	ErrVideoNotFound = errors.New("youtube: video not found")
	// ErrNoCaptions indicates the video has no caption tracks at all,
	// or the fetched track parsed to zero segments.
	ErrNoCaptions = errors.New("youtube: no captions available")
	// ErrLanguageUnavailable indicates none of the preferred languages
	// matched an available track and fallback was not requested.
	ErrLanguageUnavailable = errors.New("youtube: language unavailable")
	// ErrRemote indicates a remote fault that survived retries.
	ErrRemote = errors.New("youtube: remote error")
)

// shortMaxDuration is the duration at or below which a video is
// classified as a Short.
const shortMaxDuration = 3 * time.Minute

// VideoRef identifies one video produced by enumeration.
// Refs are immutable once yielded.
type VideoRef struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`

	// Title is the video title.
	Title string `json:"title"`

	// PublishedAt is when the video was published.
	PublishedAt time.Time `json:"published_at"`

	// IsShort reports whether the video is classified as a Short.
	IsShort bool `json:"is_short"`
}

// URL returns the full watch URL for the video.
func (v VideoRef) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// CaptionTrack is one available subtitle stream for a video.
type CaptionTrack struct {
	// VideoID is the video the track belongs to.
	VideoID string `json:"video_id"`

	// Language is the track's language code (e.g., "en", "pt-BR").
	Language string `json:"language"`

	// AutoGenerated reports whether the track was machine-generated (ASR).
	AutoGenerated bool `json:"auto_generated"`
}

// TranscriptSegment is one timed piece of transcript text.
type TranscriptSegment struct {
	// Start is the offset of the segment in the source media.
	Start time.Duration `json:"start"`

	// Text is the segment's text.
	Text string `json:"text"`
}

// Transcript is the ordered transcript of one video in one language.
// Segments are in chronological order with non-decreasing Start, and a
// successfully fetched transcript is never empty.
type Transcript struct {
	VideoID  string              `json:"video_id"`
	Language string              `json:"language"`
	Segments []TranscriptSegment `json:"segments"`
}

// ChannelError wraps errors from channel-level operations with the
// reference that was being resolved or listed.
type ChannelError struct {
	// Channel is the channel ID, handle, or URL the caller supplied.
	Channel string
	// Err is the underlying error.
	Err error
}

func (e *ChannelError) Error() string {
	return "youtube: channel " + e.Channel + ": " + e.Err.Error()
}

func (e *ChannelError) Unwrap() error { return e.Err }
