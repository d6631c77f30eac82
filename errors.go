package ytscribe

import (
	"ytscribe/http"
	"ytscribe/ratelimit"
	"ytscribe/retry"
	"ytscribe/youtube"
)

// Error handling types exported for library users.
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, ytscribe.ErrNoCaptions) {
//		fmt.Println("video has no captions")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var exhausted *ytscribe.ExhaustedError
//	if errors.As(err, &exhausted) {
//		fmt.Printf("gave up after %d attempts: %v\n", exhausted.Attempts, exhausted.Err)
//	}

// Type aliases for convenient error handling.
type (
	// ChannelError wraps errors during channel enumeration.
	ChannelError = youtube.ChannelError
	// ExhaustedError wraps the last error after retries ran out.
	ExhaustedError = retry.ExhaustedError
	// RateLimitError reports a server-side rate limit response.
	RateLimitError = http.RateLimitError
	// StatusError reports a non-success HTTP status.
	StatusError = http.StatusError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrChannelNotFound indicates the channel does not exist.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrChannelUnresolvable indicates the channel reference could not be
	// parsed into an id, handle, or URL.
	ErrChannelUnresolvable = youtube.ErrChannelUnresolvable
	// ErrVideoNotFound indicates the video does not exist.
	ErrVideoNotFound = youtube.ErrVideoNotFound
	// ErrNoCaptions indicates the video has no caption tracks.
	ErrNoCaptions = youtube.ErrNoCaptions
	// ErrLanguageUnavailable indicates no preferred caption language matched.
	ErrLanguageUnavailable = youtube.ErrLanguageUnavailable
	// ErrAcquireTimeout indicates the rate gate could not grant a slot in time.
	ErrAcquireTimeout = ratelimit.ErrAcquireTimeout
)

// IsTransient reports whether an error is worth retrying.
func IsTransient(err error) bool {
	return retry.IsTransient(err)
}
