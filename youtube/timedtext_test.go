package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpclient "ytscribe/http"
	"ytscribe/retry"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *TranscriptFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.Retry = retry.Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond, Multiplier: 2}
	client := httpclient.New(cfg, nil)
	t.Cleanup(func() { client.Close() })

	f := NewTranscriptFetcher(client)
	f.SetBaseURL(srv.URL)
	return f
}

const timedtextFixture = `{
	"events": [
		{"tStartMs": 0, "segs": [{"utf8": "hello "}, {"utf8": "world"}]},
		{"tStartMs": 1200},
		{"tStartMs": 2500, "segs": [{"utf8": "second line"}]},
		{"tStartMs": 4000, "segs": [{"utf8": "\n"}]}
	]
}`

func TestFetchParsesSegments(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("v"); got != "vid1" {
			t.Errorf("v param = %q, want vid1", got)
		}
		if got := r.URL.Query().Get("lang"); got != "en" {
			t.Errorf("lang param = %q, want en", got)
		}
		w.Write([]byte(timedtextFixture))
	})

	tr, err := f.Fetch(context.Background(), CaptionTrack{VideoID: "vid1", Language: "en"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if tr.VideoID != "vid1" || tr.Language != "en" {
		t.Errorf("transcript identity = %s/%s, want vid1/en", tr.VideoID, tr.Language)
	}
	want := []TranscriptSegment{
		{Start: 0, Text: "hello world"},
		{Start: 2500 * time.Millisecond, Text: "second line"},
	}
	if len(tr.Segments) != len(want) {
		t.Fatalf("got %d segments, want %d", len(tr.Segments), len(want))
	}
	for i := range want {
		if tr.Segments[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, tr.Segments[i], want[i])
		}
	}
}

func TestFetchSegmentsNonDecreasing(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(timedtextFixture))
	})

	tr, err := f.Fetch(context.Background(), CaptionTrack{VideoID: "vid1", Language: "en"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	for i := 1; i < len(tr.Segments); i++ {
		if tr.Segments[i].Start < tr.Segments[i-1].Start {
			t.Fatalf("segment %d starts at %v, before previous %v", i, tr.Segments[i].Start, tr.Segments[i-1].Start)
		}
	}
}

func TestFetchEmptyIsNoCaptions(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events": [{"tStartMs": 0}]}`))
	})

	_, err := f.Fetch(context.Background(), CaptionTrack{VideoID: "vid1", Language: "en"})
	if !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("error = %v, want ErrNoCaptions for empty parse", err)
	}
}

func TestFetchNotFoundIsNoCaptions(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := f.Fetch(context.Background(), CaptionTrack{VideoID: "vid1", Language: "en"})
	if !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("error = %v, want ErrNoCaptions for 404", err)
	}
}

func TestFetchRetriesServerError(t *testing.T) {
	calls := 0
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(timedtextFixture))
	})

	tr, err := f.Fetch(context.Background(), CaptionTrack{VideoID: "vid1", Language: "en"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(tr.Segments) == 0 {
		t.Error("expected segments after retry")
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2", calls)
	}
}

func TestFetchForbiddenIsPermanent(t *testing.T) {
	calls := 0
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := f.Fetch(context.Background(), CaptionTrack{VideoID: "vid1", Language: "en"})
	var se *httpclient.StatusError
	if !errors.As(err, &se) || se.StatusCode != 403 {
		t.Fatalf("error = %v, want StatusError 403", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (403 not retried)", calls)
	}
}

func TestFetchAutoGeneratedTrackRequestsASR(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("kind"); got != "asr" {
			t.Errorf("kind param = %q, want asr", got)
		}
		w.Write([]byte(timedtextFixture))
	})

	if _, err := f.Fetch(context.Background(), CaptionTrack{VideoID: "vid1", Language: "en", AutoGenerated: true}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
}

func TestParseTimedtextInvalidJSON(t *testing.T) {
	if _, err := parseTimedtext([]byte("<transcript/>")); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}
