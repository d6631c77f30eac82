// Package writer persists transcripts and list-mode reports to disk.
package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ytscribe/youtube"
)

// Format selects the artifact serialization.
type Format string

const (
	// FormatPlainText writes line-oriented text files.
	FormatPlainText Format = "plain_text"
	// FormatJSON writes structured, round-trippable JSON files.
	FormatJSON Format = "json"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatPlainText || f == FormatJSON
}

func (f Format) extension() string {
	if f == FormatJSON {
		return "json"
	}
	return "txt"
}

// Writer persists run artifacts under a destination directory.
type Writer struct {
	// Dir is the destination directory, created if absent.
	Dir string
	// Format selects plain text or JSON artifacts.
	Format Format
	// TimeCodes includes segment start times in plain-text output.
	// JSON output always carries start times.
	TimeCodes bool
}

// New creates a writer, creating dir if needed.
func New(dir string, format Format, timeCodes bool) (*Writer, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("writer: unknown format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}
	return &Writer{Dir: dir, Format: format, TimeCodes: timeCodes}, nil
}

// Artifact is the JSON document written for one transcript. StartMs is
// milliseconds so the round trip through JSON is exact.
type Artifact struct {
	VideoID  string            `json:"video_id"`
	Language string            `json:"language"`
	Title    string            `json:"title,omitempty"`
	Segments []ArtifactSegment `json:"segments"`
}

// ArtifactSegment is one serialized transcript segment.
type ArtifactSegment struct {
	StartMs int64  `json:"start_ms"`
	Text    string `json:"text"`
}

// ArtifactName returns the deterministic file name for a transcript:
// video id + language code + format extension.
func (w *Writer) ArtifactName(videoID, language string) string {
	return fmt.Sprintf("%s-%s.%s", videoID, strings.ToLower(language), w.Format.extension())
}

// WriteTranscript writes one transcript artifact and returns its path.
func (w *Writer) WriteTranscript(t *youtube.Transcript, title string) (string, error) {
	path := filepath.Join(w.Dir, w.ArtifactName(t.VideoID, t.Language))

	var data []byte
	var err error
	switch w.Format {
	case FormatJSON:
		data, err = marshalArtifact(t, title)
	default:
		data = []byte(formatPlainText(t, title, w.TimeCodes))
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript file: %w", err)
	}
	return path, nil
}

func marshalArtifact(t *youtube.Transcript, title string) ([]byte, error) {
	artifact := Artifact{
		VideoID:  t.VideoID,
		Language: t.Language,
		Title:    title,
		Segments: make([]ArtifactSegment, len(t.Segments)),
	}
	for i, seg := range t.Segments {
		artifact.Segments[i] = ArtifactSegment{
			StartMs: seg.Start.Milliseconds(),
			Text:    seg.Text,
		}
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}
	return append(data, '\n'), nil
}

func formatPlainText(t *youtube.Transcript, title string, timeCodes bool) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "Title: %s\n\n", title)
	}
	for _, seg := range t.Segments {
		if timeCodes {
			fmt.Fprintf(&b, "%.3f - %s\n", seg.Start.Seconds(), seg.Text)
		} else {
			b.WriteString(seg.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ParseArtifact parses a JSON artifact back into a transcript, preserving
// segment order, start times, and text exactly.
func ParseArtifact(data []byte) (*youtube.Transcript, error) {
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}

	t := &youtube.Transcript{
		VideoID:  artifact.VideoID,
		Language: artifact.Language,
		Segments: make([]youtube.TranscriptSegment, len(artifact.Segments)),
	}
	for i, seg := range artifact.Segments {
		t.Segments[i] = youtube.TranscriptSegment{
			Start: time.Duration(seg.StartMs) * time.Millisecond,
			Text:  seg.Text,
		}
	}
	return t, nil
}

// Report is the list-mode aggregation for one run.
type Report struct {
	// RunID identifies the run that produced the report.
	RunID string `json:"run_id"`
	// Channel is the channel reference that was listed, if any.
	Channel string `json:"channel,omitempty"`
	// VideoCount is the number of enumerated videos.
	VideoCount int `json:"video_count"`
	// MostRecent is the newest publish timestamp among them.
	MostRecent time.Time `json:"most_recent,omitempty"`
	// Languages maps video ID to its available caption languages.
	Languages map[string][]string `json:"languages"`
}

// WriteReport writes the list-mode report and returns its path.
func (w *Writer) WriteReport(r *Report) (string, error) {
	path := filepath.Join(w.Dir, "report."+w.Format.extension())

	var data []byte
	if w.Format == FormatJSON {
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal report: %w", err)
		}
		data = append(out, '\n')
	} else {
		data = []byte(formatReportText(r))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}

func formatReportText(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	if r.Channel != "" {
		fmt.Fprintf(&b, "Channel: %s\n", r.Channel)
	}
	fmt.Fprintf(&b, "Videos: %d\n", r.VideoCount)
	if !r.MostRecent.IsZero() {
		fmt.Fprintf(&b, "Most recent: %s\n", r.MostRecent.Format(time.RFC3339))
	}

	ids := make([]string, 0, len(r.Languages))
	for id := range r.Languages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&b, "%s: %s\n", id, strings.Join(r.Languages[id], ", "))
	}
	return b.String()
}
