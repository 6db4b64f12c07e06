// Package pipeline orchestrates the two-phase transcript pipeline: the
// caption phase harvests platform-provided Hebrew caption tracks, and the
// transcribe phase runs a local speech-recognition model over the audio of
// whatever the caption phase could not cover. The phases share no state
// beyond the remaining-links file; each can be run and re-run on its own.
package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"hebscribe/youtube"
)

// CaptionFetcher obtains a caption track for a video in one of the
// preferred languages. *youtube.TimedtextClient implements it.
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID string, langs []string) (*youtube.Caption, error)
}

// TrackChecker pre-checks whether a video has a caption track at all.
// *youtube.TrackLister implements it. Optional: a nil checker means every
// video goes straight to the caption fetch.
type TrackChecker interface {
	HasTrack(ctx context.Context, videoID string, langs []string) (bool, error)
}

// Downloader fetches the audio track of a video and returns the local file
// path. *youtube.AudioDownloader implements it.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// Transcriber converts an audio file into text. *whisper.Transcriber
// implements it.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// TranscriptStore persists transcript text under a deterministic key.
// *storage.TranscriptStore implements it.
type TranscriptStore interface {
	Save(key, text string) (string, error)
	Exists(key string) bool
}

// TitleResolver maps a video URL/ID to the key transcripts are stored
// under. It must not fail; implementations fall back to "video_<id>".
type TitleResolver func(ctx context.Context, url, videoID string) string

// newPacer builds the limiter that spaces per-video operations. A zero or
// negative interval disables pacing (useful in tests).
func newPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
