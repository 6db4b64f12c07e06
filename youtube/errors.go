package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors for caption fetching and audio downloading.
var (
	// ErrNoCaptions indicates the video has no caption track in any of the
	// requested languages. This is the expected branch that routes a video
	// to local transcription, not a fault.
	ErrNoCaptions = errors.New("youtube: no captions available")
	// ErrAuthRequired indicates YouTube refused the request without
	// authentication (e.g. "Sign in to confirm you're not a bot").
	ErrAuthRequired = errors.New("youtube: authentication required")
	// ErrVideoUnavailable indicates the video is private, removed, or
	// region-blocked.
	ErrVideoUnavailable = errors.New("youtube: video unavailable")
	// ErrRateLimited indicates YouTube throttled the request.
	ErrRateLimited = errors.New("youtube: rate limited")
	// ErrYtdlpNotInstalled indicates the yt-dlp binary was not found.
	ErrYtdlpNotInstalled = errors.New("youtube: yt-dlp not installed")
)

// CaptionError wraps a failure to obtain a caption track for a video.
// Use errors.Is(err, ErrNoCaptions) to distinguish the expected
// no-Hebrew-track case from real fetch failures.
type CaptionError struct {
	// VideoID is the video whose captions were requested.
	VideoID string
	// Language is the caption language code that was requested.
	Language string
	// Err is the underlying error.
	Err error
}

func (e *CaptionError) Error() string {
	return fmt.Sprintf("captions for %s (%s): %v", e.VideoID, e.Language, e.Err)
}

func (e *CaptionError) Unwrap() error {
	return e.Err
}

// DownloadError wraps a failure to download the audio track of a video.
type DownloadError struct {
	// URL is the video URL the download was attempted for.
	URL string
	// Err is the underlying error.
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
