package hebscribe

import (
	"hebscribe/links"
	"hebscribe/storage"
	"hebscribe/whisper"
	"hebscribe/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, youtube.ErrNoCaptions) {
//		fmt.Println("No Hebrew captions, video needs local transcription")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var dlErr *youtube.DownloadError
//	if errors.As(err, &dlErr) {
//		fmt.Printf("Download failed for %s: %v\n", dlErr.URL, dlErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// CaptionError wraps errors while fetching caption tracks.
	CaptionError = youtube.CaptionError
	// DownloadError wraps errors while downloading audio.
	DownloadError = youtube.DownloadError
	// TranscriptionError wraps errors from the speech-recognition model.
	TranscriptionError = whisper.TranscriptionError
	// StorageError wraps errors while persisting transcripts.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrNoLinks indicates the input link file is missing or empty.
	// This is a configuration error and aborts the run.
	ErrNoLinks = links.ErrNoLinks
	// ErrNoCaptions indicates a video has no Hebrew caption track. This is
	// the expected branch that routes a video to local transcription.
	ErrNoCaptions = youtube.ErrNoCaptions
	// ErrAuthRequired indicates the download needs browser cookies.
	ErrAuthRequired = youtube.ErrAuthRequired
	// ErrVideoUnavailable indicates the video is private or removed.
	ErrVideoUnavailable = youtube.ErrVideoUnavailable
	// ErrRateLimited indicates YouTube throttled a request.
	ErrRateLimited = youtube.ErrRateLimited
	// ErrYtdlpNotInstalled indicates the yt-dlp binary was not found.
	ErrYtdlpNotInstalled = youtube.ErrYtdlpNotInstalled
	// ErrLockTimeout indicates another run holds the output directory lock.
	ErrLockTimeout = storage.ErrLockTimeout
)
