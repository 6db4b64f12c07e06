package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// videoMetadata is the subset of yt-dlp's JSON output the pipeline needs.
type videoMetadata struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FetchTitle retrieves the video title using yt-dlp's JSON metadata output.
func FetchTitle(ctx context.Context, videoURL, ytdlpPath string) (string, error) {
	if ytdlpPath == "" {
		ytdlpPath = defaultYtdlpPath
	}

	cmd := exec.CommandContext(ctx, ytdlpPath, "-J", "--no-warnings", "--no-playlist", videoURL)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("fetch metadata: %w: %s", err, firstLine(stderr.String()))
	}

	var meta videoMetadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return "", fmt.Errorf("parse metadata: %w", err)
	}
	if meta.Title == "" {
		return "", fmt.Errorf("metadata has no title")
	}
	return meta.Title, nil
}

// SafeTitle resolves a title for transcript naming, falling back to
// "video_<id>" when the title cannot be fetched. It never fails: a download
// that succeeded should not be discarded over a naming lookup.
func SafeTitle(ctx context.Context, videoURL, videoID, ytdlpPath string) string {
	title, err := FetchTitle(ctx, videoURL, ytdlpPath)
	if err == nil {
		return title
	}
	if videoID != "" {
		return "video_" + videoID
	}
	return "video_unknown"
}
