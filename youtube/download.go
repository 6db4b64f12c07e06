package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"hebscribe/retry"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 10 * time.Minute
	defaultAudioQuality = 192
)

// AudioDownloader extracts the audio track of a video using yt-dlp.
// Video data is never downloaded; the audio is converted to MP3 so the
// transcription model gets a single predictable input format.
type AudioDownloader struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string
	// Timeout is the maximum time for one download. Defaults to 10 minutes.
	Timeout time.Duration
	// WorkDir is where audio files are written. Defaults to the OS temp dir.
	WorkDir string
	// AudioQuality is the MP3 bitrate in kbps. Defaults to 192.
	AudioQuality int
	// Credentials attaches browser authentication state for
	// access-restricted videos. Defaults to NoAuth.
	Credentials Credentials
	// RetryConfig controls retries of transient download failures.
	RetryConfig *retry.Config
}

// NewAudioDownloader creates a downloader with default settings.
func NewAudioDownloader() *AudioDownloader {
	cfg := retry.DefaultConfig()
	return &AudioDownloader{
		Path:         defaultYtdlpPath,
		Timeout:      defaultYtdlpTimeout,
		WorkDir:      os.TempDir(),
		AudioQuality: defaultAudioQuality,
		Credentials:  NoAuth{},
		RetryConfig:  &cfg,
	}
}

// Download fetches the audio track for url and returns the path of the
// resulting MP3 file. The caller owns the file and should remove it when
// done. Authentication and availability failures are permanent and returned
// without retrying; transient network failures are retried with backoff.
func (d *AudioDownloader) Download(ctx context.Context, url string) (string, error) {
	if err := d.checkInstalled(ctx); err != nil {
		return "", err
	}

	workDir := d.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("create work directory: %w", err)}
	}

	cfg := d.RetryConfig
	if cfg == nil {
		defaultCfg := retry.DefaultConfig()
		cfg = &defaultCfg
	}

	var audioPath string
	err := retry.Do(ctx, *cfg, downloadErrorClassifier, func(ctx context.Context) error {
		path, err := d.runYtdlp(ctx, url, workDir)
		if err != nil {
			return err
		}
		audioPath = path
		return nil
	})
	if err != nil {
		return "", err
	}
	return audioPath, nil
}

// runYtdlp performs a single yt-dlp invocation.
func (d *AudioDownloader) runYtdlp(ctx context.Context, url, workDir string) (string, error) {
	quality := d.AudioQuality
	if quality <= 0 {
		quality = defaultAudioQuality
	}

	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", fmt.Sprintf("%d", quality),
		"--no-playlist",
		"--no-warnings",
		"-o", filepath.Join(workDir, "%(id)s.%(ext)s"),
		"--print", "after_move:filepath",
	}
	if d.Credentials != nil {
		args = append(args, d.Credentials.Args()...)
	}
	args = append(args, url)

	timeout := d.Timeout
	if timeout == 0 {
		timeout = defaultYtdlpTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, d.path(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return "", &DownloadError{URL: url, Err: context.DeadlineExceeded}
		}
		if cmdCtx.Err() == context.Canceled {
			return "", &DownloadError{URL: url, Err: context.Canceled}
		}
		return "", &DownloadError{URL: url, Err: classifyYtdlpError(err, stderr.String())}
	}

	path := lastPathLine(stdout.String())
	if path == "" {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("yt-dlp did not report an output file")}
	}
	if _, err := os.Stat(path); err != nil {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("downloaded file missing: %w", err)}
	}
	return path, nil
}

// checkInstalled verifies that yt-dlp is available.
func (d *AudioDownloader) checkInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, d.path(), "--version")
	if err := cmd.Run(); err != nil {
		return ErrYtdlpNotInstalled
	}
	return nil
}

func (d *AudioDownloader) path() string {
	if d.Path != "" {
		return d.Path
	}
	return defaultYtdlpPath
}

// lastPathLine extracts the final filepath yt-dlp printed via
// --print after_move:filepath. Progress noise may precede it.
func lastPathLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" && (strings.HasPrefix(line, "/") || strings.Contains(line, string(os.PathSeparator))) {
			return line
		}
	}
	return ""
}

// classifyYtdlpError maps yt-dlp stderr patterns onto the package's
// sentinel errors so callers can tell auth failures from transient ones.
func classifyYtdlpError(err error, stderr string) error {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "sign in to confirm"),
		strings.Contains(msg, "use --cookies"),
		strings.Contains(msg, "login required"):
		return fmt.Errorf("%w: %s", ErrAuthRequired, firstLine(stderr))
	case strings.Contains(msg, "video unavailable"),
		strings.Contains(msg, "private video"),
		strings.Contains(msg, "has been removed"),
		strings.Contains(msg, "not available"):
		return fmt.Errorf("%w: %s", ErrVideoUnavailable, firstLine(stderr))
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate-limit"),
		strings.Contains(msg, "too many requests"):
		return fmt.Errorf("%w: %s", ErrRateLimited, firstLine(stderr))
	}
	if stderr != "" {
		return fmt.Errorf("yt-dlp failed: %w: %s", err, firstLine(stderr))
	}
	return fmt.Errorf("yt-dlp failed: %w", err)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// downloadErrorClassifier treats authentication and availability failures
// as permanent: retrying cannot produce cookies or restore a deleted video.
func downloadErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrVideoUnavailable) ||
		errors.Is(err, ErrYtdlpNotInstalled) {
		return false
	}
	return retry.IsRetryable(err)
}
