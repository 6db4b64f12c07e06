package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hebscribe/retry"
)

const (
	defaultTimedtextURL = "https://www.youtube.com/api/timedtext"
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// TimedtextClient fetches caption tracks from YouTube's timedtext API.
// This is how the caption phase obtains platform-provided transcripts
// without downloading any audio.
type TimedtextClient struct {
	// BaseURL is the timedtext endpoint. Overridable for tests.
	BaseURL string
	// UserAgent is sent with every request.
	UserAgent string
	// HTTPClient is the underlying client. Defaults to a 30s-timeout client.
	HTTPClient *http.Client
	// RetryConfig controls retries of transient fetch failures.
	// Missing captions are permanent and never retried.
	RetryConfig *retry.Config
}

// NewTimedtextClient creates a timedtext client with defaults.
func NewTimedtextClient() *TimedtextClient {
	cfg := retry.DefaultConfig()
	return &TimedtextClient{
		BaseURL:     defaultTimedtextURL,
		UserAgent:   defaultUserAgent,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		RetryConfig: &cfg,
	}
}

// Caption is a fetched caption track rendered as plain text.
type Caption struct {
	// VideoID is the video the captions belong to.
	VideoID string
	// Language is the language code of the track that was found.
	Language string
	// Text is the caption text, one caption event per line.
	Text string
}

// Fetch retrieves the caption track for videoID in the first of langs that
// has one. It returns an error wrapping ErrNoCaptions when none of the
// languages has a track.
func (tc *TimedtextClient) Fetch(ctx context.Context, videoID string, langs []string) (*Caption, error) {
	if videoID == "" {
		return nil, fmt.Errorf("youtube: video ID is required")
	}
	if len(langs) == 0 {
		langs = []string{"he", "iw"}
	}

	var lastErr error
	for _, lang := range langs {
		text, err := tc.fetchLanguage(ctx, videoID, lang)
		if err == nil {
			return &Caption{VideoID: videoID, Language: lang, Text: text}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, &CaptionError{VideoID: videoID, Language: strings.Join(langs, ","), Err: lastErr}
}

// fetchLanguage fetches and renders one language's track, retrying
// transient HTTP failures.
func (tc *TimedtextClient) fetchLanguage(ctx context.Context, videoID, lang string) (string, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", lang)
	params.Set("fmt", "json3")
	apiURL := fmt.Sprintf("%s?%s", tc.BaseURL, params.Encode())

	cfg := tc.RetryConfig
	if cfg == nil {
		defaultCfg := retry.DefaultConfig()
		cfg = &defaultCfg
	}

	var text string
	err := retry.Do(ctx, *cfg, captionErrorClassifier, func(ctx context.Context) error {
		body, err := tc.get(ctx, apiURL, videoID, lang)
		if err != nil {
			return err
		}

		rendered, err := renderTimedtext(body)
		if err != nil {
			return &CaptionError{VideoID: videoID, Language: lang, Err: err}
		}
		if rendered == "" {
			// An empty events list means the track does not exist for this
			// language; YouTube answers 200 either way.
			return &CaptionError{VideoID: videoID, Language: lang, Err: ErrNoCaptions}
		}
		text = rendered
		return nil
	})
	return text, err
}

func (tc *TimedtextClient) get(ctx context.Context, apiURL, videoID, lang string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build timedtext request: %w", err)
	}
	req.Header.Set("User-Agent", tc.userAgent())

	resp, err := tc.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &CaptionError{VideoID: videoID, Language: lang, Err: ErrNoCaptions}
	case http.StatusForbidden:
		return nil, &CaptionError{VideoID: videoID, Language: lang, Err: ErrVideoUnavailable}
	case http.StatusTooManyRequests:
		return nil, &CaptionError{VideoID: videoID, Language: lang, Err: ErrRateLimited}
	default:
		return nil, &CaptionError{VideoID: videoID, Language: lang,
			Err: fmt.Errorf("timedtext API returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read timedtext response: %w", err)
	}
	return body, nil
}

func (tc *TimedtextClient) client() *http.Client {
	if tc.HTTPClient != nil {
		return tc.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (tc *TimedtextClient) userAgent() string {
	if tc.UserAgent != "" {
		return tc.UserAgent
	}
	return defaultUserAgent
}

// timedtextResponse is the json3 timedtext payload.
type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

// timedtextEvent is a single timed caption event.
type timedtextEvent struct {
	TStartMs    int64              `json:"tStartMs"`
	DDurationMs int64              `json:"dDurationMs"`
	Segs        []timedtextSegment `json:"segs,omitempty"`
}

// timedtextSegment is a text fragment within an event.
type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

// renderTimedtext converts a json3 timedtext payload into plain text with
// one caption event per line. Events without text segments (window
// positioning, music cues) are skipped.
func renderTimedtext(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("unmarshal timedtext JSON: %w", err)
	}

	var lines []string
	for _, event := range resp.Events {
		if len(event.Segs) == 0 {
			continue
		}

		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}

		line := strings.TrimSpace(text.String())
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// captionErrorClassifier keeps retries for transient failures only: a
// missing track or an unavailable video will not appear on the next attempt.
func captionErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoCaptions) || errors.Is(err, ErrVideoUnavailable) {
		return false
	}
	return retry.IsRetryable(err)
}
