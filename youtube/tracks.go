package youtube

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// TrackLister checks caption track availability through the YouTube Data API
// v3. The captions.list call works with a plain API key and costs far less
// quota than fetching caption content, so the caption phase uses it as a
// cheap pre-check when a key is configured.
type TrackLister struct {
	service *yt.Service
}

// NewTrackLister creates a Data API-backed track lister.
func NewTrackLister(ctx context.Context, apiKey string) (*TrackLister, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: api key required")
	}

	service, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &TrackLister{service: service}, nil
}

// HasTrack reports whether videoID has a caption track in any of langs.
// Language comparison is case-insensitive and tolerates regional suffixes
// ("iw-IL" matches "iw").
func (t *TrackLister) HasTrack(ctx context.Context, videoID string, langs []string) (bool, error) {
	call := t.service.Captions.List([]string{"snippet"}, videoID).Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return false, fmt.Errorf("list caption tracks for %s: %w", videoID, err)
	}

	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		trackLang := strings.ToLower(item.Snippet.Language)
		for _, lang := range langs {
			lang = strings.ToLower(lang)
			if trackLang == lang || strings.HasPrefix(trackLang, lang+"-") {
				return true, nil
			}
		}
	}
	return false, nil
}
