package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"hebscribe/links"
	"hebscribe/youtube"
)

// CaptionRun is the caption phase: for each input link it tries to fetch a
// pre-existing Hebrew caption track and persist it as a transcript file.
// Links without a usable track are collected so the transcribe phase can
// pick them up. A single link's failure never aborts the batch.
type CaptionRun struct {
	// Fetcher obtains caption tracks. Required.
	Fetcher CaptionFetcher
	// Tracks pre-checks track availability. Optional; nil skips the check.
	Tracks TrackChecker
	// Store persists transcripts. Required.
	Store TranscriptStore
	// Languages are the caption language codes to try, in order.
	Languages []string
	// Interval spaces per-video requests.
	Interval time.Duration
	// SkipExisting skips links whose transcript file already exists from a
	// previous run instead of refetching and overwriting it.
	SkipExisting bool
}

// Run processes all links in order. It returns the phase summary and the
// links that still need local transcription. Each link lands in exactly one
// bucket: persisted transcript or remaining list.
func (r *CaptionRun) Run(ctx context.Context, list []links.Link) (*Summary, []links.Link, error) {
	summary := NewSummary("caption phase")
	pacer := newPacer(r.Interval)

	var remaining []links.Link
	for i, link := range list {
		// On interruption the remaining list must still cover every link
		// that has no transcript yet, including the never-attempted tail,
		// so the written handoff file stays a complete resumption point.
		if err := pacer.Wait(ctx); err != nil {
			return summary, append(remaining, list[i:]...), err
		}

		summary.Total++
		log := logrus.WithFields(logrus.Fields{
			"run":   summary.RunID,
			"video": link.ID(),
			"n":     i + 1,
			"of":    len(list),
		})

		if r.SkipExisting && r.Store.Exists("video_"+link.ID()) {
			log.Info("Transcript already exists, skipping")
			summary.Succeeded++
			continue
		}

		if err := r.processLink(ctx, link, log); err != nil {
			if ctx.Err() != nil {
				return summary, append(remaining, list[i:]...), ctx.Err()
			}
			if errors.Is(err, youtube.ErrNoCaptions) {
				log.WithField("reason", "no Hebrew captions").Info("Routing to local transcription")
			} else {
				log.WithError(err).Warn("Caption fetch failed, routing to local transcription")
			}
			summary.Failed++
			remaining = append(remaining, link)
			continue
		}

		summary.Succeeded++
	}

	return summary, remaining, nil
}

// processLink attempts the caption path for one link.
func (r *CaptionRun) processLink(ctx context.Context, link links.Link, log *logrus.Entry) error {
	if link.VideoID == "" {
		return errors.New("could not extract video ID")
	}

	if r.Tracks != nil {
		has, err := r.Tracks.HasTrack(ctx, link.VideoID, r.Languages)
		if err != nil {
			// The pre-check is an optimization; on API failure fall through
			// to the fetch.
			log.WithError(err).Debug("Track availability check failed")
		} else if !has {
			return youtube.ErrNoCaptions
		}
	}

	caption, err := r.Fetcher.Fetch(ctx, link.VideoID, r.Languages)
	if err != nil {
		return err
	}

	path, err := r.Store.Save("video_"+link.VideoID, caption.Text)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"lang": caption.Language,
		"file": path,
	}).Info("Caption transcript saved")
	return nil
}
