package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"hebscribe/links"
)

// TranscribeRun is the local transcription phase: for each remaining link it
// downloads the audio track, runs the speech-recognition model, persists the
// text, and removes the intermediate audio file. Per-video failures are
// logged and counted; the batch always runs to the end.
type TranscribeRun struct {
	// Downloader fetches audio. Required.
	Downloader Downloader
	// Transcriber converts audio to text. Required.
	Transcriber Transcriber
	// Store persists transcripts. Required.
	Store TranscriptStore
	// ResolveTitle maps a link to its transcript key. Required.
	ResolveTitle TitleResolver
	// Interval spaces per-video downloads.
	Interval time.Duration
	// SkipExisting skips links whose transcript file already exists.
	SkipExisting bool
}

// Run processes all remaining links in order and returns the phase summary.
func (r *TranscribeRun) Run(ctx context.Context, list []links.Link) (*Summary, error) {
	summary := NewSummary("transcribe phase")
	pacer := newPacer(r.Interval)

	for i, link := range list {
		if err := pacer.Wait(ctx); err != nil {
			return summary, err
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
				return summary, ctx.Err()
			}
			log.WithError(err).Error("Video failed, continuing with next")
			summary.Failed++
			continue
		}

		summary.Succeeded++
	}

	return summary, nil
}

// processLink runs download → transcribe → persist → cleanup for one link.
func (r *TranscribeRun) processLink(ctx context.Context, link links.Link, log *logrus.Entry) error {
	audioPath, err := r.Downloader.Download(ctx, link.URL)
	if err != nil {
		return err
	}
	log.WithField("audio", audioPath).Info("Audio downloaded")

	// Audio cleanup is best-effort; a leftover file costs disk space, not
	// correctness.
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			log.WithError(err).Warn("Could not remove audio file")
		}
	}()

	text, err := r.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return err
	}

	key := r.ResolveTitle(ctx, link.URL, link.VideoID)
	path, err := r.Store.Save(key, text)
	if err != nil {
		return err
	}

	log.WithField("file", path).Info("Transcript saved")
	return nil
}
