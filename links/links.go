// Package links reads and writes the newline-delimited link files that
// connect the pipeline phases: the input list, the remaining list produced
// by the caption phase, and optional batch splits of the input list.
package links

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"hebscribe/storage"
)

// ErrNoLinks indicates the link file is missing or contains no usable links.
// This is a configuration error: the run cannot proceed without input.
var ErrNoLinks = errors.New("links: no links found")

// videoIDRegex extracts the 11-character video ID from common YouTube URL
// shapes (watch?v=, youtu.be/, embed/, shorts/).
var videoIDRegex = regexp.MustCompile(`(?:v=|/)([a-zA-Z0-9_-]{11})(?:\S+)?`)

// Link is one video URL from a link file, with its extracted video ID.
// Links are immutable once read.
type Link struct {
	// URL is the line as it appeared in the file, trimmed.
	URL string
	// VideoID is the extracted 11-character YouTube video ID, or "" if the
	// URL did not contain one.
	VideoID string
}

// ID returns a stable identifier for the link: the video ID when one could
// be extracted, otherwise the full URL.
func (l Link) ID() string {
	if l.VideoID != "" {
		return l.VideoID
	}
	return l.URL
}

// ExtractVideoID returns the 11-character video ID embedded in url, or ""
// if none is present.
func ExtractVideoID(url string) string {
	m := videoIDRegex.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// Read loads an ordered list of links from path. Blank lines and lines
// starting with '#' are skipped; surrounding whitespace is trimmed.
// It returns an error wrapping ErrNoLinks if the file does not exist or
// yields no links.
func Read(path string) ([]Link, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoLinks, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var out []Link
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, Link{URL: line, VideoID: ExtractVideoID(line)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoLinks, path)
	}
	return out, nil
}

// WriteRemaining persists the links that still need local transcription.
// The file is written atomically and carries a comment header explaining
// its purpose, matching what Read skips on the way back in.
func WriteRemaining(path string, remaining []Link) error {
	w, err := storage.NewAtomicWriter(path)
	if err != nil {
		return fmt.Errorf("write remaining links: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Videos that need local audio transcription\n")
	b.WriteString("# These videos don't have Hebrew captions available\n\n")
	for _, l := range remaining {
		b.WriteString(l.URL)
		b.WriteByte('\n')
	}

	if _, err := w.Write([]byte(b.String())); err != nil {
		w.Abort()
		return fmt.Errorf("write remaining links: %w", err)
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("write remaining links: %w", err)
	}
	return nil
}

// Split divides the link file at path into batch files of batchSize links
// each, named <prefix>_NN.txt in dir. It returns the batch file paths.
// Batches keep the input order; the last batch may be short.
func Split(path, dir, prefix string, batchSize int) ([]string, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("links: batch size must be positive, got %d", batchSize)
	}

	all, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create batch directory: %w", err)
	}

	total := (len(all) + batchSize - 1) / batchSize
	var files []string
	for i := 0; i < total; i++ {
		start := i * batchSize
		end := start + batchSize
		if end > len(all) {
			end = len(all)
		}

		name := filepath.Join(dir, fmt.Sprintf("%s_%02d.txt", prefix, i+1))
		w, err := storage.NewAtomicWriter(name)
		if err != nil {
			return nil, fmt.Errorf("create batch file: %w", err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# Batch %d/%d - links %d-%d\n", i+1, total, start+1, end)
		for _, l := range all[start:end] {
			b.WriteString(l.URL)
			b.WriteByte('\n')
		}

		if _, err := w.Write([]byte(b.String())); err != nil {
			w.Abort()
			return nil, fmt.Errorf("write batch file: %w", err)
		}
		if err := w.Commit(); err != nil {
			return nil, fmt.Errorf("write batch file: %w", err)
		}
		files = append(files, name)
	}

	return files, nil
}
