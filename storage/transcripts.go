package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxFilenameLen caps transcript filenames so long video titles cannot
// produce paths the filesystem rejects.
const maxFilenameLen = 200

// TranscriptStore writes transcript text files into a single directory.
// Filenames are derived deterministically from the video title or ID, so
// re-running a phase overwrites the previous transcript instead of
// duplicating it.
type TranscriptStore struct {
	// Dir is the directory transcripts are written to.
	Dir string
}

// NewTranscriptStore creates a store rooted at dir, creating it if needed.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Op: "create", Path: dir, Err: err}
	}
	return &TranscriptStore{Dir: dir}, nil
}

// Path returns the transcript file path for the given key (video title or
// "video_<id>" fallback).
func (s *TranscriptStore) Path(key string) string {
	return filepath.Join(s.Dir, TranscriptFilename(key))
}

// Save writes text to the transcript file for key, atomically replacing any
// previous content. It returns the path written.
func (s *TranscriptStore) Save(key, text string) (string, error) {
	path := s.Path(key)

	w, err := NewAtomicWriter(path)
	if err != nil {
		return "", &StorageError{Op: "save", Path: path, Err: err}
	}
	if _, err := w.Write([]byte(text)); err != nil {
		w.Abort()
		return "", &StorageError{Op: "save", Path: path, Err: err}
	}
	if err := w.Commit(); err != nil {
		return "", &StorageError{Op: "save", Path: path, Err: err}
	}
	return path, nil
}

// Exists reports whether a transcript file already exists for key.
func (s *TranscriptStore) Exists(key string) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// TranscriptFilename derives the deterministic transcript filename for a
// video title or identifier: spaces become underscores, '|' is dropped, and
// characters invalid in filenames are replaced with underscores. The result
// is capped at 200 characters.
func TranscriptFilename(key string) string {
	clean := strings.ReplaceAll(key, " ", "_")
	clean = strings.ReplaceAll(clean, "|", "")
	for _, c := range []string{"/", "\\", ":", "?", "*", "<", ">", "\""} {
		clean = strings.ReplaceAll(clean, c, "_")
	}

	name := fmt.Sprintf("transcript_%s.txt", clean)
	if len(name) > maxFilenameLen {
		// Back up to a rune boundary so a multi-byte title is never cut
		// mid-rune into an invalid-UTF-8 filename.
		cut := maxFilenameLen
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ".txt"
	}
	return name
}
