package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriter stages content in a hidden temp file and publishes it with a
// rename on Commit. Transcript files and the remaining-links handoff file
// are both written this way: an interrupted run leaves either the old
// content or the new content, never a truncated file.
type AtomicWriter struct {
	target string
	tmp    *os.File
	done   bool
}

// NewAtomicWriter stages a write to path. The temp file lives in the target
// directory so the final rename stays on one filesystem.
func NewAtomicWriter(path string) (*AtomicWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".hebscribe-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &AtomicWriter{target: path, tmp: tmp}, nil
}

// Write appends to the staged content.
func (w *AtomicWriter) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

// Commit syncs the staged content to disk and renames it over the target.
// The writer cannot be used again afterwards.
func (w *AtomicWriter) Commit() error {
	if w.done {
		return fmt.Errorf("commit %s: writer already finished", w.target)
	}
	w.done = true

	if err := w.tmp.Sync(); err != nil {
		w.discard()
		return fmt.Errorf("sync: %w", err)
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(w.tmp.Name(), w.target); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Abort drops the staged content, leaving the target untouched. Aborting
// after Commit or a second time is a no-op.
func (w *AtomicWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	return w.discard()
}

func (w *AtomicWriter) discard() error {
	w.tmp.Close()
	return os.Remove(w.tmp.Name())
}
