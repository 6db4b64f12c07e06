// Package whisper runs a local Whisper speech-recognition model over audio
// files via the whisper CLI. The model and its runtime are treated as an
// opaque external service: audio file in, text out.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultWhisperPath = "whisper"
	defaultModel       = "medium"
	defaultLanguage    = "he"
	defaultTimeout     = 30 * time.Minute
)

// TranscriptionError wraps a failure to transcribe an audio file.
type TranscriptionError struct {
	// Path is the audio file that was being transcribed.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe %s: %v", e.Path, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Transcriber converts audio files to text using the whisper CLI.
type Transcriber struct {
	// Path is the whisper executable. Defaults to "whisper".
	Path string
	// Model is the Whisper model name. Defaults to "medium", which balances
	// speed and accuracy for Hebrew.
	Model string
	// Language is the transcription language code. Defaults to "he".
	Language string
	// Timeout is the maximum time for one transcription run.
	Timeout time.Duration
}

// NewTranscriber creates a transcriber with defaults suitable for Hebrew.
func NewTranscriber() *Transcriber {
	return &Transcriber{
		Path:     defaultWhisperPath,
		Model:    defaultModel,
		Language: defaultLanguage,
		Timeout:  defaultTimeout,
	}
}

// Transcribe runs the model over the audio file at audioPath and returns
// the transcript text. The whisper CLI writes a .txt file next to the
// model's working directory; Transcribe collects it and cleans it up.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", &TranscriptionError{Path: audioPath, Err: fmt.Errorf("audio file missing: %w", err)}
	}

	outDir, err := os.MkdirTemp("", "hebscribe-whisper-*")
	if err != nil {
		return "", &TranscriptionError{Path: audioPath, Err: err}
	}
	defer os.RemoveAll(outDir)

	timeout := t.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, t.path(), t.buildArgs(audioPath, outDir)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return "", &TranscriptionError{Path: audioPath, Err: context.DeadlineExceeded}
		}
		return "", &TranscriptionError{Path: audioPath,
			Err: fmt.Errorf("whisper failed: %w: %s", err, strings.TrimSpace(stderr.String()))}
	}

	text, err := os.ReadFile(OutputPath(outDir, audioPath))
	if err != nil {
		return "", &TranscriptionError{Path: audioPath, Err: fmt.Errorf("read transcript: %w", err)}
	}

	transcript := strings.TrimSpace(string(text))
	if transcript == "" {
		return "", &TranscriptionError{Path: audioPath, Err: fmt.Errorf("transcription produced empty text")}
	}
	return transcript, nil
}

// buildArgs assembles the whisper CLI arguments for one run.
func (t *Transcriber) buildArgs(audioPath, outDir string) []string {
	return []string{
		audioPath,
		"--model", t.model(),
		"--language", t.language(),
		"--output_format", "txt",
		"--output_dir", outDir,
		"--verbose", "False",
	}
}

// OutputPath returns where the whisper CLI writes the .txt transcript for
// the given audio file: the audio basename with its extension swapped.
func OutputPath(outDir, audioPath string) string {
	base := filepath.Base(audioPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+".txt")
}

func (t *Transcriber) path() string {
	if t.Path != "" {
		return t.Path
	}
	return defaultWhisperPath
}

func (t *Transcriber) model() string {
	if t.Model != "" {
		return t.Model
	}
	return defaultModel
}

func (t *Transcriber) language() string {
	if t.Language != "" {
		return t.Language
	}
	return defaultLanguage
}
