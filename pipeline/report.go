package pipeline

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Summary aggregates the per-video outcomes of one phase. It exists only
// for the duration of a run; it is printed, never persisted.
type Summary struct {
	// RunID correlates the summary with log lines from the same invocation.
	RunID string
	// Phase names the phase the summary belongs to.
	Phase string
	// Total is the number of links the phase attempted.
	Total int
	// Succeeded is the number of transcripts persisted.
	Succeeded int
	// Failed is the number of links that did not yield a transcript.
	Failed int
}

// NewSummary creates an empty summary for a phase with a fresh run ID.
func NewSummary(phase string) *Summary {
	return &Summary{RunID: uuid.NewString(), Phase: phase}
}

// Rate returns the success rate as a percentage. A summary with no links
// reports 0.
func (s *Summary) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total) * 100
}

// Combine merges another phase's counts into a whole-run view.
func (s *Summary) Combine(other *Summary) *Summary {
	return &Summary{
		RunID:     s.RunID,
		Phase:     s.Phase + "+" + other.Phase,
		Total:     s.Total + other.Total,
		Succeeded: s.Succeeded + other.Succeeded,
		Failed:    s.Failed + other.Failed,
	}
}

// Print writes the formatted summary block. It always runs at the end of a
// phase, even when every video failed, so the caller can judge whether to
// supply authentication or investigate.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n--- %s complete ---\n", s.Phase)
	fmt.Fprintf(w, "Total videos processed: %d\n", s.Total)
	fmt.Fprintf(w, "Successful transcripts: %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed: %d\n", s.Failed)
	fmt.Fprintf(w, "Success rate: %.1f%%\n", s.Rate())
}
