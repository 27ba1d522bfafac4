package ranking

import (
	"fmt"
	"strings"

	"github.com/jonathan/storyweaver/internal/types"
)

// Summary aggregates the confidence of a ranked story list
type Summary struct {
	Count             int
	AverageConfidence *float64
	High              int
	Medium            int
	Low               int
	NeedsReview       int
}

// Summarize computes aggregate confidence statistics. AverageConfidence is
// nil when there are no stories.
func Summarize(stories []types.Story) Summary {
	s := Summary{Count: len(stories)}
	if len(stories) == 0 {
		return s
	}

	total := 0.0
	for _, story := range stories {
		total += story.Confidence.Overall
		switch story.Confidence.Level {
		case types.ConfidenceHigh:
			s.High++
		case types.ConfidenceMedium:
			s.Medium++
		default:
			s.Low++
		}
		if story.Confidence.NeedsReview {
			s.NeedsReview++
		}
	}
	avg := total / float64(len(stories))
	s.AverageConfidence = &avg
	return s
}

// Notes creates a brief explanation of the summary.
func (s Summary) Notes() string {
	if s.Count == 0 {
		return "No stories extracted"
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d stories, average confidence %.0f%%", s.Count, *s.AverageConfidence*100))

	// Level breakdown
	parts = append(parts, fmt.Sprintf("%d high, %d medium, %d low", s.High, s.Medium, s.Low))

	if s.NeedsReview > 0 {
		parts = append(parts, fmt.Sprintf("%d need review", s.NeedsReview))
	} else {
		parts = append(parts, "None need review")
	}

	return strings.Join(parts, ". ")
}
