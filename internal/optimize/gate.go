// Package optimize decides which extracted stories are worth a remote
// rewrite and runs those rewrites concurrently with a per-document barrier.
package optimize

import (
	"regexp"
	"strings"

	"github.com/jonathan/storyweaver/internal/confidence"
	"github.com/jonathan/storyweaver/internal/types"
)

// PendingMarker flags a story field that still needs completing
const PendingMarker = "待补充"

// complexityPatterns mark descriptions that read poorly as plain prose
var complexityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\([^)]*\)`),
	regexp.MustCompile(`【[^】]*】`),
	regexp.MustCompile(`(?i)待补充|TBD|TODO`),
	regexp.MustCompile(`[^\x{4E00}-\x{9FA5}a-zA-Z0-9，。！？；：,.!?;:\s]`),
}

// ShouldOptimize reports whether a story qualifies for remote optimization.
// It does not check credentials; callers without a provider never dispatch.
func ShouldOptimize(story *types.Story) bool {
	if story == nil {
		return false
	}
	if story.Confidence.Overall < confidence.ReviewThreshold || story.Confidence.NeedsReview {
		return true
	}
	if strings.Contains(story.Description, PendingMarker) {
		return true
	}
	return isComplex(story.Description)
}

func isComplex(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range complexityPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
