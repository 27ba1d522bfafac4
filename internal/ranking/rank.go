// Package ranking deduplicates extracted stories and orders them by confidence.
package ranking

import (
	"sort"
	"strings"

	"github.com/jonathan/storyweaver/internal/types"
)

// NormalizeAction returns the deduplication key of an action
func NormalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}

// Deduplicate keeps the first story for each normalized action, preserving input order
func Deduplicate(stories []types.Story) []types.Story {
	seen := make(map[string]bool, len(stories))
	out := make([]types.Story, 0, len(stories))
	for _, story := range stories {
		key := NormalizeAction(story.Action)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, story)
	}
	return out
}

// Rank returns the stories sorted by descending overall confidence.
// Equal scores keep their input order. The input slice is not modified.
func Rank(stories []types.Story) []types.Story {
	ranked := make([]types.Story, len(stories))
	copy(ranked, stories)

	// Sort by overall confidence (descending)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence.Overall > ranked[j].Confidence.Overall
	})
	return ranked
}

// DeduplicateAndRank produces the final story order for a document and sets
// SortOrder to each story's position.
func DeduplicateAndRank(stories []types.Story) []types.Story {
	ranked := Rank(Deduplicate(stories))
	for i := range ranked {
		ranked[i].SortOrder = i
	}
	return ranked
}
