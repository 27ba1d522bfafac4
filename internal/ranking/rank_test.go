package ranking

import (
	"testing"

	"github.com/jonathan/storyweaver/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func story(id, action string, overall float64) types.Story {
	level := types.ConfidenceLow
	if overall >= 0.8 {
		level = types.ConfidenceHigh
	} else if overall >= 0.5 {
		level = types.ConfidenceMedium
	}
	return types.Story{
		ID:     id,
		Action: action,
		Confidence: types.ConfidenceScore{
			Overall:     overall,
			Level:       level,
			NeedsReview: overall < 0.7,
		},
	}
}

func ids(stories []types.Story) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.ID
	}
	return out
}

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	input := []types.Story{
		story("a", "Export Reports", 0.5),
		story("b", "  export reports ", 0.9),
		story("c", "删除账号", 0.6),
		story("d", "删除账号", 0.7),
	}

	got := Deduplicate(input)
	assert.Equal(t, []string{"a", "c"}, ids(got))
	// input untouched
	assert.Len(t, input, 4)
}

func TestRank_DescendingAndStable(t *testing.T) {
	input := []types.Story{
		story("a", "a1", 0.6),
		story("b", "b1", 0.9),
		story("c", "c1", 0.6),
		story("d", "d1", 0.9),
		story("e", "e1", 0.3),
	}

	got := Rank(input)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids(got))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(input))
}

func TestDeduplicateAndRank(t *testing.T) {
	input := []types.Story{
		story("a", "导出报表", 0.6),
		story("b", "批量删除用户账号", 0.87),
		story("c", "导出报表", 0.95),
		story("d", "修改密码", 0.6),
	}

	got := DeduplicateAndRank(input)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "a", "d"}, ids(got))
	for i, s := range got {
		assert.Equal(t, i, s.SortOrder)
	}
	// callers' stories keep their sort order
	assert.Equal(t, 0, input[1].SortOrder)
}

func TestDeduplicateAndRank_Idempotent(t *testing.T) {
	input := []types.Story{
		story("a", "x action", 0.5),
		story("b", "y action", 0.5),
		story("c", "X Action", 0.8),
		story("d", "z action", 0.8),
		story("e", "y action", 0.1),
	}

	once := DeduplicateAndRank(input)
	twice := DeduplicateAndRank(once)
	assert.Equal(t, once, twice)
}

func TestDeduplicateAndRank_Empty(t *testing.T) {
	assert.Empty(t, DeduplicateAndRank(nil))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]types.Story{
		story("a", "a", 0.9),
		story("b", "b", 0.6),
		story("c", "c", 0.3),
	})

	assert.Equal(t, 3, s.Count)
	require.NotNil(t, s.AverageConfidence)
	assert.InDelta(t, 0.6, *s.AverageConfidence, 1e-9)
	assert.Equal(t, 1, s.High)
	assert.Equal(t, 1, s.Medium)
	assert.Equal(t, 1, s.Low)
	assert.Equal(t, 2, s.NeedsReview)
	assert.Equal(t, "3 stories, average confidence 60%. 1 high, 1 medium, 1 low. 2 need review", s.Notes())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Count)
	assert.Nil(t, s.AverageConfidence)
	assert.Equal(t, "No stories extracted", s.Notes())
}
