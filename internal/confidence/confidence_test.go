package confidence

import (
	"strings"
	"testing"

	"github.com/jonathan/storyweaver/internal/lexicon"
	"github.com/jonathan/storyweaver/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := TemplateMatchWeight + RoleClarityWeight + ActionClarityWeight +
		ValueClarityWeight + SourceLengthWeight + LanguageClarityWeight
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestTemplateMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"english template", "As a admin, I want to delete users, So that costs drop", 0.9},
		{"chinese acting-as", "作为一名管理员，我希望批量删除用户", 0.9},
		{"can ... so that", "管理员可以批量删除用户账号以便减少维护成本", 0.9},
		{"able ... thereby", "系统能够自动备份数据从而降低风险", 0.9},
		{"mentions role only", "As a matter of fact nothing here", 0.6},
		{"mentions capability", "用户可以导出报表", 0.4},
		{"english need", "we need faster exports", 0.4},
		{"nothing", "系统响应时间小于两百毫秒", 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TemplateMatch(tt.text))
		})
	}
}

func TestSourceLength(t *testing.T) {
	tests := []struct {
		runes int
		want  float64
	}{
		{0, 0.3},
		{9, 0.3},
		{10, 0.7},
		{19, 0.7},
		{20, 0.9},
		{200, 0.9},
		{201, 0.6},
		{500, 0.6},
		{501, 0.4},
	}

	for _, tt := range tests {
		// multi-byte runes so byte length would give the wrong band
		text := strings.Repeat("字", tt.runes)
		assert.Equal(t, tt.want, SourceLength(text), "runes=%d", tt.runes)
	}
}

func TestLanguageClarity(t *testing.T) {
	markers := lexicon.Default().VaguenessMarkers

	assert.Equal(t, 0.9, LanguageClarity("用户可以导出报表", markers))
	assert.Equal(t, 0.8, LanguageClarity("用户可以导出相关报表", markers))
	assert.Equal(t, 0.7, LanguageClarity("用户可以导出相关报表等等", markers))
	// a repeated marker counts once
	assert.Equal(t, 0.8, LanguageClarity("相关的相关报表", markers))
	assert.Equal(t, 0.4, LanguageClarity("等等之类相关其他某些", markers))
	assert.Equal(t, 0.3, LanguageClarity("等等之类相关其他某些所有若干", append(markers, "所有", "若干")))
	assert.Equal(t, 0.9, LanguageClarity("任何文本", nil))
}

func TestLevelAndReviewBoundaries(t *testing.T) {
	tests := []struct {
		overall     float64
		level       types.ConfidenceLevel
		needsReview bool
	}{
		{0.0, types.ConfidenceLow, true},
		{0.49, types.ConfidenceLow, true},
		{0.5, types.ConfidenceMedium, true},
		{0.69, types.ConfidenceMedium, true},
		{0.7, types.ConfidenceMedium, false},
		{0.79, types.ConfidenceMedium, false},
		{0.8, types.ConfidenceHigh, false},
		{1.0, types.ConfidenceHigh, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelFor(tt.overall), "overall=%v", tt.overall)
		assert.Equal(t, tt.needsReview, NeedsReview(tt.overall), "overall=%v", tt.overall)
	}
}

func TestScore_ExampleSentence(t *testing.T) {
	f := types.ConfidenceFactors{
		TemplateMatch:   0.9,
		RoleClarity:     0.8,
		ActionClarity:   0.85,
		ValueClarity:    0.9,
		SourceLength:    0.9,
		LanguageClarity: 0.9,
	}

	got := Score(f)
	assert.InDelta(t, 0.8725, got.Overall, 1e-9)
	assert.Equal(t, types.ConfidenceHigh, got.Level)
	assert.False(t, got.NeedsReview)
	assert.Equal(t, f, got.Factors)
	assert.Equal(t, []string{ReasonStandardTemplate, ReasonRoleClear}, got.Reasons)
}

func TestScore_ExactThresholdSums(t *testing.T) {
	// every factor at 0.7 must land exactly on the review threshold
	f := factors(0.7, 0.7, 0.7, 0.7, 0.7, 0.7)
	got := Score(f)
	assert.Equal(t, 0.7, got.Overall)
	assert.False(t, got.NeedsReview)

	f = factors(0.8, 0.8, 0.8, 0.8, 0.8, 0.8)
	assert.Equal(t, types.ConfidenceHigh, Score(f).Level)
}

func TestScore_Clamped(t *testing.T) {
	high := Score(factors(2, 2, 2, 2, 2, 2))
	assert.Equal(t, 1.0, high.Overall)

	low := Score(factors(-1, -1, -1, -1, -1, -1))
	assert.Equal(t, 0.0, low.Overall)
	assert.Equal(t, types.ConfidenceLow, low.Level)
}

func TestScore_Reasons(t *testing.T) {
	got := Score(types.ConfidenceFactors{
		TemplateMatch:   0.2,
		RoleClarity:     0.3,
		ActionClarity:   0.5,
		ValueClarity:    0.3,
		SourceLength:    0.9,
		LanguageClarity: 0.9,
	})
	assert.Equal(t, []string{ReasonRoleUnclear, ReasonActionVague, ReasonValueMissing}, got.Reasons)

	// a mid-range role gets no role reason at all
	got = Score(types.ConfidenceFactors{RoleClarity: 0.5, ActionClarity: 0.85, ValueClarity: 0.9})
	assert.Empty(t, got.Reasons)
	assert.NotNil(t, got.Reasons)
}

func TestScore_Deterministic(t *testing.T) {
	f := factors(0.4, 0.5, 0.85, 0.3, 0.7, 0.8)
	assert.Equal(t, Score(f), Score(f))
}

func TestRescore(t *testing.T) {
	orig := Score(factors(0.2, 0.5, 0.85, 0.3, 0.9, 0.9))
	assert.True(t, orig.NeedsReview)

	got := Rescore(orig, 0.92)
	assert.Equal(t, 0.92, got.Overall)
	assert.Equal(t, types.ConfidenceHigh, got.Level)
	assert.False(t, got.NeedsReview)
	assert.Equal(t, orig.Factors, got.Factors)

	// original untouched
	assert.True(t, orig.NeedsReview)
	got.Reasons = append(got.Reasons, "extra")
	assert.NotContains(t, orig.Reasons, "extra")
}

func factors(template, role, action, value, length, language float64) types.ConfidenceFactors {
	return types.ConfidenceFactors{
		TemplateMatch:   template,
		RoleClarity:     role,
		ActionClarity:   action,
		ValueClarity:    value,
		SourceLength:    length,
		LanguageClarity: language,
	}
}
