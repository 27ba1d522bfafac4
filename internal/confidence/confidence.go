// Package confidence computes the weighted multi-factor confidence score of an
// extracted story. Every function here is pure.
package confidence

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/storyweaver/internal/types"
)

// Factor weights. They sum to 1.0.
const (
	TemplateMatchWeight   = 0.25
	RoleClarityWeight     = 0.15
	ActionClarityWeight   = 0.25
	ValueClarityWeight    = 0.15
	SourceLengthWeight    = 0.10
	LanguageClarityWeight = 0.10
)

// Thresholds on the overall score
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.5
	ReviewThreshold = 0.7
)

// Reason texts attached to a score
const (
	ReasonStandardTemplate = "matches standard template"
	ReasonRoleClear        = "role clearly defined"
	ReasonRoleUnclear      = "role unclear"
	ReasonActionVague      = "action may need refinement"
	ReasonValueMissing     = "missing explicit business value"
)

// templatePatterns are tried strict to loose; the first full-template match scores 0.9
var templatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)As a\s+.+?\s*,?\s*I want(?: to)?\s+.+?\s*,?\s*So that\s+.+?`),
	regexp.MustCompile(`作为[了一个个名]*\s*.+?\s*[,，]?\s*(?:我)?(?:想|希望|需要|想要|可以|能够)`),
	regexp.MustCompile(`.+?可以.+?以便.+`),
	regexp.MustCompile(`.+?能够.+?从而.+`),
}

var (
	roleMention   = regexp.MustCompile(`作为|As a`)
	actionMention = regexp.MustCompile(`可以|能够|want|need`)
)

// TemplateMatch grades how closely text already resembles the three-clause template
func TemplateMatch(text string) float64 {
	for _, p := range templatePatterns {
		if p.MatchString(text) {
			return 0.9
		}
	}
	if roleMention.MatchString(text) {
		return 0.6
	}
	if actionMention.MatchString(text) {
		return 0.4
	}
	return 0.2
}

// SourceLength scores the rune length of the source sentence against the 20-200 ideal band
func SourceLength(text string) float64 {
	n := utf8.RuneCountInString(text)
	switch {
	case n >= 20 && n <= 200:
		return 0.9
	case n >= 10 && n < 20:
		return 0.7
	case n > 200 && n <= 500:
		return 0.6
	case n < 10:
		return 0.3
	default:
		return 0.4
	}
}

// LanguageClarity starts at 0.9 and loses 0.1 for each vagueness marker
// present in text, with a floor of 0.3.
func LanguageClarity(text string, markers []string) float64 {
	score := 0.9
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			score -= 0.1
		}
	}
	return round(math.Max(score, 0.3))
}

// Score combines the six factors into a ConfidenceScore. Overall is clamped
// to [0,1]; Level and NeedsReview depend only on Overall.
func Score(f types.ConfidenceFactors) types.ConfidenceScore {
	overall := f.TemplateMatch*TemplateMatchWeight +
		f.RoleClarity*RoleClarityWeight +
		f.ActionClarity*ActionClarityWeight +
		f.ValueClarity*ValueClarityWeight +
		f.SourceLength*SourceLengthWeight +
		f.LanguageClarity*LanguageClarityWeight
	overall = round(clamp(overall))

	return types.ConfidenceScore{
		Overall:     overall,
		Level:       LevelFor(overall),
		Factors:     f,
		Reasons:     reasons(f),
		NeedsReview: NeedsReview(overall),
	}
}

// Rescore returns a copy of s carrying a new overall value with Level and
// NeedsReview recomputed. Factors and Reasons are kept.
func Rescore(s types.ConfidenceScore, overall float64) types.ConfidenceScore {
	overall = round(clamp(overall))
	s.Overall = overall
	s.Level = LevelFor(overall)
	s.NeedsReview = NeedsReview(overall)
	s.Reasons = append([]string(nil), s.Reasons...)
	return s
}

// LevelFor buckets an overall score
func LevelFor(overall float64) types.ConfidenceLevel {
	switch {
	case overall >= HighThreshold:
		return types.ConfidenceHigh
	case overall >= MediumThreshold:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

// NeedsReview reports whether a story with this overall score should be reviewed
func NeedsReview(overall float64) bool {
	return overall < ReviewThreshold
}

func reasons(f types.ConfidenceFactors) []string {
	out := []string{}
	if f.TemplateMatch >= 0.8 {
		out = append(out, ReasonStandardTemplate)
	}
	if f.RoleClarity >= 0.8 {
		out = append(out, ReasonRoleClear)
	} else if f.RoleClarity < 0.5 {
		out = append(out, ReasonRoleUnclear)
	}
	if f.ActionClarity < 0.8 {
		out = append(out, ReasonActionVague)
	}
	if f.ValueClarity < 0.5 {
		out = append(out, ReasonValueMissing)
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round drops float noise so sums such as 0.7 compare as exactly 0.7
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
