package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is one entry of an ordered extraction table. Pattern must have one
// capture group; the trimmed capture must be at least MinRunes long.
type Rule struct {
	Name       string
	Pattern    *regexp.Regexp
	Confidence float64
	MinRunes   int
}

// RoleRules recognise an explicitly stated role. "as a" only counts at the
// start of a clause so "export as a CSV file" is not read as a role.
var RoleRules = []Rule{
	{
		Name:       "acting-as",
		Pattern:    regexp.MustCompile(`(?i)作为[了一个个名]*\s*([^，,]+?)(?:，|,|我|可以|能够|需要|想要)`),
		Confidence: 0.9,
		MinRunes:   2,
	},
	{
		Name:       "as-a",
		Pattern:    regexp.MustCompile(`(?i)(?:^\s*|[,，;；]\s*)as an?\s+([^,，]+?)\s*(?:[,，]|\bI\s+(?:want|need|can)\b)`),
		Confidence: 0.9,
		MinRunes:   2,
	},
}

// ActionRules recognise the capability a story asks for
var ActionRules = []Rule{
	{
		Name:       "can-support-allow",
		Pattern:    regexp.MustCompile(`(?i)(?:可以|能够|支持|允许)\s*(.+?)(?:以便|从而|为了|so\s*that|$)`),
		Confidence: 0.85,
		MinRunes:   5,
	},
	{
		Name:       "need-require",
		Pattern:    regexp.MustCompile(`(?i)(?:需要|要求|必须)\s*(.+?)(?:，|,|$)`),
		Confidence: 0.85,
		MinRunes:   5,
	},
	{
		Name:       "want-hope",
		Pattern:    regexp.MustCompile(`(?i)(?:想要|希望|期望)\s*(.+?)(?:，|,|$)`),
		Confidence: 0.85,
		MinRunes:   5,
	},
	{
		Name:       "english-modal",
		Pattern:    regexp.MustCompile(`(?i)\b(?:can|should be able to|needs? to|wants? to)\s+(.+?)(?:\s*,?\s*so\s+that\b|[,，]|$)`),
		Confidence: 0.85,
		MinRunes:   5,
	},
}

// ValueRules recognise the benefit clause
var ValueRules = []Rule{
	{
		Name:       "so-that",
		Pattern:    regexp.MustCompile(`(?i)(?:以便|从而|为了|so\s*that)\s*(.+?)(?:。|$)`),
		Confidence: 0.9,
		MinRunes:   3,
	},
}

// firstMatch applies rules in order and returns the first acceptable capture
func firstMatch(rules []Rule, text string) (string, float64, bool) {
	for _, r := range rules {
		m := r.Pattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		captured := strings.TrimSpace(m[1])
		if captured == "" || utf8.RuneCountInString(captured) < r.MinRunes {
			continue
		}
		return captured, r.Confidence, true
	}
	return "", 0, false
}
