// Package sections splits raw document text into titled sections and assigns
// each one a semantic category.
package sections

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/storyweaver/internal/lexicon"
	"github.com/jonathan/storyweaver/internal/types"
)

// maxNumberedTitleRunes bounds numbered headings so ordinary numbered list
// items are not mistaken for section titles.
const maxNumberedTitleRunes = 30

var (
	markdownHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	numberedHeading = regexp.MustCompile(`^(\d+\.(?:\d+\.?)*)\s+(.+)$`)
	sentenceEnd     = regexp.MustCompile(`[。！？；.!?;，,]$`)
)

// Classifier splits and classifies documents using lexicon keyword tables
type Classifier struct {
	lex   *lexicon.Lexicon
	newID func() string
}

// NewClassifier creates a classifier. A nil lexicon uses lexicon.Default().
func NewClassifier(lex *lexicon.Lexicon) *Classifier {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Classifier{lex: lex, newID: uuid.NewString}
}

type heading struct {
	title string
	level int
}

type block struct {
	title     string
	level     int
	synthetic bool
	lines     []string
}

// Split breaks text into ordered, classified sections. It never fails and
// always returns at least one section.
func (c *Classifier) Split(documentID, text string) []types.DocumentSection {
	var blocks []*block
	preamble := &block{title: c.lex.SyntheticSection, level: 1, synthetic: true}
	current := preamble

	for _, raw := range strings.Split(normalizeNewlines(text), "\n") {
		line := strings.TrimSpace(raw)
		if h, ok := parseHeading(line); ok {
			current = &block{title: h.title, level: h.level}
			blocks = append(blocks, current)
			continue
		}
		if line != "" {
			current.lines = append(current.lines, line)
		}
	}

	// Text before the first heading, or the whole document when no headings exist
	if len(preamble.lines) > 0 || len(blocks) == 0 {
		blocks = append([]*block{preamble}, blocks...)
	}

	sections := make([]types.DocumentSection, 0, len(blocks))
	for i, b := range blocks {
		body := b.body()
		category := c.Classify(b.title)
		if b.synthetic {
			category = types.SectionFunctional
		}
		sections = append(sections, types.DocumentSection{
			ID:         c.newID(),
			DocumentID: documentID,
			Title:      b.title,
			Body:       body,
			Category:   category,
			Level:      b.level,
			Order:      i,
			CharCount:  utf8.RuneCountInString(body),
		})
	}
	return sections
}

// Classify assigns a category to a section title. Keyword sets are checked
// in the order functional, non-functional, background; no match is functional.
func (c *Classifier) Classify(title string) types.SectionCategory {
	kw := c.lex.Sections
	if lexicon.ContainsAny(title, kw.Functional) && !lexicon.ContainsAny(title, kw.FunctionalExclusions) {
		return types.SectionFunctional
	}
	if lexicon.ContainsAny(title, kw.NonFunctional) {
		return types.SectionNonFunctional
	}
	if lexicon.ContainsAny(title, kw.Background) {
		return types.SectionBackground
	}
	return types.SectionFunctional
}

// Extractable reports whether stories should be mined from the section
func Extractable(section types.DocumentSection) bool {
	return section.Category == types.SectionFunctional
}

func (b *block) body() string {
	if b.synthetic {
		return strings.Join(b.lines, "\n")
	}
	return strings.Join(append([]string{b.title}, b.lines...), "\n")
}

func parseHeading(line string) (heading, bool) {
	if m := markdownHeading.FindStringSubmatch(line); m != nil {
		return heading{title: strings.TrimSpace(m[2]), level: len(m[1])}, true
	}
	if m := numberedHeading.FindStringSubmatch(line); m != nil {
		title := strings.TrimSpace(m[2])
		if utf8.RuneCountInString(title) > maxNumberedTitleRunes || sentenceEnd.MatchString(title) {
			return heading{}, false
		}
		groups := strings.FieldsFunc(m[1], func(r rune) bool { return r == '.' })
		return heading{title: title, level: len(groups)}, true
	}
	return heading{}, false
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
