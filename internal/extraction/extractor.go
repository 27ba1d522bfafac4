// Package extraction recovers role, action and value from candidate sentences
// and turns them into draft stories.
package extraction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/storyweaver/internal/confidence"
	"github.com/jonathan/storyweaver/internal/lexicon"
	"github.com/jonathan/storyweaver/internal/segment"
	"github.com/jonathan/storyweaver/internal/types"
)

const (
	roleTableConfidence    = 0.8
	roleFallbackConfidence = 0.5
	valueMissingConfidence = 0.3
	maxTitleRunes          = 15
)

// Extractor applies the rule tables and lexicon to candidate sentences
type Extractor struct {
	lex         *lexicon.Lexicon
	roleRules   []Rule
	actionRules []Rule
	valueRules  []Rule
	now         func() time.Time
	newID       func() string
}

// Option configures an Extractor
type Option func(*Extractor)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithIDFunc overrides the story ID generator
func WithIDFunc(newID func() string) Option {
	return func(e *Extractor) { e.newID = newID }
}

// WithActionRules replaces the action rule table
func WithActionRules(rules []Rule) Option {
	return func(e *Extractor) { e.actionRules = rules }
}

// New creates an Extractor. A nil lexicon uses lexicon.Default().
func New(lex *lexicon.Lexicon, opts ...Option) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	e := &Extractor{
		lex:         lex,
		roleRules:   RoleRules,
		actionRules: ActionRules,
		valueRules:  ValueRules,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractRole returns the role and its confidence: 0.9 for an explicit role,
// 0.8 for a lexicon synonym, 0.5 for the default role.
func (e *Extractor) ExtractRole(text string) (string, float64) {
	if role, conf, ok := firstMatch(e.roleRules, text); ok {
		return role, conf
	}
	if role, ok := e.lookupRole(text); ok {
		return role, roleTableConfidence
	}
	return e.lex.DefaultRole, roleFallbackConfidence
}

// lookupRole picks the role whose synonym appears earliest in text.
// Ties go to the longer synonym.
func (e *Extractor) lookupRole(text string) (string, bool) {
	lower := strings.ToLower(text)
	bestPos, bestLen := -1, 0
	var best string
	for _, entry := range e.lex.Roles {
		for _, syn := range entry.Synonyms {
			if syn == "" {
				continue
			}
			pos := strings.Index(lower, strings.ToLower(syn))
			if pos < 0 {
				continue
			}
			if bestPos < 0 || pos < bestPos || (pos == bestPos && len(syn) > bestLen) {
				bestPos, bestLen, best = pos, len(syn), entry.Role
			}
		}
	}
	return best, bestPos >= 0
}

// ExtractAction returns the requested capability. ok is false when no rule
// produced an action of at least five runes.
func (e *Extractor) ExtractAction(text string) (action string, conf float64, ok bool) {
	return firstMatch(e.actionRules, text)
}

// ExtractValue returns the benefit clause, or the lexicon placeholder at 0.3
func (e *Extractor) ExtractValue(text string) (string, float64) {
	if value, conf, ok := firstMatch(e.valueRules, text); ok {
		return value, conf
	}
	return e.lex.ValuePlaceholder, valueMissingConfidence
}

// InferPriority maps urgent keywords to P0, deferred keywords to P2, anything else to P1
func (e *Extractor) InferPriority(text string) types.Priority {
	if lexicon.ContainsAny(text, e.lex.UrgentKeywords) {
		return types.PriorityP0
	}
	if lexicon.ContainsAny(text, e.lex.DeferredKeywords) {
		return types.PriorityP2
	}
	return types.PriorityP1
}

// Generate builds a draft story from one sentence. ok is false when the
// sentence yields no action.
func (e *Extractor) Generate(sentence string, section types.DocumentSection) (*types.Story, bool) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil, false
	}

	action, actionConf, ok := e.ExtractAction(sentence)
	if !ok {
		return nil, false
	}
	role, roleConf := e.ExtractRole(sentence)
	value, valueConf := e.ExtractValue(sentence)

	score := confidence.Score(types.ConfidenceFactors{
		TemplateMatch:   confidence.TemplateMatch(sentence),
		RoleClarity:     roleConf,
		ActionClarity:   actionConf,
		ValueClarity:    valueConf,
		SourceLength:    confidence.SourceLength(sentence),
		LanguageClarity: confidence.LanguageClarity(sentence, e.lex.VaguenessMarkers),
	})

	now := e.now()
	return &types.Story{
		ID:          e.newID(),
		DocumentID:  section.DocumentID,
		Title:       Title(action),
		Description: types.RenderDescription(role, action, value),
		Role:        role,
		Action:      action,
		Value:       value,
		Module:      section.Title,
		Priority:    e.InferPriority(sentence),
		Confidence:  score,
		SourceReference: types.SourceReference{
			SentenceText: sentence,
			SectionID:    section.ID,
			SectionTitle: section.Title,
		},
		Status:    types.StoryStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, true
}

// FromSection generates draft stories for every candidate sentence of the
// section body, in source order.
func (e *Extractor) FromSection(section types.DocumentSection) []*types.Story {
	var stories []*types.Story
	for sentence := range segment.Sentences(section.Body) {
		if story, ok := e.Generate(sentence, section); ok {
			stories = append(stories, story)
		}
	}
	return stories
}

// Title shortens an action to at most 15 runes plus an ellipsis
func Title(action string) string {
	runes := []rune(action)
	if len(runes) <= maxTitleRunes {
		return action
	}
	return string(runes[:maxTitleRunes]) + "..."
}
