// Package prompts holds the LLM prompt templates for story optimization.
// Templates live in optimization.json, embedded at compile time, and use
// text/template placeholders such as {{.Role}}.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed optimization.json
var optimizationJSON []byte

// Template keys in optimization.json
const (
	KeySystem        = "system"
	KeyOptimizeStory = "optimize-story"
)

// StoryFields fills the optimize-story template. Every field is inserted as
// plain text.
type StoryFields struct {
	Role          string
	Action        string
	Value         string
	Module        string
	Priority      string
	Confidence    string // whole percent
	Description   string
	Goals         string // one numbered goal per line
	SourceContext string
}

// Set is a parsed prompt file
type Set struct {
	raw  map[string]string
	tmpl *template.Template
}

// Parse reads a JSON object of key -> template text
func Parse(data []byte) (*Set, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file: %w", err)
	}

	root := template.New("prompts").Option("missingkey=error")
	for key, text := range raw {
		if _, err := root.New(key).Parse(text); err != nil {
			return nil, fmt.Errorf("failed to parse prompt %q: %w", key, err)
		}
	}
	return &Set{raw: raw, tmpl: root}, nil
}

// Text returns the unrendered template for key
func (s *Set) Text(key string) (string, error) {
	text, ok := s.raw[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return text, nil
}

// Render executes the template for key with data
func (s *Set) Render(key string, data any) (string, error) {
	if _, ok := s.raw[key]; !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	var sb strings.Builder
	if err := s.tmpl.ExecuteTemplate(&sb, key, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", key, err)
	}
	return sb.String(), nil
}

// Keys returns the prompt keys in sorted order
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.raw))
	for key := range s.raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var optimization = sync.OnceValues(func() (*Set, error) {
	return Parse(optimizationJSON)
})

// Optimization returns the embedded optimization prompt set
func Optimization() (*Set, error) {
	return optimization()
}

// System returns the system prompt sent with every optimization call
func System() (string, error) {
	set, err := Optimization()
	if err != nil {
		return "", err
	}
	return set.Text(KeySystem)
}

// OptimizeStory renders the user prompt for one story
func OptimizeStory(f StoryFields) (string, error) {
	set, err := Optimization()
	if err != nil {
		return "", err
	}
	return set.Render(KeyOptimizeStory, f)
}
