// Package lexicon holds the vocabulary tables used by section classification,
// story extraction, confidence scoring and priority inference.
// The defaults are bilingual (Chinese/English); a YAML file can replace any table.
package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoleEntry maps a canonical role name to the synonyms that identify it
type RoleEntry struct {
	Role     string   `yaml:"role"`
	Synonyms []string `yaml:"synonyms"`
}

// SectionKeywords groups the title keywords per section category
type SectionKeywords struct {
	Functional           []string `yaml:"functional"`
	FunctionalExclusions []string `yaml:"functional_exclusions"`
	NonFunctional        []string `yaml:"non_functional"`
	Background           []string `yaml:"background"`
}

// Lexicon is the full set of vocabulary tables.
// Roles is ordered: the first entry with a matching synonym wins.
type Lexicon struct {
	DefaultRole       string          `yaml:"default_role"`
	ValuePlaceholder  string          `yaml:"value_placeholder"`
	SyntheticSection  string          `yaml:"synthetic_section"`
	Roles             []RoleEntry     `yaml:"roles"`
	Sections          SectionKeywords `yaml:"sections"`
	UrgentKeywords    []string        `yaml:"urgent_keywords"`
	DeferredKeywords  []string        `yaml:"deferred_keywords"`
	VaguenessMarkers  []string        `yaml:"vagueness_markers"`
	OptimizationGoals []string        `yaml:"optimization_goals"`
}

// Default returns the built-in bilingual lexicon
func Default() *Lexicon {
	return &Lexicon{
		DefaultRole:      "用户",
		ValuePlaceholder: "（待补充）",
		SyntheticSection: "文档内容",
		Roles: []RoleEntry{
			{Role: "用户", Synonyms: []string{"用户", "使用者", "终端用户", "普通用户"}},
			{Role: "管理员", Synonyms: []string{"管理员", "超级管理员", "系统管理员", "admin"}},
			{Role: "访客", Synonyms: []string{"访客", "游客", "未登录用户", "临时用户"}},
		},
		Sections: SectionKeywords{
			Functional:           []string{"功能", "需求", "用户故事", "feature", "functionality", "user story", "requirement"},
			FunctionalExclusions: []string{"非功能", "non-functional", "nonfunctional"},
			NonFunctional:        []string{"非功能", "性能", "安全", "non-functional", "nonfunctional", "security", "performance", "constraint"},
			Background:           []string{"背景", "概述", "简介", "background", "overview", "introduction"},
		},
		UrgentKeywords:   []string{"必须", "一定", "关键", "核心", "重要", "p0", "高优先级"},
		DeferredKeywords: []string{"可选", "未来", "暂缓", "p2", "低优先级", "nice to have"},
		VaguenessMarkers: []string{"等等", "之类", "相关", "其他", "某些"},
		OptimizationGoals: []string{
			"提升描述的清晰度",
			"补充缺失信息",
			"优化语言表达",
			"增强置信度",
		},
	}
}

// Load reads a YAML lexicon file. Tables absent from the file keep their defaults.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return nil, fmt.Errorf("lexicon path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML lexicon data on top of the defaults
func Parse(data []byte) (*Lexicon, error) {
	var override Lexicon
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon YAML: %w", err)
	}

	lex := Default()
	lex.merge(&override)

	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return lex, nil
}

// Validate checks that the tables the extractor depends on are usable
func (l *Lexicon) Validate() error {
	if strings.TrimSpace(l.DefaultRole) == "" {
		return fmt.Errorf("lexicon error: 'default_role' must not be empty")
	}
	if strings.TrimSpace(l.ValuePlaceholder) == "" {
		return fmt.Errorf("lexicon error: 'value_placeholder' must not be empty")
	}
	for i, entry := range l.Roles {
		if strings.TrimSpace(entry.Role) == "" {
			return fmt.Errorf("lexicon error: roles[%d].role must not be empty", i)
		}
		if len(entry.Synonyms) == 0 {
			return fmt.Errorf("lexicon error: roles[%d].synonyms must not be empty", i)
		}
	}
	return nil
}

// merge copies every non-empty table of o into l
func (l *Lexicon) merge(o *Lexicon) {
	if o.DefaultRole != "" {
		l.DefaultRole = o.DefaultRole
	}
	if o.ValuePlaceholder != "" {
		l.ValuePlaceholder = o.ValuePlaceholder
	}
	if o.SyntheticSection != "" {
		l.SyntheticSection = o.SyntheticSection
	}
	if len(o.Roles) > 0 {
		l.Roles = o.Roles
	}
	if len(o.Sections.Functional) > 0 {
		l.Sections.Functional = o.Sections.Functional
	}
	if len(o.Sections.FunctionalExclusions) > 0 {
		l.Sections.FunctionalExclusions = o.Sections.FunctionalExclusions
	}
	if len(o.Sections.NonFunctional) > 0 {
		l.Sections.NonFunctional = o.Sections.NonFunctional
	}
	if len(o.Sections.Background) > 0 {
		l.Sections.Background = o.Sections.Background
	}
	if len(o.UrgentKeywords) > 0 {
		l.UrgentKeywords = o.UrgentKeywords
	}
	if len(o.DeferredKeywords) > 0 {
		l.DeferredKeywords = o.DeferredKeywords
	}
	if len(o.VaguenessMarkers) > 0 {
		l.VaguenessMarkers = o.VaguenessMarkers
	}
	if len(o.OptimizationGoals) > 0 {
		l.OptimizationGoals = o.OptimizationGoals
	}
}

// ContainsAny reports whether text contains any keyword, case-insensitively
func ContainsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
