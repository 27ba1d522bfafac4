package llm

import "sort"

// Model is a user-facing model identifier
type Model string

// Supported models
const (
	ModelGPT4oMini         Model = "gpt-4o-mini"
	ModelGPT4o             Model = "gpt-4o"
	ModelClaude3Haiku      Model = "claude-3-haiku-20240307"
	ModelClaude3Sonnet     Model = "claude-3-sonnet-20240229"
	ModelClaude3Opus       Model = "claude-3-opus-20240229"
	ModelGemini15Flash     Model = "gemini-1.5-flash"
	ModelGemini15Pro       Model = "gemini-1.5-pro"
	ModelMinimaxCodingPlan Model = "minimax-coding-plan"
	ModelKimi              Model = "kimi"
	ModelGLMCodingPlan     Model = "glm-coding-plan"
	ModelVolcanoCodingPlan Model = "volcano-coding-plan"
	ModelDeepSeek          Model = "deepseek"
	ModelDoubao            Model = "doubao"
)

// ProviderName identifies a remote LLM backend
type ProviderName string

// Provider constants define supported LLM providers
const (
	ProviderOpenAI   ProviderName = "openai"
	ProviderClaude   ProviderName = "claude"
	ProviderGemini   ProviderName = "gemini"
	ProviderMinimax  ProviderName = "minimax"
	ProviderKimi     ProviderName = "kimi"
	ProviderGLM      ProviderName = "glm"
	ProviderVolcano  ProviderName = "volcano"
	ProviderDeepSeek ProviderName = "deepseek"
	ProviderDoubao   ProviderName = "doubao"
)

// DefaultRatePer1K is the USD price per 1000 tokens for unlisted models
const DefaultRatePer1K = 0.15

type authScheme int

const (
	authBearer authScheme = iota
	authAPIKeyHeader
	authSDK
)

// providerSpec describes one backend: where it lives, how it authenticates,
// what it calls the model on the wire and what it charges.
type providerSpec struct {
	name    ProviderName
	baseURL string
	auth    authScheme
	// wireModel overrides the model sent on the wire; empty sends the configured model
	wireModel string
	// frequencyPenalty is sent only when non-zero
	frequencyPenalty float64
	prices           map[Model]float64
	models           []Model
}

var providerSpecs = map[ProviderName]providerSpec{
	ProviderOpenAI: {
		name:             ProviderOpenAI,
		baseURL:          "https://api.openai.com/v1",
		auth:             authBearer,
		frequencyPenalty: 0.5,
		prices: map[Model]float64{
			ModelGPT4oMini: 0.15,
			ModelGPT4o:     2.5,
		},
		models: []Model{ModelGPT4oMini, ModelGPT4o},
	},
	ProviderClaude: {
		name:    ProviderClaude,
		baseURL: "https://api.anthropic.com/v1",
		auth:    authAPIKeyHeader,
		prices: map[Model]float64{
			ModelClaude3Haiku:  0.25,
			ModelClaude3Sonnet: 3,
			ModelClaude3Opus:   15,
		},
		models: []Model{ModelClaude3Haiku, ModelClaude3Sonnet, ModelClaude3Opus},
	},
	ProviderGemini: {
		name: ProviderGemini,
		auth: authSDK,
		prices: map[Model]float64{
			ModelGemini15Flash: 0.075,
			ModelGemini15Pro:   1.25,
		},
		models: []Model{ModelGemini15Flash, ModelGemini15Pro},
	},
	ProviderMinimax: {
		name:      ProviderMinimax,
		baseURL:   "https://api.minimax.chat/v1",
		auth:      authBearer,
		wireModel: "codellama-34b",
		prices:    map[Model]float64{ModelMinimaxCodingPlan: 0.3},
		models:    []Model{ModelMinimaxCodingPlan},
	},
	ProviderKimi: {
		name:      ProviderKimi,
		baseURL:   "https://api.moonshot.cn/v1",
		auth:      authBearer,
		wireModel: "moonshot-v1-8k",
		prices:    map[Model]float64{ModelKimi: 0.25},
		models:    []Model{ModelKimi},
	},
	ProviderGLM: {
		name:      ProviderGLM,
		baseURL:   "https://open.bigmodel.cn/api/paas/v4",
		auth:      authBearer,
		wireModel: "glm-4",
		prices:    map[Model]float64{ModelGLMCodingPlan: 0.4},
		models:    []Model{ModelGLMCodingPlan},
	},
	ProviderVolcano: {
		name:      ProviderVolcano,
		baseURL:   "https://ark.cn-beijing.volces.com/api/v3",
		auth:      authBearer,
		wireModel: "volcano-coding-plan",
		prices:    map[Model]float64{ModelVolcanoCodingPlan: 0.35},
		models:    []Model{ModelVolcanoCodingPlan},
	},
	ProviderDeepSeek: {
		name:      ProviderDeepSeek,
		baseURL:   "https://api.deepseek.com",
		auth:      authBearer,
		wireModel: "deepseek-coder",
		prices:    map[Model]float64{ModelDeepSeek: 0.2},
		models:    []Model{ModelDeepSeek},
	},
	ProviderDoubao: {
		name:      ProviderDoubao,
		baseURL:   "https://ark.cn-beijing.volces.com/api/v3",
		auth:      authBearer,
		wireModel: "ep-20240115121258-i7x27",
		prices:    map[Model]float64{ModelDoubao: 0.18},
		models:    []Model{ModelDoubao},
	},
}

// modelProviders is the reverse index of providerSpecs
var modelProviders = func() map[Model]ProviderName {
	idx := make(map[Model]ProviderName)
	for name, spec := range providerSpecs {
		for _, m := range spec.models {
			idx[m] = name
		}
	}
	return idx
}()

// ProviderFor returns the provider serving a model. Unknown models go to OpenAI.
func ProviderFor(model Model) ProviderName {
	if name, ok := modelProviders[model]; ok {
		return name
	}
	return ProviderOpenAI
}

// ModelInfo describes one supported model for listings
type ModelInfo struct {
	Model     Model
	Provider  ProviderName
	BaseURL   string
	WireModel string
	RatePer1K float64
}

// Models lists every supported model, sorted by provider then model
func Models() []ModelInfo {
	var out []ModelInfo
	for _, spec := range providerSpecs {
		for _, m := range spec.models {
			out = append(out, ModelInfo{
				Model:     m,
				Provider:  spec.name,
				BaseURL:   spec.baseURL,
				WireModel: spec.wireModelFor(m),
				RatePer1K: spec.rate(m),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// ChatProviders lists the providers reached through chat/completions
func ChatProviders() []ProviderName {
	var out []ProviderName
	for name, spec := range providerSpecs {
		if spec.auth != authSDK {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s providerSpec) rate(model Model) float64 {
	if r, ok := s.prices[model]; ok {
		return r
	}
	return DefaultRatePer1K
}

func (s providerSpec) wireModelFor(model Model) string {
	if s.wireModel != "" {
		return s.wireModel
	}
	return string(model)
}
