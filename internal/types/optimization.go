//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// OptimizationRequest is the input to a remote story optimization call
type OptimizationRequest struct {
	Story             *Story   `json:"story"`
	SourceContext     string   `json:"source_context"`
	OptimizationGoals []string `json:"optimization_goals"`
}

// OptimizationCost holds the estimated token usage and price of one call
type OptimizationCost struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// OptimizationTiming splits the wall-clock time of one call
type OptimizationTiming struct {
	APICall    time.Duration `json:"api_call"`
	Processing time.Duration `json:"processing"`
	Total      time.Duration `json:"total"`
}

// OptimizationResponse is the result of a successful optimization call
type OptimizationResponse struct {
	OptimizedStory *Story             `json:"optimized_story"`
	Changes        []string           `json:"changes"`
	Confidence     float64            `json:"confidence"`
	Cost           OptimizationCost   `json:"cost"`
	Timing         OptimizationTiming `json:"timing"`
	Model          string             `json:"model"`
}
