//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// UsageRecord is one completed optimization call as seen by the usage ledger
type UsageRecord struct {
	Timestamp        time.Time     `json:"timestamp"`
	Model            string        `json:"model"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	TotalTokens      int           `json:"total_tokens"`
	CostUSD          float64       `json:"cost_usd"`
	RequestTime      time.Duration `json:"request_time"`
}

// UsageStats summarizes the ledger. Totals are running values; averages are
// taken over the retained history window.
type UsageStats struct {
	RequestCount          int           `json:"request_count"`
	TotalTokens           int           `json:"total_tokens"`
	TotalCost             float64       `json:"total_cost"`
	AverageCostPerRequest float64       `json:"average_cost_per_request"`
	AverageResponseTime   time.Duration `json:"average_response_time"`
	History               []UsageRecord `json:"history"`
}
