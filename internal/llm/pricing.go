package llm

import "math"

// RateFor returns the USD price per 1000 tokens of a model
func RateFor(model Model) float64 {
	return providerSpecs[ProviderFor(model)].rate(model)
}

// EstimateCost prices a call from its token counts
func EstimateCost(model Model, promptTokens, completionTokens int) float64 {
	return float64(promptTokens+completionTokens) / 1000 * RateFor(model)
}

// EstimateTokens approximates the token count of text: CJK ideographs
// (U+4E00 to U+9FA5) count 2, every other rune counts 1.2, rounded.
// It is a heuristic and does not match provider billing.
func EstimateTokens(text string) int {
	cjk, other := 0, 0
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FA5 {
			cjk++
		} else {
			other++
		}
	}
	return int(math.Round(float64(cjk)*2 + float64(other)*1.2))
}
