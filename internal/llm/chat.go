package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultTopP      = 0.95
	anthropicVersion = "2023-06-01"
	maxReplyBytes    = 1 << 20
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// chatTransport speaks the chat/completions wire format shared by every
// HTTP provider.
type chatTransport struct {
	name     ProviderName
	endpoint string
	auth     authScheme
	apiKey   string
	client   *http.Client
	body     chatRequest
}

func newChatTransport(cfg Config, spec providerSpec, client *http.Client) *chatTransport {
	base := spec.baseURL
	if cfg.BaseURL != "" {
		base = cfg.BaseURL
	}
	return &chatTransport{
		name:     spec.name,
		endpoint: strings.TrimRight(base, "/") + "/chat/completions",
		auth:     spec.auth,
		apiKey:   cfg.APIKey,
		client:   client,
		body: chatRequest{
			Model:            spec.wireModelFor(cfg.Model),
			Temperature:      cfg.Temperature,
			MaxTokens:        cfg.MaxTokens,
			TopP:             defaultTopP,
			FrequencyPenalty: spec.frequencyPenalty,
		},
	}
}

func (t *chatTransport) complete(ctx context.Context, system, prompt string) (string, error) {
	body := t.body
	body.Messages = []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", newError(CodeCallFailed, t.name, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", newError(CodeCallFailed, t.name, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	switch t.auth {
	case authAPIKeyHeader:
		req.Header.Set("x-api-key", t.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)
	default:
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifyStatus(t.name, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", newError(CodeInvalidResponse, t.name, "malformed provider reply", err)
	}
	if len(parsed.Choices) == 0 {
		return "", newError(CodeInvalidResponse, t.name, "reply has no choices", nil)
	}
	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", newError(CodeInvalidResponse, t.name, fmt.Sprintf("empty content from %s", t.endpoint), nil)
	}
	return content, nil
}

func (t *chatTransport) close() error {
	return nil
}
