package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// geminiTransport calls Google Gemini through the generative-ai SDK
type geminiTransport struct {
	client *genai.Client
	cfg    Config
	model  string
}

// newGeminiTransport creates the SDK client. Without a key no client is
// created and every call reports CodeCredentialMissing.
func newGeminiTransport(ctx context.Context, cfg Config, spec providerSpec) (*geminiTransport, error) {
	t := &geminiTransport{cfg: cfg, model: spec.wireModelFor(cfg.Model)}
	if !cfg.HasCredentials() {
		return t, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	t.client = client
	return t, nil
}

func (t *geminiTransport) complete(ctx context.Context, system, prompt string) (string, error) {
	if t.client == nil {
		return "", newError(CodeCredentialMissing, ProviderGemini, "API key is required", nil)
	}

	model := t.client.GenerativeModel(t.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.SetTemperature(float32(t.cfg.Temperature))
	model.SetMaxOutputTokens(int32(t.cfg.MaxTokens))
	model.SetTopP(defaultTopP)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", newError(CodeInvalidResponse, ProviderGemini, "unusable Gemini reply", err)
	}
	return text, nil
}

func (t *geminiTransport) close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// classifyGeminiError maps SDK errors onto the HTTP classification. Context
// errors are returned as is.
func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		e := classifyStatus(ProviderGemini, apiErr.Code, apiErr.Message)
		e.Cause = err
		return e
	}

	var httpErr interface{ HTTPCode() int }
	if errors.As(err, &httpErr) && httpErr.HTTPCode() > 0 {
		e := classifyStatus(ProviderGemini, httpErr.HTTPCode(), "")
		e.Cause = err
		return e
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return newError(CodeRateLimited, ProviderGemini, st.Message(), err)
		case codes.PermissionDenied:
			return newError(CodeQuotaExceeded, ProviderGemini, st.Message(), err)
		case codes.DeadlineExceeded:
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		case codes.Canceled:
			return fmt.Errorf("%w: %v", context.Canceled, err)
		}
	}
	return newError(CodeCallFailed, ProviderGemini, "Gemini request failed", err)
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
