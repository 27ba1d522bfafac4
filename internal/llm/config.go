// Package llm dispatches story optimization requests to interchangeable remote
// LLM providers and classifies their failures.
package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the per-call provider configuration supplied by the caller
type Config struct {
	Model          Model         `json:"model" validate:"required"`
	APIKey         string        `json:"-"`
	BaseURL        string        `json:"base_url,omitempty" validate:"omitempty,url"`
	Temperature    float64       `json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int           `json:"max_tokens" validate:"gte=1,lte=32768"`
	RequestTimeout time.Duration `json:"request_timeout" validate:"gt=0"`
}

var validate = validator.New()

// DefaultConfig returns the default configuration (gpt-4o-mini, no key)
func DefaultConfig() Config {
	return Config{
		Model:          ModelGPT4oMini,
		Temperature:    0.3,
		MaxTokens:      2000,
		RequestTimeout: 30 * time.Second,
	}
}

// WithModel returns a copy of the configuration targeting another model
func (c Config) WithModel(model Model) Config {
	c.Model = model
	return c
}

// HasCredentials reports whether an API key is present
func (c Config) HasCredentials() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Validate checks field ranges. A blank API key is not a validation error;
// calls made with it fail with CodeCredentialMissing.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			ve := validationErrors[0]
			return fmt.Errorf("invalid llm config: %s failed %q", ve.Field(), ve.Tag())
		}
		return fmt.Errorf("invalid llm config: %w", err)
	}
	return nil
}
