// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/storyweaver/internal/llm"
)

// APIKeyEnv is consulted when no API key is configured
const APIKeyEnv = "STORYWEAVER_API_KEY"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Provider
	Model            string  `json:"model,omitempty"`
	APIKey           string  `json:"api_key,omitempty"`
	BaseURL          string  `json:"base_url,omitempty" validate:"omitempty,url"`
	Temperature      float64 `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	MaxTokens        int     `json:"max_tokens,omitempty" validate:"gte=0,lte=32768"`
	RequestTimeoutMS int     `json:"request_timeout_ms,omitempty" validate:"gte=0"`

	// Optimization phase. RateLimitRPS of 0 disables client-side limiting.
	RateLimitRPS float64 `json:"rate_limit_rps,omitempty" validate:"gte=0"`
	Concurrency  int     `json:"concurrency,omitempty" validate:"gte=0,lte=64"`
	NoOptimize   bool    `json:"no_optimize,omitempty"`

	// Extraction
	Lexicon string `json:"lexicon,omitempty"` // Path to a YAML lexicon override

	// Output
	LogLevel  string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=json console"`
	Verbose   bool   `json:"verbose,omitempty"` // Print detailed debug information
}

// validate reports fields by their JSON names
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Model:            string(llm.ModelGPT4oMini),
		Temperature:      0.3,
		MaxTokens:        2000,
		RequestTimeoutMS: 30000,
		Concurrency:      4,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			ve := validationErrors[0]
			return fmt.Errorf("config error: '%s' failed %q (got %v)", ve.Field(), ve.Tag(), ve.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Lexicon != "" {
		if _, err := os.Stat(c.Lexicon); os.IsNotExist(err) {
			return fmt.Errorf("config error: lexicon file not found: %s", c.Lexicon)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.Lexicon == "" {
		result.Lexicon = defaults.Lexicon
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Numeric fields: use default if zero
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.MaxTokens == 0 {
		result.MaxTokens = defaults.MaxTokens
	}
	if result.RequestTimeoutMS == 0 {
		result.RequestTimeoutMS = defaults.RequestTimeoutMS
	}
	if result.RateLimitRPS == 0 {
		result.RateLimitRPS = defaults.RateLimitRPS
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ResolveAPIKey returns the configured key, falling back to APIKeyEnv
func (c *Config) ResolveAPIKey() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}

// LLMConfig converts the CLI configuration into a per-call provider configuration
func (c *Config) LLMConfig() llm.Config {
	cfg := llm.DefaultConfig()
	if c.Model != "" {
		cfg.Model = llm.Model(c.Model)
	}
	cfg.APIKey = c.ResolveAPIKey()
	cfg.BaseURL = c.BaseURL
	if c.Temperature > 0 {
		cfg.Temperature = c.Temperature
	}
	if c.MaxTokens > 0 {
		cfg.MaxTokens = c.MaxTokens
	}
	if c.RequestTimeoutMS > 0 {
		cfg.RequestTimeout = time.Duration(c.RequestTimeoutMS) * time.Millisecond
	}
	return cfg
}
