// Package narrative asks a language model for the conversation analysis
// slide and formats its reply.
package narrative

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// Provider is a chat-completion backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the model's reply
	Complete(ctx context.Context, req Request) (*Response, error)

	// Ping checks that the provider is configured and reachable
	Ping(ctx context.Context) error
}

// Request is a single completion request
type Request struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Response is the model's reply
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// StatusError is a non-200 answer from a provider API
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Code, e.Message)
}

// Temporary reports whether retrying may help
func (e *StatusError) Temporary() bool {
	return e.Code == 429 || e.Code >= 500
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "groq", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	APIKey  string
	BaseURL string

	Timeout     time.Duration
	MaxTokens   int
	Temperature float32

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the stock narrative settings
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     30 * time.Second,
		MaxTokens:   1500,
		Temperature: 0.3,
	}
}

// ConfigFromModel converts model.LLMConfig to a provider Config
func ConfigFromModel(c model.LLMConfig) Config {
	cfg := Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     time.Duration(c.Timeout) * time.Second,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		HTTPProxy:   c.HTTPProxy,
		HTTPSProxy:  c.HTTPSProxy,
		NoProxy:     c.NoProxy,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return cfg
}

func (c Config) maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return DefaultConfig().MaxTokens
}

func (c Config) temperature(req Request) float32 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return c.Temperature
}
