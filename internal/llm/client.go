// Package llm provides the remote fallback classifier. It supports
// Anthropic and OpenAI providers behind one interface; every provider
// failure degrades to "no classification" at the pipeline boundary, never
// an aborted run.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	Classify(ctx context.Context, prompt string) (ClassificationResponse, error)
}

// ClassificationResponse contains the provider's raw classification
// result, before category validation and gating.
type ClassificationResponse struct {
	Category   string
	Reasoning  string
	Confidence float64
}

// Config holds configuration for the LLM classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	MaxTokens   int
	RetryDelay  time.Duration
	Temperature float64
}

// NewClient creates a provider client based on the configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "anthropic", "":
		return newAnthropicClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
