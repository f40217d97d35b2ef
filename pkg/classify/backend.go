// Package classify provides LLM-based detection of churn-risk signals in
// EA daily report text, abstracted behind interfaces for testability.
package classify

import (
	"context"
	"time"

	domain "github.com/eapulse/eapulse/pkg/types"
)

// FormatJSON is the format string for requesting JSON mode from LLM backends.
const FormatJSON = "json"

// GenerateRequest defines the input for an LLM generation call.
type GenerateRequest struct {
	Prompt      string
	SystemMsg   string
	Format      string // FormatJSON for JSON mode
	Temperature float64
	MaxTokens   int
}

// TokenUsage tracks LLM token consumption.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Content string
	Model   string
	Usage   TokenUsage
}

// LLMBackend defines the interface for LLM text generation.
type LLMBackend interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Name() string
}

// Cache stores classifier results between evaluations of the same report.
// A miss is (value="", ok=false, err=nil); errors are reserved for broken
// cache transport and never fail a classification.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Classifier runs the batched AI-rule analysis for one report.
type Classifier interface {
	Classify(ctx context.Context, report *domain.Report, rules []domain.Rule) []domain.AIDetection
}
