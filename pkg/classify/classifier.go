package classify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/eapulse/eapulse/internal/metrics"
	"github.com/eapulse/eapulse/pkg/logger"
	domain "github.com/eapulse/eapulse/pkg/types"
)

const (
	// cacheKeyPrefix namespaces classifier entries in the shared cache.
	cacheKeyPrefix = "ai-analysis:"

	defaultCacheTTL    = 24 * time.Hour
	defaultMaxAttempts = 3
	defaultRetryBase   = time.Second
)

// BatchClassifier sends one batched prompt per report covering all AI
// rules and parses the per-rule results. It never returns an error: on
// total failure the caller gets one all-false detection per rule, so a
// broken or slow model degrades AI rules without touching logic rules.
type BatchClassifier struct {
	backend     LLMBackend
	cache       Cache
	limiter     *rate.Limiter
	log         *slog.Logger
	temperature float64
	maxTokens   int
	maxAttempts int
	retryBase   time.Duration
	cacheTTL    time.Duration
}

// BatchClassifierOption configures the BatchClassifier.
type BatchClassifierOption func(*BatchClassifier)

// WithCache attaches a result cache. nil disables caching.
func WithCache(c Cache) BatchClassifierOption {
	return func(b *BatchClassifier) {
		b.cache = c
	}
}

// WithLogger sets the classifier's logger.
func WithLogger(log *slog.Logger) BatchClassifierOption {
	return func(b *BatchClassifier) {
		b.log = log
	}
}

// WithRateLimit caps backend calls at rps requests per second with the
// given burst.
func WithRateLimit(rps float64, burst int) BatchClassifierOption {
	return func(b *BatchClassifier) {
		b.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets the attempt count and the base backoff delay. The delay
// doubles after each failed attempt; a zero base disables sleeping, which
// tests use.
func WithRetry(attempts int, base time.Duration) BatchClassifierOption {
	return func(b *BatchClassifier) {
		if attempts > 0 {
			b.maxAttempts = attempts
		}
		b.retryBase = base
	}
}

// WithTemperature sets the LLM temperature.
func WithTemperature(t float64) BatchClassifierOption {
	return func(b *BatchClassifier) {
		b.temperature = t
	}
}

// WithMaxTokens sets the max tokens for LLM responses.
func WithMaxTokens(n int) BatchClassifierOption {
	return func(b *BatchClassifier) {
		b.maxTokens = n
	}
}

// WithCacheTTL overrides the default 24h cache lifetime.
func WithCacheTTL(ttl time.Duration) BatchClassifierOption {
	return func(b *BatchClassifier) {
		b.cacheTTL = ttl
	}
}

// NewBatchClassifier creates a BatchClassifier on the given backend.
func NewBatchClassifier(backend LLMBackend, opts ...BatchClassifierOption) *BatchClassifier {
	b := &BatchClassifier{
		backend:     backend,
		log:         logger.Nop(),
		temperature: 0.1,
		maxTokens:   1024,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		cacheTTL:    defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Classify runs the batched analysis for one report against the given AI
// rules. Results are cached per report id so repeated evaluations of the
// same report do not re-bill the model.
func (b *BatchClassifier) Classify(
	ctx context.Context,
	report *domain.Report,
	rules []domain.Rule,
) []domain.AIDetection {
	if len(rules) == 0 {
		return nil
	}

	cacheKey := cacheKeyPrefix + report.ID
	if cached, ok := b.cacheGet(ctx, cacheKey, rules); ok {
		metrics.ClassifierCacheHitsTotal.Inc()
		return cached
	}

	prompt, err := RenderBatchPrompt(report, rules)
	if err != nil {
		metrics.ClassifierFailuresTotal.Inc()
		b.log.Error("rendering batch prompt", "report_id", report.ID, "error", err)
		return fallbackDetections(rules, "analysis unavailable: prompt rendering failed")
	}

	detections, err := b.generateWithRetry(ctx, prompt, rules)
	if err != nil {
		metrics.ClassifierFailuresTotal.Inc()
		b.log.Error("batch classification failed",
			"report_id", report.ID,
			"backend", b.backend.Name(),
			"attempts", b.maxAttempts,
			"error", err,
		)
		return fallbackDetections(rules, "analysis unavailable: "+err.Error())
	}

	b.cacheSet(ctx, cacheKey, detections)
	return detections
}

func (b *BatchClassifier) generateWithRetry(
	ctx context.Context,
	prompt string,
	rules []domain.Rule,
) ([]domain.AIDetection, error) {
	var lastErr error
	delay := b.retryBase

	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		if attempt > 1 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := b.backend.Generate(ctx, GenerateRequest{
			Prompt:      prompt,
			Format:      FormatJSON,
			Temperature: b.temperature,
			MaxTokens:   b.maxTokens,
		})
		if err != nil {
			lastErr = err
			b.log.Warn("classifier backend call failed",
				"backend", b.backend.Name(), "attempt", attempt, "error", err)
			continue
		}

		detections, err := ParseDetections(resp.Content, rules)
		if err != nil {
			lastErr = err
			b.log.Warn("unparseable classifier response",
				"backend", b.backend.Name(), "attempt", attempt, "error", err)
			continue
		}

		return detections, nil
	}

	return nil, lastErr
}

func (b *BatchClassifier) cacheGet(
	ctx context.Context,
	key string,
	rules []domain.Rule,
) ([]domain.AIDetection, bool) {
	if b.cache == nil {
		return nil, false
	}

	val, ok, err := b.cache.Get(ctx, key)
	if err != nil {
		b.log.Warn("classifier cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var detections []domain.AIDetection
	if err := json.Unmarshal([]byte(val), &detections); err != nil {
		b.log.Warn("corrupt classifier cache entry", "key", key, "error", err)
		return nil, false
	}

	// A stale entry from a different rule set is useless; recompute.
	if len(detections) != len(rules) {
		return nil, false
	}

	return detections, true
}

func (b *BatchClassifier) cacheSet(ctx context.Context, key string, detections []domain.AIDetection) {
	if b.cache == nil {
		return
	}

	val, err := json.Marshal(detections)
	if err != nil {
		return
	}
	if err := b.cache.Set(ctx, key, string(val), b.cacheTTL); err != nil {
		b.log.Warn("classifier cache write failed", "key", key, "error", err)
	}
}

func fallbackDetections(rules []domain.Rule, reason string) []domain.AIDetection {
	out := make([]domain.AIDetection, 0, len(rules))
	for _, r := range rules {
		out = append(out, domain.AIDetection{
			RuleID:    r.ID,
			Reasoning: reason,
		})
	}
	return out
}
