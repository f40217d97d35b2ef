package classify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapulse/eapulse/internal/metrics"
	"github.com/eapulse/eapulse/pkg/classify"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// scriptedBackend replays canned responses in order, one per Generate call.
type scriptedBackend struct {
	mu        sync.Mutex
	responses []scriptedResponse
	calls     int
	lastReq   classify.GenerateRequest
}

type scriptedResponse struct {
	content string
	err     error
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Generate(
	_ context.Context,
	req classify.GenerateRequest,
) (classify.GenerateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastReq = req
	if s.calls >= len(s.responses) {
		return classify.GenerateResponse{}, errors.New("no scripted response left")
	}
	r := s.responses[s.calls]
	s.calls++
	if r.err != nil {
		return classify.GenerateResponse{}, r.err
	}
	return classify.GenerateResponse{Content: r.content}, nil
}

func (s *scriptedBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// mapCache is an in-memory Cache for tests. TTLs are ignored.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func testReport() *domain.Report {
	return &domain.Report{
		ID:           "rep-1",
		PairingID:    "pair-1",
		ReportDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC).Unix(),
		Difficulties: "I can't keep up with the request volume",
	}
}

func TestBatchClassifier_Classify(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []scriptedResponse{
		{content: `[
			{"ruleId": "r1", "detected": true, "confidence": 0.88, "evidence": ["I can't keep up"], "reasoning": "overload"},
			{"ruleId": "r2", "detected": false, "confidence": 0.05, "reasoning": "no signal"}
		]`},
	}}

	c := classify.NewBatchClassifier(backend, classify.WithRetry(3, 0))
	got := c.Classify(context.Background(), testReport(), testRules("r1", "r2"))

	require.Len(t, got, 2)
	assert.True(t, got[0].Detected)
	assert.InDelta(t, 0.88, got[0].Confidence, 0.001)
	assert.Equal(t, []string{"I can't keep up"}, got[0].Evidence)
	assert.False(t, got[1].Detected)
	assert.Equal(t, 1, backend.callCount())
	assert.Equal(t, classify.FormatJSON, backend.lastReq.Format)
}

func TestBatchClassifier_Classify_NoRules(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{}
	c := classify.NewBatchClassifier(backend)

	assert.Nil(t, c.Classify(context.Background(), testReport(), nil))
	assert.Equal(t, 0, backend.callCount())
}

func TestBatchClassifier_Classify_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []scriptedResponse{
		{err: errors.New("connection refused")},
		{content: "not json at all"},
		{content: `[{"ruleId": "r1", "detected": true, "confidence": 0.9, "reasoning": "ok"}]`},
	}}

	c := classify.NewBatchClassifier(backend, classify.WithRetry(3, 0))
	got := c.Classify(context.Background(), testReport(), testRules("r1"))

	require.Len(t, got, 1)
	assert.True(t, got[0].Detected)
	assert.Equal(t, 3, backend.callCount())
}

func TestBatchClassifier_Classify_TotalFailureReturnsSafeDefaults(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []scriptedResponse{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
	}}

	c := classify.NewBatchClassifier(backend, classify.WithRetry(3, 0))
	got := c.Classify(context.Background(), testReport(), testRules("r1", "r2"))

	// Never an error and never a detection: logic rules keep working when
	// the model is down.
	require.Len(t, got, 2)
	for _, d := range got {
		assert.False(t, d.Detected)
		assert.Zero(t, d.Confidence)
		assert.Contains(t, d.Reasoning, "analysis unavailable")
	}
	assert.Equal(t, 3, backend.callCount())
}

func TestBatchClassifier_Classify_RecordsFailureMetric(t *testing.T) {
	// Not parallel: asserts a delta on a shared counter.
	before := testutil.ToFloat64(metrics.ClassifierFailuresTotal)

	backend := &scriptedBackend{responses: []scriptedResponse{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
	}}
	c := classify.NewBatchClassifier(backend, classify.WithRetry(3, 0))
	c.Classify(context.Background(), testReport(), testRules("r1"))

	assert.Greater(t, testutil.ToFloat64(metrics.ClassifierFailuresTotal), before)
}

func TestBatchClassifier_Classify_RecordsCacheHitMetric(t *testing.T) {
	// Not parallel: asserts a delta on a shared counter.
	before := testutil.ToFloat64(metrics.ClassifierCacheHitsTotal)

	backend := &scriptedBackend{responses: []scriptedResponse{
		{content: `[{"ruleId": "r1", "detected": true, "confidence": 0.8, "reasoning": "found"}]`},
	}}
	c := classify.NewBatchClassifier(backend,
		classify.WithRetry(3, 0),
		classify.WithCache(newMapCache()),
	)
	rules := testRules("r1")

	c.Classify(context.Background(), testReport(), rules)
	c.Classify(context.Background(), testReport(), rules)

	assert.Greater(t, testutil.ToFloat64(metrics.ClassifierCacheHitsTotal), before)
}

func TestBatchClassifier_Classify_CacheHitSkipsBackend(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []scriptedResponse{
		{content: `[{"ruleId": "r1", "detected": true, "confidence": 0.8, "reasoning": "found"}]`},
	}}
	cache := newMapCache()

	c := classify.NewBatchClassifier(backend,
		classify.WithRetry(3, 0),
		classify.WithCache(cache),
	)
	rules := testRules("r1")

	first := c.Classify(context.Background(), testReport(), rules)
	second := c.Classify(context.Background(), testReport(), rules)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.callCount())
	_, ok := cache.entries["ai-analysis:rep-1"]
	assert.True(t, ok)
}

func TestBatchClassifier_Classify_CorruptCacheEntryRecomputes(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []scriptedResponse{
		{content: `[{"ruleId": "r1", "detected": false, "confidence": 0.1, "reasoning": "clean"}]`},
	}}
	cache := newMapCache()
	cache.entries["ai-analysis:rep-1"] = "{garbage"

	c := classify.NewBatchClassifier(backend,
		classify.WithRetry(3, 0),
		classify.WithCache(cache),
	)
	got := c.Classify(context.Background(), testReport(), testRules("r1"))

	require.Len(t, got, 1)
	assert.Equal(t, 1, backend.callCount())
}

func TestBatchClassifier_Classify_CacheReadErrorFallsThrough(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []scriptedResponse{
		{content: `[{"ruleId": "r1", "detected": true, "confidence": 0.8, "reasoning": "found"}]`},
	}}
	cache := newMapCache()
	cache.getErr = errors.New("redis down")

	c := classify.NewBatchClassifier(backend,
		classify.WithRetry(3, 0),
		classify.WithCache(cache),
	)
	got := c.Classify(context.Background(), testReport(), testRules("r1"))

	require.Len(t, got, 1)
	assert.True(t, got[0].Detected)
	assert.Equal(t, 1, backend.callCount())
}

func TestBatchClassifier_Classify_StaleCacheForDifferentRuleSet(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []scriptedResponse{
		{content: `[
			{"ruleId": "r1", "detected": false, "confidence": 0, "reasoning": "clean"},
			{"ruleId": "r2", "detected": false, "confidence": 0, "reasoning": "clean"}
		]`},
	}}
	cache := newMapCache()
	cache.entries["ai-analysis:rep-1"] = `[{"ruleId": "r1", "detected": true, "confidence": 0.9}]`

	c := classify.NewBatchClassifier(backend,
		classify.WithRetry(3, 0),
		classify.WithCache(cache),
	)
	got := c.Classify(context.Background(), testReport(), testRules("r1", "r2"))

	// Cached entry covers one rule, two were requested: recompute.
	require.Len(t, got, 2)
	assert.Equal(t, 1, backend.callCount())
}

func TestBatchClassifier_Classify_CancelledContext(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []scriptedResponse{
		{err: errors.New("flaky")},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// With a nonzero backoff, cancellation kicks in during the retry sleep.
	c := classify.NewBatchClassifier(backend, classify.WithRetry(3, time.Minute))
	got := c.Classify(ctx, testReport(), testRules("r1"))

	require.Len(t, got, 1)
	assert.False(t, got[0].Detected)
	assert.Contains(t, got[0].Reasoning, "analysis unavailable")
}
