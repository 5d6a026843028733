package narrative

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/pulsedeck/internal/cache"
	"github.com/ppiankov/pulsedeck/internal/model"
)

const okReply = `{"temas_principales": [{"tema": "T", "descripcion": "D"}], "hallazgos_destacados": "H"}`

// MockProvider answers from a scripted list of results
type MockProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	results []mockResult
	block   bool
}

type mockResult struct {
	text string
	err  error
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Ping(context.Context) error { return nil }

func (m *MockProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, req.Prompt)
	i := m.calls - 1
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if i >= len(m.results) {
		i = len(m.results) - 1
	}
	r := m.results[i]
	if r.err != nil {
		return nil, r.err
	}
	return &Response{Text: r.text, Model: "mock-1"}, nil
}

func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type outcomes struct {
	mu  sync.Mutex
	got []Outcome
}

func (o *outcomes) observe(x Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, x)
}

func TestNarrator_Disabled(t *testing.T) {
	var seen outcomes
	n := New(nil, Options{Observe: seen.observe})

	assert.False(t, n.Enabled())
	assert.Equal(t, "", n.Provider())
	assert.Equal(t, model.NarrativeUnavailable, n.Analyze(context.Background(), "Acme", []string{"x"}))
	assert.ErrorIs(t, n.Check(context.Background()), model.ErrServiceUnavailable)
	assert.Equal(t, []Outcome{OutcomeDisabled}, seen.got)
}

func TestNarrator_FormatsReplyAndCapsMentions(t *testing.T) {
	p := &MockProvider{results: []mockResult{{text: "```json\n" + okReply + "\n```"}}}
	n := New(p, Options{MaxMentions: 2})

	got := n.Analyze(context.Background(), "Acme", []string{"m1", "m2", "m3"})

	assert.True(t, strings.HasPrefix(got, "* Temas Principales:\n\n\n1. T\nD\n"))
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "m1\nm2\n")
	assert.NotContains(t, p.prompts[0], "m3")
}

func TestNarrator_RetriesTransientErrors(t *testing.T) {
	p := &MockProvider{results: []mockResult{
		{err: &StatusError{Provider: "mock", Code: 503}},
		{text: okReply},
	}}
	var seen outcomes
	n := New(p, Options{MaxRetries: 2, RetryDelay: time.Millisecond, Observe: seen.observe})

	got := n.Analyze(context.Background(), "Acme", []string{"x"})

	assert.NotEqual(t, model.NarrativeUnavailable, got)
	assert.Equal(t, 2, p.Calls())
	assert.Equal(t, []Outcome{OutcomeOK}, seen.got)
}

func TestNarrator_DoesNotRetryPermanentErrors(t *testing.T) {
	p := &MockProvider{results: []mockResult{{err: &StatusError{Provider: "mock", Code: 401}}}}
	n := New(p, Options{MaxRetries: 3, RetryDelay: time.Millisecond})

	assert.Equal(t, model.NarrativeUnavailable, n.Analyze(context.Background(), "Acme", []string{"x"}))
	assert.Equal(t, 1, p.Calls())
}

func TestNarrator_TimeoutYieldsFallback(t *testing.T) {
	p := &MockProvider{block: true}
	n := New(p, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	got := n.Analyze(context.Background(), "Acme", []string{"x"})

	assert.Equal(t, model.NarrativeUnavailable, got)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNarrator_TimeoutBoundsRetries(t *testing.T) {
	// Each attempt fails fast with a retryable error; only the deadline stops them
	p := &MockProvider{results: []mockResult{{err: &StatusError{Provider: "mock", Code: 503}}}}
	n := New(p, Options{
		Timeout:          100 * time.Millisecond,
		MaxRetries:       1000,
		RetryDelay:       20 * time.Millisecond,
		BreakerThreshold: 10000,
	})

	start := time.Now()
	got, outcome := n.Narrate(context.Background(), "Acme", []string{"x"})

	assert.Equal(t, model.NarrativeUnavailable, got)
	assert.Equal(t, OutcomeFallback, outcome)
	assert.Less(t, time.Since(start), time.Second)
	assert.Less(t, p.Calls(), 1000)
}

func TestNarrator_NarrateReportsOutcome(t *testing.T) {
	p := &MockProvider{results: []mockResult{{text: okReply}}}
	n := New(p, Options{Cache: cache.NewMemoryCache(time.Minute, time.Minute)})

	_, first := n.Narrate(context.Background(), "Acme", []string{"x"})
	_, second := n.Narrate(context.Background(), "Acme", []string{"x"})
	assert.Equal(t, OutcomeOK, first)
	assert.Equal(t, OutcomeCached, second)

	var disabled *Narrator
	text, outcome := disabled.Narrate(context.Background(), "Acme", nil)
	assert.Equal(t, model.NarrativeUnavailable, text)
	assert.Equal(t, OutcomeDisabled, outcome)
}

func TestNarrator_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	p := &MockProvider{results: []mockResult{{err: errors.New("connection refused")}}}
	var seen outcomes
	n := New(p, Options{BreakerThreshold: 3, BreakerDelay: time.Minute, Observe: seen.observe})

	for i := 0; i < 4; i++ {
		assert.Equal(t, model.NarrativeUnavailable, n.Analyze(context.Background(), "Acme", []string{"x"}))
	}

	assert.Equal(t, 3, p.Calls(), "open breaker short-circuits the fourth call")
	assert.True(t, n.BreakerOpen())
	assert.Equal(t, []Outcome{OutcomeFallback, OutcomeFallback, OutcomeFallback, OutcomeCircuitOpen}, seen.got)
}

func TestNarrator_CachesReplies(t *testing.T) {
	p := &MockProvider{results: []mockResult{{text: okReply}}}
	var seen outcomes
	n := New(p, Options{
		Cache:   cache.NewMemoryCache(time.Minute, time.Minute),
		Observe: seen.observe,
	})

	first := n.Analyze(context.Background(), "Acme", []string{"x"})
	second := n.Analyze(context.Background(), "Acme", []string{"x"})

	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.Calls())
	assert.Equal(t, []Outcome{OutcomeOK, OutcomeCached}, seen.got)
}

type denyLimiter struct{}

func (denyLimiter) Wait(context.Context, string) error { return context.Canceled }

func TestNarrator_LimiterErrorSkipsProvider(t *testing.T) {
	p := &MockProvider{results: []mockResult{{text: okReply}}}
	n := New(p, Options{Limiter: denyLimiter{}})

	assert.Equal(t, model.NarrativeUnavailable, n.Analyze(context.Background(), "Acme", []string{"x"}))
	assert.Equal(t, 0, p.Calls())
}

func TestNarrator_ReplyWithoutJSON(t *testing.T) {
	p := &MockProvider{results: []mockResult{{text: "No puedo ayudar con eso."}}}
	var seen outcomes
	n := New(p, Options{Observe: seen.observe})

	assert.Equal(t, model.NarrativeUnavailable, n.Analyze(context.Background(), "Acme", []string{"x"}))
	assert.Equal(t, []Outcome{OutcomeFallback}, seen.got)
}
