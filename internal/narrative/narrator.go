package narrative

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/pulsedeck/internal/cache"
	"github.com/ppiankov/pulsedeck/internal/logging"
	"github.com/ppiankov/pulsedeck/internal/model"
)

// Outcome labels how an Analyze call ended
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeCached      Outcome = "cached"
	OutcomeDisabled    Outcome = "disabled"
	OutcomeFallback    Outcome = "fallback"
	OutcomeCircuitOpen Outcome = "circuit_open"
)

// RateLimiter throttles calls per key; worker.Limiter satisfies it
type RateLimiter interface {
	Wait(ctx context.Context, key string) error
}

// Options tune a Narrator. Zero values take the defaults.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration // Whole call, retries included
	MaxMentions int
	MaxRetries  int
	RetryDelay  time.Duration

	// Consecutive failures that open the breaker, and how long it stays open
	BreakerThreshold uint
	BreakerDelay     time.Duration

	Cache    cache.Cache
	CacheTTL time.Duration
	Limiter  RateLimiter
	Logger   logging.Logger
	Observe  func(Outcome)
}

// Narrator produces the conversation analysis text. It is safe for
// concurrent use; the breaker and cache are shared by all callers.
type Narrator struct {
	provider Provider
	opts     Options
	breaker  circuitbreaker.CircuitBreaker[*Response]
	executor failsafe.Executor[*Response]
}

// New wraps provider with timeout, retry, breaker, limiter and cache.
// A nil provider yields a Narrator that always returns the fallback text.
func New(provider Provider, opts Options) *Narrator {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxMentions <= 0 {
		opts.MaxMentions = DefaultMaxMentions
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	if opts.BreakerThreshold == 0 {
		opts.BreakerThreshold = 3
	}
	if opts.BreakerDelay <= 0 {
		opts.BreakerDelay = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	n := &Narrator{provider: provider, opts: opts}
	if provider == nil {
		return n
	}

	retry := retrypolicy.NewBuilder[*Response]().
		WithBackoff(opts.RetryDelay, 10*opts.RetryDelay).
		WithMaxRetries(opts.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(_ *Response, err error) bool {
			return retryable(err)
		}).
		Build()

	n.breaker = circuitbreaker.NewBuilder[*Response]().
		WithFailureThreshold(opts.BreakerThreshold).
		WithDelay(opts.BreakerDelay).
		WithSuccessThreshold(1).
		HandleIf(func(_ *Response, err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}).
		OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			opts.Logger.WithFields(logging.Fields{
				"provider":   provider.Name(),
				"from_state": stateName(event.OldState),
				"to_state":   stateName(event.NewState),
			}).Warn("Narrative circuit breaker state change")
		}).
		Build()

	n.executor = failsafe.With[*Response](retry, n.breaker)
	return n
}

// Enabled reports whether a provider is configured
func (n *Narrator) Enabled() bool {
	return n != nil && n.provider != nil
}

// Provider returns the configured provider name, or "" when disabled
func (n *Narrator) Provider() string {
	if !n.Enabled() {
		return ""
	}
	return n.provider.Name()
}

// BreakerOpen reports whether calls are currently being short-circuited
func (n *Narrator) BreakerOpen() bool {
	return n.Enabled() && n.breaker.IsOpen()
}

// Check pings the provider
func (n *Narrator) Check(ctx context.Context) error {
	if !n.Enabled() {
		return model.ErrServiceUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()
	return n.provider.Ping(ctx)
}

// Analyze returns the formatted analysis of the mentions about entity.
// Every failure yields model.NarrativeUnavailable.
func (n *Narrator) Analyze(ctx context.Context, entity string, mentions []string) string {
	text, _ := n.Narrate(ctx, entity, mentions)
	return text
}

// Narrate is Analyze that also reports how the call ended
func (n *Narrator) Narrate(ctx context.Context, entity string, mentions []string) (string, Outcome) {
	if !n.Enabled() {
		n.observe(OutcomeDisabled)
		return model.NarrativeUnavailable, OutcomeDisabled
	}

	if len(mentions) > n.opts.MaxMentions {
		mentions = mentions[:n.opts.MaxMentions]
	}
	prompt := BuildPrompt(entity, mentions)
	log := n.opts.Logger.WithFields(logging.Fields{
		"provider": n.provider.Name(),
		"entity":   entity,
		"mentions": len(mentions),
	})

	reply, outcome, err := n.reply(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("Narrative analysis unavailable")
		n.observe(outcome)
		return model.NarrativeUnavailable, outcome
	}

	text, ok := Render(reply)
	if !ok {
		log.Warn("Narrative reply carried no JSON object")
		n.observe(OutcomeFallback)
		return model.NarrativeUnavailable, OutcomeFallback
	}

	n.observe(outcome)
	return text, outcome
}

// reply returns the raw model text, from cache when possible
func (n *Narrator) reply(ctx context.Context, prompt string) (string, Outcome, error) {
	key := cache.Key(n.provider.Name(), n.opts.Model, prompt)
	if n.opts.Cache != nil {
		if data, ok := n.opts.Cache.Get(key); ok {
			return string(data), OutcomeCached, nil
		}
	}

	// One deadline covers the limiter wait and all retries
	ctx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()

	if n.opts.Limiter != nil {
		if err := n.opts.Limiter.Wait(ctx, n.provider.Name()); err != nil {
			return "", OutcomeFallback, err
		}
	}

	req := Request{
		Prompt:      prompt,
		Model:       n.opts.Model,
		MaxTokens:   n.opts.MaxTokens,
		Temperature: n.opts.Temperature,
	}
	resp, err := n.executor.WithContext(ctx).Get(func() (*Response, error) {
		return n.provider.Complete(ctx, req)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "", OutcomeCircuitOpen, err
	}
	if err != nil {
		return "", OutcomeFallback, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", OutcomeFallback, model.ErrServiceUnavailable
	}

	n.opts.Logger.WithFields(logging.Fields{
		"model":  resp.Model,
		"tokens": resp.TokensUsed,
	}).Debug("Narrative reply received")

	if n.opts.Cache != nil {
		if err := n.opts.Cache.Set(key, []byte(resp.Text), n.opts.CacheTTL); err != nil {
			n.opts.Logger.WithError(err).Debug("Narrative cache write failed")
		}
	}
	return resp.Text, OutcomeOK, nil
}

func stateName(s circuitbreaker.State) string {
	switch s {
	case circuitbreaker.ClosedState:
		return "closed"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	case circuitbreaker.OpenState:
		return "open"
	default:
		return "unknown"
	}
}

func (n *Narrator) observe(o Outcome) {
	if n != nil && n.opts.Observe != nil {
		n.opts.Observe(o)
	}
}

// retryable reports whether another attempt may succeed
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, circuitbreaker.ErrOpen) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Temporary()
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	return true
}
