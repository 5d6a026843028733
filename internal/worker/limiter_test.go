package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(0.001, 1)

	if !limiter.Allow("groq") {
		t.Fatal("first request should pass")
	}
	if limiter.Allow("groq") {
		t.Error("second request within the window should be throttled")
	}
	if !limiter.Allow("anthropic") {
		t.Error("another key has its own bucket")
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	_ = limiter.Wait(context.Background(), "groq")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "groq"); err == nil {
		t.Error("expected the wait to fail before the next token")
	}
}

func TestLimiter_UnlimitedAndOverride(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !limiter.Allow("ollama") {
			t.Fatalf("request %d throttled by an unlimited limiter", i)
		}
	}

	limiter.SetRate("openai", 0.001, 0)
	limiter.Allow("openai")
	if limiter.Allow("openai") {
		t.Error("override should throttle")
	}
}
