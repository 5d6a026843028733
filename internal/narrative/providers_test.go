package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != GroqDefaultModel {
			t.Errorf("Expected default groq model, got %s", req.Model)
		}
		if req.Temperature != 0.3 {
			t.Errorf("Expected temperature 0.3, got %v", req.Temperature)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != openai.ChatMessageRoleUser {
			t.Errorf("Expected a single user message, got %+v", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: "  {\"hallazgos_destacados\": \"x\"}  "},
			}},
			Usage: openai.Usage{TotalTokens: 42},
		})
	}))
	defer server.Close()

	p, err := NewGroqProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second, Temperature: 0.3})
	if err != nil {
		t.Fatalf("NewGroqProvider: %v", err)
	}
	if p.Name() != "groq" {
		t.Errorf("Name() = %s", p.Name())
	}

	resp, err := p.Complete(context.Background(), Request{Prompt: "hola"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != `{"hallazgos_destacados": "x"}` {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "k", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}

	_, err = p.Complete(context.Background(), Request{Prompt: "hola"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !retryable(err) {
		t.Errorf("503 should be retryable: %v", err)
	}
}

func TestAnthropicProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}
		_, _ = w.Write([]byte(`{
			"content": [{"type": "text", "text": "{\"temas_principales\": []}"}],
			"model": "claude-test",
			"usage": {"input_tokens": 30, "output_tokens": 12}
		}`))
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	resp, err := p.Complete(context.Background(), Request{Prompt: "hola"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != `{"temas_principales": []}` || resp.TokensUsed != 42 || resp.Model != "claude-test" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAnthropicProvider_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider(Config{APIKey: "bad", BaseURL: server.URL, Timeout: 5 * time.Second})
	_, err := p.Complete(context.Background(), Request{Prompt: "hola"})

	var status *StatusError
	if !errors.As(err, &status) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if status.Code != http.StatusUnauthorized || !strings.Contains(status.Message, "invalid x-api-key") {
		t.Errorf("unexpected status error %+v", status)
	}
	if retryable(err) {
		t.Error("401 must not be retried")
	}
}

func TestOllamaProvider_CompleteAndPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/generate":
			var req ollamaRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
				return
			}
			if req.Stream || req.Format != "json" || req.Model != "llama3.1:8b" {
				t.Errorf("unexpected request %+v", req)
			}
			_, _ = w.Write([]byte(`{"model":"llama3.1:8b","response":"{}","done":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1:8b"})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}
	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}

	resp, err := p.Complete(context.Background(), Request{Prompt: "12345678"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "{}" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.TokensUsed != 2 {
		t.Errorf("expected estimated token count 2, got %d", resp.TokensUsed)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil || p != nil {
		t.Errorf("empty provider should disable the narrative, got %v, %v", p, err)
	}

	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("openai without a key must fail")
	}
	if _, err := NewProvider(Config{Provider: "ollama"}); err == nil {
		t.Error("ollama without a model must fail")
	}
	if _, err := NewProvider(Config{Provider: "bard"}); err == nil {
		t.Error("unknown provider must fail")
	}

	p, err = NewProvider(Config{Provider: "Claude", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("Name() = %s", p.Name())
	}
}
