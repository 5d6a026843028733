package util

import (
	"net/http"
	"testing"
	"time"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "", "api.groq.com")

	req, _ := http.NewRequest(http.MethodGet, "https://api.openai.com/v1/models", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u == nil || u.Host != "proxy.internal:3128" {
		t.Errorf("https request should use the http proxy when no https proxy is set, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "https://api.groq.com/openai/v1", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u != nil {
		t.Errorf("no_proxy host must bypass the proxy, got %v", u)
	}
}

func TestNewProxyFunc_SchemeSpecific(t *testing.T) {
	proxy := NewProxyFunc("http://plain:80", "http://secure:443", "")

	req, _ := http.NewRequest(http.MethodGet, "https://api.anthropic.com/v1/messages", nil)
	u, _ := proxy(req)
	if u == nil || u.Host != "secure:443" {
		t.Errorf("expected https proxy, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://ollama.lan:11434/api/tags", nil)
	u, _ = proxy(req)
	if u == nil || u.Host != "plain:80" {
		t.Errorf("expected http proxy, got %v", u)
	}
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(5*time.Second, "", "", "")
	if c.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", c.Timeout)
	}
	if _, ok := c.Transport.(*http.Transport); !ok {
		t.Errorf("expected *http.Transport, got %T", c.Transport)
	}
}
