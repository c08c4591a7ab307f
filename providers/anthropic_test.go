package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewAnthropic(t *testing.T) {
	provider, err := NewAnthropic("sk-test-key", "")
	if err != nil {
		t.Fatalf("NewAnthropic() returned error: %v", err)
	}
	if provider.Name() != "anthropic" {
		t.Errorf("provider name = %v, want anthropic", provider.Name())
	}
	if provider.BaseURL() != "https://api.anthropic.com" {
		t.Errorf("base URL = %v, want default", provider.BaseURL())
	}
}

func TestAnthropicProvider_SupportsModel(t *testing.T) {
	provider, _ := NewAnthropic("sk-test-key", "")

	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{"claude haiku supported", "claude-3-haiku-20240307", true},
		{"unknown claude passthrough", "claude-99", true},
		{"openai model rejected", "gpt-4o", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := provider.SupportsModel(tt.model); got != tt.want {
				t.Errorf("SupportsModel(%v) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestAnthropicProvider_Complete(t *testing.T) {
	var gotReq anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(anthropicResponse{
			ID:    "msg_1",
			Model: "claude-3-haiku-20240307",
			Content: []anthropicContentBlock{
				{Type: "text", Text: "Hi "},
				{Type: "text", Text: "there!"},
			},
			Usage: anthropicUsage{InputTokens: 12, OutputTokens: 4},
		})
	}))
	defer server.Close()

	provider, _ := NewAnthropic("sk-test-key", server.URL)
	resp, err := provider.Complete(context.Background(), Request{
		Model:    "claude-3-haiku-20240307",
		System:   "You are RoboFriend.",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() returned error: %v", err)
	}

	if gotReq.System != "You are RoboFriend." {
		t.Errorf("system prompt not forwarded, got %q", gotReq.System)
	}
	if gotReq.MaxTokens != 1024 {
		t.Errorf("expected default max tokens 1024, got %d", gotReq.MaxTokens)
	}
	if resp.Text != "Hi there!" {
		t.Errorf("expected concatenated content blocks, got %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 16 {
		t.Errorf("expected total tokens 16, got %d", resp.Usage.TotalTokens)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("expected provider anthropic, got %s", resp.Provider)
	}
}

func TestAnthropicProvider_CompleteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	provider, _ := NewAnthropic("sk-test-key", server.URL)
	_, err := provider.Complete(context.Background(), Request{
		Model:    "claude-3-haiku-20240307",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
