package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatCompletionSendsRequest(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"Take a short walk."},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", WithBaseURL(server.URL+"/v1/"), WithHTTPClient(server.Client()))
	resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Model:          "gpt-4o",
		Messages:       []ChatMessage{{Role: "system", Content: "be kind"}, {Role: "user", Content: "hi"}},
		MaxTokens:      100,
		Temperature:    0.7,
		ResponseFormat: ResponseFormatJSON,
		ExtraFields:    map[string]any{"seed": 7, "model": "ignored"},
	})
	if err != nil {
		t.Fatalf("chat completion: %v", err)
	}
	if resp.FirstContent() != "Take a short walk." {
		t.Fatalf("unexpected content %q", resp.FirstContent())
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}

	if captured["model"] != "gpt-4o" {
		t.Fatalf("extra fields must not override model, got %v", captured["model"])
	}
	if captured["seed"] != float64(7) {
		t.Fatalf("expected extra field seed, got %v", captured["seed"])
	}
	if captured["temperature"] != 0.7 || captured["max_tokens"] != float64(100) {
		t.Fatalf("unexpected sampling params %v %v", captured["temperature"], captured["max_tokens"])
	}
	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", captured["response_format"])
	}
}

func TestChatCompletionParsesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient("sk-test", WithBaseURL(server.URL))
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Code != "rate_limit_exceeded" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestChatCompletionNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient("k", WithBaseURL(server.URL)).ChatCompletion(context.Background(), ChatCompletionRequest{
		Model:    "m",
		Messages: []ChatMessage{{Role: "user", Content: "hi"}},
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "bad gateway" {
		t.Fatalf("expected raw body message, got %v", err)
	}
}

func TestChatCompletionValidatesRequest(t *testing.T) {
	client := NewClient("k")
	if _, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{}); err == nil {
		t.Fatalf("expected validation error")
	}
}
