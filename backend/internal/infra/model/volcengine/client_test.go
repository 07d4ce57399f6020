package volcengine

import (
	"context"
	"strings"
	"testing"

	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

func TestBuildRequestAppendsJSONHintToSystemPrompt(t *testing.T) {
	req, err := buildRequest(ChatCompletionRequest{
		Model: "doubao-pro",
		Messages: []ChatMessage{
			{Role: "system", Content: "classify"},
			{Role: "USER", Content: "answers"},
		},
		MaxTokens:   250,
		Temperature: 0.5,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != arkmodel.ChatMessageRoleSystem || req.Messages[1].Role != arkmodel.ChatMessageRoleUser {
		t.Fatalf("unexpected roles %q %q", req.Messages[0].Role, req.Messages[1].Role)
	}
	system := *req.Messages[0].Content.StringValue
	if !strings.HasSuffix(system, jsonOnlyHint) {
		t.Fatalf("expected json hint in system prompt, got %q", system)
	}
	if *req.Messages[1].Content.StringValue != "answers" {
		t.Fatalf("user message must be untouched")
	}
	if req.MaxTokens == nil || *req.MaxTokens != 250 {
		t.Fatalf("expected max tokens 250")
	}
}

func TestBuildRequestValidates(t *testing.T) {
	if _, err := buildRequest(ChatCompletionRequest{Messages: []ChatMessage{{Role: "user", Content: "x"}}}); err == nil {
		t.Fatalf("expected model error")
	}
	if _, err := buildRequest(ChatCompletionRequest{Model: "m"}); err == nil {
		t.Fatalf("expected messages error")
	}
}

func TestChatCompletionRequiresAPIKey(t *testing.T) {
	_, err := NewClient("  ").ChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}
