package textgen

import (
	"context"
	"strings"

	"employee-portal/backend/internal/infra/model/openai"
	"employee-portal/backend/internal/infra/model/volcengine"
)

// OpenAI 适配兼容 OpenAI Chat Completions 协议的服务（OpenAI、DeepSeek 等）。
type OpenAI struct {
	client   *openai.Client
	model    string
	provider string
}

// NewOpenAI 构造适配器，provider 仅用于错误与日志标注。
func NewOpenAI(client *openai.Client, model, provider string) *OpenAI {
	if provider == "" {
		provider = "openai"
	}
	return &OpenAI{client: client, model: model, provider: provider}
}

// Generate 实现 Generator。
func (o *OpenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages(p),
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
	if p.JSON {
		req.ResponseFormat = openai.ResponseFormatJSON
	}
	resp, err := o.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", wrapErr(o.provider, err)
	}
	return nonEmpty(o.provider, resp.FirstContent())
}

// Volcengine 适配火山方舟。
type Volcengine struct {
	client *volcengine.Client
	model  string
}

// NewVolcengine 构造适配器。
func NewVolcengine(client *volcengine.Client, model string) *Volcengine {
	return &Volcengine{client: client, model: model}
}

// Generate 实现 Generator。
func (v *Volcengine) Generate(ctx context.Context, p Prompt) (string, error) {
	msgs := messages(p)
	arkMsgs := make([]volcengine.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		arkMsgs = append(arkMsgs, volcengine.ChatMessage{Role: m.Role, Content: m.Content})
	}
	resp, err := v.client.ChatCompletion(ctx, volcengine.ChatCompletionRequest{
		Model:       v.model,
		Messages:    arkMsgs,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		JSONMode:    p.JSON,
	})
	if err != nil {
		return "", wrapErr("volcengine", err)
	}
	return nonEmpty("volcengine", resp.Content)
}

func messages(p Prompt) []openai.ChatMessage {
	out := make([]openai.ChatMessage, 0, 2)
	if strings.TrimSpace(p.System) != "" {
		out = append(out, openai.ChatMessage{Role: "system", Content: p.System})
	}
	return append(out, openai.ChatMessage{Role: "user", Content: p.User})
}

// nonEmpty 去掉首尾空白，空内容视为失败。
func nonEmpty(provider, content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", &ServiceError{Provider: provider, Err: ErrEmptyOutput}
	}
	return trimmed, nil
}
