package volcengine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
	"github.com/volcengine/volcengine-go-sdk/volcengine/volcengineerr"
)

const (
	defaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	jsonOnlyHint   = "\n\nRespond with a single valid JSON object and nothing else."
)

// Client 封装火山引擎 Ark Runtime 的对话补全调用。
type Client struct {
	apiKey  string
	baseURL string

	once sync.Once
	sdk  *arkruntime.Client
}

// Option 允许自定义 Client 行为。
type Option func(*Client)

// WithBaseURL 设置自定义 Base URL，空串忽略。
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// NewClient 以 API Key 初始化客户端，默认华北地域。
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// ChatCompletion 调用方舟对话补全，RequestFailure 转换为 *APIError。
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	if c == nil {
		return ChatCompletionResponse{}, errors.New("volcengine client is nil")
	}
	if c.apiKey == "" {
		return ChatCompletionResponse{}, errors.New("volcengine api key is empty")
	}
	arkReq, err := buildRequest(req)
	if err != nil {
		return ChatCompletionResponse{}, err
	}

	c.once.Do(func() {
		c.sdk = arkruntime.NewClientWithApiKey(c.apiKey, arkruntime.WithBaseUrl(c.baseURL))
	})

	resp, err := c.sdk.CreateChatCompletion(ctx, arkReq)
	if err != nil {
		var rf volcengineerr.RequestFailure
		if errors.As(err, &rf) {
			return ChatCompletionResponse{}, &APIError{
				StatusCode: rf.StatusCode(),
				Code:       rf.Code(),
				Message:    rf.Message(),
			}
		}
		return ChatCompletionResponse{}, fmt.Errorf("volcengine chat completion: %w", err)
	}
	return convertResponse(resp), nil
}

// buildRequest 校验参数并转换为 SDK 请求。
func buildRequest(req ChatCompletionRequest) (arkmodel.CreateChatCompletionRequest, error) {
	if strings.TrimSpace(req.Model) == "" {
		return arkmodel.CreateChatCompletionRequest{}, errors.New("model is required")
	}
	if len(req.Messages) == 0 {
		return arkmodel.CreateChatCompletionRequest{}, errors.New("at least one message is required")
	}

	arkReq := arkmodel.CreateChatCompletionRequest{
		Model:    req.Model,
		Messages: make([]*arkmodel.ChatCompletionMessage, 0, len(req.Messages)),
	}
	hinted := false
	for _, msg := range req.Messages {
		role := normalizeRole(msg.Role)
		content := msg.Content
		if req.JSONMode && !hinted && role == arkmodel.ChatMessageRoleSystem {
			content += jsonOnlyHint
			hinted = true
		}
		arkReq.Messages = append(arkReq.Messages, &arkmodel.ChatCompletionMessage{
			Role:    role,
			Content: &arkmodel.ChatCompletionMessageContent{StringValue: volcengine.String(content)},
		})
	}

	if req.MaxTokens > 0 {
		arkReq.MaxTokens = volcengine.Int(req.MaxTokens)
	}
	if req.Temperature > 0 {
		arkReq.Temperature = volcengine.Float32(float32(req.Temperature))
	}
	return arkReq, nil
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "system":
		return arkmodel.ChatMessageRoleSystem
	case "assistant":
		return arkmodel.ChatMessageRoleAssistant
	default:
		return arkmodel.ChatMessageRoleUser
	}
}

// convertResponse 只取第一个候选。
func convertResponse(resp arkmodel.ChatCompletionResponse) ChatCompletionResponse {
	converted := ChatCompletionResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: ChatCompletionUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, choice := range resp.Choices {
		if choice.Message.Content != nil && choice.Message.Content.StringValue != nil {
			converted.Content = *choice.Message.Content.StringValue
		}
		converted.FinishReason = string(choice.FinishReason)
		break
	}
	return converted
}
