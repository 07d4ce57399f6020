package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL OpenAI 官方入口。
	DefaultBaseURL = "https://api.openai.com/v1"
	// DeepSeekBaseURL DeepSeek 兼容入口。
	DeepSeekBaseURL = "https://api.deepseek.com/v1"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Client 通过 HTTP 调用 Chat Completions 接口。
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option 用于自定义 Client 行为。
type Option func(*Client)

// WithBaseURL 设置自定义基础地址，尾部斜杠会被去掉。
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithHTTPClient 允许传入自定义 http.Client（测试时指向 httptest）。
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient 构造客户端，默认 30 秒超时，实际单次调用超时由上层 context 控制。
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	return client
}

// APIError 服务端返回的错误响应。
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

// Error 实现 error 接口。
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	desc := fmt.Sprintf("chat completion status %d: %s", e.StatusCode, e.Message)
	if e.Code != "" {
		desc = fmt.Sprintf("%s (%s)", desc, e.Code)
	}
	if e.Type != "" {
		desc = fmt.Sprintf("%s [%s]", desc, e.Type)
	}
	return desc
}

// ChatCompletion 发起一次非流式对话补全。
func (c *Client) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	if c == nil {
		return ChatCompletionResponse{}, errors.New("openai client is nil")
	}
	if req.Model == "" {
		return ChatCompletionResponse{}, errors.New("model is required")
	}
	if len(req.Messages) == 0 {
		return ChatCompletionResponse{}, errors.New("at least one message is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ChatCompletionResponse{}, parseAPIError(resp.StatusCode, payload)
	}

	var completion ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return completion, nil
}

// parseAPIError 解析 {"error":{...}} 包裹，解析失败时保留原始 body 片段。
func parseAPIError(status int, payload []byte) error {
	var env struct {
		Error APIError `json:"error"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &env) != nil || env.Error.Message == "" {
		return &APIError{
			StatusCode: status,
			Message:    strings.TrimSpace(string(payload)),
		}
	}
	env.Error.StatusCode = status
	return &env.Error
}
