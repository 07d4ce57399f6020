package openai

import "encoding/json"

// ChatMessage 单条对话消息，role 取 system / user / assistant。
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormatJSON 要求模型只输出 JSON 对象。
var ResponseFormatJSON = map[string]any{"type": "json_object"}

// ChatCompletionRequest 兼容 OpenAI Chat Completions 协议的请求体，DeepSeek 等兼容服务同样适用。
type ChatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []ChatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	User           string         `json:"user,omitempty"`
	ExtraFields    map[string]any `json:"-"`
}

// MarshalJSON 把 ExtraFields 合并进请求体，已存在的字段不会被覆盖。
func (r ChatCompletionRequest) MarshalJSON() ([]byte, error) {
	type alias ChatCompletionRequest
	base, err := json.Marshal(alias(r))
	if err != nil || len(r.ExtraFields) == 0 {
		return base, err
	}

	payload := map[string]any{}
	if err := json.Unmarshal(base, &payload); err != nil {
		return nil, err
	}
	for k, v := range r.ExtraFields {
		if _, exists := payload[k]; !exists {
			payload[k] = v
		}
	}
	return json.Marshal(payload)
}

// ChatCompletionResponse 只保留业务需要的字段。
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   *ChatCompletionUsage   `json:"usage,omitempty"`
}

// ChatCompletionChoice 模型返回的单个候选。
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionUsage token 消耗。
type ChatCompletionUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// FirstContent 返回第一个候选的文本，没有候选时返回空串。
func (r ChatCompletionResponse) FirstContent() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
