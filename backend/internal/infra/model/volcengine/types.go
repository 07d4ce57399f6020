package volcengine

// ChatMessage 发送给方舟的单条消息。
type ChatMessage struct {
	Role    string
	Content string
}

// ChatCompletionRequest 方舟对话补全的精简参数。
// JSONMode 为 true 时在系统提示末尾追加只输出 JSON 的约束。
type ChatCompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// ChatCompletionResponse 转换后的补全结果。
type ChatCompletionResponse struct {
	ID           string
	Model        string
	Content      string
	FinishReason string
	Usage        ChatCompletionUsage
}

// ChatCompletionUsage token 消耗。
type ChatCompletionUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// APIError 方舟返回的请求失败。
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error 实现 error 接口。
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code != "" {
		return e.Message + " (" + e.Code + ")"
	}
	return e.Message
}
