// Package textgen 抽象外部文本生成能力：业务层只依赖 Generator，
// 具体供应商（OpenAI 兼容接口 / 火山方舟）与超时、限额、指标、链路等横切逻辑以装饰器叠加。
package textgen

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrService 所有生成失败都满足 errors.Is(err, ErrService)，调用方据此走规则兜底。
	ErrService = errors.New("text generation unavailable")
	// ErrNotConfigured 未配置供应商或 API Key。
	ErrNotConfigured = errors.New("text generation not configured")
	// ErrEmptyOutput 模型返回空白内容。
	ErrEmptyOutput = errors.New("text generation returned empty output")
	// ErrQuotaExceeded 超出每日调用额度。
	ErrQuotaExceeded = errors.New("text generation quota exceeded")
)

// Prompt 一次生成请求。JSON 为 true 时要求模型只输出 JSON 对象。
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	JSON        bool
}

// Generator 生成一段文本；任何失败都返回 *ServiceError。
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeneratorFunc 让普通函数满足 Generator，测试中常用。
type GeneratorFunc func(ctx context.Context, p Prompt) (string, error)

// Generate 实现 Generator。
func (f GeneratorFunc) Generate(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// ServiceError 包装供应商返回的错误，并标注来源。
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("textgen: %v", e.Err)
	}
	return fmt.Sprintf("textgen %s: %v", e.Provider, e.Err)
}

// Unwrap 返回底层错误。
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is 让任意 ServiceError 都匹配 ErrService。
func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}

// wrapErr 已是 ServiceError 的原样返回。
func wrapErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return &ServiceError{Provider: provider, Err: err}
}

// Disabled 总是失败，用于未配置 AI 的环境，业务层将全部走规则兜底。
type Disabled struct{}

// Generate 实现 Generator。
func (Disabled) Generate(context.Context, Prompt) (string, error) {
	return "", &ServiceError{Provider: "disabled", Err: ErrNotConfigured}
}

type userKey struct{}

// ContextWithUser 在上下文中记录当前用户，供额度装饰器按用户计数。
func ContextWithUser(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext 读取 ContextWithUser 写入的用户 ID。
func UserFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userKey{}).(uint)
	return id, ok && id > 0
}
