package textgen

import (
	"strings"
	"time"

	"employee-portal/backend/internal/config"
	"employee-portal/backend/internal/infra/model/openai"
	"employee-portal/backend/internal/infra/model/volcengine"
	"employee-portal/backend/internal/infra/ratelimit"
)

// quotaWindow 每日额度按滚动 24 小时窗口计数。
const quotaWindow = 24 * time.Hour

// FromConfig 按 AI_PROVIDER 选择供应商；provider 为 none 或缺少 API Key 时返回 Disabled。
func FromConfig(cfg config.AIConfig) Generator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(openai.NewClient(cfg.APIKey, openai.WithBaseURL(cfg.BaseURL)), cfg.Model, "openai")
	case "deepseek":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.DeepSeekBaseURL
		}
		return NewOpenAI(openai.NewClient(cfg.APIKey, openai.WithBaseURL(baseURL)), cfg.Model, "deepseek")
	case "volcengine":
		return NewVolcengine(volcengine.NewClient(cfg.APIKey, volcengine.WithBaseURL(cfg.BaseURL)), cfg.Model)
	default:
		return Disabled{}
	}
}

// ForFeature 给基础生成器叠加某个功能的横切逻辑：
// 链路 -> 指标 -> 额度 -> 超时 -> 供应商。
func ForFeature(base Generator, feature string, cfg config.AIConfig, limiter ratelimit.Limiter) Generator {
	g := WithTimeout(base, cfg.Timeout)
	g = WithQuota(g, limiter, feature, cfg.DailyQuota, quotaWindow)
	g = WithMetrics(g, feature)
	return WithTracing(g, feature)
}

// Enabled 判断生成器是否可能真正调用外部服务。
func Enabled(g Generator) bool {
	_, disabled := g.(Disabled)
	return g != nil && !disabled
}
