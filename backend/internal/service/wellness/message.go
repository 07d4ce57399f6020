package wellness

import (
	"context"
	"strings"

	"employee-portal/backend/internal/infra/metrics"
	"employee-portal/backend/internal/infra/model/textgen"

	"go.uber.org/zap"
)

// FeatureWellnessMessage 指标与额度使用的功能名。
const FeatureWellnessMessage = "wellness_message"

const messageSystemPrompt = `You are a supportive workplace wellness advisor. Generate a brief, encouraging wellness message based on the employee's work patterns.

RULES:
1. Be supportive and respectful (1-2 sentences only)
2. NO medical language or diagnoses
3. NO alarming statements
4. Focus on work-life balance
5. Be encouraging and practical

Tone: Friendly, non-judgmental, supportive`

// FallbackMessage 文本生成不可用时按等级返回固定文案。
func FallbackMessage(level RiskLevel) string {
	switch level {
	case RiskLow:
		return "You're maintaining a healthy work-life balance. Keep up the great work!"
	case RiskMedium:
		return "Consider taking regular breaks and time for self-care to maintain your well-being."
	case RiskHigh:
		return "Your work patterns suggest you might benefit from more rest and time away from work."
	default:
		return "Remember to prioritize your well-being."
	}
}

// MessageGenerator 把评估结果转成一句鼓励性的提示语。
type MessageGenerator struct {
	generator textgen.Generator
	logger    *zap.SugaredLogger
}

// NewMessageGenerator generator 为空时始终使用固定文案。
func NewMessageGenerator(generator textgen.Generator, logger *zap.SugaredLogger) *MessageGenerator {
	if generator == nil {
		generator = textgen.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &MessageGenerator{generator: generator, logger: logger}
}

// Generate 永不失败：生成出错或输出为空时返回 FallbackMessage。
func (m *MessageGenerator) Generate(ctx context.Context, a Assessment) string {
	prompt := textgen.Prompt{
		System:      messageSystemPrompt,
		User:        buildMessagePrompt(a),
		MaxTokens:   100,
		Temperature: 0.7,
	}
	out, err := m.generator.Generate(ctx, prompt)
	if err == nil {
		out = strings.TrimSpace(out)
	}
	if err != nil || out == "" {
		m.logger.Warnw("wellness message generation failed, using fallback", "risk_level", a.RiskLevel, "error", err)
		metrics.RecordFallback(FeatureWellnessMessage)
		return FallbackMessage(a.RiskLevel)
	}
	return out
}

func buildMessagePrompt(a Assessment) string {
	return "Risk Level: " + string(a.RiskLevel) +
		"\nRisk Factors: " + strings.Join(a.RiskFactors, ", ") +
		"\n\nGenerate a supportive wellness message."
}
