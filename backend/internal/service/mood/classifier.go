/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-04 10:31:26
 * @FilePath: \employee-portal\backend\internal\service\mood\classifier.go
 * @LastEditTime: 2026-03-06 15:02:48
 */
package mood

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"employee-portal/backend/internal/infra/metrics"
	"employee-portal/backend/internal/infra/model/textgen"

	"go.uber.org/zap"
)

// Mood 情绪分类，封闭枚举。
type Mood string

const (
	Calm        Mood = "CALM"
	Motivated   Mood = "MOTIVATED"
	Stressed    Mood = "STRESSED"
	Overwhelmed Mood = "OVERWHELMED"
	Disengaged  Mood = "DISENGAGED"
)

// FeatureMoodClassifier 指标与额度使用的功能名。
const FeatureMoodClassifier = "mood_classifier"

// 分类来源，仅用于日志与指标。
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceOverride = "override"
)

const invalidMoodReason = "Unable to determine specific mood from responses. General stress indicators detected."

// AllowedMoods 返回全部合法情绪，顺序固定。
func AllowedMoods() []Mood {
	return []Mood{Calm, Motivated, Stressed, Overwhelmed, Disengaged}
}

// Valid 判断是否为合法情绪。
func (m Mood) Valid() bool {
	for _, allowed := range AllowedMoods() {
		if m == allowed {
			return true
		}
	}
	return false
}

// Result 分类结果。
type Result struct {
	Mood   Mood   `json:"mood"`
	Reason string `json:"reason"`
	Source string `json:"-"`
}

// Classifier 优先调用文本生成，失败时退回关键词规则。
type Classifier struct {
	generator textgen.Generator
	logger    *zap.SugaredLogger
}

// NewClassifier generator 为空时只使用关键词规则。
func NewClassifier(generator textgen.Generator, logger *zap.SugaredLogger) *Classifier {
	if generator == nil {
		generator = textgen.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Classifier{generator: generator, logger: logger}
}

// Classify 根据问卷回答判断情绪，永不失败。
//
// firstName 为空时提示词中不出现姓名。调用方负责保证恰好 5 个回答。
func (c *Classifier) Classify(ctx context.Context, answers map[string]string, firstName string) Result {
	out, err := c.generator.Generate(ctx, textgen.Prompt{
		System:      classifierSystemPrompt(),
		User:        classifierUserPrompt(answers, firstName),
		MaxTokens:   250,
		Temperature: 0.5,
		JSON:        true,
	})
	if err != nil {
		c.logger.Warnw("mood classification failed, using keyword fallback", "error", err)
		return c.fallback(answers)
	}

	var payload struct {
		Mood   string `json:"mood"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		c.logger.Warnw("mood classification returned invalid json, using keyword fallback", "error", err)
		return c.fallback(answers)
	}

	result := Result{
		Mood:   Mood(strings.ToUpper(strings.TrimSpace(payload.Mood))),
		Reason: payload.Reason,
		Source: SourceAI,
	}
	if !result.Mood.Valid() {
		c.logger.Warnw("mood classification returned unknown label, defaulting to STRESSED", "mood", payload.Mood)
		result = Result{Mood: Stressed, Reason: invalidMoodReason, Source: SourceOverride}
	}
	metrics.RecordMood(string(result.Mood), result.Source)
	return result
}

func (c *Classifier) fallback(answers map[string]string) Result {
	metrics.RecordFallback(FeatureMoodClassifier)
	result := KeywordClassify(answers)
	metrics.RecordMood(string(result.Mood), result.Source)
	return result
}

func classifierSystemPrompt() string {
	labels := make([]string, 0, 5)
	for _, m := range AllowedMoods() {
		labels = append(labels, string(m))
	}
	return `You are a workplace wellbeing advisor. Analyze employee responses to reflection questions and classify their mood.

CRITICAL INSTRUCTIONS:
1. The story context is ONLY for reference to understand the questions - it is NOT about this employee
2. Base your classification SOLELY on the employee's actual responses, NOT on the story
3. Classify the mood as EXACTLY ONE of these: ` + strings.Join(labels, ", ") + `
4. Do NOT use any other mood categories
5. Return ONLY valid JSON
6. Do NOT include medical or diagnostic language
7. Do NOT mention the story character's name (Maya) in your response
8. If a user name is provided, you may use it naturally in your explanation

Mood Guidelines:
- CALM: Balanced responses, manages stress well, takes breaks, feels content
- MOTIVATED: Energized, enthusiastic, passionate, engaged, positive about work
- STRESSED: Experiencing pressure, tight deadlines, some anxiety but managing
- OVERWHELMED: Exhausted, burned out, too much work, struggling to cope
- DISENGAGED: Unmotivated, bored, disconnected, low interest

Return format:
{
  "mood": "<ONE_OF_ALLOWED_MOODS>",
  "reason": "<brief explanation in 1-2 sentences, addressing the employee directly or using their name if provided>"
}`
}

func classifierUserPrompt(answers map[string]string, firstName string) string {
	lines := make([]string, 0, len(answers))
	for _, id := range sortedQuestionIDs(answers) {
		lines = append(lines, fmt.Sprintf("Q%s: %s", id, answers[id]))
	}

	var b strings.Builder
	b.WriteString("Employee Responses (analyze THESE responses only, ignore the story tone):\n")
	b.WriteString(strings.Join(lines, "\n"))
	if name := strings.TrimSpace(firstName); name != "" {
		b.WriteString("\nEmployee Name: " + name)
	}
	b.WriteString("\n\nIMPORTANT: Classify based on what the employee ACTUALLY said in their responses, not based on the story context. ")
	b.WriteString("If they describe positive feelings, good work-life balance, taking breaks, and being motivated, classify accordingly as CALM or MOTIVATED.")
	b.WriteString("\n\nClassify the employee's mood based ONLY on their responses above.")
	return b.String()
}

// sortedQuestionIDs 数字题号按数值排序，其余按字典序排在后面。
func sortedQuestionIDs(answers map[string]string) []string {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}
