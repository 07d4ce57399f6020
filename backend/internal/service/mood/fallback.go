package mood

import "strings"

// 关键词集合，按子串匹配，同一个词出现多次只计一次。
func positiveWords() []string {
	return []string{"great", "excellent", "good", "happy", "satisfied", "balanced", "well", "energized", "motivated", "excited", "passionate", "fulfilling"}
}

func negativeWords() []string {
	return []string{"exhausted", "tired", "burned out", "overwhelming", "too much"}
}

func stressWords() []string {
	return []string{"stressed", "pressure", "anxious", "worried", "deadline"}
}

func disengagedWords() []string {
	return []string{"unmotivated", "bored", "disconnected", "uninterested", "nothing"}
}

func energyWords() []string {
	return []string{"motivated", "excited", "energized", "passionate"}
}

// KeywordClassify 文本生成不可用时的规则分类，判断顺序不可调整：
// 积极 >= 2 且无消极 -> MOTIVATED/CALM；有消极 -> OVERWHELMED；有压力词 -> STRESSED；
// 有疏离词 -> DISENGAGED；否则 CALM。
func KeywordClassify(answers map[string]string) Result {
	blob := answerBlob(answers)

	positive := countPresent(blob, positiveWords())
	negative := countPresent(blob, negativeWords())

	switch {
	case positive >= 2 && negative == 0:
		if countPresent(blob, energyWords()) > 0 {
			return fallbackResult(Motivated, "Your responses show strong motivation and positive energy toward your work.")
		}
		return fallbackResult(Calm, "Your responses suggest a healthy work-life balance and contentment.")
	case negative > 0:
		return fallbackResult(Overwhelmed, "Your responses indicate signs of exhaustion and high workload.")
	case countPresent(blob, stressWords()) > 0:
		return fallbackResult(Stressed, "Your responses suggest experiencing work-related pressure.")
	case countPresent(blob, disengagedWords()) > 0:
		return fallbackResult(Disengaged, "Your responses indicate reduced engagement with work.")
	default:
		return fallbackResult(Calm, "Your responses suggest a balanced and stable work state.")
	}
}

func fallbackResult(m Mood, reason string) Result {
	return Result{Mood: m, Reason: reason, Source: SourceFallback}
}

func answerBlob(answers map[string]string) string {
	parts := make([]string, 0, len(answers))
	for _, id := range sortedQuestionIDs(answers) {
		parts = append(parts, answers[id])
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}

func countPresent(blob string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(blob, w) {
			n++
		}
	}
	return n
}
