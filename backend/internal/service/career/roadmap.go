package career

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRole 当前/下一/远期岗位或时间点缺失。
var ErrMissingRole = errors.New("current_role, next_role, next_date and future_role are required")

// maxPriorities 叙述里最多提及的成长方向数。
const maxPriorities = 3

// RoadmapRequest 职业路线摘要入参。
type RoadmapRequest struct {
	CurrentRole      string   `json:"current_role"`
	NextRole         string   `json:"next_role"`
	NextDate         string   `json:"next_date"` // 如 "Q3 2026"
	FutureRole       string   `json:"future_role"`
	GrowthPriorities []string `json:"growth_priorities,omitempty"`
}

// RoadmapSummary 返回体。
type RoadmapSummary struct {
	Summary string `json:"summary"`
}

// Summarize 基于模板生成职业路线叙述，结果只依赖入参。
func Summarize(req RoadmapRequest) (RoadmapSummary, error) {
	current := strings.TrimSpace(req.CurrentRole)
	next := strings.TrimSpace(req.NextRole)
	date := strings.TrimSpace(req.NextDate)
	future := strings.TrimSpace(req.FutureRole)
	if current == "" || next == "" || date == "" || future == "" {
		return RoadmapSummary{}, ErrMissingRole
	}

	sentences := []string{
		fmt.Sprintf("Here's how you can get from %s to %s.", current, next),
		fmt.Sprintf("By %s, aim to take on more ownership, cross-team initiatives, and visible projects that align with your next level.", date),
	}
	if priorities := topPriorities(req.GrowthPriorities); len(priorities) > 0 {
		sentences = append(sentences, fmt.Sprintf("Focus on building %s to bridge the gap.", strings.Join(priorities, ", ")))
	}
	sentences = append(sentences, fmt.Sprintf("From there, your path to %s will build on these steps; consider mentorship and curated learning to accelerate your growth.", future))

	return RoadmapSummary{Summary: strings.Join(sentences, " ")}, nil
}

func topPriorities(in []string) []string {
	out := make([]string, 0, maxPriorities)
	for _, p := range in {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		out = append(out, p)
		if len(out) == maxPriorities {
			break
		}
	}
	return out
}
