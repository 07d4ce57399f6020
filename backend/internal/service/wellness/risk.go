/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-03 14:22:05
 * @FilePath: \employee-portal\backend\internal\service\wellness\risk.go
 * @LastEditTime: 2026-03-05 18:40:13
 */
package wellness

import (
	"fmt"
	"math"
	"sort"
	"time"

	domain "employee-portal/backend/internal/domain/wellness"
)

// RiskLevel 风险等级。
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// 评估窗口与规则阈值。
const (
	AssessmentWindowDays = 14
	StatisticsWindowDays = 7

	lateNightHour          = 23
	lateNightMinLogins     = 3
	longSessionMinutes     = 480
	consecutiveDaysTrigger = 6

	highThreshold   = 5
	mediumThreshold = 3

	factorNoData = "No activity data available yet"
	factorNone   = "No risk factors detected"
)

// Statistics 最近 7 天的工作统计。
type Statistics struct {
	WorkDaysLastWeek     int     `json:"work_days_last_week"`
	TotalHoursLastWeek   float64 `json:"total_hours_last_week"`
	LearningDaysLastWeek int     `json:"learning_days_last_week"`
	AverageHoursPerDay   float64 `json:"average_hours_per_day"`
}

// Assessment 一次风险评估结果。
type Assessment struct {
	RiskScore   int        `json:"risk_score"`
	RiskLevel   RiskLevel  `json:"risk_level"`
	RiskFactors []string   `json:"risk_factors"`
	Statistics  Statistics `json:"statistics"`
}

// WindowStart 返回 today 往前 days 天的日期字符串，用于 date >= ? 查询。
func WindowStart(today time.Time, days int) string {
	return domain.FormatDate(today.AddDate(0, 0, -days))
}

// LevelFor 分数映射到等级：>=5 HIGH，>=3 MEDIUM，其余 LOW。
func LevelFor(score int) RiskLevel {
	switch {
	case score >= highThreshold:
		return RiskHigh
	case score >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Assess 根据近 14 天的活动记录计算风险，纯函数。
// records 应为 date >= today-14 的记录，登录时间按 loc 取小时（nil 为 time.Local）。
func Assess(records []domain.ActivityLog, today time.Time, loc *time.Location) Assessment {
	if len(records) == 0 {
		return Assessment{
			RiskScore:   0,
			RiskLevel:   RiskLow,
			RiskFactors: []string{factorNoData},
		}
	}
	if loc == nil {
		loc = time.Local
	}

	score := 0
	factors := make([]string, 0, 4)

	if n := countLateNightLogins(records, loc); n >= lateNightMinLogins {
		score += 2
		factors = append(factors, fmt.Sprintf("Late night work detected (%d days after 11 PM)", n))
	}

	if n := countLongSessions(records); n > 0 {
		score += 2
		factors = append(factors, fmt.Sprintf("Extended work sessions detected (%d sessions over 8 hours)", n))
	}

	if run := longestRun(workDates(records, "")); run >= consecutiveDaysTrigger {
		score += 2
		factors = append(factors, fmt.Sprintf("Continuous work detected (%d consecutive days)", run))
	}

	if !hasLearning(records) {
		score++
		factors = append(factors, "No learning activity in the past 14 days")
	}

	if len(factors) == 0 {
		factors = append(factors, factorNone)
	}

	return Assessment{
		RiskScore:   score,
		RiskLevel:   LevelFor(score),
		RiskFactors: factors,
		Statistics:  weeklyStatistics(records, WindowStart(today, StatisticsWindowDays)),
	}
}

func countLateNightLogins(records []domain.ActivityLog, loc *time.Location) int {
	n := 0
	for _, r := range records {
		if r.ActivityType == domain.ActivityLogin && r.LoginTime != nil && r.LoginTime.In(loc).Hour() >= lateNightHour {
			n++
		}
	}
	return n
}

func countLongSessions(records []domain.ActivityLog) int {
	n := 0
	for _, r := range records {
		if r.SessionDurationMinutes != nil && *r.SessionDurationMinutes > longSessionMinutes {
			n++
		}
	}
	return n
}

func hasLearning(records []domain.ActivityLog) bool {
	for _, r := range records {
		if r.ActivityType == domain.ActivityLearning {
			return true
		}
	}
	return false
}

// workDates 返回 login/dashboard 记录的去重日期；since 非空时只统计 date >= since。
func workDates(records []domain.ActivityLog, since string) map[string]struct{} {
	days := make(map[string]struct{})
	for _, r := range records {
		if r.ActivityType.CountsAsWorkDay() && r.Date >= since {
			days[r.Date] = struct{}{}
		}
	}
	return days
}

// longestRun 日期相差恰好一天视为连续，格式错误的日期不参与计算。
func longestRun(dates map[string]struct{}) int {
	days := make([]time.Time, 0, len(dates))
	for raw := range dates {
		if d, ok := (domain.ActivityLog{Date: raw}).Day(); ok {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 1
		}
	}
	return best
}

func weeklyStatistics(records []domain.ActivityLog, since string) Statistics {
	var (
		totalMinutes float64
		learningDays = make(map[string]struct{})
	)
	for _, r := range records {
		if r.Date < since {
			continue
		}
		if r.SessionDurationMinutes != nil {
			totalMinutes += *r.SessionDurationMinutes
		}
		if r.ActivityType == domain.ActivityLearning {
			learningDays[r.Date] = struct{}{}
		}
	}

	workDays := len(workDates(records, since))
	totalHours := totalMinutes / 60
	stats := Statistics{
		WorkDaysLastWeek:     workDays,
		TotalHoursLastWeek:   round1(totalHours),
		LearningDaysLastWeek: len(learningDays),
	}
	if workDays > 0 {
		stats.AverageHoursPerDay = round1(totalHours / float64(workDays))
	}
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
