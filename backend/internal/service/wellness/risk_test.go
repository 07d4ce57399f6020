package wellness

import (
	"strings"
	"testing"
	"time"

	domain "employee-portal/backend/internal/domain/wellness"
)

var testToday = time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

func day(offset int) string {
	return domain.FormatDate(testToday.AddDate(0, 0, offset))
}

func minutes(v float64) *float64 { return &v }

func at(offset, hour int) *time.Time {
	t := time.Date(2026, 3, 20+offset, hour, 15, 0, 0, time.UTC)
	return &t
}

func dashboards(offsets ...int) []domain.ActivityLog {
	out := make([]domain.ActivityLog, 0, len(offsets))
	for _, off := range offsets {
		out = append(out, domain.ActivityLog{ActivityType: domain.ActivityDashboard, Date: day(off)})
	}
	return out
}

func learning(offset int) domain.ActivityLog {
	return domain.ActivityLog{ActivityType: domain.ActivityLearning, Date: day(offset)}
}

func TestAssessEmptyWindow(t *testing.T) {
	got := Assess(nil, testToday, time.UTC)
	if got.RiskScore != 0 || got.RiskLevel != RiskLow {
		t.Fatalf("unexpected assessment %+v", got)
	}
	if len(got.RiskFactors) != 1 || got.RiskFactors[0] != "No activity data available yet" {
		t.Fatalf("unexpected factors %v", got.RiskFactors)
	}
	if got.Statistics != (Statistics{}) {
		t.Fatalf("expected zero statistics, got %+v", got.Statistics)
	}
}

func TestAssessNoFactors(t *testing.T) {
	got := Assess(append(dashboards(-1), learning(-1)), testToday, time.UTC)
	if got.RiskScore != 0 || got.RiskLevel != RiskLow {
		t.Fatalf("unexpected assessment %+v", got)
	}
	if len(got.RiskFactors) != 1 || got.RiskFactors[0] != "No risk factors detected" {
		t.Fatalf("unexpected factors %v", got.RiskFactors)
	}
}

func TestAssessOnlyNoLearning(t *testing.T) {
	got := Assess(dashboards(-2), testToday, time.UTC)
	if got.RiskScore != 1 || got.RiskLevel != RiskLow {
		t.Fatalf("unexpected assessment %+v", got)
	}
	if got.RiskFactors[0] != "No learning activity in the past 14 days" {
		t.Fatalf("unexpected factors %v", got.RiskFactors)
	}
}

func TestAssessConsecutiveDays(t *testing.T) {
	gap := Assess(append(dashboards(-9, -8, -7, -4, -3), learning(-1)), testToday, time.UTC)
	if gap.RiskScore != 0 {
		t.Fatalf("run of 3 must not trigger, got %+v", gap)
	}

	run := Assess(append(dashboards(-8, -7, -6, -5, -4, -3), learning(-1)), testToday, time.UTC)
	if run.RiskScore != 2 || run.RiskFactors[0] != "Continuous work detected (6 consecutive days)" {
		t.Fatalf("run of 6 must trigger, got %+v", run)
	}
}

func TestAssessLateNightThreshold(t *testing.T) {
	records := []domain.ActivityLog{
		{ActivityType: domain.ActivityLogin, Date: day(-3), LoginTime: at(-3, 23)},
		{ActivityType: domain.ActivityLogin, Date: day(-2), LoginTime: at(-2, 23)},
		{ActivityType: domain.ActivityLogin, Date: day(-1), LoginTime: at(-1, 22)},
		learning(-1),
	}
	if got := Assess(records, testToday, time.UTC); got.RiskScore != 0 {
		t.Fatalf("two late logins must not trigger, got %+v", got)
	}

	records = append(records, domain.ActivityLog{ActivityType: domain.ActivityLogin, Date: day(-5), LoginTime: at(-5, 23)})
	got := Assess(records, testToday, time.UTC)
	if got.RiskScore != 2 {
		t.Fatalf("three late logins must trigger, got %+v", got)
	}
	if !strings.Contains(got.RiskFactors[0], "3") {
		t.Fatalf("factor must mention the count, got %q", got.RiskFactors[0])
	}
}

func TestAssessLateNightUsesLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	records := []domain.ActivityLog{learning(-1)}
	for i := 1; i <= 3; i++ {
		// 15:30 UTC 为北京时间 23:30
		login := time.Date(2026, 3, 20-i, 15, 30, 0, 0, time.UTC)
		records = append(records, domain.ActivityLog{ActivityType: domain.ActivityLogin, Date: day(-i), LoginTime: &login})
	}
	if got := Assess(records, testToday, time.UTC); got.RiskScore != 0 {
		t.Fatalf("in UTC these are afternoon logins, got %+v", got)
	}
	if got := Assess(records, testToday, shanghai); got.RiskScore != 2 {
		t.Fatalf("in CST these are late-night logins, got %+v", got)
	}
}

func TestAssessHighRiskAdditive(t *testing.T) {
	records := dashboards(-13, -12, -11, -10, -9, -8)
	for _, off := range []int{-3, -2, -1} {
		records = append(records, domain.ActivityLog{ActivityType: domain.ActivityLogin, Date: day(off), LoginTime: at(off, 23)})
	}
	records = append(records, domain.ActivityLog{ActivityType: domain.ActivityLogin, Date: day(-4), LoginTime: at(-4, 8), SessionDurationMinutes: minutes(540)})

	got := Assess(records, testToday, time.UTC)
	if got.RiskScore != 7 || got.RiskLevel != RiskHigh {
		t.Fatalf("expected score 7 HIGH, got %+v", got)
	}
	if len(got.RiskFactors) != 4 {
		t.Fatalf("expected 4 factors, got %v", got.RiskFactors)
	}
	if got.RiskFactors[1] != "Extended work sessions detected (1 sessions over 8 hours)" {
		t.Fatalf("unexpected long session factor %q", got.RiskFactors[1])
	}
}

func TestLevelForThresholds(t *testing.T) {
	cases := map[int]RiskLevel{0: RiskLow, 2: RiskLow, 3: RiskMedium, 4: RiskMedium, 5: RiskHigh, 7: RiskHigh}
	for score, want := range cases {
		if got := LevelFor(score); got != want {
			t.Fatalf("score %d: want %s, got %s", score, want, got)
		}
	}
}

func TestAssessStatistics(t *testing.T) {
	records := []domain.ActivityLog{
		{ActivityType: domain.ActivityLogin, Date: day(-10), SessionDurationMinutes: minutes(600)},
		{ActivityType: domain.ActivityLogin, Date: day(-2), SessionDurationMinutes: minutes(250)},
		{ActivityType: domain.ActivityLogin, Date: day(-2), SessionDurationMinutes: minutes(50)},
		{ActivityType: domain.ActivityDashboard, Date: day(-1)},
		learning(-1),
		learning(-1),
		learning(-8),
	}
	got := Assess(records, testToday, time.UTC).Statistics
	want := Statistics{WorkDaysLastWeek: 2, TotalHoursLastWeek: 5, LearningDaysLastWeek: 1, AverageHoursPerDay: 2.5}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestAssessStatisticsWithoutWorkDays(t *testing.T) {
	got := Assess([]domain.ActivityLog{learning(-1)}, testToday, time.UTC).Statistics
	if got.AverageHoursPerDay != 0 || got.WorkDaysLastWeek != 0 {
		t.Fatalf("expected zero average, got %+v", got)
	}
}

func TestAssessSkipsMalformedDates(t *testing.T) {
	records := append(dashboards(-3, -2), domain.ActivityLog{ActivityType: domain.ActivityDashboard, Date: "not-a-date"})
	got := Assess(records, testToday, time.UTC)
	if got.RiskScore != 1 {
		t.Fatalf("malformed dates must be ignored, got %+v", got)
	}
}

func TestLongestRun(t *testing.T) {
	set := func(offsets ...int) map[string]struct{} {
		m := map[string]struct{}{}
		for _, o := range offsets {
			m[day(o)] = struct{}{}
		}
		return m
	}
	if got := longestRun(set()); got != 0 {
		t.Fatalf("empty run should be 0, got %d", got)
	}
	if got := longestRun(set(-1)); got != 1 {
		t.Fatalf("single day run should be 1, got %d", got)
	}
	if got := longestRun(set(-10, -9, -5, -4, -3, -2)); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}
