package wellness

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 活动日期的存储格式，ISO 日期在 SQLite/MySQL 中都可按字符串比较。
const DateLayout = "2006-01-02"

// ActivityType 活动类型，封闭枚举。
type ActivityType string

const (
	ActivityLogin     ActivityType = "login"
	ActivityLogout    ActivityType = "logout"
	ActivityDashboard ActivityType = "dashboard"
	ActivityLearning  ActivityType = "learning"
)

// ActivityTypes 返回全部合法类型，顺序固定。
func ActivityTypes() []ActivityType {
	return []ActivityType{ActivityDashboard, ActivityLearning, ActivityLogin, ActivityLogout}
}

// ParseActivityType 校验并规范化活动类型。
func ParseActivityType(raw string) (ActivityType, error) {
	candidate := ActivityType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range ActivityTypes() {
		if t == candidate {
			return t, nil
		}
	}
	names := make([]string, 0, 4)
	for _, t := range ActivityTypes() {
		names = append(names, string(t))
	}
	return "", fmt.Errorf("invalid activity type %q, must be one of: %s", raw, strings.Join(names, ", "))
}

// CountsAsWorkDay login 与 dashboard 记录视为“出勤”。
func (t ActivityType) CountsAsWorkDay() bool {
	return t == ActivityLogin || t == ActivityDashboard
}

// ActivityLog 每条员工活动记录。login 记录在对应 logout 到来时被原地补全。
type ActivityLog struct {
	ID                     uint         `gorm:"primaryKey" json:"id"`
	UserID                 uint         `gorm:"index:idx_activity_user_date,priority:1;not null" json:"user_id"`
	ActivityType           ActivityType `gorm:"size:16;not null" json:"activity_type"`
	Date                   string       `gorm:"size:10;index:idx_activity_user_date,priority:2;not null" json:"date"` // YYYY-MM-DD，服务器本地日期
	LoginTime              *time.Time   `json:"login_time,omitempty"`
	LogoutTime             *time.Time   `json:"logout_time,omitempty"`
	SessionDurationMinutes *float64     `json:"session_duration_minutes,omitempty"` // logout 时计算，未闭合前为空
	CreatedAt              time.Time    `json:"created_at"`
}

// TableName 固定表名。
func (ActivityLog) TableName() string {
	return "user_activity_logs"
}

// Day 解析 Date 字段，格式错误时返回 false。
func (a ActivityLog) Day() (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(a.Date))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FormatDate 以本地日历日格式化。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
