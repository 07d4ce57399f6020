package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Status 考勤状态。
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusHalfDay Status = "half_day"
	StatusHoliday Status = "holiday"
)

// ParseStatus 校验考勤状态。
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPresent, StatusAbsent, StatusLeave, StatusHalfDay, StatusHoliday:
		return s, nil
	default:
		return "", fmt.Errorf("invalid attendance status %q", raw)
	}
}

// Record 某员工某天的考勤，(user_id, date) 唯一。
type Record struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_attendance_user_date,priority:1;not null" json:"user_id"`
	Date      string    `gorm:"size:10;uniqueIndex:idx_attendance_user_date,priority:2;index;not null" json:"date"` // YYYY-MM-DD
	Status    Status    `gorm:"size:16;not null" json:"status"`
	LeaveType string    `gorm:"size:32" json:"leave_type,omitempty"` // 仅 leave 状态有意义，如 sick / casual
	MarkedBy  uint      `json:"marked_by"`                            // 操作的管理员 ID
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 固定表名。
func (Record) TableName() string {
	return "attendance_records"
}
